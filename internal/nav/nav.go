// Package nav resolves previous/next browsing inside the visible list.
package nav

// Adjacent returns the cyclic predecessor and successor of focal within list,
// matching entries by key. When focal is not in list, or list has fewer than
// two entries, both results are focal itself: the caller treats a
// self-reference as "no navigation possible".
func Adjacent[T any, K comparable](focal T, list []T, key func(T) K) (previous, next T) {
	if len(list) < 2 {
		return focal, focal
	}
	want := key(focal)
	idx := -1
	for i, item := range list {
		if key(item) == want {
			idx = i
			break
		}
	}
	if idx < 0 {
		return focal, focal
	}
	n := len(list)
	return list[(idx-1+n)%n], list[(idx+1)%n]
}
