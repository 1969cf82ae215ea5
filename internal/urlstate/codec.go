// Package urlstate maps the shareable part of the state tree to a URL and
// back.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"herbar/client/internal/catalog"
	"herbar/client/internal/faq"
	"herbar/client/internal/state"
)

const (
	ParamSearch = "search"
	ParamSort   = "sort"
	ParamTag    = "tag"

	hashPlant = "plant-"
	hashFAQ   = "faq"
)

// Params is the URL-visible view state. ModalID is zero when no record is
// focused.
type Params struct {
	Query   string
	Sort    string
	Tags    []string
	ModalID int
	FAQOpen bool
}

// FromState projects the catalog and faq slices.
func FromState(st state.State) Params {
	cs := catalog.From(st)
	p := Params{
		Query:   cs.Query,
		Sort:    string(cs.SortKey),
		Tags:    append([]string(nil), cs.ActiveTags...),
		FAQOpen: faq.From(st).Open,
	}
	if cs.Modal != nil {
		p.ModalID = cs.Modal.Current.ID
	}
	return p
}

// Encode writes p onto base. Parameters of base other than search, sort and
// tag are kept; its fragment is replaced. A focused record wins over an open
// FAQ panel.
func Encode(base string, p Params) string {
	u, err := url.Parse(base)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Del(ParamSearch)
	q.Del(ParamSort)
	q.Del(ParamTag)

	if query := strings.TrimSpace(p.Query); query != "" {
		q.Set(ParamSearch, p.Query)
	}
	if p.Sort != "" && p.Sort != string(catalog.DefaultSort) {
		q.Set(ParamSort, p.Sort)
	}
	if tags := catalog.UniqueTags(p.Tags); len(tags) > 0 {
		q.Set(ParamTag, strings.Join(tags, ","))
	}
	u.RawQuery = q.Encode()

	switch {
	case p.ModalID > 0:
		u.Fragment = hashPlant + strconv.Itoa(p.ModalID)
	case p.FAQOpen:
		u.Fragment = hashFAQ
	default:
		u.Fragment = ""
	}
	u.RawFragment = ""
	return u.String()
}

// Partial is what a URL says about the view state. Absent or malformed
// fields stay nil or empty.
type Partial struct {
	Query        *string
	Sort         *string
	Tags         []string
	PendingModal *int
	PendingFAQ   bool
}

// Empty reports whether the URL carried nothing recognised.
func (p Partial) Empty() bool {
	return p.Query == nil && p.Sort == nil && len(p.Tags) == 0 && p.PendingModal == nil && !p.PendingFAQ
}

// Decode reads raw. It never fails: anything unparseable is left out.
func Decode(raw string) Partial {
	var out Partial
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return out
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil && len(q) == 0 {
		q = url.Values{}
	}

	if v := q.Get(ParamSearch); strings.TrimSpace(v) != "" {
		out.Query = &v
	}
	if v := strings.TrimSpace(q.Get(ParamSort)); v != "" {
		out.Sort = &v
	}
	if v := q.Get(ParamTag); v != "" {
		var tags []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		out.Tags = catalog.UniqueTags(tags)
		if len(out.Tags) == 0 {
			out.Tags = nil
		}
	}

	switch frag := u.Fragment; {
	case frag == hashFAQ:
		out.PendingFAQ = true
	case strings.HasPrefix(frag, hashPlant):
		if id, ok := positiveDecimal(strings.TrimPrefix(frag, hashPlant)); ok {
			out.PendingModal = &id
		}
	}
	return out
}

func positiveDecimal(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
