package catalog

import "herbar/client/internal/state"

// Reduce is the catalog slice reducer. It never mutates prev: changed fields
// get fresh backing arrays and unchanged ones are shared.
func Reduce(prev state.Slice, action state.Action) state.Slice {
	s, ok := prev.(State)
	if !ok {
		s = Initial()
	}

	switch action.Type {
	case ActionLoadStarted:
		s.Loading = true
		s.LoadError = ""
		return s

	case ActionLoaded:
		records, _ := action.Payload.([]Record)
		s.Records = make([]Record, len(records))
		for i, r := range records {
			s.Records[i] = r.Clone()
		}
		s.RecordsRev++
		s.Loading = false
		s.LoadError = ""
		return s

	case ActionLoadFailed:
		reason, _ := action.Payload.(string)
		s.Loading = false
		s.LoadError = reason
		return s

	case ActionSetQuery:
		query, _ := action.Payload.(string)
		if query == s.Query {
			return prev
		}
		s.Query = query
		return s

	case ActionSetSort:
		key, _ := action.Payload.(SortKey)
		if key == "" {
			key = DefaultSort
		}
		if key == s.SortKey {
			return prev
		}
		s.SortKey = key
		return s

	case ActionToggleTag:
		tag, _ := action.Payload.(string)
		if tag == "" {
			return prev
		}
		tags := make([]string, 0, len(s.ActiveTags)+1)
		removed := false
		for _, t := range s.ActiveTags {
			if t == tag {
				removed = true
				continue
			}
			tags = append(tags, t)
		}
		if !removed {
			tags = append(tags, tag)
		}
		s.ActiveTags = tags
		s.TagsRev++
		return s

	case ActionSetTags:
		tags, _ := action.Payload.([]string)
		s.ActiveTags = UniqueTags(tags)
		s.TagsRev++
		return s

	case ActionClearFilters:
		if s.Query == "" && len(s.ActiveTags) == 0 && s.SortKey == DefaultSort {
			return prev
		}
		s.Query = ""
		s.SortKey = DefaultSort
		if len(s.ActiveTags) > 0 {
			s.ActiveTags = []string{}
			s.TagsRev++
		}
		return s

	case ActionDetailLoaded:
		p, ok := action.Payload.(detailPayload)
		if !ok {
			return prev
		}
		return s.replaceRecord(p.ID, func(r Record) Record { return r.WithDetail(p.Detail) })

	case ActionInvalidateDetail:
		id, ok := action.Payload.(int)
		if !ok {
			return prev
		}
		return s.replaceRecord(id, Record.WithoutDetail)

	case ActionModalRequested:
		token, _ := action.Payload.(uint64)
		if token > s.RequestToken {
			s.RequestToken = token
		}
		return s

	case ActionModalOpened:
		p, ok := action.Payload.(modalPayload)
		if !ok || p.Token != s.RequestToken {
			return prev
		}
		m := ModalContext{
			Current:  p.Context.Current.Clone(),
			Previous: p.Context.Previous.Clone(),
			Next:     p.Context.Next.Clone(),
		}
		s.Modal = &m
		return s

	case ActionModalClosed:
		token, _ := action.Payload.(uint64)
		if token > s.RequestToken {
			s.RequestToken = token
		}
		s.Modal = nil
		return s

	case ActionCopyStatus:
		status, _ := action.Payload.(CopyStatus)
		if status == "" {
			status = CopyIdle
		}
		s.CopyStatus = status
		return s

	default:
		return prev
	}
}

// replaceRecord swaps the record with id for fn(record), keeping its position,
// and refreshes any modal reference to it.
func (s State) replaceRecord(id int, fn func(Record) Record) state.Slice {
	idx := -1
	for i, r := range s.Records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	records := make([]Record, len(s.Records))
	copy(records, s.Records)
	updated := fn(records[idx])
	records[idx] = updated
	s.Records = records
	s.RecordsRev++

	if s.Modal != nil {
		m := *s.Modal
		if m.Current.ID == id {
			m.Current = updated.Clone()
		}
		if m.Previous.ID == id {
			m.Previous = updated.Clone()
		}
		if m.Next.ID == id {
			m.Next = updated.Clone()
		}
		s.Modal = &m
	}
	return s
}
