// Package view derives the visible record list from the catalog and
// favorites slices.
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"herbar/client/internal/catalog"
)

// DefaultPetKeywords trigger the pet-safety override when found in a query.
var DefaultPetKeywords = []string{
	"pisica", "pisică", "pisici",
	"caine", "câine", "caini", "câini",
	"animale de companie", "animal de companie",
	"pet friendly", "pet-friendly",
}

// Pipeline filters and sorts records. The zero value uses DefaultPetKeywords
// and Romanian collation.
type Pipeline struct {
	PetKeywords []string
	Language    language.Tag
}

var defaultPipeline Pipeline

// Compute runs the default pipeline.
func Compute(records []catalog.Record, query string, activeTags []string, sortKey catalog.SortKey, favoritesOnly bool, favoriteIDs []int) []catalog.Record {
	return defaultPipeline.Compute(records, query, activeTags, sortKey, favoritesOnly, favoriteIDs)
}

// Compute returns the visible list. It never mutates its arguments and
// always returns a fresh, non-nil slice.
func (p Pipeline) Compute(records []catalog.Record, query string, activeTags []string, sortKey catalog.SortKey, favoritesOnly bool, favoriteIDs []int) []catalog.Record {
	q := catalog.Fold(strings.TrimSpace(query))

	var out []catalog.Record
	if p.petSafetyQuery(q) {
		out = make([]catalog.Record, 0, len(records))
		for _, r := range records {
			if r.Toxicity == catalog.NonToxic {
				out = append(out, r)
			}
		}
	} else {
		out = make([]catalog.Record, 0, len(records))
		for _, r := range records {
			if q != "" && !strings.Contains(r.SearchIndex, q) {
				continue
			}
			if !hasAllTags(r, activeTags) {
				continue
			}
			out = append(out, r)
		}
	}

	if less := p.comparator(sortKey, out); less != nil {
		sort.SliceStable(out, less)
	}

	if favoritesOnly {
		favs := make(map[int]struct{}, len(favoriteIDs))
		for _, id := range favoriteIDs {
			favs[id] = struct{}{}
		}
		kept := out[:0]
		for _, r := range out {
			if _, ok := favs[r.ID]; ok {
				kept = append(kept, r)
			}
		}
		out = kept
	}
	return out
}

func (p Pipeline) petSafetyQuery(q string) bool {
	if q == "" {
		return false
	}
	keywords := p.PetKeywords
	if keywords == nil {
		keywords = DefaultPetKeywords
	}
	for _, kw := range keywords {
		kw = catalog.Fold(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func hasAllTags(r catalog.Record, tags []string) bool {
	for _, tag := range tags {
		if !r.HasTag(tag) {
			return false
		}
	}
	return true
}

// comparator returns the less function for key over out, or nil when the key
// is not recognised and the order must stay as is.
func (p Pipeline) comparator(key catalog.SortKey, out []catalog.Record) func(i, j int) bool {
	byInt := func(field func(catalog.Record) int, desc bool) func(i, j int) bool {
		return func(i, j int) bool {
			if desc {
				return field(out[i]) > field(out[j])
			}
			return field(out[i]) < field(out[j])
		}
	}

	switch key {
	case catalog.SortNameAsc, catalog.SortNameDesc:
		tag := p.Language
		if tag == language.Und {
			tag = language.Romanian
		}
		// Collators keep iteration buffers, one per call keeps Compute reentrant.
		col := collate.New(tag, collate.IgnoreCase)
		desc := key == catalog.SortNameDesc
		return func(i, j int) bool {
			c := col.CompareString(out[i].Name, out[j].Name)
			if desc {
				return c > 0
			}
			return c < 0
		}
	case catalog.SortToxicityAsc:
		return byInt(toxicity, false)
	case catalog.SortToxicityDesc:
		return byInt(toxicity, true)
	case catalog.SortDifficultyAsc:
		return byInt(difficulty, false)
	case catalog.SortDifficultyDesc:
		return byInt(difficulty, true)
	case catalog.SortGrowthAsc:
		return byInt(growth, false)
	case catalog.SortGrowthDesc:
		return byInt(growth, true)
	case catalog.SortAirAsc:
		return byInt(air, false)
	case catalog.SortAirDesc:
		return byInt(air, true)
	default:
		return nil
	}
}

func toxicity(r catalog.Record) int   { return r.Toxicity }
func difficulty(r catalog.Record) int { return r.Difficulty }
func growth(r catalog.Record) int     { return r.GrowthRate }
func air(r catalog.Record) int        { return r.AirPurification }

// KnownSortKey reports whether key selects a comparator.
func KnownSortKey(key catalog.SortKey) bool {
	switch key {
	case catalog.SortNameAsc, catalog.SortNameDesc,
		catalog.SortToxicityAsc, catalog.SortToxicityDesc,
		catalog.SortDifficultyAsc, catalog.SortDifficultyDesc,
		catalog.SortGrowthAsc, catalog.SortGrowthDesc,
		catalog.SortAirAsc, catalog.SortAirDesc:
		return true
	}
	return false
}
