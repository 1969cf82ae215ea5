// Package catalog owns the record list, the filters applied to it, the
// focused-record modal context and the copy-link status.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Record is one plant. Detail fields stay empty until a detail fetch augments
// the record; DetailLoaded reports whether that happened.
type Record struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	ScientificName  string   `json:"scientific_name"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	Toxicity        int      `json:"toxicity"`
	Difficulty      int      `json:"difficulty"`
	GrowthRate      int      `json:"growth_rate"`
	AirPurification int      `json:"air_purification"`
	SearchIndex     string   `json:"-"`

	CareGuide      string            `json:"care_guide,omitempty"`
	SeasonalCare   string            `json:"seasonal_care,omitempty"`
	Classification map[string]string `json:"classification,omitempty"`
	Pests          []string          `json:"pests,omitempty"`
	QuickFacts     []string          `json:"quick_facts,omitempty"`
	DetailLoaded   bool              `json:"-"`
}

// Detail carries the fields a detail fetch adds to a record.
type Detail struct {
	CareGuide      string            `json:"care_guide"`
	SeasonalCare   string            `json:"seasonal_care"`
	Classification map[string]string `json:"classification"`
	Pests          []string          `json:"pests"`
	QuickFacts     []string          `json:"quick_facts"`
}

// Empty reports whether the detail carries no content at all.
func (d Detail) Empty() bool {
	return strings.TrimSpace(d.CareGuide) == "" &&
		strings.TrimSpace(d.SeasonalCare) == "" &&
		len(d.Classification) == 0 &&
		len(d.Pests) == 0 &&
		len(d.QuickFacts) == 0
}

// Toxicity levels.
const (
	NonToxic = 0
)

// Difficulty levels and their display classes.
const (
	DifficultyEasy   = 1
	DifficultyMedium = 2
	DifficultyHard   = 3
)

// DifficultyClass is the display class used by the grid and the modal.
func (r Record) DifficultyClass() string {
	switch r.Difficulty {
	case DifficultyEasy:
		return "usor"
	case DifficultyMedium:
		return "mediu"
	case DifficultyHard:
		return "dificil"
	default:
		return "necunoscut"
	}
}

// HasTag reports whether the record carries tag.
func (r Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	r.Tags = cloneStrings(r.Tags)
	r.Pests = cloneStrings(r.Pests)
	r.QuickFacts = cloneStrings(r.QuickFacts)
	if r.Classification != nil {
		cp := make(map[string]string, len(r.Classification))
		for k, v := range r.Classification {
			cp[k] = v
		}
		r.Classification = cp
	}
	return r
}

// WithDetail returns a copy of r augmented with d.
func (r Record) WithDetail(d Detail) Record {
	out := r.Clone()
	out.CareGuide = d.CareGuide
	out.SeasonalCare = d.SeasonalCare
	out.Classification = nil
	if d.Classification != nil {
		out.Classification = make(map[string]string, len(d.Classification))
		for k, v := range d.Classification {
			out.Classification[k] = v
		}
	}
	out.Pests = cloneStrings(d.Pests)
	out.QuickFacts = cloneStrings(d.QuickFacts)
	out.DetailLoaded = true
	return out
}

// WithoutDetail drops the detail fields so the next EnsureDetail refetches.
func (r Record) WithoutDetail() Record {
	out := r.Clone()
	out.CareGuide = ""
	out.SeasonalCare = ""
	out.Classification = nil
	out.Pests = nil
	out.QuickFacts = nil
	out.DetailLoaded = false
	return out
}

// Fold case-folds s the way search queries and indexes are compared.
// Casers carry state, so each call builds its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Ingest returns copies of records with their search index computed.
func Ingest(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r = r.Clone()
		parts := []string{r.Name, r.ScientificName, r.Category}
		parts = append(parts, r.Tags...)
		r.SearchIndex = Fold(strings.Join(parts, " "))
		out[i] = r
	}
	return out
}

// Find returns the record with id.
func Find(records []Record, id int) (Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// RecordID is the navigation key for records.
func RecordID(r Record) int {
	return r.ID
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
