package view

import (
	"reflect"
	"testing"

	"herbar/client/internal/catalog"
)

func fixtures() []catalog.Record {
	return catalog.Ingest([]catalog.Record{
		{ID: 1, Name: "Ficus lyrata", ScientificName: "Ficus lyrata", Category: "arbusti", Tags: []string{"interior", "usor"}, Toxicity: 1, Difficulty: 2, GrowthRate: 2, AirPurification: 3},
		{ID: 2, Name: "Calathea", ScientificName: "Goeppertia", Category: "tropicale", Tags: []string{"interior"}, Toxicity: 0, Difficulty: 3, GrowthRate: 1, AirPurification: 2},
		{ID: 3, Name: "Zamioculcas", ScientificName: "Zamioculcas zamiifolia", Category: "suculente", Tags: []string{"interior", "usor", "umbra"}, Toxicity: 2, Difficulty: 1, GrowthRate: 1, AirPurification: 2},
		{ID: 4, Name: "Ștevie", ScientificName: "Rumex", Category: "aromatice", Tags: []string{"exterior"}, Toxicity: 0, Difficulty: 1, GrowthRate: 3, AirPurification: 1},
		{ID: 5, Name: "Aloe", ScientificName: "Aloe vera", Category: "suculente", Tags: []string{"interior", "usor"}, Toxicity: 1, Difficulty: 1, GrowthRate: 1, AirPurification: 3},
	})
}

func ids(records []catalog.Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestComputeIsPure(t *testing.T) {
	records := fixtures()
	snapshot := fixtures()
	tags := []string{"interior"}

	first := Compute(records, "  FICUS ", tags, catalog.SortNameDesc, false, nil)
	second := Compute(records, "  FICUS ", tags, catalog.SortNameDesc, false, nil)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %v vs %v", ids(first), ids(second))
	}
	if !reflect.DeepEqual(records, snapshot) || tags[0] != "interior" {
		t.Fatal("Compute mutated its inputs")
	}
	if got := ids(first); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("expected [1], got %v", got)
	}
}

func TestTagFilterIsConjunctive(t *testing.T) {
	got := ids(Compute(fixtures(), "", []string{"interior", "usor"}, "", false, nil))
	want := []int{1, 3, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = ids(Compute(fixtures(), "", []string{"interior", "usor", "umbra"}, "", false, nil))
	if !reflect.DeepEqual(got, []int{3}) {
		t.Fatalf("superset record must be the only match, got %v", got)
	}
}

func TestPetSafetyOverridesFilters(t *testing.T) {
	got := ids(Compute(fixtures(), "am 2 pisici", []string{"usor"}, catalog.SortGrowthDesc, false, nil))
	want := []int{4, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected non-toxic records sorted by growth desc %v, got %v", want, got)
	}
	for _, r := range Compute(fixtures(), "Am 2 PISICI", []string{"exterior"}, catalog.SortNameAsc, false, nil) {
		if r.Toxicity != catalog.NonToxic {
			t.Fatalf("toxic record %d leaked through pet-safety filter", r.ID)
		}
	}
}

func TestPetKeywordsConfigurable(t *testing.T) {
	p := Pipeline{PetKeywords: []string{"hamster"}}
	if got := ids(p.Compute(fixtures(), "am 2 pisici", nil, "", false, nil)); len(got) != 0 {
		t.Fatalf("default keyword used despite override: %v", got)
	}
	if got := ids(p.Compute(fixtures(), "hamster", nil, "", false, nil)); !reflect.DeepEqual(got, []int{2, 4}) {
		t.Fatalf("expected non-toxic records, got %v", got)
	}
}

func TestSortKeys(t *testing.T) {
	tests := []struct {
		key  catalog.SortKey
		want []int
	}{
		{catalog.SortNameAsc, []int{5, 2, 1, 4, 3}},
		{catalog.SortNameDesc, []int{3, 4, 1, 2, 5}},
		{catalog.SortToxicityAsc, []int{2, 4, 1, 5, 3}},
		{catalog.SortToxicityDesc, []int{3, 1, 5, 2, 4}},
		{catalog.SortDifficultyAsc, []int{3, 4, 5, 1, 2}},
		{catalog.SortDifficultyDesc, []int{2, 1, 3, 4, 5}},
		{catalog.SortGrowthAsc, []int{2, 3, 5, 1, 4}},
		{catalog.SortGrowthDesc, []int{4, 1, 2, 3, 5}},
		{catalog.SortAirAsc, []int{4, 2, 3, 1, 5}},
		{catalog.SortAirDesc, []int{1, 5, 2, 3, 4}},
		{"unknown", []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := ids(Compute(fixtures(), "", nil, tt.key, false, nil))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sort %s: expected %v, got %v", tt.key, tt.want, got)
			}
		})
	}
}

func TestFavoritesIntersectionKeepsSortOrder(t *testing.T) {
	got := ids(Compute(fixtures(), "", nil, catalog.SortNameDesc, true, []int{5, 1, 3, 42}))
	want := []int{3, 1, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := Compute(fixtures(), "", nil, "", true, nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}

func TestNoMatchIsEmptyNotNil(t *testing.T) {
	got := Compute(fixtures(), "cactus gigant", nil, "", false, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}

func TestMemoSkipsRecomputationForIdenticalInput(t *testing.T) {
	calls := 0
	memo := NewMemo(func(records []catalog.Record, query string, tags []string, key catalog.SortKey, only bool, favs []int) []catalog.Record {
		calls++
		return Compute(records, query, tags, key, only, favs)
	})

	in := Input{Records: fixtures(), RecordsRev: 1, Query: "ficus", TagsRev: 1, SortKey: catalog.SortNameAsc}
	first := memo.Visible(in)
	second := memo.Visible(in)
	if calls != 1 {
		t.Fatalf("expected one computation, got %d", calls)
	}
	if len(first) == 0 || &first[0] != &second[0] {
		t.Fatal("cache hit must return the cached result")
	}

	in.Query = "aloe"
	memo.Visible(in)
	in.FavoritesRev = 2
	memo.Visible(in)
	in.FavoritesRev = 2
	memo.Visible(in)
	if calls != 3 {
		t.Fatalf("expected 3 computations after two changes, got %d", calls)
	}

	memo.Reset()
	memo.Visible(in)
	if calls != 4 {
		t.Fatalf("reset should force recomputation, got %d", calls)
	}
}

func TestSuggest(t *testing.T) {
	got := Suggest(fixtures(), "Fcus", 2)
	if len(got) == 0 || got[0] != "Ficus lyrata" {
		t.Fatalf("expected Ficus lyrata first, got %v", got)
	}
	if Suggest(fixtures(), "   ", 3) != nil {
		t.Fatal("blank query must not suggest")
	}
}
