package urlstate

import (
	"reflect"
	"testing"
	"time"

	"herbar/client/internal/catalog"
	"herbar/client/internal/faq"
	"herbar/client/internal/state"
)

const base = "https://herbar.test/catalog"

func TestRoundTrip(t *testing.T) {
	href := Encode(base, Params{Query: "ficus", Sort: "za", Tags: []string{"interior", "usor"}})
	p := Decode(href)

	if p.Query == nil || *p.Query != "ficus" {
		t.Fatalf("query lost in %s", href)
	}
	if p.Sort == nil || *p.Sort != "za" {
		t.Fatalf("sort lost in %s", href)
	}
	if !reflect.DeepEqual(p.Tags, []string{"interior", "usor"}) {
		t.Fatalf("tags lost in %s: %v", href, p.Tags)
	}
	if p.PendingModal != nil || p.PendingFAQ {
		t.Fatal("unexpected hash instruction")
	}
}

func TestDefaultSortOmitted(t *testing.T) {
	href := Encode(base, Params{Sort: string(catalog.DefaultSort)})
	if href != base {
		t.Fatalf("expected bare base, got %s", href)
	}
	if Decode(href).Sort != nil {
		t.Fatal("sort should be absent")
	}
}

func TestDecodeUnrecognisedIsEmpty(t *testing.T) {
	for _, raw := range []string{
		"https://herbar.test/?utm_source=mail",
		"https://herbar.test/#plant-abc",
		"https://herbar.test/#plant-0",
		"https://herbar.test/#plant--3",
		"https://herbar.test/?tag=,,",
		"%%%",
		"",
	} {
		if p := Decode(raw); !p.Empty() {
			t.Errorf("Decode(%q) = %+v, want empty", raw, p)
		}
	}
}

func TestHashFragments(t *testing.T) {
	href := Encode(base, Params{ModalID: 12, FAQOpen: true})
	if href != base+"#plant-12" {
		t.Fatalf("modal must win over faq, got %s", href)
	}
	p := Decode(href)
	if p.PendingModal == nil || *p.PendingModal != 12 {
		t.Fatalf("pending modal lost: %+v", p)
	}

	href = Encode(base, Params{FAQOpen: true})
	if !Decode(href).PendingFAQ {
		t.Fatalf("faq lost in %s", href)
	}

	if href := Encode(base+"#plant-3", Params{}); href != base {
		t.Fatalf("stale fragment kept: %s", href)
	}
}

func TestEncodeKeepsForeignParams(t *testing.T) {
	href := Encode(base+"?utm_source=mail&search=old", Params{Query: "aloe"})
	want := base + "?search=aloe&utm_source=mail"
	if href != want {
		t.Fatalf("expected %s, got %s", want, href)
	}
}

func TestFromState(t *testing.T) {
	cs := catalog.Initial()
	cs.Query = "aloe"
	cs.ActiveTags = []string{"usor"}
	cs.Modal = &catalog.ModalContext{Current: catalog.Record{ID: 5}}
	st := state.State{catalog.SliceName: cs, faq.SliceName: faq.State{Open: true}}

	p := FromState(st)
	if p.Query != "aloe" || p.ModalID != 5 || !p.FAQOpen || p.Sort != string(catalog.DefaultSort) {
		t.Fatalf("unexpected params %+v", p)
	}
}

func TestWriterCoalescesAndSkipsIdentical(t *testing.T) {
	loc := NewMemoryLocation(base)
	w := NewWriter(loc, 20*time.Millisecond, nil)
	defer w.Close()

	for _, q := range []string{"f", "fi", "fic", "ficus"} {
		w.ScheduleParams(Params{Query: q})
	}
	deadline := time.Now().Add(time.Second)
	for w.Writes() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("writer never wrote")
		}
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(40 * time.Millisecond)

	history := loc.History()
	if len(history) != 1 || history[0] != base+"?search=ficus" {
		t.Fatalf("expected single coalesced write, got %v", history)
	}

	w.ScheduleParams(Params{Query: "ficus"})
	w.Flush()
	if len(loc.History()) != 1 {
		t.Fatal("identical URL created a history entry")
	}
}

func TestWriterCloseFlushes(t *testing.T) {
	loc := NewMemoryLocation(base)
	w := NewWriter(loc, time.Hour, nil)
	w.ScheduleParams(Params{Tags: []string{"umbra"}})
	w.Close()
	if got := loc.Href(); got != base+"?tag=umbra" {
		t.Fatalf("pending write lost on close, href=%s", got)
	}
}
