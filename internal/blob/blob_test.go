package blob

import (
	"errors"
	"strings"
	"testing"

	"herbar/client/internal/faq"
)

func TestDecodeFAQ(t *testing.T) {
	content, err := decodeFAQ(strings.NewReader(`{"title":"Intrebari","entries":[{"question":"Cat ud?","answer":"Saptamanal."}]}`))
	if err != nil {
		t.Fatalf("decodeFAQ failed: %v", err)
	}
	if content.Title != "Intrebari" || len(content.Entries) != 1 {
		t.Fatalf("unexpected content %+v", content)
	}
}

func TestDecodeFAQRejectsEmpty(t *testing.T) {
	_, err := decodeFAQ(strings.NewReader(`{"title":"Gol","entries":[]}`))
	if !errors.Is(err, faq.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if _, err := decodeFAQ(strings.NewReader(`not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewFAQStoreDoesNotDial(t *testing.T) {
	s, err := NewFAQStore(Options{Endpoint: "localhost:9000", Bucket: "herbar", Object: "faq.json"})
	if err != nil {
		t.Fatalf("NewFAQStore failed: %v", err)
	}
	if s.bucket != "herbar" || s.object != "faq.json" {
		t.Fatalf("unexpected store %+v", s)
	}
}
