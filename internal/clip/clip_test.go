package clip

import (
	"errors"
	"testing"
)

type failing struct{}

func (failing) WriteAll(string) error { return errors.New("xclip missing") }

func TestFallbackUsesSecondary(t *testing.T) {
	mem := &Memory{}
	f := Fallback{Primary: failing{}, Secondary: mem}
	if err := f.WriteAll("https://herbar.test/#plant-3"); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}
	if mem.Text() != "https://herbar.test/#plant-3" {
		t.Fatalf("secondary holds %q", mem.Text())
	}
}

func TestFallbackWithoutSecondary(t *testing.T) {
	if err := (Fallback{Primary: failing{}}).WriteAll("x"); err == nil {
		t.Fatal("expected error")
	}
}
