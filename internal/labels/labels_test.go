package labels

import (
	"errors"
	"testing"
)

func TestNewPreservesOrder(t *testing.T) {
	s, err := New([]string{"joy", "anger", "fear"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := s.Values()
	want := []string{"joy", "anger", "fear"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("label order changed: got %v, want %v", got, want)
		}
	}
}

func TestNewRejectsEmptySet(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmptySet) {
		t.Fatalf("expected ErrEmptySet, got %v", err)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]string{"joy", "joy"})
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Label != "joy" {
		t.Fatalf("unexpected duplicate label: %q", dup.Label)
	}
}

func TestNewIsCaseSensitive(t *testing.T) {
	if _, err := New([]string{"Joy", "joy"}); err != nil {
		t.Fatalf("case-differing labels are distinct, got error: %v", err)
	}
}

func TestNewRejectsWhitespaceLabel(t *testing.T) {
	if _, err := New([]string{"joy", "  "}); err == nil {
		t.Fatal("expected whitespace-only label to be rejected")
	}
}

func TestContains(t *testing.T) {
	s, _ := New([]string{"joy", "anger"})
	if !s.Contains("anger") {
		t.Fatal("expected Contains(anger) = true")
	}
	if s.Contains("fear") {
		t.Fatal("expected Contains(fear) = false")
	}
}
