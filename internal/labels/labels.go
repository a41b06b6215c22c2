// Package labels holds the closed set of allowed classification labels for a
// job. The set is validated once at construction and immutable afterwards;
// the schema emitted to the provider is the only other place the closed-set
// constraint is expressed.
package labels

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySet is returned when constructing a set with no labels.
var ErrEmptySet = errors.New("label set must contain at least one label")

// DuplicateError indicates the same label appeared twice in the input.
type DuplicateError struct {
	Label string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate label %q in label set", e.Label)
}

// Set is an ordered set of unique, non-empty label strings.
type Set struct {
	values []string
}

// New validates the given labels and returns an immutable Set.
// Labels are kept in input order. Comparison is case-sensitive.
func New(values []string) (Set, error) {
	if len(values) == 0 {
		return Set{}, ErrEmptySet
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return Set{}, errors.New("label set contains an empty label")
		}
		if _, ok := seen[v]; ok {
			return Set{}, &DuplicateError{Label: v}
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return Set{values: out}, nil
}

// Values returns a copy of the labels in original order.
func (s Set) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// Len returns the number of labels in the set.
func (s Set) Len() int {
	return len(s.values)
}

// Contains reports whether the set includes the given label.
func (s Set) Contains(label string) bool {
	for _, v := range s.values {
		if v == label {
			return true
		}
	}
	return false
}

// Join returns the labels joined with the given separator, for prompt text.
func (s Set) Join(sep string) string {
	return strings.Join(s.values, sep)
}
