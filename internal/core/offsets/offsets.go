// Package offsets resolves a user's raw text selection back to rune offsets
// in the canonical sentence string.
//
// Resolution first looks for the selection verbatim. When that fails, both
// strings are compared with every whitespace run collapsed to one space and
// the match is projected back onto the canonical string, so selections
// that picked up extra or missing whitespace from rendering still resolve.
package offsets

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrNoMatch is returned when the selection cannot be found in the text,
	// even after whitespace normalization.
	ErrNoMatch = errors.New("selection not found in text")
	// ErrEmptySelection is returned for an empty selection.
	ErrEmptySelection = errors.New("selection is empty")
)

// Range is a half-open [Start, End) rune range.
type Range struct {
	Start int
	End   int
}

// Len returns the number of runes covered.
func (r Range) Len() int {
	return r.End - r.Start
}

// Slice returns text[Start:End] in rune space. Out-of-range bounds are
// clamped.
func (r Range) Slice(text string) string {
	runes := []rune(text)
	start := max(0, min(r.Start, len(runes)))
	end := max(start, min(r.End, len(runes)))
	return string(runes[start:end])
}

// Resolve maps selection onto text. The first exact occurrence wins; the
// whitespace-insensitive fallback re-projects both endpoints, so
// Normalize(r.Slice(text)) == Normalize(selection) always holds on success.
func Resolve(text, selection string) (Range, error) {
	if selection == "" {
		return Range{}, ErrEmptySelection
	}

	if i := strings.Index(text, selection); i >= 0 {
		start := utf8.RuneCountInString(text[:i])
		return Range{Start: start, End: start + utf8.RuneCountInString(selection)}, nil
	}

	normText, origin := project(text)
	normSel := Normalize(selection)

	i := strings.Index(normText, normSel)
	if i < 0 {
		return Range{}, ErrNoMatch
	}

	first := utf8.RuneCountInString(normText[:i])
	last := first + utf8.RuneCountInString(normSel) - 1

	return Range{Start: origin[first], End: origin[last] + 1}, nil
}

// Normalize collapses every run of Unicode whitespace to a single space.
func Normalize(s string) string {
	norm, _ := project(s)
	return norm
}

// project returns the normalized form of s and, for each rune of the
// normalized form, the index of the rune in s it came from. A collapsed
// whitespace run maps to its first rune.
func project(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	origin := make([]int, 0, len(s))

	inSpace := false
	i := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				origin = append(origin, i)
			}
			inSpace = true
		} else {
			b.WriteRune(r)
			origin = append(origin, i)
			inSpace = false
		}
		i++
	}

	return b.String(), origin
}
