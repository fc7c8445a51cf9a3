// Package render turns a sentence and its possibly overlapping spans into
// disjoint, ordered display segments.
package render

import (
	"slices"

	"github.com/colonyops/mtqa/internal/core/annotation"
)

// Kind distinguishes plain text from highlighted text.
type Kind int

const (
	Plain Kind = iota
	Highlighted
)

// Segment is a contiguous piece of the rendered sentence. Start and End are
// rune offsets into the canonical text. Span is set for Highlighted
// segments only and refers to the span that claimed the range.
type Segment struct {
	Kind  Kind
	Text  string
	Start int
	End   int
	Span  *annotation.Span
}

// Render splits text into segments covering [0, n) exactly once.
//
// Spans outside the text are dropped. The rest are swept in order of
// (Start, End): a span overlapping an earlier highlight is truncated to
// begin where that highlight ended, and one fully covered by it is
// skipped. Earlier highlights are never widened or merged.
func Render(text string, spans []annotation.Span) []Segment {
	runes := []rune(text)
	n := len(runes)

	valid := make([]annotation.Span, 0, len(spans))
	for _, s := range spans {
		if s.InBounds(n) {
			valid = append(valid, s)
		}
	}

	slices.SortStableFunc(valid, func(a, b annotation.Span) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})

	segments := make([]Segment, 0, 2*len(valid)+1)
	cursor := 0

	for i := range valid {
		span := &valid[i]
		start := max(span.Start, cursor)
		if start >= span.End {
			continue
		}

		if start > cursor {
			segments = append(segments, plain(runes, cursor, start))
		}

		segments = append(segments, Segment{
			Kind:  Highlighted,
			Text:  string(runes[start:span.End]),
			Start: start,
			End:   span.End,
			Span:  span,
		})
		cursor = span.End
	}

	if cursor < n {
		segments = append(segments, plain(runes, cursor, n))
	}

	return segments
}

func plain(runes []rune, start, end int) Segment {
	return Segment{
		Kind:  Plain,
		Text:  string(runes[start:end]),
		Start: start,
		End:   end,
	}
}

// Text concatenates the segments' text.
func Text(segments []Segment) string {
	size := 0
	for _, s := range segments {
		size += len(s.Text)
	}

	b := make([]byte, 0, size)
	for _, s := range segments {
		b = append(b, s.Text...)
	}
	return string(b)
}
