package annotation

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/colonyops/mtqa/pkg/randid"
)

const spanIDLength = 8

// Span marks an erroneous range of the machine translation. Start and End
// are rune offsets, End exclusive. Spans are never mutated in place.
type Span struct {
	ID        string
	Start     int
	End       int
	Text      string // MachineTranslation[Start:End] at creation time
	ErrorType ErrorType
	Comment   string
}

// NewSpan builds a span over text[start:end] after checking bounds, the
// error type and the comment.
func NewSpan(text string, start, end int, errType ErrorType, comment string) (Span, error) {
	n := utf8.RuneCountInString(text)
	if start < 0 || start >= end || end > n {
		return Span{}, fmt.Errorf("%w: [%d,%d) in text of length %d", ErrSpanOutOfBounds, start, end, n)
	}
	if !errType.Valid() {
		return Span{}, fmt.Errorf("%w: %d", ErrUnknownErrorType, int(errType))
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return Span{}, ErrEmptyComment
	}

	return Span{
		Start:     start,
		End:       end,
		Text:      string([]rune(text)[start:end]),
		ErrorType: errType,
		Comment:   comment,
	}, nil
}

// InBounds reports whether the span fits a text of n runes.
func (s Span) InBounds(n int) bool {
	return s.Start >= 0 && s.Start < s.End && s.End <= n
}

func (s Span) sameMark(o Span) bool {
	return s.Start == o.Start &&
		s.End == o.End &&
		s.ErrorType == o.ErrorType &&
		s.Comment == o.Comment
}

// Insert appends span unless an identical mark (same range, error type and
// comment) already exists. A missing ID is generated. Returns the stored
// span and whether it was appended.
func (r *Record) Insert(span Span) (Span, bool) {
	for _, existing := range r.Spans {
		if existing.sameMark(span) {
			return existing, false
		}
	}

	if span.ID == "" {
		span.ID = r.newSpanID()
	}

	r.Spans = append(r.Spans, span)
	return span, true
}

// Remove deletes the span with the given ID. Removing an unknown ID is a
// no-op.
func (r *Record) Remove(id string) bool {
	i := slices.IndexFunc(r.Spans, func(s Span) bool { return s.ID == id })
	if i < 0 {
		return false
	}
	r.Spans = slices.Delete(r.Spans, i, i+1)
	return true
}

// List returns the spans in insertion order.
func (r *Record) List() []Span {
	return slices.Clone(r.Spans)
}

func (r *Record) newSpanID() string {
	for {
		id := randid.Generate(spanIDLength)
		if !slices.ContainsFunc(r.Spans, func(s Span) bool { return s.ID == id }) {
			return id
		}
	}
}
