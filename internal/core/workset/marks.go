package workset

import (
	"fmt"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/core/eventbus"
	"github.com/colonyops/mtqa/internal/core/offsets"
)

// Mark resolves selection against the sentence's machine translation and
// inserts a span for it. Returns the stored span and whether it was new.
// A selection that cannot be located leaves the record untouched.
func (s *Session) Mark(id int64, selection string, errType annotation.ErrorType, comment string) (annotation.Span, bool, error) {
	sentence, ok := s.Sentence(id)
	if !ok {
		return annotation.Span{}, false, fmt.Errorf("sentence %d: %w", id, ErrNotOpen)
	}

	rng, err := offsets.Resolve(sentence.MachineTranslation, selection)
	if err != nil {
		return annotation.Span{}, false, err
	}

	return s.MarkRange(id, rng.Start, rng.End, errType, comment)
}

// MarkRange inserts a span over [start, end) of the machine translation.
func (s *Session) MarkRange(id int64, start, end int, errType annotation.ErrorType, comment string) (annotation.Span, bool, error) {
	sentence, ok := s.Sentence(id)
	if !ok {
		return annotation.Span{}, false, fmt.Errorf("sentence %d: %w", id, ErrNotOpen)
	}

	span, err := annotation.NewSpan(sentence.MachineTranslation, start, end, errType, comment)
	if err != nil {
		return annotation.Span{}, false, err
	}

	var (
		stored   annotation.Span
		inserted bool
	)
	err = s.Update(id, func(r *annotation.Record) error {
		stored, inserted = r.Insert(span)
		return nil
	})
	if err != nil {
		return annotation.Span{}, false, err
	}

	if inserted && s.bus != nil {
		s.bus.PublishSpanAdded(eventbus.SpanAddedPayload{SentenceID: id, Span: stored})
	}
	return stored, inserted, nil
}

// Unmark removes a span by ID. Unknown span IDs are a no-op.
func (s *Session) Unmark(id int64, spanID string) (bool, error) {
	var removed bool
	err := s.Update(id, func(r *annotation.Record) error {
		removed = r.Remove(spanID)
		return nil
	})
	if err != nil {
		return false, err
	}

	if removed && s.bus != nil {
		s.bus.PublishSpanRemoved(eventbus.SpanRemovedPayload{SentenceID: id, SpanID: spanID})
	}
	return removed, nil
}
