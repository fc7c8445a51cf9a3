// Package workset holds the sentences under review in one annotation
// session. A Session is created when the annotator enters the review view
// and discarded with Close; nothing about it is global.
package workset

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/core/eventbus"
	"github.com/colonyops/mtqa/internal/core/logging"
	"github.com/colonyops/mtqa/pkg/kv"
)

var (
	// ErrNotOpen is returned for sentence IDs that are not in the session.
	ErrNotOpen = errors.New("sentence is not open in this session")
	// ErrSubmitting is returned when a record is edited while its
	// submission is in flight.
	ErrSubmitting = errors.New("record is being submitted")
)

type entry struct {
	sentence annotation.Sentence
	record   *annotation.Record
}

// Session is the working set: sentence ID to its draft record.
type Session struct {
	id      string
	src     annotation.SentenceSource
	bus     *eventbus.EventBus
	entries *kv.Store[int64, entry]
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithBus publishes span events on bus.
func WithBus(bus *eventbus.EventBus) Option {
	return func(s *Session) { s.bus = bus }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates an empty session reading sentences from src.
func New(src annotation.SentenceSource, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		src:     src,
		entries: kv.New[int64, entry](),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.Component("workset").With().Str("session_id", s.id).Logger()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Context tags ctx with the session ID for logging.
func (s *Session) Context(ctx context.Context) context.Context {
	return logging.WithSessionID(ctx, s.id)
}

// Open adds a sentence to the session, seeding its record from any
// existing annotation. Opening an already open sentence returns the
// current record unchanged.
func (s *Session) Open(ctx context.Context, id int64) (*annotation.Record, error) {
	if e, ok := s.entries.Get(id); ok {
		return e.record.Clone(), nil
	}

	sentence, err := s.src.FetchSentence(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch sentence %d: %w", id, err)
	}

	existing, err := s.src.FetchExistingAnnotation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch annotation for sentence %d: %w", id, err)
	}

	rec := s.seed(id, existing)
	s.entries.SetIfAbsent(id, entry{sentence: sentence, record: rec})

	s.log.Debug().Int64("sentence_id", id).Bool("existing", existing != nil).Msg("sentence opened")

	e, _ := s.entries.Get(id)
	return e.record.Clone(), nil
}

func (s *Session) seed(id int64, existing *annotation.Record) *annotation.Record {
	if existing == nil {
		return annotation.NewRecord(id, s.now())
	}
	rec := existing.Clone()
	rec.SentenceID = id
	rec.StartedAt = s.now()
	rec.Status = annotation.StatusDraft
	return rec
}

// LoadQueue opens a page of unannotated sentences and returns them in
// source order.
func (s *Session) LoadQueue(ctx context.Context, offset, limit int) ([]annotation.Sentence, error) {
	sentences, err := s.src.FetchUnannotated(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch queue: %w", err)
	}

	for _, sentence := range sentences {
		s.entries.SetIfAbsent(sentence.ID, entry{
			sentence: sentence,
			record:   annotation.NewRecord(sentence.ID, s.now()),
		})
	}

	return sentences, nil
}

// Get returns a copy of the record for id.
func (s *Session) Get(id int64) (*annotation.Record, bool) {
	e, ok := s.entries.Get(id)
	if !ok {
		return nil, false
	}
	return e.record.Clone(), true
}

// Sentence returns the sentence for id.
func (s *Session) Sentence(id int64) (annotation.Sentence, bool) {
	e, ok := s.entries.Get(id)
	return e.sentence, ok
}

// IDs returns the open sentence IDs in ascending order.
func (s *Session) IDs() []int64 {
	ids := s.entries.Keys()
	slices.Sort(ids)
	return ids
}

// Len returns the number of open sentences.
func (s *Session) Len() int { return s.entries.Len() }

// Update applies fn to a copy of the record and stores it when fn
// succeeds. Any edit moves a blocked or awaiting-confirmation record back
// to draft. Records in flight reject edits with ErrSubmitting.
func (s *Session) Update(id int64, fn func(*annotation.Record) error) error {
	var err error
	s.entries.Update(id, func(e entry, ok bool) (entry, bool) {
		if !ok {
			err = ErrNotOpen
			return e, false
		}
		if e.record.Status == annotation.StatusSubmitting {
			err = ErrSubmitting
			return e, true
		}

		next := e.record.Clone()
		if err = fn(next); err != nil {
			return e, true
		}
		if next.Status == annotation.StatusBlocked || next.Status == annotation.StatusAwaitingConfirm {
			next.Status = annotation.StatusDraft
		}
		e.record = next
		return e, true
	})
	if errors.Is(err, ErrNotOpen) {
		return fmt.Errorf("sentence %d: %w", id, err)
	}
	return err
}

// StatusError is returned by Transition when the record is not in one of
// the expected statuses. It unwraps to ErrSubmitting while the record is
// in flight.
type StatusError struct {
	SentenceID int64
	Status     annotation.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sentence %d is %s", e.SentenceID, e.Status)
}

func (e *StatusError) Unwrap() error {
	if e.Status == annotation.StatusSubmitting {
		return ErrSubmitting
	}
	return nil
}

// Transition moves a record to status when its current status is one of
// from, and returns a copy of it. The check and the move happen under one
// lock. It is the only way into and out of StatusSubmitting.
func (s *Session) Transition(id int64, status annotation.Status, from ...annotation.Status) (*annotation.Record, error) {
	var (
		out *annotation.Record
		err error
	)
	s.entries.Update(id, func(e entry, ok bool) (entry, bool) {
		if !ok {
			err = fmt.Errorf("sentence %d: %w", id, ErrNotOpen)
			return e, false
		}
		if !slices.Contains(from, e.record.Status) {
			err = &StatusError{SentenceID: id, Status: e.record.Status}
			return e, true
		}
		next := e.record.Clone()
		next.Status = status
		e.record = next
		out = next.Clone()
		return e, true
	})
	return out, err
}

// Remove drops a sentence from the session. Returns false if it was not
// open.
func (s *Session) Remove(id int64) bool {
	removed := false
	s.entries.Update(id, func(e entry, ok bool) (entry, bool) {
		removed = ok
		return e, false
	})
	return removed
}

// Close discards every open record.
func (s *Session) Close() {
	s.entries.Clear()
	s.log.Debug().Msg("session closed")
}
