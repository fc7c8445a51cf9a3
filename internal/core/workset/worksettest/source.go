// Package worksettest provides an in-memory sentence source for tests.
package worksettest

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/colonyops/mtqa/internal/core/annotation"
)

// Source is an in-memory annotation.SentenceSource.
type Source struct {
	mu        sync.Mutex
	sentences map[int64]annotation.Sentence
	existing  map[int64]*annotation.Record

	// Err, when set, is returned from every fetch.
	Err error
}

// NewSource returns a source holding the given sentences.
func NewSource(sentences ...annotation.Sentence) *Source {
	s := &Source{
		sentences: make(map[int64]annotation.Sentence),
		existing:  make(map[int64]*annotation.Record),
	}
	for _, sentence := range sentences {
		s.sentences[sentence.ID] = sentence
	}
	return s
}

// Sentence builds an active sentence with the given machine translation.
func Sentence(id int64, mt string) annotation.Sentence {
	return annotation.Sentence{
		ID:                 id,
		SourceText:         "source",
		MachineTranslation: mt,
		SourceLanguage:     "en",
		TargetLanguage:     "tl",
		Active:             true,
	}
}

// SetExisting registers a previously persisted record for a sentence.
func (s *Source) SetExisting(r *annotation.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existing[r.SentenceID] = r.Clone()
}

func (s *Source) FetchSentence(_ context.Context, id int64) (annotation.Sentence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return annotation.Sentence{}, s.Err
	}
	sentence, ok := s.sentences[id]
	if !ok {
		return annotation.Sentence{}, annotation.ErrSentenceNotFound
	}
	return sentence, nil
}

func (s *Source) FetchUnannotated(_ context.Context, offset, limit int) ([]annotation.Sentence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var out []annotation.Sentence
	for id, sentence := range s.sentences {
		if _, done := s.existing[id]; done || !sentence.Active {
			continue
		}
		out = append(out, sentence)
	}
	slices.SortFunc(out, func(a, b annotation.Sentence) int { return cmp.Compare(a.ID, b.ID) })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Source) FetchExistingAnnotation(_ context.Context, id int64) (*annotation.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.existing[id]
	if !ok {
		return nil, nil
	}
	return r.Clone(), nil
}
