// Package annotation holds the per-sentence judgment model: sentences,
// annotated spans, scores and the record that owns them.
package annotation

import (
	"slices"
	"time"
)

// Sentence is a source sentence and its machine translation. Offsets on
// spans always refer to MachineTranslation.
type Sentence struct {
	ID                   int64
	SourceText           string
	MachineTranslation   string
	ReferenceTranslation string
	SourceLanguage       string
	TargetLanguage       string
	Domain               string
	CreatedAt            time.Time
	Active               bool
}

// Status tracks where a record sits in the submission flow.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusBlocked         Status = "blocked"
	StatusAwaitingConfirm Status = "awaiting_confirmation"
	StatusSubmitting      Status = "submitting"
	StatusSubmitted       Status = "submitted"
)

// Scores holds the optional 1-5 quality ratings.
type Scores struct {
	Fluency  *int
	Adequacy *int
	Overall  *int
}

// Empty reports whether no score has been set.
func (s Scores) Empty() bool {
	return s.Fluency == nil && s.Adequacy == nil && s.Overall == nil
}

// Score returns a pointer to v for use in Scores literals.
func Score(v int) *int {
	return &v
}

// Voice references a locally recorded voice note attached to a record.
type Voice struct {
	Path        string
	ContentType string
	Duration    time.Duration
}

// Record is the full judgment for one sentence under review. A record
// exclusively owns its spans.
type Record struct {
	SentenceID  int64
	PersistedID string // non-empty when loaded from an existing annotation
	Scores      Scores
	Comments    string
	FinalForm   string
	Voice       *Voice        // local recording awaiting upload
	VoiceURL    string        // uploaded recording, when loaded from the store
	Elapsed     time.Duration // accumulated before StartedAt
	StartedAt   time.Time
	Spans       []Span
	Status      Status
}

// NewRecord returns a draft record for the given sentence.
func NewRecord(sentenceID int64, startedAt time.Time) *Record {
	return &Record{
		SentenceID: sentenceID,
		StartedAt:  startedAt,
		Status:     StatusDraft,
	}
}

// ElapsedAt returns the total time spent on the record as of now.
func (r *Record) ElapsedAt(now time.Time) time.Duration {
	total := r.Elapsed
	if !r.StartedAt.IsZero() && now.After(r.StartedAt) {
		total += now.Sub(r.StartedAt)
	}
	return total
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.Spans = slices.Clone(r.Spans)
	c.Scores = Scores{
		Fluency:  cloneInt(r.Scores.Fluency),
		Adequacy: cloneInt(r.Scores.Adequacy),
		Overall:  cloneInt(r.Scores.Overall),
	}
	if r.Voice != nil {
		v := *r.Voice
		c.Voice = &v
	}
	return &c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
