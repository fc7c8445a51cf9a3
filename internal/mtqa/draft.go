package mtqa

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/core/submit"
)

// ErrEmptyMark is returned for a mark with neither a selection nor a range.
var ErrEmptyMark = errors.New("mark needs a selection or a start/end range")

// DraftFile is the non-interactive submission format.
//
//	{"drafts": [{
//	  "sentence_id": 7,
//	  "scores": {"fluency": 4, "overall": 3},
//	  "final_form": "The cat sat on the mat.",
//	  "marks": [{"selection": "cat", "error_type": "MI_SE", "comment": "wrong animal"}]
//	}]}
type DraftFile struct {
	Drafts []Draft `json:"drafts"`
}

// Draft is a complete judgment for one sentence.
type Draft struct {
	SentenceID int64       `json:"sentence_id"`
	Scores     DraftScores `json:"scores"`
	FinalForm  string      `json:"final_form"`
	Comments   string      `json:"comments"`
	Voice      *DraftVoice `json:"voice,omitempty"`
	Marks      []DraftMark `json:"marks"`
}

// DraftScores holds the optional 1-5 ratings.
type DraftScores struct {
	Fluency  *int `json:"fluency,omitempty"`
	Adequacy *int `json:"adequacy,omitempty"`
	Overall  *int `json:"overall,omitempty"`
}

// DraftVoice references a local recording.
type DraftVoice struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// DraftMark marks either the first occurrence of Selection or the explicit
// rune range [Start, End).
type DraftMark struct {
	Selection string               `json:"selection,omitempty"`
	Start     *int                 `json:"start,omitempty"`
	End       *int                 `json:"end,omitempty"`
	ErrorType annotation.ErrorType `json:"error_type"`
	Comment   string               `json:"comment"`
}

// MarkResult reports what happened to one mark of a draft.
type MarkResult struct {
	Selection string `json:"selection,omitempty"`
	SpanID    string `json:"span_id,omitempty"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DraftResult is the outcome of applying and submitting one draft.
type DraftResult struct {
	SentenceID  int64                `json:"sentence_id"`
	Status      annotation.Status    `json:"status"`
	PersistedID string               `json:"persisted_id,omitempty"`
	Updated     bool                 `json:"updated,omitempty"`
	Marks       []MarkResult         `json:"marks"`
	Errors      []annotation.Message `json:"errors,omitempty"`
	Warnings    []annotation.Message `json:"warnings,omitempty"`
	Voice       string               `json:"voice_url,omitempty"`
	Failure     string               `json:"failure,omitempty"`
}

// Apply opens the draft's sentence in s and applies scores, text fields,
// voice and marks. A mark whose selection cannot be found is reported in
// its MarkResult and does not stop the others.
func (s *Session) Apply(ctx context.Context, d Draft) ([]MarkResult, error) {
	if _, err := s.Open(ctx, d.SentenceID); err != nil {
		return nil, err
	}

	err := s.Update(d.SentenceID, func(r *annotation.Record) error {
		if d.Scores.Fluency != nil {
			r.Scores.Fluency = d.Scores.Fluency
		}
		if d.Scores.Adequacy != nil {
			r.Scores.Adequacy = d.Scores.Adequacy
		}
		if d.Scores.Overall != nil {
			r.Scores.Overall = d.Scores.Overall
		}
		if d.FinalForm != "" {
			r.FinalForm = d.FinalForm
		}
		if d.Comments != "" {
			r.Comments = d.Comments
		}
		if d.Voice != nil && d.Voice.Path != "" {
			r.Voice = &annotation.Voice{
				Path:     d.Voice.Path,
				Duration: time.Duration(d.Voice.DurationSeconds * float64(time.Second)),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]MarkResult, 0, len(d.Marks))
	for _, m := range d.Marks {
		results = append(results, s.applyMark(d.SentenceID, m))
	}
	return results, nil
}

func (s *Session) applyMark(id int64, m DraftMark) MarkResult {
	res := MarkResult{Selection: m.Selection}

	errType := m.ErrorType
	if errType == 0 {
		errType = s.DefaultErrorType
	}

	var (
		span     annotation.Span
		inserted bool
		err      error
	)
	switch {
	case m.Start != nil && m.End != nil:
		span, inserted, err = s.MarkRange(id, *m.Start, *m.End, errType, m.Comment)
	case strings.TrimSpace(m.Selection) != "":
		span, inserted, err = s.Mark(id, m.Selection, errType, m.Comment)
	default:
		err = ErrEmptyMark
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.SpanID = span.ID
	res.Start = span.Start
	res.End = span.End
	res.Duplicate = !inserted
	return res
}

// SubmitDraft applies d and runs it through the coordinator. Warnings are
// confirmed when confirmWarnings is set and cancelled otherwise, leaving
// the record as a draft.
func (s *Session) SubmitDraft(ctx context.Context, d Draft, confirmWarnings bool) (DraftResult, error) {
	res := DraftResult{SentenceID: d.SentenceID}

	marks, err := s.Apply(ctx, d)
	if err != nil {
		return res, err
	}
	res.Marks = marks

	out, err := s.Submit.Request(ctx, d.SentenceID)
	res.Warnings = out.Warnings
	if err == nil && out.NeedsConfirm() {
		if !confirmWarnings {
			res.Status = out.Status
			return res, s.Submit.Cancel(d.SentenceID)
		}
		out, err = s.Submit.Confirm(ctx, d.SentenceID)
	}

	var blocked *submit.BlockedError
	switch {
	case errors.As(err, &blocked):
		res.Status = annotation.StatusBlocked
		res.Errors = blocked.Errors
		return res, nil
	case err != nil:
		res.Status = annotation.StatusDraft
		res.Failure = err.Error()
		return res, err
	}

	res.Status = out.Status
	res.PersistedID = string(out.PersistedID)
	res.Updated = out.Updated
	if out.Attachment != nil {
		res.Voice = out.Attachment.URL
	}
	return res, nil
}

// SubmitDrafts submits every draft in order. Submission failures are
// recorded per draft; only errors that prevent applying a draft abort the
// run.
func (s *Session) SubmitDrafts(ctx context.Context, f DraftFile, confirmWarnings bool) ([]DraftResult, error) {
	results := make([]DraftResult, 0, len(f.Drafts))
	for _, d := range f.Drafts {
		res, err := s.SubmitDraft(ctx, d, confirmWarnings)
		if err != nil && !errors.Is(err, submit.ErrSubmissionFailed) {
			return results, fmt.Errorf("sentence %d: %w", d.SentenceID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// VoiceFromPath builds a voice reference for an interactive session.
func VoiceFromPath(path string, duration time.Duration) *annotation.Voice {
	return &annotation.Voice{
		Path:     filepath.Clean(path),
		Duration: duration,
	}
}
