package annotation

import (
	"context"
	"io"
	"time"
)

// TextTypeMachine is the only text type ever annotated.
const TextTypeMachine = "machine"

// StatusCompleted is the persisted status of a submitted annotation.
const StatusCompleted = "completed"

// PersistedID identifies an annotation in the persistence sink.
type PersistedID string

// Highlight is a span in its persisted shape.
type Highlight struct {
	HighlightedText string    `json:"highlighted_text"`
	StartIndex      int       `json:"start_index"`
	EndIndex        int       `json:"end_index"`
	TextType        string    `json:"text_type"`
	ErrorType       ErrorType `json:"error_type"`
	Comment         string    `json:"comment"`
}

// Submission is a fully validated record handed to the persistence sink.
type Submission struct {
	SentenceID       int64       `json:"sentence_id"`
	FluencyScore     *int        `json:"fluency_score,omitempty"`
	AdequacyScore    *int        `json:"adequacy_score,omitempty"`
	OverallQuality   *int        `json:"overall_quality,omitempty"`
	Comments         string      `json:"comments"`
	FinalForm        string      `json:"final_form"`
	TimeSpentSeconds int         `json:"time_spent_seconds"`
	Status           string      `json:"annotation_status"`
	Highlights       []Highlight `json:"highlights"`
}

// NewSubmission maps a record snapshot to its persisted shape.
func NewSubmission(r *Record, elapsed time.Duration) Submission {
	highlights := make([]Highlight, 0, len(r.Spans))
	for _, s := range r.Spans {
		highlights = append(highlights, Highlight{
			HighlightedText: s.Text,
			StartIndex:      s.Start,
			EndIndex:        s.End,
			TextType:        TextTypeMachine,
			ErrorType:       s.ErrorType,
			Comment:         s.Comment,
		})
	}

	return Submission{
		SentenceID:       r.SentenceID,
		FluencyScore:     r.Scores.Fluency,
		AdequacyScore:    r.Scores.Adequacy,
		OverallQuality:   r.Scores.Overall,
		Comments:         r.Comments,
		FinalForm:        r.FinalForm,
		TimeSpentSeconds: int(elapsed / time.Second),
		Status:           StatusCompleted,
		Highlights:       highlights,
	}
}

// SentenceSource supplies sentences and any prior judgment on them.
type SentenceSource interface {
	// FetchSentence returns ErrSentenceNotFound if the id is unknown.
	FetchSentence(ctx context.Context, id int64) (Sentence, error)

	// FetchUnannotated returns active sentences without an annotation,
	// ordered by id.
	FetchUnannotated(ctx context.Context, offset, limit int) ([]Sentence, error)

	// FetchExistingAnnotation returns the persisted record for a sentence,
	// or nil when the sentence has not been annotated.
	FetchExistingAnnotation(ctx context.Context, sentenceID int64) (*Record, error)
}

// Sink persists submitted annotations.
type Sink interface {
	CreateAnnotation(ctx context.Context, sub Submission) (PersistedID, error)
	UpdateAnnotation(ctx context.Context, id PersistedID, sub Submission) (PersistedID, error)
}

// Attachment is a voice recording ready for upload.
type Attachment struct {
	Body        io.Reader
	ContentType string
	Extension   string
	Duration    time.Duration
}

// Ack confirms an attachment upload.
type Ack struct {
	URL      string
	Duration time.Duration
}

// AttachmentSink stores voice recordings for persisted annotations. It is
// best-effort: callers never roll back a submission on failure.
type AttachmentSink interface {
	UploadVoice(ctx context.Context, att Attachment, id PersistedID) (Ack, error)
}
