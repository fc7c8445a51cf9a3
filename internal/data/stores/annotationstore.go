package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/data/db"
)

// AnnotationStore implements annotation.Sink using SQLite.
type AnnotationStore struct {
	db *db.DB
}

var _ annotation.Sink = (*AnnotationStore)(nil)

// NewAnnotationStore creates a new SQLite-backed annotation store.
func NewAnnotationStore(db *db.DB) *AnnotationStore {
	return &AnnotationStore{db: db}
}

// CreateAnnotation stores a new annotation and its highlights.
func (s *AnnotationStore) CreateAnnotation(ctx context.Context, sub annotation.Submission) (annotation.PersistedID, error) {
	id := uuid.NewString()
	now := time.Now().UnixNano()

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO annotations (
				id, sentence_id, fluency_score, adequacy_score, overall_quality,
				comments, final_form, time_spent_seconds, annotation_status,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id,
			sub.SentenceID,
			intPtrNull(sub.FluencyScore),
			intPtrNull(sub.AdequacyScore),
			intPtrNull(sub.OverallQuality),
			sub.Comments,
			sub.FinalForm,
			sub.TimeSpentSeconds,
			sub.Status,
			now,
			now,
		)
		if err != nil {
			return classifyWriteError(sub.SentenceID, err)
		}
		return insertHighlights(ctx, tx, id, sub.Highlights)
	})
	if err != nil {
		return "", err
	}

	return annotation.PersistedID(id), nil
}

// UpdateAnnotation replaces an existing annotation and its highlights.
func (s *AnnotationStore) UpdateAnnotation(ctx context.Context, id annotation.PersistedID, sub annotation.Submission) (annotation.PersistedID, error) {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE annotations SET
				fluency_score = ?, adequacy_score = ?, overall_quality = ?,
				comments = ?, final_form = ?, time_spent_seconds = ?,
				annotation_status = ?, updated_at = ?
			WHERE id = ? AND sentence_id = ?`,
			intPtrNull(sub.FluencyScore),
			intPtrNull(sub.AdequacyScore),
			intPtrNull(sub.OverallQuality),
			sub.Comments,
			sub.FinalForm,
			sub.TimeSpentSeconds,
			sub.Status,
			time.Now().UnixNano(),
			string(id),
			sub.SentenceID,
		)
		if err != nil {
			return classifyWriteError(sub.SentenceID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("annotation %s: %w", id, annotation.ErrAnnotationNotFound)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM highlights WHERE annotation_id = ?`, string(id)); err != nil {
			return fmt.Errorf("failed to clear highlights: %w", err)
		}
		return insertHighlights(ctx, tx, string(id), sub.Highlights)
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// SetVoiceRecording records the uploaded voice note for an annotation.
func (s *AnnotationStore) SetVoiceRecording(ctx context.Context, id annotation.PersistedID, url string, duration time.Duration) error {
	res, err := s.db.Conn().ExecContext(ctx, `
		UPDATE annotations SET voice_recording_url = ?, voice_recording_duration = ?, updated_at = ?
		WHERE id = ?`,
		url, int64(duration/time.Second), time.Now().UnixNano(), string(id))
	if err != nil {
		return fmt.Errorf("failed to set voice recording: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("annotation %s: %w", id, annotation.ErrAnnotationNotFound)
	}
	return nil
}

// Highlights returns the persisted highlights of an annotation in
// submission order.
func (s *AnnotationStore) Highlights(ctx context.Context, id annotation.PersistedID) ([]annotation.Highlight, error) {
	return listHighlights(ctx, s.db.Conn(), string(id))
}

func insertHighlights(ctx context.Context, tx *sql.Tx, annotationID string, highlights []annotation.Highlight) error {
	for i, h := range highlights {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO highlights (
				annotation_id, position, highlighted_text, start_index, end_index,
				text_type, error_type, comment
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			annotationID, i, h.HighlightedText, h.StartIndex, h.EndIndex,
			h.TextType, h.ErrorType.Code(), h.Comment,
		)
		if err != nil {
			return fmt.Errorf("failed to save highlight %d: %w", i, err)
		}
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listHighlights(ctx context.Context, q querier, annotationID string) ([]annotation.Highlight, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT highlighted_text, start_index, end_index, text_type, error_type, comment
		FROM highlights WHERE annotation_id = ? ORDER BY position`, annotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []annotation.Highlight
	for rows.Next() {
		var (
			h    annotation.Highlight
			code string
		)
		if err := rows.Scan(&h.HighlightedText, &h.StartIndex, &h.EndIndex, &h.TextType, &code, &h.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		if h.ErrorType, err = annotation.ParseErrorType(code); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// classifyWriteError maps driver errors on annotation writes to the
// errors callers can act on.
func classifyWriteError(sentenceID int64, err error) error {
	switch {
	case isForeignKeyError(err):
		return fmt.Errorf("sentence %d: %w: %w", sentenceID, annotation.ErrSentenceNotFound, err)
	case IsConstraintError(err):
		return fmt.Errorf("sentence %d: %w: %w", sentenceID, annotation.ErrAnnotationExists, err)
	case IsBusyError(err):
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return fmt.Errorf("failed to write annotation: %w", err)
}
