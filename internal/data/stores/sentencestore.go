package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/data/db"
)

// SentenceStore implements annotation.SentenceSource using SQLite.
type SentenceStore struct {
	db *db.DB
}

var _ annotation.SentenceSource = (*SentenceStore)(nil)

// NewSentenceStore creates a new SQLite-backed sentence store.
func NewSentenceStore(db *db.DB) *SentenceStore {
	return &SentenceStore{db: db}
}

const sentenceColumns = `id, source_text, machine_translation, reference_translation,
	source_language, target_language, domain, created_at, is_active`

// Import inserts sentences or replaces the text of existing ones. Sentences
// without an ID are assigned the next free one. Returns the stored sentences.
func (s *SentenceStore) Import(ctx context.Context, sentences []annotation.Sentence) ([]annotation.Sentence, error) {
	out := make([]annotation.Sentence, 0, len(sentences))
	now := time.Now()

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, sentence := range sentences {
			if sentence.CreatedAt.IsZero() {
				sentence.CreatedAt = now
			}

			var id sql.NullInt64
			if sentence.ID != 0 {
				id = sql.NullInt64{Int64: sentence.ID, Valid: true}
			}

			row := tx.QueryRowContext(ctx, `
				INSERT INTO sentences (`+sentenceColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					source_text = excluded.source_text,
					machine_translation = excluded.machine_translation,
					reference_translation = excluded.reference_translation,
					source_language = excluded.source_language,
					target_language = excluded.target_language,
					domain = excluded.domain,
					is_active = excluded.is_active
				RETURNING id`,
				id,
				sentence.SourceText,
				sentence.MachineTranslation,
				sentence.ReferenceTranslation,
				sentence.SourceLanguage,
				sentence.TargetLanguage,
				sentence.Domain,
				sentence.CreatedAt.UnixNano(),
				boolToInt(sentence.Active),
			)
			if err := row.Scan(&sentence.ID); err != nil {
				return fmt.Errorf("import sentence: %w", err)
			}
			out = append(out, sentence)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// FetchSentence returns a sentence by ID.
func (s *SentenceStore) FetchSentence(ctx context.Context, id int64) (annotation.Sentence, error) {
	row := s.db.Conn().QueryRowContext(ctx, `SELECT `+sentenceColumns+` FROM sentences WHERE id = ?`, id)

	sentence, err := scanSentence(row)
	if err != nil {
		if IsNotFoundError(err) {
			return annotation.Sentence{}, fmt.Errorf("sentence %d: %w", id, annotation.ErrSentenceNotFound)
		}
		return annotation.Sentence{}, fmt.Errorf("failed to get sentence: %w", err)
	}
	return sentence, nil
}

// FetchUnannotated returns active sentences without an annotation, ordered
// by ID. A limit of zero or less returns every remaining sentence.
func (s *SentenceStore) FetchUnannotated(ctx context.Context, offset, limit int) ([]annotation.Sentence, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT `+sentenceColumns+`
		FROM sentences s
		WHERE s.is_active = 1
		  AND NOT EXISTS (SELECT 1 FROM annotations a WHERE a.sentence_id = s.id)
		ORDER BY s.id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list unannotated sentences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []annotation.Sentence
	for rows.Next() {
		sentence, err := scanSentence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sentence: %w", err)
		}
		out = append(out, sentence)
	}
	return out, rows.Err()
}

// FetchExistingAnnotation returns the persisted record for a sentence, or
// nil when it has not been annotated.
func (s *SentenceStore) FetchExistingAnnotation(ctx context.Context, sentenceID int64) (*annotation.Record, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
		SELECT id, fluency_score, adequacy_score, overall_quality, comments,
		       final_form, time_spent_seconds, voice_recording_url
		FROM annotations WHERE sentence_id = ?`, sentenceID)

	var (
		rec                        = &annotation.Record{SentenceID: sentenceID, Status: annotation.StatusSubmitted}
		fluency, adequacy, overall sql.NullInt64
		elapsed                    int64
	)
	err := row.Scan(&rec.PersistedID, &fluency, &adequacy, &overall, &rec.Comments, &rec.FinalForm, &elapsed, &rec.VoiceURL)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get annotation: %w", err)
	}

	rec.Scores = annotation.Scores{
		Fluency:  nullIntPtr(fluency),
		Adequacy: nullIntPtr(adequacy),
		Overall:  nullIntPtr(overall),
	}
	rec.Elapsed = time.Duration(elapsed) * time.Second

	highlights, err := listHighlights(ctx, s.db.Conn(), rec.PersistedID)
	if err != nil {
		return nil, err
	}
	for _, h := range highlights {
		rec.Insert(annotation.Span{
			Start:     h.StartIndex,
			End:       h.EndIndex,
			Text:      h.HighlightedText,
			ErrorType: h.ErrorType,
			Comment:   h.Comment,
		})
	}

	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSentence(row scanner) (annotation.Sentence, error) {
	var (
		sentence  annotation.Sentence
		createdAt int64
		active    int
	)
	err := row.Scan(
		&sentence.ID,
		&sentence.SourceText,
		&sentence.MachineTranslation,
		&sentence.ReferenceTranslation,
		&sentence.SourceLanguage,
		&sentence.TargetLanguage,
		&sentence.Domain,
		&createdAt,
		&active,
	)
	if err != nil {
		return annotation.Sentence{}, err
	}
	sentence.CreatedAt = time.Unix(0, createdAt)
	sentence.Active = active != 0
	return sentence, nil
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return annotation.Score(int(v.Int64))
}

func intPtrNull(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
