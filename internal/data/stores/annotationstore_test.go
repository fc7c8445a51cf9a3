package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mtqa/internal/core/annotation"
)

func TestAnnotationStore(t *testing.T) {
	ctx := context.Background()

	submission := func(sentenceID int64) annotation.Submission {
		return annotation.Submission{
			SentenceID:       sentenceID,
			FluencyScore:     annotation.Score(3),
			OverallQuality:   annotation.Score(4),
			Comments:         "close enough",
			FinalForm:        "Umupo ang pusa.",
			TimeSpentSeconds: 75,
			Status:           annotation.StatusCompleted,
			Highlights: []annotation.Highlight{
				{HighlightedText: "pusa", StartIndex: 10, EndIndex: 14, TextType: annotation.TextTypeMachine, ErrorType: annotation.MajorSemantic, Comment: "wrong animal"},
				{HighlightedText: "Umupo", StartIndex: 0, EndIndex: 5, TextType: annotation.TextTypeMachine, ErrorType: annotation.MinorSyntactic, Comment: "tense"},
			},
		}
	}

	t.Run("create round trips through existing annotation", func(t *testing.T) {
		database := openDB(t)
		sentences := NewSentenceStore(database)
		store := NewAnnotationStore(database)
		got := seedSentences(t, sentences, "Umupo ang pusa.")

		id, err := store.CreateAnnotation(ctx, submission(got[0].ID))
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		rec, err := sentences.FetchExistingAnnotation(ctx, got[0].ID)
		require.NoError(t, err)
		require.NotNil(t, rec)

		assert.Equal(t, string(id), rec.PersistedID)
		assert.Equal(t, 3, *rec.Scores.Fluency)
		assert.Nil(t, rec.Scores.Adequacy)
		assert.Equal(t, 4, *rec.Scores.Overall)
		assert.Equal(t, "close enough", rec.Comments)
		assert.Equal(t, 75*time.Second, rec.Elapsed)
		assert.Equal(t, annotation.StatusSubmitted, rec.Status)

		require.Len(t, rec.Spans, 2)
		assert.Equal(t, "pusa", rec.Spans[0].Text, "submission order is preserved")
		assert.Equal(t, annotation.MajorSemantic, rec.Spans[0].ErrorType)
		assert.NotEmpty(t, rec.Spans[0].ID)
	})

	t.Run("second create for same sentence fails", func(t *testing.T) {
		database := openDB(t)
		store := NewAnnotationStore(database)
		got := seedSentences(t, NewSentenceStore(database), "x")

		_, err := store.CreateAnnotation(ctx, submission(got[0].ID))
		require.NoError(t, err)

		_, err = store.CreateAnnotation(ctx, submission(got[0].ID))
		require.ErrorIs(t, err, annotation.ErrAnnotationExists)
		assert.True(t, IsConstraintError(err))
	})

	t.Run("create for unknown sentence fails", func(t *testing.T) {
		store := NewAnnotationStore(openDB(t))

		_, err := store.CreateAnnotation(ctx, submission(999))
		require.ErrorIs(t, err, annotation.ErrSentenceNotFound)
		assert.True(t, IsConstraintError(err))
	})

	t.Run("update replaces highlights", func(t *testing.T) {
		database := openDB(t)
		store := NewAnnotationStore(database)
		got := seedSentences(t, NewSentenceStore(database), "Umupo ang pusa.")

		id, err := store.CreateAnnotation(ctx, submission(got[0].ID))
		require.NoError(t, err)

		sub := submission(got[0].ID)
		sub.FluencyScore = annotation.Score(5)
		sub.Highlights = sub.Highlights[:1]

		updated, err := store.UpdateAnnotation(ctx, id, sub)
		require.NoError(t, err)
		assert.Equal(t, id, updated)

		highlights, err := store.Highlights(ctx, id)
		require.NoError(t, err)
		require.Len(t, highlights, 1)
		assert.Equal(t, "pusa", highlights[0].HighlightedText)
	})

	t.Run("update unknown annotation", func(t *testing.T) {
		database := openDB(t)
		store := NewAnnotationStore(database)
		got := seedSentences(t, NewSentenceStore(database), "x")

		_, err := store.UpdateAnnotation(ctx, "missing", submission(got[0].ID))
		require.ErrorIs(t, err, annotation.ErrAnnotationNotFound)
	})

	t.Run("voice recording", func(t *testing.T) {
		database := openDB(t)
		sentences := NewSentenceStore(database)
		store := NewAnnotationStore(database)
		got := seedSentences(t, sentences, "x")

		id, err := store.CreateAnnotation(ctx, submission(got[0].ID))
		require.NoError(t, err)

		require.NoError(t, store.SetVoiceRecording(ctx, id, "file:///voice/a.wav", 4*time.Second))

		rec, err := sentences.FetchExistingAnnotation(ctx, got[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "file:///voice/a.wav", rec.VoiceURL)

		err = store.SetVoiceRecording(ctx, "missing", "x", 0)
		require.ErrorIs(t, err, annotation.ErrAnnotationNotFound)
	})
}
