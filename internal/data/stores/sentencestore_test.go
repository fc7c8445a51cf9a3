package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/data/db"
)

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err, "Open")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func seedSentences(t *testing.T, store *SentenceStore, mts ...string) []annotation.Sentence {
	t.Helper()
	in := make([]annotation.Sentence, 0, len(mts))
	for _, mt := range mts {
		in = append(in, annotation.Sentence{
			SourceText:         "source: " + mt,
			MachineTranslation: mt,
			SourceLanguage:     "en",
			TargetLanguage:     "tl",
			Active:             true,
		})
	}
	out, err := store.Import(context.Background(), in)
	require.NoError(t, err, "Import")
	return out
}

func TestSentenceStore(t *testing.T) {
	ctx := context.Background()

	t.Run("import assigns ids and fetch returns sentence", func(t *testing.T) {
		store := NewSentenceStore(openDB(t))

		got := seedSentences(t, store, "Umupo ang pusa.", "Tumakbo ang aso.")
		require.Len(t, got, 2)
		assert.NotZero(t, got[0].ID)
		assert.Greater(t, got[1].ID, got[0].ID)

		sentence, err := store.FetchSentence(ctx, got[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Umupo ang pusa.", sentence.MachineTranslation)
		assert.Equal(t, "en", sentence.SourceLanguage)
		assert.True(t, sentence.Active)
		assert.False(t, sentence.CreatedAt.IsZero())
	})

	t.Run("import with id replaces text", func(t *testing.T) {
		store := NewSentenceStore(openDB(t))

		_, err := store.Import(ctx, []annotation.Sentence{{ID: 10, SourceText: "a", MachineTranslation: "first", SourceLanguage: "en", TargetLanguage: "tl", Active: true}})
		require.NoError(t, err)
		_, err = store.Import(ctx, []annotation.Sentence{{ID: 10, SourceText: "a", MachineTranslation: "second", SourceLanguage: "en", TargetLanguage: "tl", Active: true}})
		require.NoError(t, err)

		sentence, err := store.FetchSentence(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, "second", sentence.MachineTranslation)
	})

	t.Run("fetch sentence not found", func(t *testing.T) {
		store := NewSentenceStore(openDB(t))

		_, err := store.FetchSentence(ctx, 404)
		require.ErrorIs(t, err, annotation.ErrSentenceNotFound)
	})

	t.Run("unannotated skips annotated and inactive", func(t *testing.T) {
		database := openDB(t)
		store := NewSentenceStore(database)
		sink := NewAnnotationStore(database)

		got := seedSentences(t, store, "one", "two", "three", "four")
		_, err := store.Import(ctx, []annotation.Sentence{{ID: got[3].ID, SourceText: "s", MachineTranslation: "four", SourceLanguage: "en", TargetLanguage: "tl", Active: false}})
		require.NoError(t, err)

		_, err = sink.CreateAnnotation(ctx, annotation.Submission{SentenceID: got[1].ID, Status: annotation.StatusCompleted})
		require.NoError(t, err)

		queue, err := store.FetchUnannotated(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, queue, 2)
		assert.Equal(t, got[0].ID, queue[0].ID)
		assert.Equal(t, got[2].ID, queue[1].ID)

		page, err := store.FetchUnannotated(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, got[2].ID, page[0].ID)

		all, err := store.FetchUnannotated(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("existing annotation is nil when absent", func(t *testing.T) {
		store := NewSentenceStore(openDB(t))
		got := seedSentences(t, store, "one")

		rec, err := store.FetchExistingAnnotation(ctx, got[0].ID)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})
}
