package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catSentence = "The cat sat."

func TestNewSpan(t *testing.T) {
	t.Run("captures highlighted text", func(t *testing.T) {
		span, err := NewSpan(catSentence, 4, 7, MinorSemantic, "  wrong animal ")
		require.NoError(t, err)
		assert.Equal(t, "cat", span.Text)
		assert.Equal(t, "wrong animal", span.Comment, "comment should be trimmed")
		assert.Empty(t, span.ID, "ids are assigned on insert")
	})

	t.Run("rune offsets", func(t *testing.T) {
		span, err := NewSpan("café noir", 0, 4, MajorSemantic, "x")
		require.NoError(t, err)
		assert.Equal(t, "café", span.Text)
	})

	tests := []struct {
		name    string
		start   int
		end     int
		errType ErrorType
		comment string
		wantErr error
	}{
		{"negative start", -1, 3, MinorSemantic, "c", ErrSpanOutOfBounds},
		{"empty range", 4, 4, MinorSemantic, "c", ErrSpanOutOfBounds},
		{"reversed", 7, 4, MinorSemantic, "c", ErrSpanOutOfBounds},
		{"past end", 4, 13, MinorSemantic, "c", ErrSpanOutOfBounds},
		{"unknown type", 4, 7, ErrorType(0), "c", ErrUnknownErrorType},
		{"blank comment", 4, 7, MinorSemantic, "   ", ErrEmptyComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpan(catSentence, tt.start, tt.end, tt.errType, tt.comment)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecord_Insert(t *testing.T) {
	t.Run("duplicate mark is ignored", func(t *testing.T) {
		rec := &Record{SentenceID: 1}
		span, err := NewSpan(catSentence, 4, 7, MinorSemantic, "wrong animal")
		require.NoError(t, err)

		first, inserted := rec.Insert(span)
		require.True(t, inserted)
		assert.NotEmpty(t, first.ID)

		again, inserted := rec.Insert(span)
		assert.False(t, inserted, "second insert of the same mark should be a no-op")
		assert.Equal(t, first.ID, again.ID)
		assert.Len(t, rec.List(), 1)
	})

	t.Run("same range with different type is kept", func(t *testing.T) {
		rec := &Record{SentenceID: 1}
		a, _ := NewSpan(catSentence, 4, 7, MinorSemantic, "wrong animal")
		b, _ := NewSpan(catSentence, 4, 7, MajorSemantic, "wrong animal")
		c, _ := NewSpan(catSentence, 4, 7, MinorSemantic, "different note")

		rec.Insert(a)
		rec.Insert(b)
		rec.Insert(c)

		assert.Len(t, rec.List(), 3)
	})

	t.Run("overlapping spans are allowed", func(t *testing.T) {
		rec := &Record{SentenceID: 1}
		a, _ := NewSpan(catSentence, 4, 9, MinorSemantic, "a")
		b, _ := NewSpan(catSentence, 6, 7, MinorSyntactic, "b")

		_, okA := rec.Insert(a)
		_, okB := rec.Insert(b)

		assert.True(t, okA)
		assert.True(t, okB)
	})
}

func TestRecord_RemoveAndList(t *testing.T) {
	rec := &Record{SentenceID: 1}
	a, _ := NewSpan(catSentence, 0, 3, MinorSemantic, "a")
	b, _ := NewSpan(catSentence, 4, 7, MinorSemantic, "b")
	c, _ := NewSpan(catSentence, 8, 11, MinorSemantic, "c")

	sa, _ := rec.Insert(a)
	sb, _ := rec.Insert(b)
	sc, _ := rec.Insert(c)

	assert.True(t, rec.Remove(sb.ID))
	assert.False(t, rec.Remove(sb.ID), "removing twice is a no-op")
	assert.False(t, rec.Remove("missing"))

	list := rec.List()
	require.Len(t, list, 2)
	assert.Equal(t, sa.ID, list[0].ID, "insertion order is preserved")
	assert.Equal(t, sc.ID, list[1].ID)

	list[0].Comment = "mutated"
	assert.Equal(t, "a", rec.Spans[0].Comment, "List returns a copy")
}

func TestRecord_Clone(t *testing.T) {
	rec := &Record{
		SentenceID: 7,
		Scores:     Scores{Fluency: Score(3)},
		Voice:      &Voice{Path: "/tmp/a.webm"},
	}
	span, _ := NewSpan(catSentence, 4, 7, MinorSemantic, "a")
	rec.Insert(span)

	c := rec.Clone()
	*c.Scores.Fluency = 5
	c.Spans[0].Comment = "changed"
	c.Voice.Path = "/tmp/b.webm"

	assert.Equal(t, 3, *rec.Scores.Fluency)
	assert.Equal(t, "a", rec.Spans[0].Comment)
	assert.Equal(t, "/tmp/a.webm", rec.Voice.Path)
}
