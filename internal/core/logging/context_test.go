package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithSessionID(t *testing.T) {
	ctx := WithSessionID(context.Background(), "test-session-123")
	assert.Equal(t, "test-session-123", GetSessionID(ctx))
}

func TestWithSentenceID(t *testing.T) {
	ctx := WithSentenceID(context.Background(), 456)

	got, ok := GetSentenceID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(456), got)
}

func TestGetSessionID_NotPresent(t *testing.T) {
	assert.Empty(t, GetSessionID(context.Background()))
}

func TestGetSentenceID_NotPresent(t *testing.T) {
	_, ok := GetSentenceID(context.Background())
	assert.False(t, ok)
}

func TestBothIDs(t *testing.T) {
	ctx := WithSessionID(context.Background(), "session-1")
	ctx = WithSentenceID(ctx, 1)

	assert.Equal(t, "session-1", GetSessionID(ctx))
	id, ok := GetSentenceID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
}
