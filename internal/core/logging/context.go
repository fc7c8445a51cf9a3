package logging

import "context"

type contextKey string

const (
	sessionIDKey  contextKey = "session_id"
	sentenceIDKey contextKey = "sentence_id"
)

// WithSessionID adds an annotation session ID to the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithSentenceID adds the sentence under review to the context.
func WithSentenceID(ctx context.Context, sentenceID int64) context.Context {
	return context.WithValue(ctx, sentenceIDKey, sentenceID)
}

// GetSessionID retrieves the session ID from the context.
// Returns empty string if not present.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetSentenceID retrieves the sentence ID from the context.
func GetSentenceID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(sentenceIDKey).(int64)
	return id, ok
}
