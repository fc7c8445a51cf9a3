package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger registers bus hooks that log all event activity at debug level.
// Uses OnPublish for event firing, OnDrop for buffer-full warnings, and OnPanic
// for subscriber panic reporting.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		e := logger.Debug().Str("event", string(event))
		if id, ok := sentenceIDOf(payload); ok {
			e = e.Int64("sentence_id", id)
		}
		e.Msg("event fired")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().Str("event", string(event)).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

func sentenceIDOf(payload any) (int64, bool) {
	switch p := payload.(type) {
	case SpanAddedPayload:
		return p.SentenceID, true
	case SpanRemovedPayload:
		return p.SentenceID, true
	case AnnotationBlockedPayload:
		return p.SentenceID, true
	case AnnotationAwaitingConfirmPayload:
		return p.SentenceID, true
	case AnnotationSubmittedPayload:
		return p.SentenceID, true
	case AnnotationSubmitFailedPayload:
		return p.SentenceID, true
	case AttachmentFailedPayload:
		return p.SentenceID, true
	}
	return 0, false
}
