package eventbus_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/core/eventbus"
	"github.com/colonyops/mtqa/internal/core/eventbus/testbus"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	var buf bytes.Buffer
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	tb.PublishSpanAdded(eventbus.SpanAddedPayload{
		SentenceID: 42,
		Span:       annotation.Span{ID: "abc", Start: 0, End: 3},
	})
	tb.PublishAnnotationSubmitted(eventbus.AnnotationSubmittedPayload{SentenceID: 42})

	tb.AssertPublished(t, eventbus.EventAnnotationSubmitted)

	// OnPublish hooks run synchronously in the publisher.
	assert.Contains(t, buf.String(), `"event":"span.added"`)
	assert.Contains(t, buf.String(), `"sentence_id":42`)
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := eventbus.New(1)

	var dropped []eventbus.Event
	bus.OnDrop(func(e eventbus.Event, _ any) { dropped = append(dropped, e) })

	// Not started, so the second publish finds the buffer full.
	bus.PublishSpanRemoved(eventbus.SpanRemovedPayload{SentenceID: 1, SpanID: "a"})
	bus.PublishSpanRemoved(eventbus.SpanRemovedPayload{SentenceID: 1, SpanID: "b"})

	assert.Equal(t, []eventbus.Event{eventbus.EventSpanRemoved}, dropped)
}

func TestEventBus_RecoversSubscriberPanic(t *testing.T) {
	tb := testbus.New(t)

	panicked := make(chan any, 1)
	tb.OnPanic(func(_ eventbus.Event, _ any, recovered any) { panicked <- recovered })
	tb.SubscribeSpanRemoved(func(eventbus.SpanRemovedPayload) { panic("boom") })

	tb.PublishSpanRemoved(eventbus.SpanRemovedPayload{SentenceID: 7, SpanID: "x"})
	tb.PublishSpanAdded(eventbus.SpanAddedPayload{SentenceID: 7})

	// Dispatch continues after the panic.
	tb.AssertPublished(t, eventbus.EventSpanAdded)
	assert.Equal(t, "boom", <-panicked)
}
