package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches published events to subscribers on a single
// goroutine started with Start. Publishing never blocks: when the buffer
// is full the event is dropped and OnDrop hooks fire.
type EventBus struct {
	ch    chan envelope
	mu    sync.RWMutex
	subs  map[Event][]func(any)
	hooks hooks
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

func subscribe[T any](bus *EventBus, event Event, fn func(T)) {
	bus.subscribe(event, func(p any) {
		if v, ok := p.(T); ok {
			fn(v)
		}
	})
}

func (bus *EventBus) PublishSpanAdded(p SpanAddedPayload) { bus.send(EventSpanAdded, p) }

func (bus *EventBus) SubscribeSpanAdded(fn func(SpanAddedPayload)) {
	subscribe(bus, EventSpanAdded, fn)
}

func (bus *EventBus) PublishSpanRemoved(p SpanRemovedPayload) { bus.send(EventSpanRemoved, p) }

func (bus *EventBus) SubscribeSpanRemoved(fn func(SpanRemovedPayload)) {
	subscribe(bus, EventSpanRemoved, fn)
}

func (bus *EventBus) PublishAnnotationBlocked(p AnnotationBlockedPayload) {
	bus.send(EventAnnotationBlocked, p)
}

func (bus *EventBus) SubscribeAnnotationBlocked(fn func(AnnotationBlockedPayload)) {
	subscribe(bus, EventAnnotationBlocked, fn)
}

func (bus *EventBus) PublishAnnotationAwaitingConfirm(p AnnotationAwaitingConfirmPayload) {
	bus.send(EventAnnotationAwaitingConfirm, p)
}

func (bus *EventBus) SubscribeAnnotationAwaitingConfirm(fn func(AnnotationAwaitingConfirmPayload)) {
	subscribe(bus, EventAnnotationAwaitingConfirm, fn)
}

func (bus *EventBus) PublishAnnotationSubmitted(p AnnotationSubmittedPayload) {
	bus.send(EventAnnotationSubmitted, p)
}

func (bus *EventBus) SubscribeAnnotationSubmitted(fn func(AnnotationSubmittedPayload)) {
	subscribe(bus, EventAnnotationSubmitted, fn)
}

func (bus *EventBus) PublishAnnotationSubmitFailed(p AnnotationSubmitFailedPayload) {
	bus.send(EventAnnotationSubmitFailed, p)
}

func (bus *EventBus) SubscribeAnnotationSubmitFailed(fn func(AnnotationSubmitFailedPayload)) {
	subscribe(bus, EventAnnotationSubmitFailed, fn)
}

func (bus *EventBus) PublishAttachmentFailed(p AttachmentFailedPayload) {
	bus.send(EventAttachmentFailed, p)
}

func (bus *EventBus) SubscribeAttachmentFailed(fn func(AttachmentFailedPayload)) {
	subscribe(bus, EventAttachmentFailed, fn)
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	subscribe(bus, EventNotificationPublished, fn)
}
