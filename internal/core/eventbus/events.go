// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within mtqa.
package eventbus

import "github.com/colonyops/mtqa/internal/core/annotation"

// Event names a kind of event published on the bus.
type Event string

// Keep list sorted A-Z.
const (
	EventAnnotationAwaitingConfirm Event = "annotation.awaiting-confirm"
	EventAnnotationBlocked         Event = "annotation.blocked"
	EventAnnotationSubmitFailed    Event = "annotation.submit-failed"
	EventAnnotationSubmitted       Event = "annotation.submitted"
	EventAttachmentFailed          Event = "attachment.failed"
	EventNotificationPublished     Event = "notification.published"
	EventSpanAdded                 Event = "span.added"
	EventSpanRemoved               Event = "span.removed"
)

// SpanAddedPayload is emitted when a span is inserted into a record.
type SpanAddedPayload struct {
	SentenceID int64
	Span       annotation.Span
}

// SpanRemovedPayload is emitted when a span is removed from a record.
type SpanRemovedPayload struct {
	SentenceID int64
	SpanID     string
}

// AnnotationBlockedPayload is emitted when validation blocks a submission.
type AnnotationBlockedPayload struct {
	SentenceID int64
	Errors     []annotation.Message
}

// AnnotationAwaitingConfirmPayload is emitted when warnings need explicit
// confirmation before submission proceeds.
type AnnotationAwaitingConfirmPayload struct {
	SentenceID int64
	Warnings   []annotation.Message
}

// AnnotationSubmittedPayload is emitted after the persistence sink accepted
// a record.
type AnnotationSubmittedPayload struct {
	SentenceID  int64
	PersistedID annotation.PersistedID
	Updated     bool // true when an existing annotation was updated
}

// AnnotationSubmitFailedPayload is emitted when the persistence sink
// rejected a record.
type AnnotationSubmitFailedPayload struct {
	SentenceID int64
	Err        error
}

// AttachmentFailedPayload is emitted when a voice upload fails after a
// successful submission.
type AttachmentFailedPayload struct {
	SentenceID  int64
	PersistedID annotation.PersistedID
	Err         error
}
