package eventbus

import "fmt"

// Level is the severity of a user-facing notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// NotificationPublishedPayload is emitted by the NotificationRouter.
type NotificationPublishedPayload struct {
	Level   Level
	Message string
}

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeAnnotationBlocked(func(p AnnotationBlockedPayload) {
		r.notifyf(LevelWarning, "sentence %d blocked: %d validation error(s)", p.SentenceID, len(p.Errors))
	})

	r.bus.SubscribeAnnotationSubmitted(func(p AnnotationSubmittedPayload) {
		verb := "saved"
		if p.Updated {
			verb = "updated"
		}
		r.notifyf(LevelInfo, "annotation for sentence %d %s", p.SentenceID, verb)
	})

	r.bus.SubscribeAnnotationSubmitFailed(func(p AnnotationSubmitFailedPayload) {
		r.notifyf(LevelError, "saving sentence %d failed: %v", p.SentenceID, p.Err)
	})

	r.bus.SubscribeAttachmentFailed(func(p AttachmentFailedPayload) {
		r.notifyf(LevelWarning, "voice note for sentence %d was not uploaded: %v", p.SentenceID, p.Err)
	})
}

func (r *NotificationRouter) notifyf(level Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
