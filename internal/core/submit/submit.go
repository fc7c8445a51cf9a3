// Package submit drives a record from draft to persisted. It validates,
// asks for confirmation when there are warnings, and guarantees at most
// one in-flight submission per sentence.
package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/core/eventbus"
	"github.com/colonyops/mtqa/internal/core/logging"
	"github.com/colonyops/mtqa/internal/core/workset"
	"github.com/colonyops/mtqa/pkg/kv"
)

// Outcome reports where a submission attempt ended.
type Outcome struct {
	SentenceID  int64
	Status      annotation.Status
	Warnings    []annotation.Message
	PersistedID annotation.PersistedID
	Updated     bool
	Attachment  *annotation.Ack
	// Discarded is set when the sentence left the working set while the
	// sink call was in flight.
	Discarded bool
}

// NeedsConfirm reports whether the caller must Confirm or Cancel.
func (o Outcome) NeedsConfirm() bool {
	return o.Status == annotation.StatusAwaitingConfirm
}

// OpenFunc opens a recorded voice file for upload.
type OpenFunc func(path string) (io.ReadCloser, error)

// Coordinator runs the submission state machine for one working set.
type Coordinator struct {
	ws          *workset.Session
	sink        annotation.Sink
	attachments annotation.AttachmentSink
	open        OpenFunc
	bus         *eventbus.EventBus
	inflight    *kv.Store[int64, struct{}]
	now         func() time.Time
	log         zerolog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithAttachments enables voice uploads after a successful submission.
func WithAttachments(sink annotation.AttachmentSink) Option {
	return func(c *Coordinator) { c.attachments = sink }
}

// WithOpener overrides how voice files are opened.
func WithOpener(fn OpenFunc) Option {
	return func(c *Coordinator) { c.open = fn }
}

// WithBus publishes submission events on bus.
func WithBus(bus *eventbus.EventBus) Option {
	return func(c *Coordinator) { c.bus = bus }
}

// WithClock overrides time.Now for elapsed-time computation.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a coordinator persisting records from ws into sink.
func New(ws *workset.Session, sink annotation.Sink, opts ...Option) *Coordinator {
	c := &Coordinator{
		ws:       ws,
		sink:     sink,
		open:     func(path string) (io.ReadCloser, error) { return os.Open(path) },
		inflight: kv.New[int64, struct{}](),
		now:      time.Now,
		log:      logging.Component("submit"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pending are the statuses a record may be requested from.
var pending = []annotation.Status{
	annotation.StatusDraft,
	annotation.StatusBlocked,
	annotation.StatusAwaitingConfirm,
}

// Request validates the record for id. Blocking errors return a
// *BlockedError. Warnings leave the record awaiting confirmation. A clean
// record is submitted straight away.
func (c *Coordinator) Request(ctx context.Context, id int64) (Outcome, error) {
	rec, ok := c.ws.Get(id)
	if !ok {
		return Outcome{}, fmt.Errorf("sentence %d: %w", id, workset.ErrNotOpen)
	}
	if c.isInFlight(id) || rec.Status == annotation.StatusSubmitting {
		return Outcome{SentenceID: id, Status: rec.Status}, ErrAlreadySubmitting
	}

	res := annotation.Validate(rec)

	if res.Blocked() {
		if _, err := c.ws.Transition(id, annotation.StatusBlocked, pending...); err != nil {
			return c.transitionFailed(id, err)
		}
		c.publish(func(bus *eventbus.EventBus) {
			bus.PublishAnnotationBlocked(eventbus.AnnotationBlockedPayload{SentenceID: id, Errors: res.Errors})
		})
		c.log.Debug().Int64("sentence_id", id).Int("errors", len(res.Errors)).Msg("submission blocked")
		return Outcome{SentenceID: id, Status: annotation.StatusBlocked, Warnings: res.Warnings},
			&BlockedError{SentenceID: id, Errors: res.Errors}
	}

	if len(res.Warnings) > 0 {
		if _, err := c.ws.Transition(id, annotation.StatusAwaitingConfirm, pending...); err != nil {
			return c.transitionFailed(id, err)
		}
		c.publish(func(bus *eventbus.EventBus) {
			bus.PublishAnnotationAwaitingConfirm(eventbus.AnnotationAwaitingConfirmPayload{SentenceID: id, Warnings: res.Warnings})
		})
		return Outcome{SentenceID: id, Status: annotation.StatusAwaitingConfirm, Warnings: res.Warnings}, nil
	}

	return c.submit(ctx, id, pending...)
}

// Confirm submits a record that is awaiting confirmation.
func (c *Coordinator) Confirm(ctx context.Context, id int64) (Outcome, error) {
	rec, ok := c.ws.Get(id)
	if !ok {
		return Outcome{}, fmt.Errorf("sentence %d: %w", id, workset.ErrNotOpen)
	}

	switch {
	case c.isInFlight(id) || rec.Status == annotation.StatusSubmitting:
		return Outcome{SentenceID: id, Status: rec.Status}, ErrAlreadySubmitting
	case rec.Status != annotation.StatusAwaitingConfirm:
		return Outcome{SentenceID: id, Status: rec.Status}, ErrNotAwaitingConfirm
	}

	out, err := c.submit(ctx, id, annotation.StatusAwaitingConfirm)
	if errors.Is(err, ErrStatusChanged) {
		return out, ErrNotAwaitingConfirm
	}
	return out, err
}

// Cancel returns a record awaiting confirmation to draft.
func (c *Coordinator) Cancel(id int64) error {
	_, err := c.ws.Transition(id, annotation.StatusDraft, annotation.StatusAwaitingConfirm)
	var se *workset.StatusError
	if errors.As(err, &se) {
		return ErrNotAwaitingConfirm
	}
	return err
}

// transitionFailed maps a refused status move to an outcome. A record that
// went in flight in the meantime reports ErrAlreadySubmitting.
func (c *Coordinator) transitionFailed(id int64, err error) (Outcome, error) {
	var se *workset.StatusError
	if !errors.As(err, &se) {
		return Outcome{}, err
	}
	if errors.Is(err, workset.ErrSubmitting) {
		return Outcome{SentenceID: id, Status: se.Status}, ErrAlreadySubmitting
	}
	return Outcome{SentenceID: id, Status: se.Status}, fmt.Errorf("%w: %w", ErrStatusChanged, err)
}

// SubmitAll requests submission for every id concurrently. When
// confirmWarnings is set, records with warnings are confirmed instead of
// left awaiting. Outcomes are returned in ids order; the first error is
// returned after all submissions finish.
func (c *Coordinator) SubmitAll(ctx context.Context, ids []int64, confirmWarnings bool) ([]Outcome, error) {
	outcomes := make([]Outcome, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			out, err := c.Request(ctx, id)
			if err == nil && out.NeedsConfirm() && confirmWarnings {
				out, err = c.Confirm(ctx, id)
			}
			outcomes[i] = out
			return err
		})
	}

	return outcomes, g.Wait()
}

func (c *Coordinator) isInFlight(id int64) bool {
	_, ok := c.inflight.Get(id)
	return ok
}

func (c *Coordinator) submit(ctx context.Context, id int64, from ...annotation.Status) (Outcome, error) {
	if !c.inflight.SetIfAbsent(id, struct{}{}) {
		return Outcome{SentenceID: id, Status: annotation.StatusSubmitting}, ErrAlreadySubmitting
	}
	defer c.inflight.Delete(id)

	ctx = logging.WithSentenceID(ctx, id)
	log := c.log.With().Ctx(ctx).Logger()

	snap, err := c.ws.Transition(id, annotation.StatusSubmitting, from...)
	if err != nil {
		return c.transitionFailed(id, err)
	}

	sub := annotation.NewSubmission(snap, snap.ElapsedAt(c.now()))
	updated := snap.PersistedID != ""

	var pid annotation.PersistedID
	if updated {
		pid, err = c.sink.UpdateAnnotation(ctx, annotation.PersistedID(snap.PersistedID), sub)
	} else {
		pid, err = c.sink.CreateAnnotation(ctx, sub)
	}

	if err != nil {
		if _, serr := c.ws.Transition(id, annotation.StatusDraft, annotation.StatusSubmitting); serr != nil {
			log.Warn().Err(err).Msg("submission failed after sentence left the working set")
		}
		c.publish(func(bus *eventbus.EventBus) {
			bus.PublishAnnotationSubmitFailed(eventbus.AnnotationSubmitFailedPayload{SentenceID: id, Err: err})
		})
		log.Error().Err(err).Msg("submission failed")
		return Outcome{SentenceID: id, Status: annotation.StatusDraft}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	out := Outcome{
		SentenceID:  id,
		Status:      annotation.StatusSubmitted,
		PersistedID: pid,
		Updated:     updated,
	}

	if !c.ws.Remove(id) {
		log.Warn().Str("persisted_id", string(pid)).Msg("sentence left the working set during submission, result discarded")
		out.Discarded = true
		return out, nil
	}

	c.publish(func(bus *eventbus.EventBus) {
		bus.PublishAnnotationSubmitted(eventbus.AnnotationSubmittedPayload{SentenceID: id, PersistedID: pid, Updated: updated})
	})
	log.Info().Str("persisted_id", string(pid)).Bool("updated", updated).Msg("annotation submitted")

	if snap.Voice != nil && c.attachments != nil {
		ack, err := c.uploadVoice(ctx, snap.Voice, pid)
		if err != nil {
			log.Warn().Err(err).Str("path", snap.Voice.Path).Msg("voice upload failed")
			c.publish(func(bus *eventbus.EventBus) {
				bus.PublishAttachmentFailed(eventbus.AttachmentFailedPayload{SentenceID: id, PersistedID: pid, Err: err})
			})
		} else {
			out.Attachment = &ack
		}
	}

	return out, nil
}

func (c *Coordinator) uploadVoice(ctx context.Context, v *annotation.Voice, pid annotation.PersistedID) (annotation.Ack, error) {
	f, err := c.open(v.Path)
	if err != nil {
		return annotation.Ack{}, fmt.Errorf("%w: open %s: %w", annotation.ErrAttachmentUpload, v.Path, err)
	}
	defer func() { _ = f.Close() }()

	ext := filepath.Ext(v.Path)
	contentType := v.ContentType
	if contentType == "" {
		contentType = voiceContentType(ext)
	}

	ack, err := c.attachments.UploadVoice(ctx, annotation.Attachment{
		Body:        f,
		ContentType: contentType,
		Extension:   ext,
		Duration:    v.Duration,
	}, pid)
	if err != nil && !errors.Is(err, annotation.ErrAttachmentUpload) {
		err = fmt.Errorf("%w: %w", annotation.ErrAttachmentUpload, err)
	}
	return ack, err
}

var voiceTypes = map[string]string{
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
}

func voiceContentType(ext string) string {
	if ct, ok := voiceTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (c *Coordinator) publish(fn func(*eventbus.EventBus)) {
	if c.bus != nil {
		fn(c.bus)
	}
}
