// Package attachments stores voice notes for persisted annotations on the
// local filesystem or in Azure Blob Storage.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/core/logging"
)

var (
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)

// Backend stores blobs under a key and returns where they can be fetched.
type Backend interface {
	// Ensure prepares the backend (directory or container) for writes.
	Ensure(ctx context.Context) error
	// Put streams r to key and returns its URL.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// Recorder records the uploaded voice note on the persisted annotation.
type Recorder interface {
	SetVoiceRecording(ctx context.Context, id annotation.PersistedID, url string, duration time.Duration) error
}

// Uploader implements annotation.AttachmentSink on top of a Backend.
type Uploader struct {
	backend  Backend
	recorder Recorder
	log      zerolog.Logger
}

var _ annotation.AttachmentSink = (*Uploader)(nil)

// NewUploader creates an uploader. recorder may be nil.
func NewUploader(backend Backend, recorder Recorder) *Uploader {
	return &Uploader{
		backend:  backend,
		recorder: recorder,
		log:      logging.Component("attachments"),
	}
}

// UploadVoice stores the recording as voice/<persisted id><ext>.
func (u *Uploader) UploadVoice(ctx context.Context, att annotation.Attachment, id annotation.PersistedID) (annotation.Ack, error) {
	key := VoiceKey(id, att.Extension)
	if err := validateKey(key); err != nil {
		return annotation.Ack{}, fmt.Errorf("%w: %w", annotation.ErrAttachmentUpload, err)
	}

	url, err := u.backend.Put(ctx, key, att.Body, att.ContentType)
	if err != nil {
		return annotation.Ack{}, fmt.Errorf("%w: %w", annotation.ErrAttachmentUpload, err)
	}

	if u.recorder != nil {
		if err := u.recorder.SetVoiceRecording(ctx, id, url, att.Duration); err != nil {
			return annotation.Ack{}, fmt.Errorf("%w: record url: %w", annotation.ErrAttachmentUpload, err)
		}
	}

	u.log.Debug().Ctx(ctx).Str("key", key).Str("url", url).Msg("voice note uploaded")
	return annotation.Ack{URL: url, Duration: att.Duration}, nil
}

// VoiceKey returns the storage key for an annotation's voice note.
func VoiceKey(id annotation.PersistedID, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return "voice/" + string(id) + strings.ToLower(ext)
}

func validateKey(key string) error {
	if key == "" || key == "voice/" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
