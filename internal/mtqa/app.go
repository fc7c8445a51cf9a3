// Package mtqa wires the annotation engine to its stores, attachment
// backend and event bus. Commands consume App instead of cherry-picking
// raw dependencies.
package mtqa

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/core/config"
	"github.com/colonyops/mtqa/internal/core/eventbus"
	"github.com/colonyops/mtqa/internal/core/logging"
	"github.com/colonyops/mtqa/internal/core/submit"
	"github.com/colonyops/mtqa/internal/core/workset"
	"github.com/colonyops/mtqa/internal/data/attachments"
	"github.com/colonyops/mtqa/internal/data/db"
	"github.com/colonyops/mtqa/internal/data/stores"
)

// ErrNoConnectionString is returned when the azure backend is selected but
// its connection string variable is unset.
var ErrNoConnectionString = errors.New("azure connection string is not set")

// App is the central entry point for all mtqa operations.
type App struct {
	Config      *config.Config
	DB          *db.DB
	Sentences   *stores.SentenceStore
	Annotations *stores.AnnotationStore
	Backend     attachments.Backend
	Bus         *eventbus.EventBus

	log zerolog.Logger
}

// NewApp constructs an App from an open database. bus may be nil.
func NewApp(cfg *config.Config, database *db.DB, bus *eventbus.EventBus) (*App, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		DB:          database,
		Sentences:   stores.NewSentenceStore(database),
		Annotations: stores.NewAnnotationStore(database),
		Backend:     backend,
		Bus:         bus,
		log:         logging.Component("app"),
	}, nil
}

// NewBackend builds the attachment backend selected in the config.
func NewBackend(cfg *config.Config) (attachments.Backend, error) {
	switch cfg.Attachments.Backend {
	case config.BackendAzure:
		conn := cfg.AzureConnectionString()
		if conn == "" {
			return nil, fmt.Errorf("%w: set %s", ErrNoConnectionString, cfg.Attachments.ConnectionStringEnv)
		}
		return attachments.NewAzureBackend(conn, cfg.Attachments.Container)
	default:
		return attachments.NewFilesystemBackend(cfg.AttachmentsDir()), nil
	}
}

// Session bundles a working set with the coordinator that submits from it.
type Session struct {
	*workset.Session
	Submit *submit.Coordinator

	// DefaultErrorType is used for marks that do not name one.
	DefaultErrorType annotation.ErrorType
}

// NewSession opens a fresh working set. The attachment backend is prepared
// lazily here; when it cannot be prepared voice uploads are disabled for
// the session and submissions still go through.
func (a *App) NewSession(ctx context.Context) *Session {
	ws := workset.New(a.Sentences, workset.WithBus(a.Bus))

	opts := []submit.Option{submit.WithBus(a.Bus)}
	if a.Backend != nil {
		if err := a.Backend.Ensure(ctx); err != nil {
			a.log.Warn().Err(err).Msg("attachment backend unavailable, voice uploads disabled")
		} else {
			opts = append(opts, submit.WithAttachments(attachments.NewUploader(a.Backend, a.Annotations)))
		}
	}

	return &Session{
		Session:          ws,
		Submit:           submit.New(ws, a.Annotations, opts...),
		DefaultErrorType: a.Config.Annotator.DefaultErrorType,
	}
}

// Report loads a sentence and its persisted annotation. The record is nil
// when the sentence has not been annotated yet.
func (a *App) Report(ctx context.Context, id int64) (annotation.Sentence, *annotation.Record, error) {
	s, err := a.Sentences.FetchSentence(ctx, id)
	if err != nil {
		return annotation.Sentence{}, nil, err
	}

	rec, err := a.Sentences.FetchExistingAnnotation(ctx, id)
	if err != nil {
		return annotation.Sentence{}, nil, fmt.Errorf("fetch annotation: %w", err)
	}
	return s, rec, nil
}
