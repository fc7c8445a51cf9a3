package submit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/colonyops/mtqa/internal/core/annotation"
)

var (
	ErrValidationBlocked  = errors.New("validation blocked submission")
	ErrAlreadySubmitting  = errors.New("submission already in flight")
	ErrSubmissionFailed   = errors.New("submission failed")
	ErrNotAwaitingConfirm = errors.New("record is not awaiting confirmation")

	// ErrStatusChanged reports that the record moved between validation and
	// the status change, usually because it was edited.
	ErrStatusChanged = errors.New("record changed during submission")
)

// BlockedError carries the validation errors that stopped a submission.
type BlockedError struct {
	SentenceID int64
	Errors     []annotation.Message
}

func (e *BlockedError) Error() string {
	texts := make([]string, 0, len(e.Errors))
	for _, m := range e.Errors {
		texts = append(texts, m.Text)
	}
	return fmt.Sprintf("sentence %d: %s: %s", e.SentenceID, ErrValidationBlocked, strings.Join(texts, "; "))
}

func (e *BlockedError) Unwrap() error { return ErrValidationBlocked }
