package annotation

import "errors"

// Sentinel errors for annotation operations.
var (
	ErrSentenceNotFound   = errors.New("sentence not found")
	ErrUnknownErrorType   = errors.New("unknown error type")
	ErrSpanOutOfBounds    = errors.New("span out of bounds")
	ErrEmptyComment       = errors.New("span comment is required")
	ErrAttachmentUpload   = errors.New("attachment upload failed")
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrAnnotationExists   = errors.New("sentence already has an annotation")
)
