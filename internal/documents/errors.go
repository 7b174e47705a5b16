package documents

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicate means the same owner already stored a byte-identical file.
	ErrDuplicate = errors.New("duplicate document")

	// ErrRejected wraps an upload whose bytes failed validation; the verdict
	// carries the specific reason.
	ErrRejected = errors.New("document rejected by validation")
)
