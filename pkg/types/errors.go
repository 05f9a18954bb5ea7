package types

import "errors"

// Mutation outcomes. A nil error means the mutation was applied; any of
// these means the board was left unchanged.
var (
	ErrInvalidTitle      = errors.New("title must not be empty")
	ErrNotFound          = errors.New("task not found")
	ErrColumnNotFound    = errors.New("column not found")
	ErrInvalidTransition = errors.New("invalid stage transition")
	ErrDuplicateID       = errors.New("task id already exists")
	ErrNoop              = errors.New("nothing to do")
	ErrUnknownMutation   = errors.New("unknown mutation")
)

// Board and store errors.
var (
	ErrBoardInvalid    = errors.New("board violates invariants")
	ErrPipelineInvalid = errors.New("invalid pipeline")
	ErrStoreClosed     = errors.New("store is closed")
)

// Blob store errors.
var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidKey   = errors.New("invalid blob key")
)

// IsRejected reports whether err is a mutation outcome caused by the
// caller's input rather than by the system.
func IsRejected(err error) bool {
	for _, target := range []error{
		ErrInvalidTitle,
		ErrNotFound,
		ErrColumnNotFound,
		ErrInvalidTransition,
		ErrDuplicateID,
		ErrNoop,
		ErrUnknownMutation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
