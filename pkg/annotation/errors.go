package annotation

import "errors"

var (
	// ErrNotFound is returned when an operation references a skeleton id
	// that is not live in the store. The store is left unchanged.
	ErrNotFound = errors.New("skeleton not found")

	// ErrInvalidPart is returned when a keypoint operation names a part
	// outside the skeleton's variant part list. This indicates a caller
	// bug, not operator input.
	ErrInvalidPart = errors.New("part not in skeleton variant")

	// ErrEmptyHistory is returned by [History.Undo] and [History.Redo]
	// when there is nothing to undo or redo. It is benign, never fatal.
	ErrEmptyHistory = errors.New("nothing to undo or redo")
)
