package annotation

import (
	"fmt"

	"github.com/mlenz/keymark/pkg/skeleton"
)

// History is the undo/redo log for one editing session.
//
// Records are pushed and popped at the tail of each stack. Recording a new
// edit clears the redo stack: once the operator diverges, the undone future
// is gone. The invariant Undo-then-Redo is a no-op on observable store state
// holds for every record type, including skeleton ids.
type History struct {
	store *Store
	undo  []Edit
	redo  []Edit
}

// NewHistory creates an empty history bound to a store.
func NewHistory(store *Store) *History {
	return &History{store: store}
}

// Record appends an edit to the undo log and clears the redo log. The edit's
// forward effect must already have been applied to the store.
func (h *History) Record(e Edit) {
	h.undo = append(h.undo, e)
	h.redo = nil
}

// CanUndo reports whether the undo log is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo log is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Reset drops both logs. Called whenever a new image is loaded; undo history
// never crosses images.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}

// Undo pops the most recent record, applies its inverse to the store, and
// pushes it onto the redo log. Returns ErrEmptyHistory when there is nothing
// to undo.
func (h *History) Undo() error {
	if len(h.undo) == 0 {
		return fmt.Errorf("undo: %w", ErrEmptyHistory)
	}
	e := h.undo[len(h.undo)-1]
	if err := h.invert(e); err != nil {
		return err
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	return nil
}

// Redo pops the most recent undone record, reapplies its forward effect, and
// pushes it back onto the undo log. Returns ErrEmptyHistory when there is
// nothing to redo.
func (h *History) Redo() error {
	if len(h.redo) == 0 {
		return fmt.Errorf("redo: %w", ErrEmptyHistory)
	}
	e := h.redo[len(h.redo)-1]
	if err := h.reapply(e); err != nil {
		return err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	return nil
}

// invert applies the inverse of an edit. The type switch is exhaustive over
// the closed Edit sum.
func (h *History) invert(e Edit) error {
	switch e := e.(type) {
	case EditAddSkeleton:
		return h.store.RemoveSkeleton(e.Skeleton.ID)
	case EditMoveKeypoint:
		return h.setKeypoint(e.SkeletonID, e.Part, e.Old)
	case EditDeleteKeypoint:
		return h.setKeypoint(e.SkeletonID, e.Part, e.Old)
	case EditResetAll:
		h.store.SetSkeletons(e.Prior)
		return nil
	default:
		return fmt.Errorf("invert: unknown edit type %T", e)
	}
}

// reapply applies the forward effect of an edit.
func (h *History) reapply(e Edit) error {
	switch e := e.(type) {
	case EditAddSkeleton:
		// Reinsert a clone of the snapshot so the record survives further
		// undo cycles. The recorded id is reused verbatim, never recomputed.
		h.store.insert(e.Skeleton.Clone())
		return nil
	case EditMoveKeypoint:
		return h.setKeypoint(e.SkeletonID, e.Part, &e.New)
	case EditDeleteKeypoint:
		return h.setKeypoint(e.SkeletonID, e.Part, nil)
	case EditResetAll:
		h.store.ResetAll()
		return nil
	default:
		return fmt.Errorf("reapply: unknown edit type %T", e)
	}
}

// setKeypoint restores a recorded position verbatim, without re-clamping.
func (h *History) setKeypoint(id int, part string, p *skeleton.Point) error {
	s := h.store.find(id)
	if s == nil {
		return fmt.Errorf("restore keypoint %d/%s: %w", id, part, ErrNotFound)
	}
	if p == nil {
		s.Keypoints[part] = nil
		return nil
	}
	cp := *p
	s.Keypoints[part] = &cp
	return nil
}
