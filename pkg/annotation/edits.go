package annotation

import "github.com/mlenz/keymark/pkg/skeleton"

// Edit is one reversible operation against a Store. It is a closed sum:
// the concrete types below are the only implementations, and History matches
// them exhaustively, so adding an edit kind is a compile-visible change.
//
// Every record is self-sufficient: it carries the snapshots needed to invert
// and reapply itself without consulting anything beyond a store lookup by id.
type Edit interface {
	isEdit()
}

// EditAddSkeleton records a skeleton creation. Skeleton is a deep snapshot
// taken at creation time; its id is reused verbatim on redo so that an
// undo/redo pair restores the identical identity.
type EditAddSkeleton struct {
	Skeleton *skeleton.Skeleton
}

// EditMoveKeypoint records a single keypoint move. Dragging emits one record
// per pointer-move callback, each with the position immediately prior to that
// specific move, so a drag undoes as a dense sequence of micro-moves.
type EditMoveKeypoint struct {
	SkeletonID int
	Part       string
	Old        *skeleton.Point // nil if the keypoint was absent before the move
	New        skeleton.Point
}

// EditDeleteKeypoint records a keypoint deletion.
type EditDeleteKeypoint struct {
	SkeletonID int
	Part       string
	Old        *skeleton.Point
}

// EditResetAll records a bulk reset with the prior skeleton sequence.
type EditResetAll struct {
	Prior []*skeleton.Skeleton
}

func (EditAddSkeleton) isEdit()    {}
func (EditMoveKeypoint) isEdit()   {}
func (EditDeleteKeypoint) isEdit() {}
func (EditResetAll) isEdit()       {}
