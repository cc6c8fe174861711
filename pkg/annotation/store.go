// Package annotation owns the live skeleton collection for one image and the
// undo/redo log over it.
//
// The Store is the single mutation point for all edits: identity allocation,
// keypoint moves and deletions, and bulk reset all go through it. History
// wraps those mutations into reversible records. Both are exclusively owned
// by one editing session and are reset when a new image is loaded; neither is
// safe for concurrent use.
package annotation

import (
	"fmt"

	"github.com/mlenz/keymark/pkg/skeleton"
	"github.com/mlenz/keymark/pkg/view"
)

// Store holds the live skeletons for the image currently being edited.
//
// Skeleton order is insertion order and is significant: it drives render
// order, hit-test priority, and the line order of saved label files.
type Store struct {
	skeletons []*skeleton.Skeleton
	retired   map[int]struct{}
	width     int
	height    int
}

// NewStore creates an empty store for an image of the given pixel dimensions.
func NewStore(width, height int) *Store {
	return &Store{
		retired: make(map[int]struct{}),
		width:   width,
		height:  height,
	}
}

// Width returns the image width the store clamps against.
func (st *Store) Width() int { return st.width }

// Height returns the image height the store clamps against.
func (st *Store) Height() int { return st.height }

// Skeletons returns the live skeletons in insertion order. The returned
// slice is shared; callers must not mutate it or the skeletons directly.
func (st *Store) Skeletons() []*skeleton.Skeleton {
	return st.skeletons
}

// Len returns the number of live skeletons.
func (st *Store) Len() int { return len(st.skeletons) }

// NextID returns the smallest positive integer not used by a live skeleton.
// Ids of removed skeletons become available again, so after removing id 2
// from {1,2,3} the next allocation yields 2, not 4.
func (st *Store) NextID() int {
	live := make(map[int]struct{}, len(st.skeletons))
	for _, s := range st.skeletons {
		live[s.ID] = struct{}{}
	}
	for id := 1; ; id++ {
		if _, taken := live[id]; !taken {
			return id
		}
	}
}

// AddSkeleton creates a skeleton of the given variant with default keypoint
// positions around anchor, assigns it the next free id, and appends it.
//
// The store does not touch history; the caller records the edit, storing the
// chosen id so a redo reproduces it verbatim instead of recomputing.
func (st *Store) AddSkeleton(v skeleton.Variant, anchor skeleton.Point) *skeleton.Skeleton {
	s := skeleton.New(st.NextID(), v, anchor)
	st.insert(s)
	return s
}

// RemoveSkeleton removes the skeleton with the given id and retires the id
// for reuse. Returns ErrNotFound if the id is not live.
func (st *Store) RemoveSkeleton(id int) error {
	for i, s := range st.skeletons {
		if s.ID == id {
			st.skeletons = append(st.skeletons[:i], st.skeletons[i+1:]...)
			st.retired[id] = struct{}{}
			return nil
		}
	}
	return fmt.Errorf("remove skeleton %d: %w", id, ErrNotFound)
}

// MoveKeypoint sets the named keypoint's position, clamped to the image
// bounds. It returns the position immediately prior to the move (nil when
// the keypoint was absent) and the clamped position actually stored, for the
// caller's edit record.
func (st *Store) MoveKeypoint(id int, part string, p skeleton.Point) (old *skeleton.Point, moved skeleton.Point, err error) {
	s := st.find(id)
	if s == nil {
		return nil, skeleton.Point{}, fmt.Errorf("move keypoint %d/%s: %w", id, part, ErrNotFound)
	}
	if !s.Variant.HasPart(part) {
		return nil, skeleton.Point{}, fmt.Errorf("move keypoint %d/%s: %w", id, part, ErrInvalidPart)
	}

	moved = view.Clamp(p, st.width, st.height)
	old = s.Keypoints[part]
	if old != nil {
		cp := *old
		old = &cp
	}
	s.Keypoints[part] = &skeleton.Point{X: moved.X, Y: moved.Y}
	return old, moved, nil
}

// DeleteKeypoint marks the named keypoint absent and returns its prior
// position (nil when it was already absent).
func (st *Store) DeleteKeypoint(id int, part string) (*skeleton.Point, error) {
	s := st.find(id)
	if s == nil {
		return nil, fmt.Errorf("delete keypoint %d/%s: %w", id, part, ErrNotFound)
	}
	if !s.Variant.HasPart(part) {
		return nil, fmt.Errorf("delete keypoint %d/%s: %w", id, part, ErrInvalidPart)
	}

	old := s.Keypoints[part]
	if old != nil {
		cp := *old
		old = &cp
	}
	s.Keypoints[part] = nil
	return old, nil
}

// ResetAll removes every skeleton and clears the retired id set.
func (st *Store) ResetAll() {
	st.skeletons = nil
	st.retired = make(map[int]struct{})
}

// Snapshot returns a deep copy of the live skeleton sequence. History
// records hold snapshots because in-place mutation would otherwise corrupt
// stored undo state.
func (st *Store) Snapshot() []*skeleton.Skeleton {
	out := make([]*skeleton.Skeleton, len(st.skeletons))
	for i, s := range st.skeletons {
		out[i] = s.Clone()
	}
	return out
}

// SetSkeletons replaces the live collection with a deep copy of list and
// clears the retired id set. Used when loading annotations from disk and
// when undoing a reset.
func (st *Store) SetSkeletons(list []*skeleton.Skeleton) {
	st.skeletons = make([]*skeleton.Skeleton, len(list))
	for i, s := range list {
		st.skeletons[i] = s.Clone()
	}
	st.retired = make(map[int]struct{})
}

// insert appends a skeleton and un-retires its id.
func (st *Store) insert(s *skeleton.Skeleton) {
	delete(st.retired, s.ID)
	st.skeletons = append(st.skeletons, s)
}

func (st *Store) find(id int) *skeleton.Skeleton {
	for _, s := range st.skeletons {
		if s.ID == id {
			return s
		}
	}
	return nil
}
