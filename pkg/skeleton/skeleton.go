package skeleton

// Point is an image-space pixel coordinate. Coordinates are non-negative for
// any point stored on a skeleton; view-space conversion and clamping happen
// before assignment.
type Point struct {
	X, Y float64
}

// Skeleton is one annotated instance of a variant's keypoint layout.
//
// Keypoints maps every part of the variant's part list to a position, or to
// nil when the keypoint is absent. Absence is a first-class value: the
// operator deleted the point or it was never set. The map holds exactly the
// variant's parts as keys and no others.
//
// A Skeleton is exclusively owned by an annotation store. Edit history holds
// snapshots, never live references.
type Skeleton struct {
	ID       int
	Variant  Variant
	Keypoints map[string]*Point
}

// New creates a skeleton with every keypoint placed at its default offset
// from anchor, per the variant's topology table.
func New(id int, v Variant, anchor Point) *Skeleton {
	t := v.Topology()
	kp := make(map[string]*Point, len(t.Parts))
	for _, o := range t.DefaultOffsets {
		kp[o.Part] = &Point{X: anchor.X + o.DX, Y: anchor.Y + o.DY}
	}
	return &Skeleton{ID: id, Variant: v, Keypoints: kp}
}

// NewEmpty creates a skeleton with every keypoint absent.
func NewEmpty(id int, v Variant) *Skeleton {
	parts := v.Parts()
	kp := make(map[string]*Point, len(parts))
	for _, p := range parts {
		kp[p] = nil
	}
	return &Skeleton{ID: id, Variant: v, Keypoints: kp}
}

// Keypoint returns the position of the named part and whether it is present.
func (s *Skeleton) Keypoint(part string) (Point, bool) {
	if p := s.Keypoints[part]; p != nil {
		return *p, true
	}
	return Point{}, false
}

// PresentCount returns the number of keypoints with a position.
func (s *Skeleton) PresentCount() int {
	n := 0
	for _, p := range s.Keypoints {
		if p != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy. Mutating the copy never touches the original.
func (s *Skeleton) Clone() *Skeleton {
	kp := make(map[string]*Point, len(s.Keypoints))
	for part, p := range s.Keypoints {
		if p == nil {
			kp[part] = nil
			continue
		}
		cp := *p
		kp[part] = &cp
	}
	return &Skeleton{ID: s.ID, Variant: s.Variant, Keypoints: kp}
}
