package view

import (
	"math"

	"github.com/mlenz/keymark/pkg/skeleton"
)

// DefaultTolerance is the hit radius around a keypoint, in image pixels.
const DefaultTolerance = 10.0

// Hit identifies a keypoint resolved by a pointer press.
type Hit struct {
	SkeletonID int
	Part       string
}

// HitTester resolves view-space pointer positions to keypoints.
type HitTester struct {
	Tolerance float64
}

// NewHitTester returns a hit tester with the default tolerance.
func NewHitTester() HitTester {
	return HitTester{Tolerance: DefaultTolerance}
}

// Find converts p to image space through t and returns the first present
// keypoint within tolerance, scanning skeletons in iteration order and each
// skeleton's parts in its variant's part order.
//
// The first match wins: when two keypoints overlap, the earlier skeleton (and
// within a skeleton, the earlier part) is selected. This is deliberately not
// a nearest-point search; selection must stay deterministic across calls.
func (h HitTester) Find(t Transform, p Point, skeletons []*skeleton.Skeleton) (Hit, bool) {
	img := t.ToImage(p)
	for _, s := range skeletons {
		for _, part := range s.Variant.Parts() {
			kp := s.Keypoints[part]
			if kp == nil {
				continue
			}
			if math.Hypot(img.X-kp.X, img.Y-kp.Y) <= h.Tolerance {
				return Hit{SkeletonID: s.ID, Part: part}, true
			}
		}
	}
	return Hit{}, false
}
