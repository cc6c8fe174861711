package annotation

import (
	"errors"
	"testing"

	"github.com/mlenz/keymark/pkg/skeleton"
)

func center() skeleton.Point { return skeleton.Point{X: 320, Y: 240} }

func TestAddSkeletonAllocatesSmallestFreeID(t *testing.T) {
	st := NewStore(640, 480)

	for want := 1; want <= 3; want++ {
		s := st.AddSkeleton(skeleton.Lmg, center())
		if s.ID != want {
			t.Fatalf("id = %d, want %d", s.ID, want)
		}
	}

	// Removing id 2 from {1,2,3} makes 2 the next allocation, not 4.
	if err := st.RemoveSkeleton(2); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s := st.AddSkeleton(skeleton.Rifle, center()); s.ID != 2 {
		t.Errorf("id after reuse = %d, want 2", s.ID)
	}
	if s := st.AddSkeleton(skeleton.Rifle, center()); s.ID != 4 {
		t.Errorf("next id = %d, want 4", s.ID)
	}
}

func TestRemoveSkeletonNotFound(t *testing.T) {
	st := NewStore(640, 480)
	st.AddSkeleton(skeleton.Lmg, center())

	err := st.RemoveSkeleton(99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if st.Len() != 1 {
		t.Errorf("failed remove must not mutate the store")
	}
}

func TestMoveKeypointClamps(t *testing.T) {
	tests := []struct {
		name string
		in   skeleton.Point
		want skeleton.Point
	}{
		{name: "Inside", in: skeleton.Point{X: 10, Y: 10}, want: skeleton.Point{X: 10, Y: 10}},
		{name: "Outside", in: skeleton.Point{X: -5, Y: 10000}, want: skeleton.Point{X: 0, Y: 479}},
		{name: "RightEdge", in: skeleton.Point{X: 640, Y: 0}, want: skeleton.Point{X: 639, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewStore(640, 480)
			s := st.AddSkeleton(skeleton.Lmg, center())

			_, moved, err := st.MoveKeypoint(s.ID, "butt", tt.in)
			if err != nil {
				t.Fatalf("move: %v", err)
			}
			if moved != tt.want {
				t.Errorf("moved = (%v,%v), want (%v,%v)", moved.X, moved.Y, tt.want.X, tt.want.Y)
			}
			got, ok := s.Keypoint("butt")
			if !ok || got != tt.want {
				t.Errorf("stored = (%v,%v) ok=%v, want (%v,%v)", got.X, got.Y, ok, tt.want.X, tt.want.Y)
			}
		})
	}
}

func TestMoveKeypointReturnsPriorPosition(t *testing.T) {
	st := NewStore(640, 480)
	s := st.AddSkeleton(skeleton.Lmg, center())

	old, _, err := st.MoveKeypoint(s.ID, "butt", skeleton.Point{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	// Default butt position is anchor + (-100, 0).
	if old == nil || old.X != 220 || old.Y != 240 {
		t.Errorf("old = %+v, want (220,240)", old)
	}

	// The returned prior position must be a snapshot, not the live pointer.
	old2, _, _ := st.MoveKeypoint(s.ID, "butt", skeleton.Point{X: 60, Y: 60})
	if old2 == nil || old2.X != 50 {
		t.Errorf("old after second move = %+v, want (50,50)", old2)
	}
	st.MoveKeypoint(s.ID, "butt", skeleton.Point{X: 70, Y: 70})
	if old2.X != 50 {
		t.Error("prior-position snapshot was mutated by a later move")
	}
}

func TestMoveKeypointInvalidPart(t *testing.T) {
	st := NewStore(640, 480)
	s := st.AddSkeleton(skeleton.Lmg, center())

	_, _, err := st.MoveKeypoint(s.ID, "barrel", skeleton.Point{X: 1, Y: 1})
	if !errors.Is(err, ErrInvalidPart) {
		t.Errorf("err = %v, want ErrInvalidPart", err)
	}

	_, _, err = st.MoveKeypoint(42, "butt", skeleton.Point{X: 1, Y: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteKeypoint(t *testing.T) {
	st := NewStore(640, 480)
	s := st.AddSkeleton(skeleton.Rifle, center())

	old, err := st.DeleteKeypoint(s.ID, "barrel")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if old == nil {
		t.Fatal("expected prior position for a present keypoint")
	}
	if _, ok := s.Keypoint("barrel"); ok {
		t.Error("keypoint still present after delete")
	}

	// Deleting an absent keypoint succeeds with a nil prior position.
	old, err = st.DeleteKeypoint(s.ID, "barrel")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if old != nil {
		t.Errorf("old = %+v, want nil", old)
	}

	if _, err := st.DeleteKeypoint(7, "barrel"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResetAll(t *testing.T) {
	st := NewStore(640, 480)
	st.AddSkeleton(skeleton.Lmg, center())
	st.AddSkeleton(skeleton.Rifle, center())
	st.RemoveSkeleton(1)

	st.ResetAll()
	if st.Len() != 0 {
		t.Errorf("len = %d, want 0", st.Len())
	}
	if s := st.AddSkeleton(skeleton.Lmg, center()); s.ID != 1 {
		t.Errorf("id after reset = %d, want 1", s.ID)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	st := NewStore(640, 480)
	s := st.AddSkeleton(skeleton.Lmg, center())

	snap := st.Snapshot()
	st.MoveKeypoint(s.ID, "butt", skeleton.Point{X: 1, Y: 1})

	butt, ok := snap[0].Keypoint("butt")
	if !ok || butt.X != 220 {
		t.Errorf("snapshot butt = (%v,%v), want pre-move (220,240)", butt.X, butt.Y)
	}
}
