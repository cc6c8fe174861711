package view

import (
	"math"
	"testing"

	"github.com/mlenz/keymark/pkg/skeleton"
)

func TestTransformRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
		view Point
	}{
		{name: "Identity", tr: NewTransform(), view: Point{X: 10, Y: 20}},
		{name: "Zoomed", tr: Transform{Zoom: 2.5}, view: Point{X: 100, Y: 50}},
		{name: "Panned", tr: Transform{Zoom: 1.0, PanX: 30, PanY: -12}, view: Point{X: 5, Y: 5}},
		{name: "ZoomedAndPanned", tr: Transform{Zoom: 0.4, PanX: -7, PanY: 19}, view: Point{X: 333, Y: 111}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := tt.tr.ToImage(tt.view)
			back := tt.tr.ToView(img)
			if math.Abs(back.X-tt.view.X) > 1e-9 || math.Abs(back.Y-tt.view.Y) > 1e-9 {
				t.Errorf("round trip = (%v,%v), want (%v,%v)", back.X, back.Y, tt.view.X, tt.view.Y)
			}
		})
	}
}

func TestToImage(t *testing.T) {
	tr := Transform{Zoom: 2.0, PanX: 10, PanY: 20}
	got := tr.ToImage(Point{X: 110, Y: 120})
	if got.X != 50 || got.Y != 50 {
		t.Errorf("ToImage = (%v,%v), want (50,50)", got.X, got.Y)
	}
}

func TestZoomSteps(t *testing.T) {
	tr := NewTransform()
	tr.ZoomIn()
	if math.Abs(tr.Zoom-1.1) > 1e-9 {
		t.Errorf("zoom = %v, want 1.1", tr.Zoom)
	}
	for i := 0; i < 50; i++ {
		tr.ZoomOut()
	}
	if tr.Zoom != MinZoom {
		t.Errorf("zoom = %v, want floor %v", tr.Zoom, MinZoom)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name  string
		in    skeleton.Point
		want  skeleton.Point
	}{
		{name: "Inside", in: skeleton.Point{X: 100, Y: 100}, want: skeleton.Point{X: 100, Y: 100}},
		{name: "NegativeX", in: skeleton.Point{X: -5, Y: 10000}, want: skeleton.Point{X: 0, Y: 479}},
		{name: "BothOver", in: skeleton.Point{X: 700, Y: 500}, want: skeleton.Point{X: 639, Y: 479}},
		{name: "BothNegative", in: skeleton.Point{X: -1, Y: -1}, want: skeleton.Point{X: 0, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.in, 640, 480); got != tt.want {
				t.Errorf("Clamp = (%v,%v), want (%v,%v)", got.X, got.Y, tt.want.X, tt.want.Y)
			}
		})
	}
}

func TestHitTesterFind(t *testing.T) {
	a := skeleton.NewEmpty(1, skeleton.Lmg)
	a.Keypoints["butt"] = &skeleton.Point{X: 100, Y: 100}
	b := skeleton.NewEmpty(2, skeleton.Lmg)
	b.Keypoints["trigger"] = &skeleton.Point{X: 100, Y: 100}
	skels := []*skeleton.Skeleton{a, b}

	h := NewHitTester()

	t.Run("WithinTolerance", func(t *testing.T) {
		hit, ok := h.Find(NewTransform(), Point{X: 105, Y: 100}, skels)
		if !ok {
			t.Fatal("expected a hit")
		}
		if hit.SkeletonID != 1 || hit.Part != "butt" {
			t.Errorf("hit = %+v, want skeleton 1 butt", hit)
		}
	})

	t.Run("OutsideTolerance", func(t *testing.T) {
		if _, ok := h.Find(NewTransform(), Point{X: 115, Y: 100}, skels); ok {
			t.Error("expected a miss at distance 15")
		}
	})

	t.Run("FirstMatchWinsDeterministically", func(t *testing.T) {
		// Both skeletons have a keypoint at the exact same position; the
		// earlier skeleton must win on every call.
		for i := 0; i < 10; i++ {
			hit, ok := h.Find(NewTransform(), Point{X: 100, Y: 100}, skels)
			if !ok {
				t.Fatal("expected a hit")
			}
			if hit.SkeletonID != 1 {
				t.Fatalf("call %d resolved skeleton %d, want 1", i, hit.SkeletonID)
			}
		}
	})

	t.Run("PartOrderBreaksTies", func(t *testing.T) {
		c := skeleton.NewEmpty(3, skeleton.Lmg)
		c.Keypoints["butt"] = &skeleton.Point{X: 50, Y: 50}
		c.Keypoints["cover"] = &skeleton.Point{X: 50, Y: 50}
		hit, ok := h.Find(NewTransform(), Point{X: 50, Y: 50}, []*skeleton.Skeleton{c})
		if !ok {
			t.Fatal("expected a hit")
		}
		// "butt" precedes "cover" in the LMG part order.
		if hit.Part != "butt" {
			t.Errorf("hit part = %q, want butt", hit.Part)
		}
	})

	t.Run("ZoomedTransform", func(t *testing.T) {
		tr := Transform{Zoom: 2.0, PanX: 10, PanY: 10}
		// View (210,210) maps to image (100,100).
		hit, ok := h.Find(tr, Point{X: 210, Y: 210}, skels)
		if !ok || hit.SkeletonID != 1 {
			t.Errorf("hit = %+v ok=%v, want skeleton 1", hit, ok)
		}
	})

	t.Run("AbsentKeypointsIgnored", func(t *testing.T) {
		empty := skeleton.NewEmpty(9, skeleton.Lmg)
		if _, ok := h.Find(NewTransform(), Point{X: 100, Y: 100}, []*skeleton.Skeleton{empty}); ok {
			t.Error("absent keypoints must never hit")
		}
	})
}
