// Package view maps between on-screen pointer coordinates and image-space
// pixel coordinates, and resolves pointer hits against skeleton keypoints.
package view

import (
	"github.com/mlenz/keymark/pkg/skeleton"
)

// Zoom stepping bounds. One wheel notch changes zoom by ZoomStep; the level
// never drops below MinZoom.
const (
	MinZoom  = 0.1
	ZoomStep = 0.1
)

// Point is a view-space pointer coordinate in screen pixels.
type Point struct {
	X, Y float64
}

// Transform holds the current zoom factor and pan offset of the viewport.
//
// Rendering scales image space by Zoom and then translates by the pan offset;
// ToImage is the exact inverse of that transform. Keeping the two
// mathematically inverse is what prevents click and drag drift.
type Transform struct {
	Zoom float64
	PanX int
	PanY int
}

// NewTransform returns the identity transform (zoom 1.0, no pan).
func NewTransform() Transform {
	return Transform{Zoom: 1.0}
}

// ToImage converts a view-space pointer position to image space:
// (view - pan) / zoom.
func (t Transform) ToImage(p Point) skeleton.Point {
	return skeleton.Point{
		X: (p.X - float64(t.PanX)) / t.Zoom,
		Y: (p.Y - float64(t.PanY)) / t.Zoom,
	}
}

// ToView converts an image-space position back to view space. It is the
// inverse of ToImage and matches the rendering transform.
func (t Transform) ToView(p skeleton.Point) Point {
	return Point{
		X: p.X*t.Zoom + float64(t.PanX),
		Y: p.Y*t.Zoom + float64(t.PanY),
	}
}

// ZoomIn increases the zoom level by one step.
func (t *Transform) ZoomIn() {
	t.ZoomBy(ZoomStep)
}

// ZoomOut decreases the zoom level by one step, clamped at MinZoom.
func (t *Transform) ZoomOut() {
	t.ZoomBy(-ZoomStep)
}

// ZoomBy adjusts the zoom level by delta, clamped at MinZoom.
func (t *Transform) ZoomBy(delta float64) {
	t.Zoom += delta
	if t.Zoom < MinZoom {
		t.Zoom = MinZoom
	}
}

// PanBy shifts the pan offset by a view-space delta.
func (t *Transform) PanBy(dx, dy int) {
	t.PanX += dx
	t.PanY += dy
}

// Clamp restricts an image-space point to [0,width-1] x [0,height-1].
// Out-of-canvas coordinates are meaningless in image space, so every keypoint
// assignment goes through this clamp.
func Clamp(p skeleton.Point, width, height int) skeleton.Point {
	if p.X < 0 {
		p.X = 0
	} else if max := float64(width - 1); p.X > max {
		p.X = max
	}
	if p.Y < 0 {
		p.Y = 0
	} else if max := float64(height - 1); p.Y > max {
		p.Y = max
	}
	return p
}
