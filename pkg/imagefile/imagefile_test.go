package imagefile

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlenz/keymark/pkg/cache"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"frame.png", true},
		{"frame.jpg", true},
		{"frame.JPEG", true},
		{"frame.bmp", true},
		{"frame.webp", true},
		{"frame.txt", false},
		{"frame.mp4", false},
		{"frame", false},
	}
	for _, tt := range tests {
		if got := IsImage(tt.name); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestListSortedImagesOnly(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 2, 2)
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want 2 entries", files)
	}
	if filepath.Base(files[0]) != "a.png" || filepath.Base(files[1]) != "b.png" {
		t.Errorf("files not sorted: %v", files)
	}
}

func TestLabelPath(t *testing.T) {
	got := LabelPath("/data/images/frame_004.jpg", "/data/labels")
	want := filepath.Join("/data/labels", "frame_004.txt")
	if got != want {
		t.Errorf("LabelPath = %s, want %s", got, want)
	}
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	writePNG(t, path, 640, 480)

	dims, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if dims.Width != 640 || dims.Height != 480 {
		t.Errorf("dims = %dx%d, want 640x480", dims.Width, dims.Height)
	}
}

func TestProberCaches(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	writePNG(t, path, 320, 240)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	p := NewProber(c, nil)

	dims, err := p.Probe(ctx, path)
	if err != nil {
		t.Fatalf("first probe: %v", err)
	}
	if dims.Width != 320 || dims.Height != 240 {
		t.Errorf("dims = %dx%d, want 320x240", dims.Width, dims.Height)
	}

	// Second probe for an unchanged file must serve the same result.
	dims2, err := p.Probe(ctx, path)
	if err != nil {
		t.Fatalf("second probe: %v", err)
	}
	if dims2 != dims {
		t.Errorf("cached dims = %v, want %v", dims2, dims)
	}
}

func TestProberNilCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	writePNG(t, path, 8, 4)

	p := NewProber(nil, nil)
	dims, err := p.Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if dims.Width != 8 || dims.Height != 4 {
		t.Errorf("dims = %v, want 8x4", dims)
	}
}

func TestScaleKeepsAspect(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		wantW, wantH int
	}{
		{"LandscapeScaledByWidth", 800, 400, 640, 320},
		{"PortraitScaledByHeight", 400, 960, 200, 480},
		{"SquareScaledByHeight", 960, 960, 480, 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewNRGBA(image.Rect(0, 0, tt.srcW, tt.srcH))
			got := Scale(src, 640, 480)
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("scaled to %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestScaleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "out", "dst.png")
	writePNG(t, src, 800, 400)

	if err := ScaleFile(src, dst, 640, 480); err != nil {
		t.Fatalf("ScaleFile: %v", err)
	}
	dims, err := Probe(dst)
	if err != nil {
		t.Fatalf("probe output: %v", err)
	}
	if dims.Width != 640 || dims.Height != 320 {
		t.Errorf("output = %dx%d, want 640x320", dims.Width, dims.Height)
	}
}
