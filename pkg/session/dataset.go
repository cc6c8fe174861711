package session

import (
	"context"
	"errors"

	"github.com/mlenz/keymark/pkg/imagefile"
)

// ErrNoImages is returned when a dataset directory holds no image files.
var ErrNoImages = errors.New("no images in dataset")

// Dataset is the sorted image listing of a directory with a cursor.
// Navigation wraps around at both ends.
type Dataset struct {
	files []string
	index int
}

// OpenDataset lists the image files directly inside dir.
func OpenDataset(dir string) (*Dataset, error) {
	files, err := imagefile.List(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	return &Dataset{files: files}, nil
}

// Len returns the number of images.
func (d *Dataset) Len() int { return len(d.files) }

// Index returns the cursor position.
func (d *Dataset) Index() int { return d.index }

// Current returns the image path at the cursor.
func (d *Dataset) Current() string { return d.files[d.index] }

// Files returns the full listing in navigation order.
func (d *Dataset) Files() []string { return d.files }

// Next advances the cursor, wrapping to the first image after the last.
func (d *Dataset) Next() string {
	d.index = (d.index + 1) % len(d.files)
	return d.files[d.index]
}

// Prev moves the cursor back, wrapping to the last image before the first.
func (d *Dataset) Prev() string {
	d.index = (d.index - 1 + len(d.files)) % len(d.files)
	return d.files[d.index]
}

// Seek moves the cursor to position i.
func (d *Dataset) Seek(i int) error {
	if i < 0 || i >= len(d.files) {
		return errors.New("dataset index out of range")
	}
	d.index = i
	return nil
}

// Navigator steps a Session through a Dataset. When auto-save is on, moving
// to another image saves the current one first; a failed save aborts the
// navigation so nothing is lost.
type Navigator struct {
	session  *Session
	dataset  *Dataset
	prober   *imagefile.Prober
	autoSave bool
}

// NewNavigator couples a session to a dataset. The prober supplies image
// dimensions and may be nil for an uncached prober.
func NewNavigator(s *Session, d *Dataset, p *imagefile.Prober, autoSave bool) *Navigator {
	if p == nil {
		p = imagefile.NewProber(nil, nil)
	}
	return &Navigator{session: s, dataset: d, prober: p, autoSave: autoSave}
}

// Dataset returns the underlying dataset.
func (n *Navigator) Dataset() *Dataset { return n.dataset }

// Open loads the image at the dataset cursor into the session.
func (n *Navigator) Open(ctx context.Context) error {
	path := n.dataset.Current()
	dims, err := n.prober.Probe(ctx, path)
	if err != nil {
		return err
	}
	return n.session.OpenImage(ctx, path, dims.Width, dims.Height)
}

// Next saves if configured, then opens the next image.
func (n *Navigator) Next(ctx context.Context) error {
	if err := n.saveCurrent(ctx); err != nil {
		return err
	}
	n.dataset.Next()
	return n.Open(ctx)
}

// Prev saves if configured, then opens the previous image.
func (n *Navigator) Prev(ctx context.Context) error {
	if err := n.saveCurrent(ctx); err != nil {
		return err
	}
	n.dataset.Prev()
	return n.Open(ctx)
}

// Apply dispatches a key action, handling save and navigation itself and
// delegating per-image actions to the session.
func (n *Navigator) Apply(ctx context.Context, action Action) error {
	switch action {
	case ActionSave:
		return n.session.Save(ctx)
	case ActionNext:
		return n.Next(ctx)
	case ActionPrev:
		return n.Prev(ctx)
	default:
		return n.session.Apply(action)
	}
}

func (n *Navigator) saveCurrent(ctx context.Context) error {
	if !n.autoSave || n.session.ImagePath() == "" {
		return nil
	}
	return n.session.Save(ctx)
}
