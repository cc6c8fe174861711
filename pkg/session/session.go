// Package session owns the editing state for one image at a time: the
// annotation store with its undo history, the view transform, the current
// selection and drag, and persistence of label files.
//
// # Architecture
//
// A Session is the single owner of its store and history; switching images
// resets both, so no state leaks across images. Interaction arrives as
// discrete events (pointer down/move/up, key actions) and every event runs
// to completion before the next is handled. Persistence goes through the FS
// interface, so tests and remote backends can substitute the filesystem.
//
// # Usage
//
//	sess := session.New(session.Options{SaveDir: "labels"})
//	if err := sess.OpenImage(ctx, "frames/001.png", 1920, 1080); err != nil {
//	    return err
//	}
//	sess.PointerDown(view.Point{X: 320, Y: 240})
//	sess.PointerMove(view.Point{X: 330, Y: 250})
//	sess.PointerUp()
//	if err := sess.Save(ctx); err != nil {
//	    return err
//	}
package session

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mlenz/keymark/pkg/annotation"
	"github.com/mlenz/keymark/pkg/imagefile"
	"github.com/mlenz/keymark/pkg/observability"
	"github.com/mlenz/keymark/pkg/skeleton"
	"github.com/mlenz/keymark/pkg/view"
)

// Sentinel errors for session operations.
var (
	// ErrNoSelection is returned when an operation needs a selected keypoint
	// and none is selected.
	ErrNoSelection = errors.New("no keypoint selected")

	// ErrNoImage is returned when an operation needs a loaded image.
	ErrNoImage = errors.New("no image loaded")
)

// Options configures a new Session. Zero values select working defaults.
type Options struct {
	// SaveDir is the directory label files are read from and written to.
	SaveDir string

	// Tolerance is the keypoint grab radius in image pixels.
	Tolerance float64

	// ZoomStep is the zoom change per zoom action.
	ZoomStep float64

	// FS is the persistence backend. Defaults to the OS filesystem.
	FS FS

	// Logger receives session events. Defaults to the standard logger.
	Logger *log.Logger
}

// Session is one image-editing session.
type Session struct {
	id       string
	logger   *log.Logger
	fs       FS
	saveDir  string
	zoomStep float64

	imagePath string
	store     *annotation.Store
	history   *annotation.History
	transform view.Transform
	hit       *view.HitTester

	selected *view.Hit
	dragging bool
}

// New creates a session with no image loaded.
func New(opts Options) *Session {
	if opts.SaveDir == "" {
		opts.SaveDir = "labels"
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = view.DefaultTolerance
	}
	if opts.ZoomStep <= 0 {
		opts.ZoomStep = view.ZoomStep
	}
	if opts.FS == nil {
		opts.FS = NewOSFS()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Session{
		id:        uuid.NewString(),
		logger:    opts.Logger,
		fs:        opts.FS,
		saveDir:   opts.SaveDir,
		zoomStep:  opts.ZoomStep,
		transform: view.NewTransform(),
		hit:       &view.HitTester{Tolerance: opts.Tolerance},
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// ImagePath returns the path of the loaded image, or "" if none.
func (s *Session) ImagePath() string { return s.imagePath }

// Dimensions returns the loaded image's pixel size.
func (s *Session) Dimensions() (width, height int) {
	if s.store == nil {
		return 0, 0
	}
	return s.store.Width(), s.store.Height()
}

// Skeletons returns a deep snapshot of the current skeletons for rendering.
func (s *Session) Skeletons() []*skeleton.Skeleton {
	if s.store == nil {
		return nil
	}
	return s.store.Snapshot()
}

// Selected returns the currently selected keypoint, if any.
func (s *Session) Selected() (view.Hit, bool) {
	if s.selected == nil {
		return view.Hit{}, false
	}
	return *s.selected, true
}

// Transform returns the current view transform.
func (s *Session) Transform() view.Transform { return s.transform }

// CanUndo reports whether an undo is available.
func (s *Session) CanUndo() bool { return s.history != nil && s.history.CanUndo() }

// CanRedo reports whether a redo is available.
func (s *Session) CanRedo() bool { return s.history != nil && s.history.CanRedo() }

// OpenImage switches the session to a new image, discarding all per-image
// state, and loads any existing label file for it.
func (s *Session) OpenImage(ctx context.Context, path string, width, height int) error {
	s.imagePath = path
	s.store = annotation.NewStore(width, height)
	s.history = annotation.NewHistory(s.store)
	s.transform = view.NewTransform()
	s.selected = nil
	s.dragging = false

	if err := s.load(ctx); err != nil {
		return err
	}
	observability.Session().OnOpen(ctx, path, s.store.Len())
	s.logger.Debug("opened image", "session", s.id, "path", path,
		"size", width*height, "skeletons", s.store.Len())
	return nil
}

// PointerDown resolves a hit at the pointer position. A hit selects the
// keypoint and starts a drag; a miss clears the selection.
func (s *Session) PointerDown(p view.Point) (view.Hit, bool) {
	if s.store == nil {
		return view.Hit{}, false
	}
	hit, ok := s.hit.Find(s.transform, p, s.store.Skeletons())
	if ok {
		s.selected = &hit
		s.dragging = true
	} else {
		s.selected = nil
	}
	return hit, ok
}

// PointerMove drags the selected keypoint to the pointer position. Each move
// is recorded individually, so a drag undoes as the same dense sequence it
// was performed in.
func (s *Session) PointerMove(p view.Point) error {
	if !s.dragging || s.selected == nil {
		return nil
	}
	old, moved, err := s.store.MoveKeypoint(s.selected.SkeletonID, s.selected.Part, s.transform.ToImage(p))
	if err != nil {
		s.logger.Warn("drag target vanished", "session", s.id, "error", err)
		s.dragging = false
		return err
	}
	s.history.Record(annotation.EditMoveKeypoint{
		SkeletonID: s.selected.SkeletonID,
		Part:       s.selected.Part,
		Old:        old,
		New:        moved,
	})
	observability.Session().OnEdit("move-keypoint")
	return nil
}

// PointerUp ends the current drag. The selection stays.
func (s *Session) PointerUp() {
	s.dragging = false
}

// AddSkeleton creates a skeleton of the given variant with its default
// keypoint layout anchored at the image center.
func (s *Session) AddSkeleton(v skeleton.Variant) (*skeleton.Skeleton, error) {
	if s.store == nil {
		return nil, ErrNoImage
	}
	anchor := skeleton.Point{
		X: float64(s.store.Width()) / 2,
		Y: float64(s.store.Height()) / 2,
	}
	sk := s.store.AddSkeleton(v, anchor)
	s.history.Record(annotation.EditAddSkeleton{Skeleton: sk.Clone()})
	observability.Session().OnEdit("add-skeleton")
	s.logger.Debug("added skeleton", "session", s.id, "variant", v.String(), "id", sk.ID)
	return sk, nil
}

// DeleteSelected marks the selected keypoint absent and clears the selection.
func (s *Session) DeleteSelected() error {
	if s.selected == nil {
		return ErrNoSelection
	}
	old, err := s.store.DeleteKeypoint(s.selected.SkeletonID, s.selected.Part)
	if err != nil {
		return err
	}
	s.history.Record(annotation.EditDeleteKeypoint{
		SkeletonID: s.selected.SkeletonID,
		Part:       s.selected.Part,
		Old:        old,
	})
	observability.Session().OnEdit("delete-keypoint")
	s.selected = nil
	s.dragging = false
	return nil
}

// Reset removes every skeleton. A reset of an already empty store records
// nothing.
func (s *Session) Reset() error {
	if s.store == nil {
		return ErrNoImage
	}
	if s.store.Len() == 0 {
		return nil
	}
	prior := s.store.Snapshot()
	s.store.ResetAll()
	s.history.Record(annotation.EditResetAll{Prior: prior})
	observability.Session().OnEdit("reset-all")
	s.selected = nil
	s.dragging = false
	return nil
}

// Undo reverts the most recent edit.
func (s *Session) Undo() error {
	if s.history == nil {
		return ErrNoImage
	}
	s.selected = nil
	s.dragging = false
	return s.history.Undo()
}

// Redo reapplies the most recently undone edit.
func (s *Session) Redo() error {
	if s.history == nil {
		return ErrNoImage
	}
	s.selected = nil
	s.dragging = false
	return s.history.Redo()
}

// ZoomIn increases the zoom by the configured step.
func (s *Session) ZoomIn() { s.transform.ZoomBy(s.zoomStep) }

// ZoomOut decreases the zoom by the configured step.
func (s *Session) ZoomOut() { s.transform.ZoomBy(-s.zoomStep) }

// PanBy shifts the viewport by a view-space delta.
func (s *Session) PanBy(dx, dy int) { s.transform.PanBy(dx, dy) }

// Action is a discrete key-driven operation tag delivered by a UI layer.
type Action string

// Key-driven actions.
const (
	ActionAddLmg   Action = "add-lmg"
	ActionAddRifle Action = "add-rifle"
	ActionDelete   Action = "delete"
	ActionReset    Action = "reset"
	ActionUndo     Action = "undo"
	ActionRedo     Action = "redo"
	ActionZoomIn   Action = "zoom-in"
	ActionZoomOut  Action = "zoom-out"

	// Dataset-level actions, handled by Navigator.Apply.
	ActionSave Action = "save"
	ActionNext Action = "next"
	ActionPrev Action = "prev"
)

// Apply dispatches a key action to the matching operation.
func (s *Session) Apply(action Action) error {
	switch action {
	case ActionAddLmg:
		_, err := s.AddSkeleton(skeleton.Lmg)
		return err
	case ActionAddRifle:
		_, err := s.AddSkeleton(skeleton.Rifle)
		return err
	case ActionDelete:
		return s.DeleteSelected()
	case ActionReset:
		return s.Reset()
	case ActionUndo:
		return s.Undo()
	case ActionRedo:
		return s.Redo()
	case ActionZoomIn:
		s.ZoomIn()
		return nil
	case ActionZoomOut:
		s.ZoomOut()
		return nil
	default:
		return errors.New("unknown action " + string(action))
	}
}

// labelPath returns the label file path for the loaded image.
func (s *Session) labelPath() string {
	return imagefile.LabelPath(s.imagePath, s.saveDir)
}
