package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	kmerrors "github.com/mlenz/keymark/pkg/errors"
	"github.com/mlenz/keymark/pkg/observability"
	"github.com/mlenz/keymark/pkg/pose"
)

// FS is the persistence backend for label files. Reading a missing file must
// return an error satisfying os.IsNotExist; removing a missing file is not an
// error.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Remove(path string) error
}

// osFS is the real filesystem.
type osFS struct{}

// NewOSFS returns the OS filesystem backend.
func NewOSFS() FS {
	return osFS{}
}

func (osFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (osFS) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (osFS) Remove(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Save writes the current annotations to the image's label file. When no
// skeleton has a present keypoint, any existing label file is removed instead
// so empty files never go stale. I/O failures leave in-memory state intact.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return ErrNoImage
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	path := s.labelPath()
	text, err := pose.Encode(s.store.Skeletons(), s.store.Width(), s.store.Height())
	if errors.Is(err, pose.ErrNoAnnotations) {
		if err := s.fs.Remove(path); err != nil {
			observability.Session().OnSave(ctx, path, 0, time.Since(start), err)
			return kmerrors.Wrap(kmerrors.ErrCodeIOFailure, err, "remove stale label file %s", path)
		}
		s.logger.Debug("no annotations, removed label file", "session", s.id, "path", path)
		observability.Session().OnSave(ctx, path, 0, time.Since(start), nil)
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.fs.WriteFile(path, []byte(text+"\n")); err != nil {
		observability.Session().OnSave(ctx, path, s.store.Len(), time.Since(start), err)
		return kmerrors.Wrap(kmerrors.ErrCodeIOFailure, err, "write label file %s", path)
	}
	s.logger.Info("saved labels", "session", s.id, "path", path, "skeletons", s.store.Len())
	observability.Session().OnSave(ctx, path, s.store.Len(), time.Since(start), nil)
	return nil
}

// load reads the image's label file into the store. A missing file means no
// annotations. Malformed lines are skipped with a warning; decoding never
// aborts the whole file.
func (s *Session) load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.labelPath()
	data, err := s.fs.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return kmerrors.Wrap(kmerrors.ErrCodeIOFailure, err, "read label file %s", path)
	}

	skels, skipped := pose.DecodeReport(string(data), s.store.Width(), s.store.Height())
	for _, skipErr := range skipped {
		s.logger.Warn("skipped label line", "session", s.id, "path", path, "error", skipErr)
	}
	s.store.SetSkeletons(skels)
	s.history.Reset()
	return nil
}
