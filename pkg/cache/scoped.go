package cache

import "time"

// ScopedKeyer wraps a Keyer with a prefix so multiple datasets can share one
// backend without key collisions. The cache subcommands scope keys by the
// dataset root they operate on.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ProbeKey generates a prefixed key for an image dimension probe.
func (k *ScopedKeyer) ProbeKey(path string, size int64, modTime time.Time) string {
	return k.prefix + k.inner.ProbeKey(path, size, modTime)
}

// StatsKey generates a prefixed key for dataset statistics.
func (k *ScopedKeyer) StatsKey(root string, labelsHash string) string {
	return k.prefix + k.inner.StatsKey(root, labelsHash)
}

// ArtifactKey generates a prefixed key for a rendered topology artifact.
func (k *ScopedKeyer) ArtifactKey(variant string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(variant, opts)
}
