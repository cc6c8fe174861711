// Package cache provides pluggable byte caches used to memoize expensive
// dataset work across CLI invocations: image dimension probes, dataset
// statistics, and rendered topology artifacts. Backends range from a simple
// file cache for local use to Redis and MongoDB for shared deployments.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented cache with optional per-entry TTL.
// A zero TTL means the entry never expires.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the tool's cacheable workloads.
type Keyer interface {
	// ProbeKey identifies an image dimension probe. Size and modification
	// time are part of the key so a rewritten image never serves a stale
	// probe result.
	ProbeKey(path string, size int64, modTime time.Time) string

	// StatsKey identifies aggregated statistics over a dataset directory.
	// The labels hash covers the content of every label file, so any edit
	// invalidates the entry.
	StatsKey(root string, labelsHash string) string

	// ArtifactKey identifies a rendered topology artifact.
	ArtifactKey(variant string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the rendering options folded into an artifact key.
type ArtifactKeyOpts struct {
	Format string
	Layout string
}

// DefaultKeyer is the standard key scheme. Keys are namespaced by workload
// and carry a SHA-256 hash of the identifying components.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ProbeKey generates a key for an image dimension probe.
func (k *DefaultKeyer) ProbeKey(path string, size int64, modTime time.Time) string {
	return hashKey("probe", path, size, modTime.UnixNano())
}

// StatsKey generates a key for dataset statistics.
func (k *DefaultKeyer) StatsKey(root string, labelsHash string) string {
	return hashKey("stats", root, labelsHash)
}

// ArtifactKey generates a key for a rendered topology artifact.
func (k *DefaultKeyer) ArtifactKey(variant string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", variant, opts)
}

// Options configures Open.
type Options struct {
	// Backend selects the cache implementation: "file", "redis", "mongo"
	// or "none".
	Backend string

	// Dir is the cache directory for the file backend.
	Dir string

	// RedisAddr is the host:port of the Redis server.
	RedisAddr string

	// RedisPassword is the optional Redis auth password.
	RedisPassword string

	// RedisDB is the Redis logical database number.
	RedisDB int

	// MongoURI is the MongoDB connection string.
	MongoURI string

	// MongoDatabase is the MongoDB database holding the cache collection.
	MongoDatabase string
}

// Open constructs the cache backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileCache(opts.Dir)
	case "redis":
		return NewRedisCache(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case "mongo":
		return NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase)
	case "none":
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
