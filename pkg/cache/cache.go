// Package cache provides content-addressed caching for resolved
// compositions.
//
// Resolution is a pure function, so its results are cacheable under a key
// derived from the descriptor's content hash plus the resolution
// parameters (view mode, target size). The pipeline Runner uses this to
// turn recompute-on-change into a cache lookup.
//
// Backends:
//   - FileCache: directory-backed, for CLI usage
//   - RedisCache: shared cache for multi-instance serve deployments
//   - NullCache: no-op, for tests and --no-cache
package cache

import (
	"context"
	"time"
)

// TTLs per entry kind.
const (
	// TTLResult is how long resolved compositions stay cached. Keys are
	// content-addressed, so staleness only matters for disk usage.
	TTLResult = 7 * 24 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ResolveKeyOpts are the resolution parameters that distinguish cache
// entries for the same descriptor.
type ResolveKeyOpts struct {
	View   string
	Width  int
	Height int
}

// Keyer generates cache keys.
type Keyer interface {
	// ResolveKey generates a key for a resolved composition, from the
	// descriptor content hash and the resolution parameters.
	ResolveKey(descriptorHash string, opts ResolveKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ResolveKey generates a key for a resolved composition.
func (k *DefaultKeyer) ResolveKey(descriptorHash string, opts ResolveKeyOpts) string {
	return hashKey("resolve", descriptorHash, opts)
}
