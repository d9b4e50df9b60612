// Package cache stores filtered images so repeated runs of a deterministic
// chain skip decoding and filtering.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for several `imgfilter serve` instances
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives keys from the content hash of the input bitmap, the
// canonical chain string and the seed. [ScopedKeyer] prefixes keys so one
// Redis database can serve several tenants.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value and true on a hit; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// TTLResult is how long a filtered image stays cached.
const TTLResult = 7 * 24 * time.Hour

// KeyTypeResult is the key type reported to cache hooks.
const KeyTypeResult = "result"

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey identifies the output of running chain on the input whose
	// content hash is inputHash. seed is nil for unseeded runs.
	ResultKey(inputHash, chain string, seed *uint64) string
}

// DefaultKeyer produces "result:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey hashes the input hash, chain and seed together.
func (DefaultKeyer) ResultKey(inputHash, chain string, seed *uint64) string {
	s := "-"
	if seed != nil {
		s = fmt.Sprint(*seed)
	}
	return hashKey(KeyTypeResult, inputHash, chain, s)
}
