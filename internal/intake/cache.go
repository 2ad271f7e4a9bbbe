package intake

import (
	"context"
	"time"
)

// Cache is the injectable store behind the intake guard. Implementations must
// make each operation atomic per key so two concurrent requests cannot both
// slip past the rate limit. Entries expire after their TTL; Sweep reclaims
// expired entries and may be called opportunistically.
type Cache interface {
	// Incr increments the counter at key and returns the new value. The first
	// increment arms the key's TTL; later increments within the window do not
	// extend it, so the window rolls over as a unit.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// PutIfAbsent records key for ttl unless it is already present and
	// unexpired. It returns true when the key was stored.
	PutIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Sweep drops expired entries.
	Sweep(ctx context.Context) error
}
