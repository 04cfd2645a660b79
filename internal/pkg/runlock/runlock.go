// Package runlock guarantees at most one in-flight run of a batch job.
package runlock

import (
	"context"
	"errors"
	"time"
)

// ErrLocked is returned by Acquire when another holder owns the key
var ErrLocked = errors.New("runlock: lock already held")

type Locker interface {
	// Acquire takes the lock for key. The lock expires after ttl even if the
	// holder dies without releasing it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

type Lease interface {
	Release(ctx context.Context) error
}
