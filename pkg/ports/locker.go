package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes actions on one session across gitquest instances sharing
// a store. Within a single process the session manager's own mutexes are enough.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx is done. The lock expires after ttl even
	// when the holder crashes before calling the returned UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
