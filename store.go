package migrate

import "context"

// KV is the minimal contract of the external key-value store used for
// idempotency bookkeeping. Entries have no expiry; every fact recorded
// through it is either monotonic or protected by the per-address lock.
type KV interface {
	// Get returns the value stored under key. The second return
	// value is false when the key is not present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
}

// Locker provides mutual exclusion per key across all processes of the
// service. Acquisition waits up to a bound configured by the
// implementation and fails with errors.ErrLockTimeout afterwards,
// without fn having been called.
type Locker interface {
	// WithLock runs fn while holding the lock for key. The lock is
	// released on every exit path, including a panic inside fn.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
