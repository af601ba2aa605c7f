package rediskv

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/juju/clock"
	"github.com/juju/retry"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/errors"
)

// releaseScript deletes the lock key only when it still holds our
// token, so an expired lock taken over by another process is never
// released by us.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// Lock implements migrate.Locker on Redis. Acquisition polls a SET NX
// key and gives up after the configured wait; the key expires after
// ttl in case the holder dies without releasing.
type Lock struct {
	rdb   *redis.Client
	clock clock.Clock
	wait  time.Duration
	ttl   time.Duration
	poll  time.Duration
}

var _ migrate.Locker = (*Lock)(nil)

// NewLock returns a locker that waits up to wait for acquisition and
// holds keys for at most ttl. The ttl must comfortably exceed the
// longest critical section; an expired lock degrades the service to
// the ledger-level race fallback.
func NewLock(rdb *redis.Client, wait, ttl time.Duration) *Lock {
	return &Lock{
		rdb:   rdb,
		clock: clock.WallClock,
		wait:  wait,
		ttl:   ttl,
		poll:  50 * time.Millisecond,
	}
}

func (l *Lock) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token, err := newToken()
	if err != nil {
		return err
	}

	err = retry.Call(retry.CallArgs{
		Func: func() error {
			ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
			if err != nil {
				return errors.Wrapf(err, "acquire %q", key)
			}
			if !ok {
				return errors.Wrapf(errors.ErrLockTimeout, "%q is held", key)
			}
			return nil
		},
		// Redis being unreachable will not get better within the
		// wait bound, fail fast.
		IsFatalError: func(err error) bool {
			return !errors.ErrLockTimeout.Is(err)
		},
		Attempts:    retry.UnlimitedAttempts,
		Delay:       l.poll,
		MaxDuration: l.wait,
		Clock:       l.clock,
		Stop:        ctx.Done(),
	})
	switch {
	case err == nil:
	case retry.IsDurationExceeded(err), retry.IsRetryStopped(err):
		return errors.Wrapf(errors.ErrLockTimeout, "%q after %s", key, l.wait)
	default:
		return err
	}

	// Release on every exit path. A panic inside fn still releases
	// before propagating. Best effort: the key expires on its own, a
	// lost release only lengthens the wait of the next caller.
	defer func() {
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.rdb.Eval(rctx, releaseScript, []string{key}, token)
	}()
	return fn(ctx)
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", errors.Wrap(err, "lock token")
	}
	return hex.EncodeToString(b[:]), nil
}
