package migratetest

import (
	"context"
	"sync"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/errors"
)

// KV is an in-memory, thread safe implementation of the migrate.KV
// contract.
type KV struct {
	mu sync.Mutex
	// Err is returned by every operation when set. SetErr fails only
	// writes, reads keep working.
	Err    error
	SetErr error
	values map[string]string
}

var _ migrate.KV = (*KV)(nil)

func NewKV() *KV {
	return &KV{values: make(map[string]string)}
}

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", false, s.Err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.SetErr != nil {
		return s.SetErr
	}
	s.values[key] = value
	return nil
}

// Locker is an in-process implementation of the migrate.Locker
// contract. Lock acquisition blocks until the lock is free or the
// context is done, in which case errors.ErrLockTimeout is returned.
type Locker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

var _ migrate.Locker = (*Locker)(nil)

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]chan struct{})}
}

func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return errors.Wrapf(errors.ErrLockTimeout, "key %q", key)
	}
	defer func() { <-ch }()
	return fn(ctx)
}
