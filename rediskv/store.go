// Package rediskv implements the key-value and distributed lock
// contracts on Redis, the store shared by all instances of the
// service.
package rediskv

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/errors"
)

// Store implements migrate.KV. Entries are written without expiry;
// the facts recorded by the service are permanent.
type Store struct {
	rdb *redis.Client
}

var _ migrate.KV = (*Store)(nil)

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrapf(err, "get %q", key)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}
