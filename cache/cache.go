// Package cache records the memoized facts of the migration on top of
// the external key-value store: completion, the verified burned
// balance and new ledger account existence. Every fact kept here is
// either monotonic or written under the per-address lock, so entries
// never need invalidation and are stored without expiry.
package cache

import (
	"context"
	"strconv"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/errors"
)

// Idempotency wraps the raw key-value contract with the key schema of
// the migration service.
type Idempotency struct {
	kv migrate.KV
}

func NewIdempotency(kv migrate.KV) *Idempotency {
	return &Idempotency{kv: kv}
}

func migratedKey(addr migrate.Address) string {
	return "migrated:" + string(addr)
}

func burnedBalanceKey(addr migrate.Address) string {
	return "burned_balance:" + string(addr)
}

func hasNewAccountKey(addr migrate.Address) string {
	return "has_new_account:" + string(addr)
}

// IsMigrated reports whether a migration for the address completed
// before. Presence of the key is the fact, the value does not matter.
func (c *Idempotency) IsMigrated(ctx context.Context, addr migrate.Address) (bool, error) {
	_, ok, err := c.kv.Get(ctx, migratedKey(addr))
	if err != nil {
		return false, errors.Wrap(err, "get migrated")
	}
	return ok, nil
}

// SetMigrated records migration completion. Called exactly once per
// address, under the per-address lock.
func (c *Idempotency) SetMigrated(ctx context.Context, addr migrate.Address) error {
	err := c.kv.Set(ctx, migratedKey(addr), "1")
	return errors.Wrap(err, "set migrated")
}

// BurnedBalance returns the memoized burned balance. Presence of the
// entry implies the account is burned; the value is the balance,
// including zero.
func (c *Idempotency) BurnedBalance(ctx context.Context, addr migrate.Address) (migrate.Amount, bool, error) {
	raw, ok, err := c.kv.Get(ctx, burnedBalanceKey(addr))
	if err != nil {
		return 0, false, errors.Wrap(err, "get burned balance")
	}
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, false, errors.Wrapf(errors.ErrState, "corrupted burned balance %q", raw)
	}
	return migrate.Amount(v), true, nil
}

// SetBurnedBalance memoizes the balance of a verified burn. Burning is
// irreversible, so the entry is stable forever.
func (c *Idempotency) SetBurnedBalance(ctx context.Context, addr migrate.Address, balance migrate.Amount) error {
	err := c.kv.Set(ctx, burnedBalanceKey(addr), strconv.FormatInt(int64(balance), 10))
	return errors.Wrap(err, "set burned balance")
}

// HasNewAccount reports whether account existence on the new ledger
// was confirmed before. A false result only means the fact was not
// recorded yet, never that the account is missing.
func (c *Idempotency) HasNewAccount(ctx context.Context, addr migrate.Address) (bool, error) {
	_, ok, err := c.kv.Get(ctx, hasNewAccountKey(addr))
	if err != nil {
		return false, errors.Wrap(err, "get has new account")
	}
	return ok, nil
}

// SetHasNewAccount records confirmed account existence. Existence is
// monotonic, the entry is never unset.
func (c *Idempotency) SetHasNewAccount(ctx context.Context, addr migrate.Address) error {
	err := c.kv.Set(ctx, hasNewAccountKey(addr), "1")
	return errors.Wrap(err, "set has new account")
}
