package migration

import (
	"context"

	"go.uber.org/zap"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/cache"
	"github.com/iov-one/migrate/errors"
)

// Verifier answers whether an address is burned on the old ledger and
// what balance it held, memoizing positive answers.
type Verifier struct {
	old   migrate.OldLedger
	cache *cache.Idempotency
	asset migrate.Asset
	log   *zap.Logger
}

// NewVerifier returns a Verifier reading through the given ledger
// gateway and memoizing in the given store. The asset identifies the
// migrated balance on the old ledger.
func NewVerifier(old migrate.OldLedger, c *cache.Idempotency, asset migrate.Asset, log *zap.Logger) *Verifier {
	return &Verifier{
		old:   old,
		cache: c,
		asset: asset,
		log:   log,
	}
}

// BurnedBalance returns the old ledger balance of a burned address.
// The address must be validated by the caller.
//
// A memoized answer short-circuits all ledger I/O. Otherwise the
// account is fetched, the burn predicate checked and, on success, the
// extracted balance memoized before returning. A missing account is
// errors.ErrNotFound, an account that is not burned is
// errors.ErrNotBurned. "Not burned" is a transient fact (the user may
// burn the account and retry) and is never cached; burn plus balance
// are permanent and safe to cache forever.
func (v *Verifier) BurnedBalance(ctx context.Context, addr migrate.Address) (migrate.Amount, error) {
	if balance, ok, err := v.cache.BurnedBalance(ctx, addr); err != nil {
		return 0, err
	} else if ok {
		return balance, nil
	}

	rec, err := v.old.GetAccount(ctx, addr)
	if err != nil {
		return 0, errors.Wrap(err, "old ledger")
	}
	if !rec.Burned() {
		return 0, errors.Wrapf(errors.ErrNotBurned, "%s", addr)
	}
	balance := rec.Balance(v.asset)

	if err := v.cache.SetBurnedBalance(ctx, addr, balance); err != nil {
		// Memoization is an optimization, the verified answer is
		// still good.
		v.log.Warn("cannot memoize burned balance",
			zap.String("address", string(addr)), zap.Error(err))
	}
	return balance, nil
}

// IsBurned reports the current burn state of the address, without
// memoization and without balance extraction. Used by the status
// endpoint, which must observe a burn performed moments ago.
func (v *Verifier) IsBurned(ctx context.Context, addr migrate.Address) (bool, error) {
	rec, err := v.old.GetAccount(ctx, addr)
	if err != nil {
		return false, errors.Wrap(err, "old ledger")
	}
	return rec.Burned(), nil
}
