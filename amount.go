package migrate

import (
	"github.com/stellar/go/amount"

	"github.com/iov-one/migrate/errors"
)

// Amount is a balance in the smallest unit of the migrated asset. The
// ledger uses seven decimal places, so one whole token is 10^7 units.
// Amounts in this package are never negative.
type Amount int64

// ParseAmount converts a decimal string as returned by the ledger into
// an Amount.
func ParseAmount(s string) (Amount, error) {
	v, err := amount.ParseInt64(s)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidAmount, "parse %q: %s", s, err)
	}
	if v < 0 {
		return 0, errors.Wrapf(errors.ErrInvalidAmount, "negative amount %q", s)
	}
	return Amount(v), nil
}

// String renders the amount as a decimal string in whole tokens, the
// format the ledger accepts in transaction operations.
func (a Amount) String() string {
	return amount.StringFromInt64(int64(a))
}

func (a Amount) IsZero() bool {
	return a == 0
}

// Tokens returns the amount in whole tokens, for metric emission where
// precision loss is acceptable.
func (a Amount) Tokens() float64 {
	return float64(a) / 1e7
}

// MarshalJSON renders the amount as a plain JSON number with seven
// decimal places, matching what callers were served before.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}
