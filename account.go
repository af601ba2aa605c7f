package migrate

import (
	"github.com/stellar/go/strkey"

	"github.com/iov-one/migrate/errors"
)

// Asset identifies a credit asset on the old ledger by its code and
// issuing account. Both must match for a balance line to count.
type Asset struct {
	Code   string
	Issuer string
}

func (a Asset) Validate() error {
	if a.Code == "" {
		return errors.Wrap(errors.ErrEmpty, "asset code")
	}
	if !strkey.IsValidEd25519PublicKey(a.Issuer) {
		return errors.Wrapf(errors.ErrInvalidAddress, "asset issuer %q", a.Issuer)
	}
	return nil
}

// Signer is one entry of an account's signer set.
type Signer struct {
	Key    string
	Weight int32
}

// BalanceLine is one per-asset balance of an account.
type BalanceLine struct {
	Asset  Asset
	Amount Amount
}

// AccountRecord is a snapshot of an old ledger account at query time:
// its signer set and its balances.
type AccountRecord struct {
	Address  Address
	Signers  []Signer
	Balances []BalanceLine
}

// Burned returns true if the account was deliberately deactivated.
// There are other ways to lock an account down, but this is the one
// the migration recognizes: the master key is the only signer left and
// its weight is zero. Burning is irreversible, so a true result is
// stable forever.
func (r *AccountRecord) Burned() bool {
	return len(r.Signers) == 1 && r.Signers[0].Weight == 0
}

// Balance returns the amount the account holds in the given asset. A
// missing balance line means the account never held the asset and is
// reported as zero, not as an error.
func (r *AccountRecord) Balance(asset Asset) Amount {
	for _, b := range r.Balances {
		if b.Asset == asset {
			return b.Amount
		}
	}
	return 0
}
