package migrate

import (
	"github.com/stellar/go/strkey"

	"github.com/iov-one/migrate/errors"
)

// Address is a ledger account identifier. Both ledgers use the same
// strkey encoding, so a single address names the account on either
// side of the migration.
type Address string

func (a Address) String() string {
	return string(a)
}

// Validate ensures the address is a well formed ed25519 public key in
// strkey encoding. It must be called once on every address crossing
// the trust boundary; components receiving an address from an already
// validated source do not validate again.
func (a Address) Validate() error {
	if len(a) == 0 {
		return errors.Wrap(errors.ErrInvalidAddress, "empty")
	}
	if !strkey.IsValidEd25519PublicKey(string(a)) {
		return errors.Wrapf(errors.ErrInvalidAddress, "%q", string(a))
	}
	return nil
}
