package horizon

import (
	"context"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/errors"
)

// OldLedger reads account snapshots from the deprecated chain.
type OldLedger struct {
	client Client
}

var _ migrate.OldLedger = (*OldLedger)(nil)

func NewOldLedger(client Client) *OldLedger {
	return &OldLedger{client: client}
}

func (g *OldLedger) GetAccount(ctx context.Context, addr migrate.Address) (*migrate.AccountRecord, error) {
	acc, err := g.client.AccountDetail(horizonclient.AccountRequest{AccountID: string(addr)})
	switch {
	case err == nil:
	case horizonclient.IsNotFoundError(err):
		return nil, errors.Wrapf(errors.ErrNotFound, "%s", addr)
	default:
		return nil, errors.Wrap(err, "account detail")
	}
	return newAccountRecord(acc)
}

// newAccountRecord converts a Horizon account response into the
// internal snapshot. Balance lines in assets other than credit assets
// are kept as well; matching against the migration asset happens in
// the record.
func newAccountRecord(acc hProtocol.Account) (*migrate.AccountRecord, error) {
	rec := migrate.AccountRecord{
		Address: migrate.Address(acc.AccountID),
		Signers: make([]migrate.Signer, 0, len(acc.Signers)),
	}
	for _, s := range acc.Signers {
		rec.Signers = append(rec.Signers, migrate.Signer{
			Key:    s.Key,
			Weight: s.Weight,
		})
	}
	for _, b := range acc.Balances {
		amount, err := migrate.ParseAmount(b.Balance)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrState, "balance of %s: %s", acc.AccountID, err)
		}
		rec.Balances = append(rec.Balances, migrate.BalanceLine{
			Asset: migrate.Asset{
				Code:   b.Asset.Code,
				Issuer: b.Asset.Issuer,
			},
			Amount: amount,
		})
	}
	return &rec, nil
}
