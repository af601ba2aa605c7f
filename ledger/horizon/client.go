package horizon

import (
	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"
)

// Client is the subset of the Horizon client consumed by the
// gateways. *horizonclient.Client satisfies it.
type Client interface {
	AccountDetail(request horizonclient.AccountRequest) (hProtocol.Account, error)
	SubmitTransaction(tx *txnbuild.Transaction) (hProtocol.Transaction, error)
}

var _ Client = (*horizonclient.Client)(nil)
