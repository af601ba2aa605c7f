package horizon

import (
	"context"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
	"go.uber.org/zap"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/errors"
)

// Operation result codes Horizon reports for the expected submission
// conditions that drive orchestration branching.
const (
	opAlreadyExists = "op_already_exists"
	opNoDestination = "op_no_destination"
)

// NewLedger writes to the successor chain on behalf of the funding
// account.
type NewLedger struct {
	client     Client
	funding    *keypair.Full
	channels   *ChannelPool
	passphrase string
	baseFee    int64
	log        *zap.Logger
}

var _ migrate.NewLedger = (*NewLedger)(nil)

// NewNewLedger returns a gateway submitting transactions signed by
// funding through the given channel pool. The base fee is zero for a
// whitelisted funding account and the minimum network fee otherwise.
func NewNewLedger(client Client, funding *keypair.Full, channels *ChannelPool, passphrase string, baseFee int64, log *zap.Logger) *NewLedger {
	return &NewLedger{
		client:     client,
		funding:    funding,
		channels:   channels,
		passphrase: passphrase,
		baseFee:    baseFee,
		log:        log,
	}
}

func (g *NewLedger) AccountExists(ctx context.Context, addr migrate.Address) (bool, error) {
	_, err := g.client.AccountDetail(horizonclient.AccountRequest{AccountID: string(addr)})
	switch {
	case err == nil:
		return true, nil
	case horizonclient.IsNotFoundError(err):
		return false, nil
	default:
		return false, errors.Wrap(err, "account detail")
	}
}

func (g *NewLedger) CreateAccount(ctx context.Context, addr migrate.Address, opening migrate.Amount) (migrate.SubmitResult, error) {
	op := txnbuild.CreateAccount{
		Destination:   string(addr),
		Amount:        opening.String(),
		SourceAccount: g.funding.Address(),
	}
	return g.submit(ctx, &op, map[string]migrate.Outcome{
		opAlreadyExists: migrate.OutcomeDestinationExists,
	})
}

func (g *NewLedger) Pay(ctx context.Context, addr migrate.Address, amount migrate.Amount) (migrate.SubmitResult, error) {
	op := txnbuild.Payment{
		Destination:   string(addr),
		Amount:        amount.String(),
		Asset:         txnbuild.NativeAsset{},
		SourceAccount: g.funding.Address(),
	}
	return g.submit(ctx, &op, map[string]migrate.Outcome{
		opNoDestination: migrate.OutcomeDestinationMissing,
	})
}

// submit builds, signs and submits a single-operation transaction
// through a pooled channel. Submission failures whose operation result
// code appears in expected are returned as that outcome; anything else
// is an error.
func (g *NewLedger) submit(ctx context.Context, op txnbuild.Operation, expected map[string]migrate.Outcome) (migrate.SubmitResult, error) {
	channel, err := g.channels.Acquire(ctx)
	if err != nil {
		return migrate.SubmitResult{}, err
	}
	defer g.channels.Release(channel)

	acc, err := g.client.AccountDetail(horizonclient.AccountRequest{AccountID: channel.Address()})
	if err != nil {
		return migrate.SubmitResult{}, errors.Wrapf(err, "channel %s sequence", channel.Address())
	}
	source := txnbuild.NewSimpleAccount(channel.Address(), acc.Sequence)

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &source,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              g.baseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewInfiniteTimeout(),
		},
	})
	if err != nil {
		return migrate.SubmitResult{}, errors.Wrap(err, "build transaction")
	}
	tx, err = tx.Sign(g.passphrase, channel, g.funding)
	if err != nil {
		return migrate.SubmitResult{}, errors.Wrap(err, "sign transaction")
	}

	resp, err := g.client.SubmitTransaction(tx)
	if err != nil {
		if outcome, ok := submitOutcome(err, expected); ok {
			return migrate.SubmitResult{Outcome: outcome}, nil
		}
		return migrate.SubmitResult{}, errors.Wrap(err, "submit transaction")
	}
	return migrate.SubmitResult{TxRef: resp.Hash, Outcome: migrate.OutcomeOK}, nil
}

// submitOutcome inspects a Horizon submission error for one of the
// expected operation result codes.
func submitOutcome(err error, expected map[string]migrate.Outcome) (migrate.Outcome, bool) {
	herr := horizonclient.GetError(err)
	if herr == nil {
		return 0, false
	}
	codes, err := herr.ResultCodes()
	if err != nil {
		return 0, false
	}
	for _, code := range codes.OperationCodes {
		if outcome, ok := expected[code]; ok {
			return outcome, true
		}
	}
	return 0, false
}

// Status reports the funding account balance and channel pool usage
// for the operational endpoint.
func (g *NewLedger) Status(ctx context.Context) (*migrate.LedgerStatus, error) {
	acc, err := g.client.AccountDetail(horizonclient.AccountRequest{AccountID: g.funding.Address()})
	if err != nil {
		return nil, errors.Wrap(err, "funding account detail")
	}
	raw, err := acc.GetNativeBalance()
	if err != nil {
		return nil, errors.Wrap(err, "native balance")
	}
	balance, err := migrate.ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	total, free := g.channels.Stats()
	return &migrate.LedgerStatus{
		Address:       migrate.Address(g.funding.Address()),
		Balance:       balance,
		TotalChannels: total,
		FreeChannels:  free,
	}, nil
}
