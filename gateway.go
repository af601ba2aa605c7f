package migrate

import (
	"context"
	"fmt"
)

// OldLedger is read only access to the deprecated ledger.
type OldLedger interface {
	// GetAccount fetches the current snapshot of an account. It
	// returns errors.ErrNotFound when the address does not exist on
	// the old ledger.
	GetAccount(ctx context.Context, addr Address) (*AccountRecord, error)
}

// Outcome classifies the result of a new ledger write. Conditions that
// drive branching in the orchestrator are expected results, not
// failures, and are therefore returned as values rather than errors.
type Outcome uint8

const (
	// OutcomeOK means the submitted transaction was applied.
	OutcomeOK Outcome = iota
	// OutcomeDestinationExists means an account creation failed
	// because the destination already exists.
	OutcomeDestinationExists
	// OutcomeDestinationMissing means a payment failed because the
	// destination does not exist.
	OutcomeDestinationMissing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDestinationExists:
		return "destination exists"
	case OutcomeDestinationMissing:
		return "destination missing"
	default:
		return fmt.Sprintf("invalid outcome (%d)", o)
	}
}

// SubmitResult is the outcome of a single new ledger write, together
// with a transaction reference for audit when one was produced.
type SubmitResult struct {
	TxRef   string
	Outcome Outcome
}

// LedgerStatus is an operational snapshot of the funding account and
// its submission channel pool.
type LedgerStatus struct {
	Address       Address
	Balance       Amount
	TotalChannels int
	FreeChannels  int
}

// NewLedger is read and write access to the successor ledger. All
// writes go through a pooled signing channel owned by the
// implementation.
type NewLedger interface {
	// AccountExists reports whether the address exists on the new
	// ledger.
	AccountExists(ctx context.Context, addr Address) (bool, error)

	// CreateAccount creates the account with the given opening
	// balance. A destination that turns out to already exist is
	// reported through the result, not as an error.
	CreateAccount(ctx context.Context, addr Address, opening Amount) (SubmitResult, error)

	// Pay sends the given amount to an existing account. A
	// destination that turns out not to exist is reported through
	// the result, not as an error.
	Pay(ctx context.Context, addr Address, amount Amount) (SubmitResult, error)

	// Status reports the funding account snapshot.
	Status(ctx context.Context) (*LedgerStatus, error)
}
