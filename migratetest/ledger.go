package migratetest

import (
	"context"
	"sync"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/errors"
)

// OldLedger serves scripted account records.
type OldLedger struct {
	mu sync.Mutex
	// Err is returned by every call when set.
	Err      error
	Accounts map[migrate.Address]*migrate.AccountRecord
	// GetCalls counts GetAccount invocations, cached paths must not
	// increase it.
	GetCalls int
}

var _ migrate.OldLedger = (*OldLedger)(nil)

func NewOldLedger() *OldLedger {
	return &OldLedger{Accounts: make(map[migrate.Address]*migrate.AccountRecord)}
}

func (l *OldLedger) GetAccount(ctx context.Context, addr migrate.Address) (*migrate.AccountRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.GetCalls++
	if l.Err != nil {
		return nil, l.Err
	}
	rec, ok := l.Accounts[addr]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s", addr)
	}
	return rec, nil
}

// BurnedRecord returns an account record that satisfies the burn
// predicate and holds the given balance of the asset.
func BurnedRecord(addr migrate.Address, asset migrate.Asset, balance migrate.Amount) *migrate.AccountRecord {
	return &migrate.AccountRecord{
		Address: addr,
		Signers: []migrate.Signer{{Key: string(addr), Weight: 0}},
		Balances: []migrate.BalanceLine{
			{Asset: asset, Amount: balance},
		},
	}
}

// Call records one mutating new ledger operation.
type Call struct {
	Op     string // "create" or "pay"
	Addr   migrate.Address
	Amount migrate.Amount
}

// NewLedger simulates the successor ledger: an account set with
// default submission semantics (create fails on an existing
// destination, pay fails on a missing one) and a record of all
// mutating calls. The zero-value behavior can be overridden per
// operation to script races.
type NewLedger struct {
	mu       sync.Mutex
	Existing map[migrate.Address]bool
	// Err is returned by every call when set.
	Err error
	// CreateFunc and PayFunc override the default behavior when set.
	CreateFunc func(addr migrate.Address, amount migrate.Amount) (migrate.SubmitResult, error)
	PayFunc    func(addr migrate.Address, amount migrate.Amount) (migrate.SubmitResult, error)

	Calls       []Call
	ExistsCalls int
}

var _ migrate.NewLedger = (*NewLedger)(nil)

func NewNewLedger() *NewLedger {
	return &NewLedger{Existing: make(map[migrate.Address]bool)}
}

func (l *NewLedger) AccountExists(ctx context.Context, addr migrate.Address) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ExistsCalls++
	if l.Err != nil {
		return false, l.Err
	}
	return l.Existing[addr], nil
}

func (l *NewLedger) CreateAccount(ctx context.Context, addr migrate.Address, opening migrate.Amount) (migrate.SubmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls = append(l.Calls, Call{Op: "create", Addr: addr, Amount: opening})
	if l.Err != nil {
		return migrate.SubmitResult{}, l.Err
	}
	if l.CreateFunc != nil {
		return l.CreateFunc(addr, opening)
	}
	if l.Existing[addr] {
		return migrate.SubmitResult{Outcome: migrate.OutcomeDestinationExists}, nil
	}
	l.Existing[addr] = true
	return migrate.SubmitResult{TxRef: "tx-create", Outcome: migrate.OutcomeOK}, nil
}

func (l *NewLedger) Pay(ctx context.Context, addr migrate.Address, amount migrate.Amount) (migrate.SubmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls = append(l.Calls, Call{Op: "pay", Addr: addr, Amount: amount})
	if l.Err != nil {
		return migrate.SubmitResult{}, l.Err
	}
	if l.PayFunc != nil {
		return l.PayFunc(addr, amount)
	}
	if !l.Existing[addr] {
		return migrate.SubmitResult{Outcome: migrate.OutcomeDestinationMissing}, nil
	}
	return migrate.SubmitResult{TxRef: "tx-pay", Outcome: migrate.OutcomeOK}, nil
}

func (l *NewLedger) Status(ctx context.Context) (*migrate.LedgerStatus, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return &migrate.LedgerStatus{
		Address:       "GC46XF47MU4NUBBSQJ4KZWLZLN37UECP2TI2IQRYLRUBNGMADHKZBFGL",
		Balance:       1000000000,
		TotalChannels: 10,
		FreeChannels:  10,
	}, nil
}

// MutatingCalls returns only the ledger writes, for at-most-once
// assertions.
func (l *NewLedger) MutatingCalls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Call, len(l.Calls))
	copy(out, l.Calls)
	return out
}
