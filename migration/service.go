package migration

import (
	"context"

	"go.uber.org/zap"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/cache"
	"github.com/iov-one/migrate/errors"
)

// Recorder receives completion events for metric emission.
type Recorder interface {
	// MigrationCompleted is called once per successful migration.
	// preExisting tells whether the destination account existed
	// before, zero whether the migrated balance was zero.
	MigrationCompleted(preExisting, zero bool, amount migrate.Amount)
}

// Notifier is informed after a migration completed. Implementations
// must not fail the migration; delivery is best effort.
type Notifier interface {
	AccountMigrated(ctx context.Context, addr migrate.Address)
}

// NopRecorder and NopNotifier are used when no metric or notification
// sink is configured.
type (
	NopRecorder struct{}
	NopNotifier struct{}
)

func (NopRecorder) MigrationCompleted(bool, bool, migrate.Amount) {}

func (NopNotifier) AccountMigrated(context.Context, migrate.Address) {}

// Service orchestrates migrations: it owns the decision which new
// ledger operations to perform and the at-most-once bookkeeping, but
// neither the ledger state nor the store content.
type Service struct {
	verifier *Verifier
	ledger   migrate.NewLedger
	cache    *cache.Idempotency
	locker   migrate.Locker
	recorder Recorder
	notifier Notifier
	log      *zap.Logger
}

func NewService(
	verifier *Verifier,
	ledger migrate.NewLedger,
	c *cache.Idempotency,
	locker migrate.Locker,
	recorder Recorder,
	notifier Notifier,
	log *zap.Logger,
) *Service {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		verifier: verifier,
		ledger:   ledger,
		cache:    c,
		locker:   locker,
		recorder: recorder,
		notifier: notifier,
		log:      log,
	}
}

// lockKey is the distributed lock key schema. Shared with any other
// process migrating the same address space.
func lockKey(addr migrate.Address) string {
	return "migrating:" + string(addr)
}

// Migrate moves the burned old ledger balance of addr to the new
// ledger, exactly once. It returns the delivered balance as computed
// from the old ledger, so callers need no follow-up query.
//
// The whole decision procedure runs under the per-address lock. A lock
// acquisition timeout surfaces as errors.ErrLockTimeout with no ledger
// mutation performed. A previously completed migration surfaces as
// errors.ErrAlreadyMigrated.
func (s *Service) Migrate(ctx context.Context, addr migrate.Address) (migrate.Amount, error) {
	if err := addr.Validate(); err != nil {
		return 0, err
	}

	var (
		delivered   migrate.Amount
		preExisting bool
	)
	err := s.locker.WithLock(ctx, lockKey(addr), func(ctx context.Context) error {
		migrated, err := s.cache.IsMigrated(ctx, addr)
		if err != nil {
			return err
		}
		if migrated {
			return errors.Wrapf(errors.ErrAlreadyMigrated, "%s", addr)
		}

		balance, err := s.verifier.BurnedBalance(ctx, addr)
		if err != nil {
			return err
		}
		exists, err := s.hasNewAccount(ctx, addr)
		if err != nil {
			return err
		}
		s.log.Info("migrating account",
			zap.String("address", string(addr)),
			zap.String("balance", balance.String()),
			zap.Bool("pre_existing", exists))

		if err := s.deliver(ctx, addr, balance, exists); err != nil {
			return err
		}

		if err := s.cache.SetMigrated(ctx, addr); err != nil {
			return err
		}
		delivered = balance
		preExisting = exists
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("migration complete",
		zap.String("address", string(addr)),
		zap.String("balance", delivered.String()))
	s.recorder.MigrationCompleted(preExisting, delivered.IsZero(), delivered)
	s.notifier.AccountMigrated(ctx, addr)
	return delivered, nil
}

// deliver performs the minimal sequence of new ledger writes that
// makes the balance exist on the destination.
func (s *Service) deliver(ctx context.Context, addr migrate.Address, balance migrate.Amount, exists bool) error {
	if balance.IsZero() {
		if exists {
			// Nothing to move, nothing to create. Common for
			// accounts pre-provisioned in bulk.
			return nil
		}
		res, err := s.ledger.CreateAccount(ctx, addr, 0)
		if err != nil {
			return errors.Wrap(err, "create empty account")
		}
		// A destination that appeared in the meantime is exactly
		// the state we wanted.
		if res.Outcome == migrate.OutcomeDestinationExists {
			s.log.Info("empty account already created elsewhere",
				zap.String("address", string(addr)))
		}
		return s.recordExistence(ctx, addr)
	}

	if exists {
		res, err := s.ledger.Pay(ctx, addr, balance)
		if err != nil {
			return errors.Wrap(err, "pay")
		}
		switch res.Outcome {
		case migrate.OutcomeOK:
			return nil
		case migrate.OutcomeDestinationMissing:
			// The cached existence was stale. The ledger is
			// authoritative, fall through to creation.
			s.log.Warn("destination vanished, creating instead",
				zap.String("address", string(addr)))
		default:
			return errors.Wrapf(errors.ErrState, "pay outcome %s", res.Outcome)
		}
	}

	res, err := s.ledger.CreateAccount(ctx, addr, balance)
	if err != nil {
		return errors.Wrap(err, "create funded account")
	}
	switch res.Outcome {
	case migrate.OutcomeOK:
		return s.recordExistence(ctx, addr)
	case migrate.OutcomeDestinationExists:
		// Two concurrent migrations both observed a missing
		// account and raced on creation; we lost. This is the
		// last line of defense against double crediting when the
		// lock was bypassed or expired.
		return errors.Wrapf(errors.ErrAlreadyMigrated, "%s: creation race lost", addr)
	default:
		return errors.Wrapf(errors.ErrState, "create outcome %s", res.Outcome)
	}
}

// hasNewAccount checks the memoized existence fact, falling back to a
// ledger query. Only confirmed existence is recorded; absence may
// become true at any time through out-of-band creation and is
// recomputed on every miss.
func (s *Service) hasNewAccount(ctx context.Context, addr migrate.Address) (bool, error) {
	if ok, err := s.cache.HasNewAccount(ctx, addr); err != nil {
		return false, err
	} else if ok {
		return true, nil
	}
	exists, err := s.ledger.AccountExists(ctx, addr)
	if err != nil {
		return false, errors.Wrap(err, "new ledger")
	}
	if exists {
		if err := s.recordExistence(ctx, addr); err != nil {
			return false, err
		}
	}
	return exists, nil
}

func (s *Service) recordExistence(ctx context.Context, addr migrate.Address) error {
	return s.cache.SetHasNewAccount(ctx, addr)
}

// BurnStatus reports whether the address is burned on the old ledger.
// Unlike Migrate this is a read-only operation with no memoization, so
// a just-performed burn is observed immediately.
func (s *Service) BurnStatus(ctx context.Context, addr migrate.Address) (bool, error) {
	if err := addr.Validate(); err != nil {
		return false, err
	}
	return s.verifier.IsBurned(ctx, addr)
}
