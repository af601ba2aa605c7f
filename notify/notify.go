// Package notify delivers migration completion callbacks to an internal
// service. Delivery is best effort and never affects the outcome of a
// migration.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"go.uber.org/zap"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/errors"
)

// Doer is implemented by *http.Client.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// InternalService informs a backend about migrated wallets so the
// backend can stop offering migration for them.
type InternalService struct {
	client   Doer
	base     string
	attempts int
	delay    time.Duration
	log      *zap.Logger
}

func NewInternalService(client Doer, base string, log *zap.Logger) *InternalService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &InternalService{
		client:   client,
		base:     base,
		attempts: 3,
		delay:    time.Second,
		log:      log,
	}
}

// AccountMigrated implements migration.Notifier. Failures are logged
// and swallowed; the wallet is migrated whether or not the backend
// heard about it.
func (s *InternalService) AccountMigrated(ctx context.Context, addr migrate.Address) {
	url := fmt.Sprintf("%s/v1/internal/wallets/%s/burnt", s.base, addr)
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return s.put(ctx, url)
		},
		Attempts:    s.attempts,
		Delay:       s.delay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       clock.WallClock,
		Stop:        ctx.Done(),
	})
	if err != nil {
		s.log.Warn("migration callback failed",
			zap.String("address", string(addr)),
			zap.String("url", url),
			zap.Error(err))
	}
}

func (s *InternalService) put(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(errors.ErrState, "callback status %d", resp.StatusCode)
	}
	return nil
}
