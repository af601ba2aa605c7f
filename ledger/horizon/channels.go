package horizon

import (
	"context"
	"crypto/sha256"
	"strconv"

	"github.com/stellar/go/keypair"

	"github.com/iov-one/migrate/errors"
)

// ChannelPool hands out channel account keypairs for transaction
// submission. Channel seeds are derived deterministically from the
// funding seed and a per-deployment salt, so every instance started
// with the same configuration operates the same accounts. The channel
// accounts themselves are expected to exist on the new ledger.
type ChannelPool struct {
	free chan *keypair.Full
	size int
}

// NewChannelPool derives count channel keypairs from the given seed
// and salt.
func NewChannelPool(seed, salt string, count int) (*ChannelPool, error) {
	if count < 1 {
		return nil, errors.Wrapf(errors.ErrInvalidAmount, "channel count %d", count)
	}
	pool := ChannelPool{
		free: make(chan *keypair.Full, count),
		size: count,
	}
	for i := 0; i < count; i++ {
		raw := sha256.Sum256([]byte(seed + salt + strconv.Itoa(i)))
		kp, err := keypair.FromRawSeed(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "derive channel %d", i)
		}
		pool.free <- kp
	}
	return &pool, nil
}

// Acquire blocks until a channel is free or the context is done.
func (p *ChannelPool) Acquire(ctx context.Context) (*keypair.Full, error) {
	select {
	case kp := <-p.free:
		return kp, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "acquire channel")
	}
}

// Release returns a channel to the pool. Must be called exactly once
// per successful Acquire.
func (p *ChannelPool) Release(kp *keypair.Full) {
	p.free <- kp
}

// Stats reports the pool size and how many channels are currently
// free.
func (p *ChannelPool) Stats() (total, free int) {
	return p.size, len(p.free)
}
