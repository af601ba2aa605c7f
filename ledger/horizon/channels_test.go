package horizon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSeed = "SDO3BNCOUDHYLUT5FQ537PZZUPBTMSTRCQOCDJE3XF22LP7DPIUP2SDF"

func TestChannelDerivationIsDeterministic(t *testing.T) {
	a, err := NewChannelPool(testSeed, "local", 3)
	require.NoError(t, err)
	b, err := NewChannelPool(testSeed, "local", 3)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ka, err := a.Acquire(ctx)
		require.NoError(t, err)
		kb, err := b.Acquire(ctx)
		require.NoError(t, err)
		require.Equal(t, ka.Address(), kb.Address(), "channel %d", i)
	}
}

func TestChannelDerivationDependsOnSalt(t *testing.T) {
	a, err := NewChannelPool(testSeed, "local", 1)
	require.NoError(t, err)
	b, err := NewChannelPool(testSeed, "other", 1)
	require.NoError(t, err)

	ctx := context.Background()
	ka, err := a.Acquire(ctx)
	require.NoError(t, err)
	kb, err := b.Acquire(ctx)
	require.NoError(t, err)
	require.NotEqual(t, ka.Address(), kb.Address())
}

func TestChannelPoolBlocksWhenExhausted(t *testing.T) {
	pool, err := NewChannelPool(testSeed, "local", 1)
	require.NoError(t, err)

	ctx := context.Background()
	kp, err := pool.Acquire(ctx)
	require.NoError(t, err)

	total, free := pool.Stats()
	require.Equal(t, 1, total)
	require.Equal(t, 0, free)

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(short)
	require.Error(t, err)

	pool.Release(kp)
	_, free = pool.Stats()
	require.Equal(t, 1, free)
}

func TestChannelPoolRejectsBadCount(t *testing.T) {
	_, err := NewChannelPool(testSeed, "local", 0)
	require.Error(t, err)
}
