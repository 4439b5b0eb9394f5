package service

import (
	"context"
	"testing"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreload_WritesDaysWithEstimatedBlocks(t *testing.T) {
	env := newTestEnv(t)
	env.addWallet(t, walletA)
	env.chain.set("native", 1)
	ctx := context.Background()

	summary, err := env.backfill().Preload(ctx, walletA, 3, noon(10), false)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.DaysRequested)
	assert.Equal(t, 3, summary.DaysProcessed)
	assert.Zero(t, summary.DaysSkipped)

	w, err := env.wallets.Get(ctx, walletA)
	require.NoError(t, err)
	eth := w.Series("ETH")
	require.Len(t, eth, 3)
	assert.Equal(t, []entity.Date{may(7), may(8), may(9)}, []entity.Date{eth[0].Date, eth[1].Date, eth[2].Date})
	assert.Equal(t, uint64(1_000_000-3*7200), eth[0].Block)
	assert.Equal(t, uint64(1_000_000-7200), eth[2].Block)
	assert.InDelta(t, 1.0, eth[0].Change, 1e-12)
	assert.Zero(t, eth[2].Change)
}

func TestPreload_SkipsExistingDaysUnlessOverwrite(t *testing.T) {
	env := newTestEnv(t)
	env.addWallet(t, walletA)
	env.chain.set("native", 1)
	ctx := context.Background()
	svc := env.backfill()

	_, err := svc.Preload(ctx, walletA, 2, noon(10), false)
	require.NoError(t, err)

	summary, err := svc.Preload(ctx, walletA, 3, noon(10), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DaysProcessed)
	assert.Equal(t, 2, summary.DaysSkipped)

	summary, err = svc.Preload(ctx, walletA, 3, noon(10), true)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.DaysProcessed)
	assert.Zero(t, summary.DaysSkipped)
}

func TestPreload_AutoExcludesJumps(t *testing.T) {
	env := newTestEnv(t)
	env.addWallet(t, walletA)
	env.chain.atBlock = func(block uint64, key string) float64 {
		if key != "native" {
			return 0
		}
		if block < 990_000 {
			return 100
		}
		return 150
	}
	ctx := context.Background()

	_, err := env.backfill().Preload(ctx, walletA, 3, noon(10), false)
	require.NoError(t, err)

	w, err := env.wallets.Get(ctx, walletA)
	require.NoError(t, err)
	e, _, ok := w.Series("ETH").Find(may(9))
	require.True(t, ok)
	assert.True(t, e.Excluded)
}

func TestPreload_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.addWallet(t, walletA)
	ctx := context.Background()
	svc := env.backfill()

	_, err := svc.Preload(ctx, walletA, 0, noon(10), false)
	assert.ErrorIs(t, err, entity.ErrInvalidDays)
	_, err = svc.Preload(ctx, walletA, 366, noon(10), false)
	assert.ErrorIs(t, err, entity.ErrInvalidDays)
	_, err = svc.Preload(ctx, walletB, 1, noon(10), false)
	assert.ErrorIs(t, err, entity.ErrWalletNotFound)
}
