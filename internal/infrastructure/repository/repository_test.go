package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	repo := NewWalletRepository(store)

	w := entity.NewWallet("0xabc")
	require.NoError(t, repo.Create(ctx, w))
	assert.ErrorIs(t, repo.Create(ctx, w), entity.ErrWalletExists)

	d := entity.NewDate(2024, time.May, 1)
	w.SetSeries("ETH", entity.TokenSeries{{Date: d, Balance: 1.5, Change: 1.5, Block: 42}})
	require.NoError(t, repo.Save(ctx, w))

	got, err := repo.Get(ctx, "0xABC")
	require.NoError(t, err)
	require.Len(t, got.Series("ETH"), 1)
	assert.Equal(t, d, got.Series("ETH")[0].Date)
	assert.Equal(t, uint64(42), got.Series("ETH")[0].Block)
	assert.InDelta(t, 1.5, got.Series("ETH")[0].Balance, 1e-12)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "0xabc"))
	_, err = repo.Get(ctx, "0xabc")
	assert.ErrorIs(t, err, entity.ErrWalletNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "0xabc"), entity.ErrWalletNotFound)
}

func TestWalletRepository_NewWalletHasEmptyBalances(t *testing.T) {
	ctx := context.Background()
	store, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	repo := NewWalletRepository(store)

	require.NoError(t, repo.Create(ctx, entity.NewWallet("0x1")))
	w, err := repo.Get(ctx, "0x1")
	require.NoError(t, err)
	assert.NotNil(t, w.Balances)
	assert.Empty(t, w.Balances)
}

func TestProjectRepository(t *testing.T) {
	ctx := context.Background()
	store, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	repo := NewProjectRepository(store)

	for i := 0; i < projectPageSize+5; i++ {
		require.NoError(t, repo.Upsert(ctx, entity.Project{ID: fmt.Sprintf("p-%03d", i), Symbol: "T"}))
	}
	eth := entity.Project{ID: "ETH", Symbol: "ETH", Decimal: 18, Contracts: map[string]entity.ContractEntry{
		"ETH": {Token: entity.ZeroAddress, Compose: true},
	}}
	require.NoError(t, repo.Upsert(ctx, eth))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, projectPageSize+6)

	got, err := repo.Get(ctx, "ETH")
	require.NoError(t, err)
	assert.True(t, got.Composable())
	assert.Equal(t, int32(18), got.Decimal)

	_, err = repo.Get(ctx, "BTC")
	assert.ErrorIs(t, err, entity.ErrProjectNotFound)
}

func TestWalletRepository_DeleteKeepsConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	repo := NewWalletRepository(store)

	const rounds = 50
	d := entity.NewDate(2024, time.May, 1)
	for i := 0; i < rounds; i++ {
		require.NoError(t, repo.Create(ctx, entity.NewWallet(fmt.Sprintf("0xa%02d", i))))
		require.NoError(t, repo.Create(ctx, entity.NewWallet(fmt.Sprintf("0xb%02d", i))))
	}

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Delete(ctx, fmt.Sprintf("0xa%02d", i)))
		}()
		go func() {
			defer wg.Done()
			w := entity.NewWallet(fmt.Sprintf("0xb%02d", i))
			w.SetSeries("ETH", entity.TokenSeries{{Date: d, Balance: float64(i + 1)}})
			assert.NoError(t, repo.Save(ctx, w))
		}()
	}
	wg.Wait()

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, rounds)
	for i := 0; i < rounds; i++ {
		w, err := repo.Get(ctx, fmt.Sprintf("0xb%02d", i))
		require.NoError(t, err)
		require.Len(t, w.Series("ETH"), 1, "save of %s was lost", w.Address)
		assert.InDelta(t, float64(i+1), w.Series("ETH")[0].Balance, 1e-12)
	}
}

func TestWalletRepository_ConcurrentCreateSameAddress(t *testing.T) {
	ctx := context.Background()
	store, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	repo := NewWalletRepository(store)

	const callers = 20
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = repo.Create(ctx, entity.NewWallet("0xabc"))
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, entity.ErrWalletExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
