package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/calc"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/docstore"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/repository"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/logger"
	"github.com/stretchr/testify/require"
)

const (
	walletA   = "0x00000000000000000000000000000000000000a1"
	walletB   = "0x00000000000000000000000000000000000000b2"
	usdcAddr  = "0x00000000000000000000000000000000000000c1"
	aUSDCAddr = "0x00000000000000000000000000000000000000c2"
	aaaAddr   = "0x00000000000000000000000000000000000000d1"
)

var ethNetwork = entity.NetworkDefinition{
	ChainID: 1, Name: "Ethereum", Key: "ETH", NativeSymbol: "ETH", Decimals: 18,
	BlockTime: 12 * time.Second, DEXScreenerChainID: "ethereum",
}

// fakeChain serves balances keyed by lowercased token address ("native" for
// the coin). atBlock, when set, overrides balances for pinned reads.
type fakeChain struct {
	mu       sync.Mutex
	def      entity.NetworkDefinition
	head     uint64
	balances map[string]float64
	failing  map[string]bool
	atBlock  func(block uint64, key string) float64
	blocks   []uint64
}

func newFakeChain() *fakeChain {
	return &fakeChain{def: ethNetwork, head: 1_000_000, balances: map[string]float64{}, failing: map[string]bool{}}
}

func (c *fakeChain) set(key string, v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[strings.ToLower(key)] = v
}

func (c *fakeChain) GetBalances(_ context.Context, reqs []entity.BalanceRequestItem, block *uint64) ([]entity.BalanceResultItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if block != nil {
		c.blocks = append(c.blocks, *block)
	}
	out := make([]entity.BalanceResultItem, len(reqs))
	for i, r := range reqs {
		key := strings.ToLower(r.TokenAddress)
		if r.Type == entity.NativeBalanceRequest {
			key = "native"
		}
		out[i] = entity.BalanceResultItem{
			RequestID: r.ID, WalletAddress: r.WalletAddress, TokenAddress: r.TokenAddress,
			TokenSymbol: r.TokenSymbol, Decimals: r.TokenDecimals, Balance: big.NewInt(0),
		}
		if c.failing[key] {
			out[i].Error = fmt.Errorf("rpc unavailable")
			continue
		}
		if block != nil && c.atBlock != nil {
			out[i].Amount = c.atBlock(*block, key)
		} else {
			out[i].Amount = c.balances[key]
		}
	}
	return out, nil
}

func (c *fakeChain) BlockNumber(context.Context) (uint64, error) { return c.head, nil }

func (c *fakeChain) Definition() entity.NetworkDefinition { return c.def }

type fakeNetworks struct{ defs []entity.NetworkDefinition }

func (f fakeNetworks) GetAllNetworkDefinitions() []entity.NetworkDefinition { return f.defs }

func (f fakeNetworks) GetNetworkDefinitionByKey(key string) (entity.NetworkDefinition, bool) {
	for _, d := range f.defs {
		if strings.EqualFold(d.Key, key) {
			return d, true
		}
	}
	return entity.NetworkDefinition{}, false
}

type fakeClients struct{ chain *fakeChain }

func (f fakeClients) GetClient(entity.NetworkDefinition) (port.BlockchainClient, error) {
	return f.chain, nil
}

func dec(v int32) *int32 { return &v }

func testProjects() []entity.Project {
	return []entity.Project{
		{ID: "ETH", Symbol: "ETH", Decimal: 18, Contracts: map[string]entity.ContractEntry{
			"ETH": {Token: entity.ZeroAddress, Compose: true},
		}},
		{ID: "USDC", Symbol: "USDC", Decimal: 6, Contracts: map[string]entity.ContractEntry{
			"ETH": {Token: usdcAddr},
		}, Protocols: map[string]map[string]entity.ContractEntry{
			"AAVE": {"ETH": {Symbol: "aUSDC", Token: aUSDCAddr, Decimal: dec(6), Compose: true}},
		}},
	}
}

type testEnv struct {
	cfg      *configloader.Config
	wallets  port.WalletRepository
	projects port.ProjectRepository
	chain    *fakeChain
	locks    *WalletLocks
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		cfg:      configloader.Default(),
		wallets:  repository.NewWalletRepository(store),
		projects: repository.NewProjectRepository(store),
		chain:    newFakeChain(),
		locks:    NewWalletLocks(),
	}
	env.cfg.Backfill.RequestDelayMillis = 1

	ctx := context.Background()
	for _, p := range testProjects() {
		require.NoError(t, env.projects.Upsert(ctx, p))
	}
	return env
}

func (e *testEnv) tracker() *TrackerServiceImpl {
	return NewTrackerService(e.wallets, e.projects, fakeNetworks{defs: []entity.NetworkDefinition{ethNetwork}}, fakeClients{e.chain}, e.locks, logger.Nop{}, e.cfg)
}

func (e *testEnv) backfill() *BackfillServiceImpl {
	return NewBackfillService(e.wallets, e.projects, fakeNetworks{defs: []entity.NetworkDefinition{ethNetwork}}, fakeClients{e.chain}, e.locks, logger.Nop{}, e.cfg)
}

func (e *testEnv) walletService() *WalletServiceImpl {
	return NewWalletService(e.wallets, e.locks, logger.Nop{})
}

func (e *testEnv) addWallet(t *testing.T, address string) {
	t.Helper()
	_, err := e.walletService().AddWallet(context.Background(), address)
	require.NoError(t, err)
}

// noon returns midday local time on the given May 2024 day.
func noon(day int) time.Time {
	return time.Date(2024, time.May, day, 12, 0, 0, 0, time.Local)
}

func may(day int) entity.Date { return entity.NewDate(2024, time.May, day) }

func recalc(s entity.TokenSeries) entity.TokenSeries { return calc.Recalculate(s) }
