package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

const maxRequestsPerBatch = 100

// balanceReader sums each project's contract balances across the active networks.
type balanceReader struct {
	networks   port.NetworkDefinitionProvider
	clients    port.BlockchainClientProvider
	logger     port.Logger
	maxWorkers int
}

// chainReading is the per-symbol outcome of a read.
type chainReading struct {
	balances map[string]float64
	blocks   map[string]uint64 // chain key -> block queried, when pinned
	errors   []entity.TrackingError
}

// read returns the total balance of every project for address. blocks pins a
// chain to a historical block; chains missing from it are read at latest.
// A project with any failed contract read is left out of the balances.
func (r *balanceReader) read(ctx context.Context, address string, projects []entity.Project, blocks map[string]uint64) chainReading {
	out := chainReading{
		balances: make(map[string]float64),
		blocks:   make(map[string]uint64),
	}
	failed := make(map[string]bool)
	present := make(map[string]bool)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if r.maxWorkers > 0 {
		g.SetLimit(r.maxWorkers)
	}

	for _, nd := range r.networks.GetAllNetworkDefinitions() {
		nd := nd
		var reqs []entity.BalanceRequestItem
		for _, p := range projects {
			for i, c := range p.ChainContracts(nd.Key) {
				item := entity.BalanceRequestItem{
					ID:            p.Symbol + "#" + strconv.Itoa(i),
					WalletAddress: address,
					TokenAddress:  c.ContractAddress(),
					TokenSymbol:   p.Symbol,
					TokenDecimals: p.DecimalsFor(c),
					Type:          entity.TokenBalanceRequest,
				}
				if c.IsNative() {
					item.Type = entity.NativeBalanceRequest
					item.TokenDecimals = nd.Decimals
					if c.Decimal != nil {
						item.TokenDecimals = *c.Decimal
					}
				}
				reqs = append(reqs, item)
				present[p.Symbol] = true
			}
		}
		if len(reqs) == 0 {
			continue
		}

		var block *uint64
		if b, ok := blocks[nd.Key]; ok {
			block = &b
			out.blocks[nd.Key] = b
		}

		g.Go(func() error {
			fail := func(symbols []string, msg string) {
				mu.Lock()
				defer mu.Unlock()
				for _, s := range symbols {
					failed[s] = true
				}
				out.errors = append(out.errors, entity.TrackingError{
					WalletAddress: address, Chain: nd.Key, Message: msg,
				})
			}

			client, err := r.clients.GetClient(nd)
			if err != nil {
				r.logger.Error("Failed to get blockchain client for network", "network", nd.Name, "error", err)
				fail(symbolsOf(reqs), "failed to get client: "+err.Error())
				return nil
			}

			for _, batch := range utils.Batch(reqs, maxRequestsPerBatch) {
				results, err := client.GetBalances(gctx, batch, block)
				if err != nil {
					r.logger.Error("Balance batch failed", "network", nd.Name, "wallet", address, "error", err)
					fail(symbolsOf(batch), err.Error())
					continue
				}
				mu.Lock()
				for _, res := range results {
					if res.Error != nil {
						failed[res.TokenSymbol] = true
						out.errors = append(out.errors, entity.TrackingError{
							WalletAddress: address,
							TokenSymbol:   res.TokenSymbol,
							Chain:         nd.Key,
							TokenAddress:  res.TokenAddress,
							Message:       res.Error.Error(),
						})
						continue
					}
					if res.Reverted {
						r.logger.Debug("Balance call reverted, counted as zero", "token", res.TokenSymbol, "chain", nd.Key, "contract", res.TokenAddress)
					}
					out.balances[res.TokenSymbol] += res.Amount
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for symbol := range present {
		if _, ok := out.balances[symbol]; !ok {
			out.balances[symbol] = 0
		}
	}
	for symbol := range failed {
		delete(out.balances, symbol)
	}
	if err := ctx.Err(); err != nil {
		out.errors = append(out.errors, entity.TrackingError{WalletAddress: address, Message: fmt.Sprintf("read cancelled: %v", err)})
	}
	return out
}

func symbolsOf(reqs []entity.BalanceRequestItem) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range reqs {
		if _, ok := seen[r.TokenSymbol]; ok {
			continue
		}
		seen[r.TokenSymbol] = struct{}{}
		out = append(out, r.TokenSymbol)
	}
	sort.Strings(out)
	return out
}
