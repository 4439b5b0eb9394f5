package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// PriceServiceImpl implements port.PriceService. Prices are cached per symbol.
type PriceServiceImpl struct {
	oracle      port.PriceOracle
	tokens      port.TokenPriceSource
	networks    port.NetworkDefinitionProvider
	logger      port.Logger
	cache       *cache.Cache
	stablecoins map[string]struct{}
	aliases     map[string]string
	natives     map[string]struct{}
	maxWorkers  int
}

// NewPriceService creates a new instance of PriceServiceImpl.
func NewPriceService(
	oracle port.PriceOracle,
	tokens port.TokenPriceSource,
	np port.NetworkDefinitionProvider,
	l port.Logger,
	cfg *configloader.Config,
) *PriceServiceImpl {
	ttl := time.Duration(cfg.Pricing.CacheTTLMinutes) * time.Minute
	s := &PriceServiceImpl{
		oracle:      oracle,
		tokens:      tokens,
		networks:    np,
		logger:      l,
		cache:       cache.New(ttl, 2*ttl),
		stablecoins: make(map[string]struct{}),
		aliases:     make(map[string]string),
		natives:     make(map[string]struct{}),
		maxWorkers:  cfg.Performance.MaxConcurrentRoutines,
	}
	for _, sym := range cfg.Pricing.Stablecoins {
		s.stablecoins[strings.ToUpper(sym)] = struct{}{}
	}
	for from, to := range cfg.Pricing.Aliases {
		s.aliases[strings.ToUpper(from)] = to
	}
	for _, p := range cfg.Pricing.NativePairs {
		s.natives[strings.ToUpper(p.Symbol)] = struct{}{}
	}
	return s
}

type tokenRef struct {
	symbol  string
	address string
}

// PriceTable prices every project symbol plus ETH. Unknown prices are 0.
func (s *PriceServiceImpl) PriceTable(ctx context.Context, projects []entity.Project) entity.PriceTable {
	table := make(entity.PriceTable, len(projects)+1)
	var mu sync.Mutex
	set := func(symbol string, price float64) {
		mu.Lock()
		table[symbol] = price
		mu.Unlock()
		s.cache.SetDefault(strings.ToUpper(symbol), price)
	}

	oracleSymbols := map[string]struct{}{}
	byChain := map[string][]tokenRef{}
	aliased := map[string]string{}

	resolve := func(symbol string, p *entity.Project) {
		upper := strings.ToUpper(symbol)
		if cached, ok := s.cache.Get(upper); ok {
			table[symbol] = cached.(float64)
			return
		}
		if _, ok := s.stablecoins[upper]; ok {
			set(symbol, 1)
			return
		}
		if target, ok := s.aliases[upper]; ok && !strings.EqualFold(target, symbol) {
			aliased[symbol] = target
			return
		}
		if _, ok := s.natives[upper]; ok {
			oracleSymbols[symbol] = struct{}{}
			return
		}
		if p == nil {
			return
		}
		for _, nd := range s.networks.GetAllNetworkDefinitions() {
			for _, c := range p.ChainContracts(nd.Key) {
				if c.IsNative() {
					continue
				}
				if nd.DEXScreenerChainID != "" {
					byChain[nd.DEXScreenerChainID] = append(byChain[nd.DEXScreenerChainID], tokenRef{symbol: symbol, address: c.ContractAddress()})
					return
				}
			}
		}
		for _, nd := range s.networks.GetAllNetworkDefinitions() {
			if c, ok := p.Contracts[nd.Key]; ok && c.IsNative() {
				aliased[symbol] = nd.NativeSymbol
				return
			}
		}
	}

	for i := range projects {
		resolve(projects[i].Symbol, &projects[i])
	}
	if _, ok := table["ETH"]; !ok {
		resolve("ETH", nil)
	}
	for _, target := range aliased {
		if _, ok := table[target]; !ok {
			resolve(target, nil)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.maxWorkers > 0 {
		g.SetLimit(s.maxWorkers)
	}
	for symbol := range oracleSymbols {
		symbol := symbol
		g.Go(func() error {
			price, err := s.oracle.SpotPrice(gctx, symbol)
			if err != nil {
				s.logger.Warn("Native price unavailable", "symbol", symbol, "error", err)
				return nil
			}
			set(symbol, price)
			return nil
		})
	}
	for chain, refs := range byChain {
		chain, refs := chain, refs
		g.Go(func() error {
			addrs := make([]string, len(refs))
			for i, r := range refs {
				addrs[i] = r.address
			}
			prices, err := s.tokens.PricesByAddress(gctx, chain, addrs)
			if err != nil {
				s.logger.Warn("Token prices unavailable", "chain", chain, "error", err)
			}
			for _, r := range refs {
				if price, ok := prices[strings.ToLower(r.address)]; ok {
					set(r.symbol, price)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for symbol, target := range aliased {
		if _, ok := table[symbol]; ok {
			continue
		}
		table[symbol] = table.Price(target)
		if table[symbol] > 0 {
			s.cache.SetDefault(strings.ToUpper(symbol), table[symbol])
		}
	}
	for i := range projects {
		if _, ok := table[projects[i].Symbol]; !ok {
			s.logger.Warn("No price for token, valuing at 0", "symbol", projects[i].Symbol)
			table[projects[i].Symbol] = 0
		}
	}
	return table
}

var _ port.PriceService = (*PriceServiceImpl)(nil)
