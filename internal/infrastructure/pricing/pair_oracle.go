package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/utils"
)

// PairOracle prices native tokens from the reserves of an on-chain pool:
// the pool's quote balance divided by its base balance.
type PairOracle struct {
	pairs    []configloader.NativePairConfig
	networks port.NetworkDefinitionProvider
	clients  port.BlockchainClientProvider
	logger   port.Logger
}

// NewPairOracle creates an oracle over the configured pools.
func NewPairOracle(pairs []configloader.NativePairConfig, networks port.NetworkDefinitionProvider, clients port.BlockchainClientProvider, log port.Logger) *PairOracle {
	return &PairOracle{pairs: pairs, networks: networks, clients: clients, logger: log}
}

// SpotPrice implements port.PriceOracle.
func (o *PairOracle) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	var pair *configloader.NativePairConfig
	for i := range o.pairs {
		if strings.EqualFold(o.pairs[i].Symbol, symbol) {
			pair = &o.pairs[i]
			break
		}
	}
	if pair == nil {
		return 0, fmt.Errorf("no price pool configured for %s", symbol)
	}

	netDef, ok := o.networks.GetNetworkDefinitionByKey(pair.Chain)
	if !ok {
		return 0, fmt.Errorf("network %s for %s price pool is not active", pair.Chain, symbol)
	}
	client, err := o.clients.GetClient(netDef)
	if err != nil {
		return 0, err
	}

	results, err := client.GetBalances(ctx, []entity.BalanceRequestItem{
		{ID: "base", Type: entity.TokenBalanceRequest, WalletAddress: pair.Pair, TokenAddress: pair.Base, TokenDecimals: pair.BaseDecimals},
		{ID: "quote", Type: entity.TokenBalanceRequest, WalletAddress: pair.Pair, TokenAddress: pair.Quote, TokenDecimals: pair.QuoteDecimals},
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s pool reserves: %w", symbol, err)
	}
	if len(results) != 2 {
		return 0, fmt.Errorf("unexpected reserve result count %d for %s", len(results), symbol)
	}
	for _, r := range results {
		if r.Error != nil {
			return 0, fmt.Errorf("failed to read %s pool reserves: %w", symbol, r.Error)
		}
	}

	price := utils.Ratio(results[1].Balance, pair.QuoteDecimals, results[0].Balance, pair.BaseDecimals)
	if price.IsZero() {
		return 0, fmt.Errorf("empty %s price pool", symbol)
	}
	o.logger.Debug("Native price from pool", "symbol", symbol, "price", price.String(),
		"baseReserve", utils.FormatBigInt(results[0].Balance, pair.BaseDecimals),
		"quoteReserve", utils.FormatBigInt(results[1].Balance, pair.QuoteDecimals))
	return price.InexactFloat64(), nil
}

var _ port.PriceOracle = (*PairOracle)(nil)
