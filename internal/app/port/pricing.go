package port

import (
	"context"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

// PriceOracle returns spot USD prices for native-chain tokens ("ETH", "BNB").
type PriceOracle interface {
	SpotPrice(ctx context.Context, symbol string) (float64, error)
}

// TokenPriceSource looks up USD prices by contract address on a DEXScreener chain.
type TokenPriceSource interface {
	PricesByAddress(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) (map[string]float64, error)
}

// PriceService builds the price table passed to the analytics engines.
type PriceService interface {
	PriceTable(ctx context.Context, projects []entity.Project) entity.PriceTable
}
