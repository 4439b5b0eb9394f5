package pricing

// dexTokenPairs is the wrapped response shape of the DEXScreener token endpoints.
type dexTokenPairs struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pairs         []PairData `json:"pairs"`
}

// PairData contains the subset of a DEXScreener pair used for pricing.
type PairData struct {
	ChainID     string        `json:"chainId"`
	DexID       string        `json:"dexId"`
	PairAddress string        `json:"pairAddress"`
	BaseToken   DEXToken      `json:"baseToken"`
	QuoteToken  DEXToken      `json:"quoteToken"`
	PriceNative string        `json:"priceNative"`
	PriceUsd    string        `json:"priceUsd"`
	Liquidity   *DEXLiquidity `json:"liquidity"`
}

// DEXToken represents a token in a trading pair.
type DEXToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// DEXLiquidity represents the liquidity information for a pair.
type DEXLiquidity struct {
	Usd   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

func (p PairData) liquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.Usd
}
