// Package pricing implements the USD price sources behind the shared price table.
package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DEXScreenerClient queries token pairs on the DEXScreener API.
type DEXScreenerClient struct {
	client              *fasthttp.Client
	baseURL             string
	timeout             time.Duration
	logger              *zap.Logger
	maxTokensPerRequest int
	stablecoins         map[string]struct{}
}

// NewDEXScreenerClient creates a client; stablecoins name the quote tokens
// preferred when several pairs price the same token.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, logger *zap.Logger, maxTokensPerRequest int, stablecoins []string) *DEXScreenerClient {
	if maxTokensPerRequest <= 0 {
		maxTokensPerRequest = 30
	}
	stables := make(map[string]struct{}, len(stablecoins))
	for _, s := range stablecoins {
		stables[strings.ToUpper(s)] = struct{}{}
	}
	return &DEXScreenerClient{
		client:              &fasthttp.Client{},
		baseURL:             strings.TrimRight(baseURL, "/"),
		timeout:             timeout,
		logger:              logger.Named("DEXScreenerClient"),
		maxTokensPerRequest: maxTokensPerRequest,
		stablecoins:         stables,
	}
}

// GetTokenPairsByAddresses fetches all pairs for up to maxTokensPerRequest tokens.
func (c *DEXScreenerClient) GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]PairData, error) {
	if len(tokenAddresses) == 0 {
		return nil, fmt.Errorf("tokenAddresses cannot be empty")
	}
	if len(tokenAddresses) > c.maxTokensPerRequest {
		return nil, fmt.Errorf("number of token addresses (%d) exceeds max tokens per request (%d)", len(tokenAddresses), c.maxTokensPerRequest)
	}

	requestURL := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, dexscreenerChainID, strings.Join(tokenAddresses, ","))
	c.logger.Debug("Requesting token pairs from DEX Screener", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute request to DEX Screener", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("DEX Screener API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("DEX Screener API request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var wrapped dexTokenPairs
	if err := json.Unmarshal(rawBody, &wrapped); err == nil && wrapped.Pairs != nil {
		return wrapped.Pairs, nil
	}

	var directPairs []PairData
	if err := json.Unmarshal(rawBody, &directPairs); err != nil {
		c.logger.Error("Failed to unmarshal DEX Screener response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response from %s: %w", requestURL, err)
	}
	if len(directPairs) == 0 {
		c.logger.Warn("DEXScreener returned an empty array of pairs", zap.String("url", requestURL))
	}
	return directPairs, nil
}

// PricesByAddress returns USD prices keyed by lowercased token address.
// Tokens without a usable pair are absent from the result.
func (c *DEXScreenerClient) PricesByAddress(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(tokenAddresses))
	for _, batch := range utils.Batch(utils.UniqueStrings(tokenAddresses), c.maxTokensPerRequest) {
		pairs, err := c.GetTokenPairsByAddresses(ctx, dexscreenerChainID, batch)
		if err != nil {
			return prices, err
		}
		for _, addr := range batch {
			raw := c.selectBestPriceFromPairs(pairs, addr)
			if raw == "" {
				c.logger.Warn("No pairs returned from DEXScreener for token address",
					zap.String("dexScreenerID", dexscreenerChainID),
					zap.String("tokenAddress", addr))
				continue
			}
			price, err := decimal.NewFromString(raw)
			if err != nil {
				c.logger.Warn("Failed to parse token price from DEXScreener",
					zap.String("tokenAddress", addr),
					zap.String("price_string", raw),
					zap.Error(err))
				continue
			}
			prices[strings.ToLower(addr)] = price.InexactFloat64()
		}
	}
	return prices, nil
}

// selectBestPriceFromPairs prefers the most liquid stablecoin-quoted pair,
// then the most liquid pair overall.
func (c *DEXScreenerClient) selectBestPriceFromPairs(pairs []PairData, baseTokenAddress string) string {
	var bestOverall, bestStable *PairData
	for i := range pairs {
		pair := &pairs[i]
		if !strings.EqualFold(pair.BaseToken.Address, baseTokenAddress) {
			continue
		}
		if pair.PriceUsd == "" || pair.PriceUsd == "0" {
			continue
		}
		if _, ok := c.stablecoins[strings.ToUpper(pair.QuoteToken.Symbol)]; ok {
			if bestStable == nil || pair.liquidityUSD() > bestStable.liquidityUSD() {
				bestStable = pair
			}
		}
		if bestOverall == nil || pair.liquidityUSD() > bestOverall.liquidityUSD() {
			bestOverall = pair
		}
	}
	switch {
	case bestStable != nil:
		return bestStable.PriceUsd
	case bestOverall != nil:
		return bestOverall.PriceUsd
	}
	return ""
}

var _ port.TokenPriceSource = (*DEXScreenerClient)(nil)
