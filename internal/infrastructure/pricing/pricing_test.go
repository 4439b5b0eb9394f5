package pricing

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const pairsBody = `[
 {"chainId":"ethereum","pairAddress":"0x1","baseToken":{"address":"0xAAA","symbol":"AAA"},"quoteToken":{"symbol":"WETH"},"priceUsd":"2.50","liquidity":{"usd":900000}},
 {"chainId":"ethereum","pairAddress":"0x2","baseToken":{"address":"0xaaa","symbol":"AAA"},"quoteToken":{"symbol":"USDC"},"priceUsd":"2.40","liquidity":{"usd":1000}},
 {"chainId":"ethereum","pairAddress":"0x3","baseToken":{"address":"0xbbb","symbol":"BBB"},"quoteToken":{"symbol":"WETH"},"priceUsd":"0.10","liquidity":{"usd":10}}
]`

func TestDEXScreenerClient_PricesByAddress(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pairsBody))
	}))
	defer srv.Close()

	c := NewDEXScreenerClient(srv.URL, time.Second, zap.NewNop(), 30, []string{"USDC", "USDT"})
	prices, err := c.PricesByAddress(context.Background(), "ethereum", []string{"0xaaa", "0xbbb", "0xccc"})
	require.NoError(t, err)

	assert.Equal(t, "/tokens/v1/ethereum/0xaaa,0xbbb,0xccc", gotPath)
	assert.InDelta(t, 2.40, prices["0xaaa"], 1e-12, "stablecoin quote wins over liquidity")
	assert.InDelta(t, 0.10, prices["0xbbb"], 1e-12)
	assert.NotContains(t, prices, "0xccc")
}

func TestDEXScreenerClient_WrappedResponseAndErrors(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"schemaVersion":"1.0.0","pairs":[{"baseToken":{"address":"0xaaa"},"quoteToken":{"symbol":"USDT"},"priceUsd":"1.01"}]}`))
	}))
	defer srv.Close()

	c := NewDEXScreenerClient(srv.URL, time.Second, zap.NewNop(), 1, []string{"USDT"})
	pairs, err := c.GetTokenPairsByAddresses(context.Background(), "bsc", []string{"0xaaa"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	_, err = c.GetTokenPairsByAddresses(context.Background(), "bsc", []string{"0xaaa", "0xbbb"})
	assert.Error(t, err)

	status.Store(http.StatusTooManyRequests)
	_, err = c.PricesByAddress(context.Background(), "bsc", []string{"0xaaa"})
	assert.Error(t, err)
}

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

type reserveClient struct {
	def      entity.NetworkDefinition
	reserves map[string]*big.Int
}

func (c reserveClient) GetBalances(_ context.Context, reqs []entity.BalanceRequestItem, _ *uint64) ([]entity.BalanceResultItem, error) {
	out := make([]entity.BalanceResultItem, len(reqs))
	for i, r := range reqs {
		out[i] = entity.BalanceResultItem{RequestID: r.ID, TokenAddress: r.TokenAddress, Balance: c.reserves[r.TokenAddress]}
	}
	return out, nil
}

func (c reserveClient) BlockNumber(context.Context) (uint64, error) { return 1, nil }

func (c reserveClient) Definition() entity.NetworkDefinition { return c.def }

type staticClients struct{ client port.BlockchainClient }

func (s staticClients) GetClient(entity.NetworkDefinition) (port.BlockchainClient, error) {
	return s.client, nil
}

func TestPairOracle_SpotPrice(t *testing.T) {
	eth := entity.NetworkDefinition{Key: "ETH"}
	e18 := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	client := reserveClient{def: eth, reserves: map[string]*big.Int{
		"0xweth": new(big.Int).Mul(big.NewInt(10), e18),
		"0xdai":  new(big.Int).Mul(big.NewInt(31000), e18),
	}}
	pairs := []configloader.NativePairConfig{{
		Symbol: "ETH", Chain: "ETH", Pair: "0xpair",
		Base: "0xweth", BaseDecimals: 18, Quote: "0xdai", QuoteDecimals: 18,
	}}
	oracle := NewPairOracle(pairs, fakeNetworks{defs: []entity.NetworkDefinition{eth}}, staticClients{client}, logger.Nop{})

	price, err := oracle.SpotPrice(context.Background(), "eth")
	require.NoError(t, err)
	assert.InDelta(t, 3100, price, 1e-9)

	_, err = oracle.SpotPrice(context.Background(), "BNB")
	assert.Error(t, err)
}

func TestPairOracle_InactiveNetwork(t *testing.T) {
	pairs := []configloader.NativePairConfig{{Symbol: "BNB", Chain: "BSC"}}
	oracle := NewPairOracle(pairs, fakeNetworks{}, staticClients{}, logger.Nop{})
	_, err := oracle.SpotPrice(context.Background(), "BNB")
	assert.Error(t, err)
}
