package client

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/metrics"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// EVMClient implements the port.BlockchainClient interface for EVM-compatible chains.
type EVMClient struct {
	rpcClient      *rpc.Client
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
}

// ERC20 ABI minimal part for balanceOf
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
	erc20MethodID   []byte
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
		balanceOfMethod, ok := parsedERC20ABI.Methods["balanceOf"]
		if !ok {
			panic("balanceOf method not found in parsed ERC20 ABI")
		}
		erc20MethodID = balanceOfMethod.ID
	})
}

// Options tune transport and pacing of an EVMClient.
type Options struct {
	ConnectionTimeout time.Duration
	CallTimeout       time.Duration
	RateLimit         float64 // requests per second, 0 disables
	Burst             int
}

// NewEVMClient dials the first reachable RPC endpoint of netDef over httpClient.
func NewEVMClient(netDef entity.NetworkDefinition, httpClient *http.Client, opts Options) (*EVMClient, error) {
	initParsedERC20ABI()
	rpcURLs := append([]string{netDef.PrimaryRPCURL}, netDef.FallbackRPCURLs...)
	var lastErr error

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	for _, rpcURL := range rpcURLs {
		if rpcURL == "" {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
		var dialOpts []rpc.ClientOption
		if httpClient != nil {
			dialOpts = append(dialOpts, rpc.WithHTTPClient(httpClient))
		}
		rpcClient, err := rpc.DialOptions(ctx, rpcURL, dialOpts...)
		cancel()

		if err == nil {
			return &EVMClient{
				rpcClient:      rpcClient,
				ethClient:      ethclient.NewClient(rpcClient),
				netDef:         netDef,
				rpcCallTimeout: opts.CallTimeout,
				limiter:        limiter,
			}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no RPC endpoint configured")
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

func blockArg(block *uint64) string {
	if block == nil {
		return "latest"
	}
	return hexutil.EncodeUint64(*block)
}

// isZeroBalanceError reports RPC failures that mean "no balance at that
// point": reverted calls and blocks the node does not know yet.
func isZeroBalanceError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "revert") ||
		strings.Contains(msg, "header not found") ||
		strings.Contains(msg, "block not found")
}

func (c *EVMClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.rpcCallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.rpcCallTimeout)
}

// GetBalances fetches multiple balances using JSON-RPC batch requests.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem, block *uint64) ([]entity.BalanceResultItem, error) {
	if len(requests) == 0 {
		return []entity.BalanceResultItem{}, nil
	}

	at := blockArg(block)
	batchElems := make([]rpc.BatchElem, 0, len(requests))
	positions := make([]int, 0, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{
			RequestID:     reqItem.ID,
			WalletAddress: reqItem.WalletAddress,
			TokenAddress:  reqItem.TokenAddress,
			TokenSymbol:   reqItem.TokenSymbol,
			Decimals:      reqItem.TokenDecimals,
			IsNative:      reqItem.Type == entity.NativeBalanceRequest,
		}
		if block != nil {
			results[i].Block = *block
		}

		switch reqItem.Type {
		case entity.NativeBalanceRequest:
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []interface{}{common.HexToAddress(reqItem.WalletAddress), at},
				Result: new(hexutil.Big),
			})
			positions = append(positions, i)
		case entity.TokenBalanceRequest:
			paddedWalletAddress := common.LeftPadBytes(common.HexToAddress(reqItem.WalletAddress).Bytes(), 32)
			callData := append(append([]byte{}, erc20MethodID...), paddedWalletAddress...)

			callArgs := map[string]interface{}{
				"to":   common.HexToAddress(reqItem.TokenAddress),
				"data": hexutil.Bytes(callData),
			}
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_call",
				Args:   []interface{}{callArgs, at},
				Result: new(hexutil.Bytes),
			})
			positions = append(positions, i)
		default:
			results[i].Error = fmt.Errorf("unknown balance request type: %v for %s", reqItem.Type, reqItem.TokenSymbol)
		}
	}

	if len(batchElems) == 0 {
		return results, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return results, err
	}

	rpcCallCtx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.rpcClient.BatchCallContext(rpcCallCtx, batchElems); err != nil {
		metrics.RPCRequests.WithLabelValues(c.netDef.Key, "error").Inc()
		return results, fmt.Errorf("RPC batch call failed: %w", err)
	}
	metrics.RPCRequests.WithLabelValues(c.netDef.Key, "ok").Inc()

	for j, elem := range batchElems {
		i := positions[j]
		if elem.Error != nil {
			if isZeroBalanceError(elem.Error) {
				results[i].Balance = big.NewInt(0)
				results[i].Reverted = true
				continue
			}
			results[i].Error = fmt.Errorf("failed to fetch %s for %s (wallet %s): %w",
				requests[i].TokenSymbol, requests[i].TokenAddress, requests[i].WalletAddress, elem.Error)
			continue
		}

		switch requests[i].Type {
		case entity.NativeBalanceRequest:
			if result, ok := elem.Result.(*hexutil.Big); ok && result != nil {
				results[i].Balance = new(big.Int).Set((*big.Int)(result))
			} else {
				results[i].Error = fmt.Errorf("failed to decode native balance for %s: unexpected type or nil result", requests[i].TokenSymbol)
			}
		case entity.TokenBalanceRequest:
			result, ok := elem.Result.(*hexutil.Bytes)
			if !ok || result == nil {
				results[i].Error = fmt.Errorf("failed to decode token balance for %s: unexpected type or nil result", requests[i].TokenSymbol)
				continue
			}
			if len(*result) == 0 {
				results[i].Balance = big.NewInt(0)
				continue
			}
			unpacked, err := parsedERC20ABI.Unpack("balanceOf", *result)
			if err != nil {
				results[i].Error = fmt.Errorf("failed to unpack balanceOf result for %s: %w. Raw: %s", requests[i].TokenSymbol, err, hexutil.Encode(*result))
				continue
			}
			if len(unpacked) == 0 {
				results[i].Error = fmt.Errorf("balanceOf unpack returned no data for %s", requests[i].TokenSymbol)
				continue
			}
			balanceVal, ok := unpacked[0].(*big.Int)
			if !ok {
				results[i].Error = fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int for %s. Got: %T", requests[i].TokenSymbol, unpacked[0])
				continue
			}
			results[i].Balance = balanceVal
		}
	}

	for i := range results {
		if results[i].Error != nil {
			continue
		}
		if results[i].Balance == nil {
			results[i].Balance = big.NewInt(0)
		}
		results[i].Amount = utils.ToUnits(results[i].Balance, results[i].Decimals)
	}
	return results, nil
}

// BlockNumber returns the head block of the network.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	n, err := c.ethClient.BlockNumber(callCtx)
	if err != nil {
		metrics.RPCRequests.WithLabelValues(c.netDef.Key, "error").Inc()
		return 0, fmt.Errorf("failed to read block number on %s: %w", c.netDef.Name, err)
	}
	metrics.RPCRequests.WithLabelValues(c.netDef.Key, "ok").Inc()
	return n, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.rpcClient.Close()
}

var _ port.BlockchainClient = (*EVMClient)(nil)
