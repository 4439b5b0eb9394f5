package networkdefinition

import (
	"strings"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"
)

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider struct {
	logger            port.Logger
	activeNetworkDefs []entity.NetworkDefinition
}

// Predefined network definitions, keyed like the catalog contract maps.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:            1,
		Name:               "Ethereum Mainnet",
		Key:                "ETH",
		NativeSymbol:       "ETH",
		Decimals:           18,
		PrimaryRPCURL:      "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:    []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockTime:          12 * time.Second,
		DEXScreenerChainID: "ethereum",
		WrappedNative:      "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH
	}
	BSC = entity.NetworkDefinition{
		ChainID:            56,
		Name:               "BNB Smart Chain",
		Key:                "BSC",
		NativeSymbol:       "BNB",
		Decimals:           18,
		PrimaryRPCURL:      "https://bsc-dataseed.binance.org/",
		FallbackRPCURLs:    []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		BlockTime:          3 * time.Second,
		DEXScreenerChainID: "bsc",
		WrappedNative:      "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", // WBNB
	}
)

var allKnownDefinitions = []entity.NetworkDefinition{Ethereum, BSC}

// NewNetworkDefinitionProvider activates the tracked chains of cfg and
// applies their RPC overrides.
func NewNetworkDefinitionProvider(log port.Logger, cfg *configloader.Config) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{logger: log}

	for _, key := range cfg.Tracker.TrackedChains {
		def, ok := lookup(key)
		if !ok {
			p.logger.Warn("Tracked chain has no network definition, skipping", "chain", key)
			continue
		}
		if override, ok := cfg.Network(def.Key); ok {
			if override.RPCURL != "" {
				def.PrimaryRPCURL = override.RPCURL
			}
			if len(override.FallbackRPCURLs) > 0 {
				def.FallbackRPCURLs = append([]string(nil), override.FallbackRPCURLs...)
			}
		}
		p.activeNetworkDefs = append(p.activeNetworkDefs, def)
		p.logger.Debug("Network activated", "chain", def.Key, "chainId", def.ChainID, "rpc", def.PrimaryRPCURL)
	}

	if len(p.activeNetworkDefs) == 0 {
		p.logger.Warn("No networks active", "trackedChains", cfg.Tracker.TrackedChains)
	}
	return p
}

func lookup(key string) (entity.NetworkDefinition, bool) {
	for _, def := range allKnownDefinitions {
		if strings.EqualFold(def.Key, key) || strings.EqualFold(def.DEXScreenerChainID, key) {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// GetAllNetworkDefinitions returns the list of active (tracked) network definitions.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defsCopy := make([]entity.NetworkDefinition, len(p.activeNetworkDefs))
	copy(defsCopy, p.activeNetworkDefs)
	return defsCopy
}

// GetNetworkDefinitionByKey returns an active network by catalog key or DEXScreener identifier.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByKey(key string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	for _, def := range p.activeNetworkDefs {
		if strings.EqualFold(def.Key, key) || strings.EqualFold(def.DEXScreenerChainID, key) {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

var _ port.NetworkDefinitionProvider = (*NetworkDefinitionProvider)(nil)
