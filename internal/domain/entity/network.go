package entity

import "time"

// NetworkDefinition holds the configuration for a blockchain network.
type NetworkDefinition struct {
	ChainID            uint64        `json:"chainId" yaml:"chainId"`
	Name               string        `json:"name" yaml:"name"`
	Key                string        `json:"key" yaml:"key"` // catalog contract key, e.g. "ETH", "BSC"
	NativeSymbol       string        `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals           int32         `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL      string        `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs    []string      `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockTime          time.Duration `json:"blockTime" yaml:"blockTime"`
	DEXScreenerChainID string        `json:"dexScreenerChainId" yaml:"dexScreenerChainId"`
	WrappedNative      string        `json:"wrappedNative" yaml:"wrappedNative"`
}

// BlocksPerDay estimates how many blocks the network produces in 24 hours.
func (n NetworkDefinition) BlocksPerDay() uint64 {
	if n.BlockTime <= 0 {
		return 0
	}
	return uint64((24 * time.Hour) / n.BlockTime)
}
