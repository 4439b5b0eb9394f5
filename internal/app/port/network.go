package port

import (
	"context"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

// BlockchainClient defines the interface for interacting with a blockchain network.
type BlockchainClient interface {
	// GetBalances fetches native and ERC20 balances in one batch. A nil block
	// queries the latest state. Reverted token calls come back as zero balances.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem, block *uint64) ([]entity.BalanceResultItem, error)

	// BlockNumber returns the current head block.
	BlockNumber(ctx context.Context) (uint64, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns the tracked networks.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByKey returns a network by its catalog key ("ETH", "BSC") or identifier.
	GetNetworkDefinitionByKey(key string) (entity.NetworkDefinition, bool)
}

// BlockchainClientProvider hands out cached clients per network.
type BlockchainClientProvider interface {
	GetClient(networkDefinition entity.NetworkDefinition) (BlockchainClient, error)
}
