package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"

	"github.com/hashicorp/go-retryablehttp"
)

// evmClientProvider implements the port.BlockchainClientProvider interface.
type evmClientProvider struct {
	clients map[string]*EVMClient
	mu      sync.Mutex
	logger  port.Logger
	opts    Options
	retries int
}

// ClientProvider is a BlockchainClientProvider that can release its connections.
type ClientProvider interface {
	port.BlockchainClientProvider
	Close()
}

// NewEVMClientProvider creates a provider whose clients share the
// performance settings of cfg.
func NewEVMClientProvider(cfg *configloader.Config, log port.Logger) ClientProvider {
	return &evmClientProvider{
		clients: make(map[string]*EVMClient),
		logger:  log,
		retries: cfg.Performance.RPCMaxRetries,
		opts: Options{
			ConnectionTimeout: time.Duration(cfg.Performance.ConnectionTimeoutSeconds) * time.Second,
			CallTimeout:       time.Duration(cfg.Performance.RPCCallTimeoutSeconds) * time.Second,
			RateLimit:         cfg.Performance.RPCRateLimitPerSecond,
			Burst:             cfg.Performance.RPCBurst,
		},
	}
}

func (p *evmClientProvider) httpClient() *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = p.retries
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 3 * time.Second
	rc.HTTPClient.Timeout = p.opts.CallTimeout
	rc.Logger = nil
	if p.logger != nil {
		rc.Logger = p.logger
	}
	return rc
}

// GetClient retrieves a blockchain client for the given network definition.
// It caches clients to avoid reconnecting repeatedly.
func (p *evmClientProvider) GetClient(netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clientKey := netDef.Key
	if client, exists := p.clients[clientKey]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name, "rpc_primary", netDef.PrimaryRPCURL)
	newClient, err := NewEVMClient(netDef, p.httpClient().StandardClient(), p.opts)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[clientKey] = newClient
	return newClient, nil
}

// Close closes every cached client.
func (p *evmClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, c := range p.clients {
		c.Close()
		delete(p.clients, k)
	}
}
