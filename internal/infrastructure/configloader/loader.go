package configloader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "config/config.yml"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                string   `yaml:"port"`
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
	CORSOrigins         []string `yaml:"corsOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// StorageConfig locates the JSON document store.
type StorageConfig struct {
	DataDir string `yaml:"dataDir"`
}

// TrackerConfig drives the scheduled tracking runs.
type TrackerConfig struct {
	Schedule                    string   `yaml:"schedule"`
	RunOnStart                  bool     `yaml:"runOnStart"`
	AutoExcludeThresholdPercent float64  `yaml:"autoExcludeThresholdPercent"`
	SeedPreviousDay             *bool    `yaml:"seedPreviousDay"`
	TrackedChains               []string `yaml:"trackedChains"`
	WalletsFile                 string   `yaml:"walletsFile"`
}

// SeedsPreviousDay reports whether a first observation also writes yesterday.
func (t TrackerConfig) SeedsPreviousDay() bool {
	return t.SeedPreviousDay == nil || *t.SeedPreviousDay
}

// BackfillConfig bounds historical preloads.
type BackfillConfig struct {
	MaxDays            int   `yaml:"maxDays"`
	RequestDelayMillis int64 `yaml:"requestDelayMillis"`
	LookbackDays       int   `yaml:"lookbackDays"`
}

// PerformanceConfig holds RPC and concurrency limits.
type PerformanceConfig struct {
	MaxConcurrentRoutines    int     `yaml:"max_concurrent_routines"`
	RPCCallTimeoutSeconds    int     `yaml:"rpc_call_timeout_seconds"`
	ConnectionTimeoutSeconds int     `yaml:"connection_timeout_seconds"`
	RPCRateLimitPerSecond    float64 `yaml:"rpc_rate_limit_per_second"`
	RPCBurst                 int     `yaml:"rpc_burst"`
	RPCMaxRetries            int     `yaml:"rpc_max_retries"`
}

// NativePairConfig describes an on-chain pool used to price a native token:
// price = quote balance of the pair / base balance of the pair.
type NativePairConfig struct {
	Symbol        string `yaml:"symbol"`
	Chain         string `yaml:"chain"`
	Pair          string `yaml:"pair"`
	Base          string `yaml:"base"`
	BaseDecimals  int32  `yaml:"baseDecimals"`
	Quote         string `yaml:"quote"`
	QuoteDecimals int32  `yaml:"quoteDecimals"`
}

// PricingConfig is the shared price table configuration.
type PricingConfig struct {
	Stablecoins     []string           `yaml:"stablecoins"`
	Aliases         map[string]string  `yaml:"aliases"`
	CacheTTLMinutes int                `yaml:"cacheTTLMinutes"`
	NativePairs     []NativePairConfig `yaml:"nativePairs"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL                  string `yaml:"baseURL"`
	RequestTimeoutMillis     int64  `yaml:"requestTimeoutMillis"`
	MaxTokensPerBatchRequest int    `yaml:"maxTokensPerBatchRequest"`
}

// CatalogConfig locates project metadata.
type CatalogConfig struct {
	BaseURL      string            `yaml:"baseURL"`
	ProjectIDs   map[string]string `yaml:"projectIDs"` // local id -> remote id
	ProjectsFile string            `yaml:"projectsFile"`
	MaxRetries   int               `yaml:"maxRetries"`
}

// NetworkNodeConfig overrides the RPC endpoints of a network.
type NetworkNodeConfig struct {
	Key             string   `yaml:"key"` // "ETH", "BSC"
	RPCURL          string   `yaml:"rpcURL"`
	FallbackRPCURLs []string `yaml:"fallbackRPCURLs"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig        `yaml:"server"`
	Logging     LoggingConfig       `yaml:"logging"`
	Storage     StorageConfig       `yaml:"storage"`
	Tracker     TrackerConfig       `yaml:"tracker"`
	Backfill    BackfillConfig      `yaml:"backfill"`
	Performance PerformanceConfig   `yaml:"performance"`
	Pricing     PricingConfig       `yaml:"pricing"`
	DEXScreener DEXScreenerConfig   `yaml:"dexScreener"`
	Catalog     CatalogConfig       `yaml:"catalog"`
	Networks    []NetworkNodeConfig `yaml:"networks"`
}

// Network returns the override for a chain key.
func (c *Config) Network(key string) (NetworkNodeConfig, bool) {
	for _, n := range c.Networks {
		if strings.EqualFold(n.Key, key) {
			return n, true
		}
	}
	return NetworkNodeConfig{}, false
}

// PathFromEnv returns CONFIG_PATH or DefaultPath.
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads .env (if present) and the YAML file at path, then applies
// defaults and environment overrides. A missing YAML file yields defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	logrus.Infof("Loading configuration from path: %s", path)
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults", path)
	case err != nil:
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	for _, key := range []string{"ETH", "BSC"} {
		v := os.Getenv(key + "_RPC_URL")
		if v == "" {
			continue
		}
		found := false
		for i := range cfg.Networks {
			if strings.EqualFold(cfg.Networks[i].Key, key) {
				cfg.Networks[i].RPCURL = v
				found = true
			}
		}
		if !found {
			cfg.Networks = append(cfg.Networks, NetworkNodeConfig{Key: key, RPCURL: v})
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "3000"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 120
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "database"
	}

	if strings.TrimSpace(cfg.Tracker.Schedule) == "" {
		cfg.Tracker.Schedule = "0 * * * *"
	}
	if cfg.Tracker.AutoExcludeThresholdPercent < 0 {
		logrus.Warnf("tracker.autoExcludeThresholdPercent %v is negative, auto-exclusion disabled", cfg.Tracker.AutoExcludeThresholdPercent)
		cfg.Tracker.AutoExcludeThresholdPercent = 0
	} else if cfg.Tracker.AutoExcludeThresholdPercent == 0 {
		cfg.Tracker.AutoExcludeThresholdPercent = 1
	}
	if len(cfg.Tracker.TrackedChains) == 0 {
		cfg.Tracker.TrackedChains = []string{"ETH", "BSC"}
	}
	if cfg.Tracker.WalletsFile == "" {
		cfg.Tracker.WalletsFile = "data/wallets.txt"
	}

	if cfg.Backfill.MaxDays <= 0 {
		cfg.Backfill.MaxDays = 365
	}
	if cfg.Backfill.RequestDelayMillis < 0 {
		logrus.Warnf("backfill.requestDelayMillis %d is negative, using default", cfg.Backfill.RequestDelayMillis)
		cfg.Backfill.RequestDelayMillis = 0
	}
	if cfg.Backfill.RequestDelayMillis == 0 {
		cfg.Backfill.RequestDelayMillis = 250
	}
	if cfg.Backfill.LookbackDays <= 0 {
		cfg.Backfill.LookbackDays = 400
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 5
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}
	if cfg.Performance.ConnectionTimeoutSeconds <= 0 {
		cfg.Performance.ConnectionTimeoutSeconds = 10
	}
	if cfg.Performance.RPCRateLimitPerSecond <= 0 {
		cfg.Performance.RPCRateLimitPerSecond = 10
	}
	if cfg.Performance.RPCBurst <= 0 {
		cfg.Performance.RPCBurst = 5
	}
	if cfg.Performance.RPCMaxRetries <= 0 {
		cfg.Performance.RPCMaxRetries = 3
	}

	if len(cfg.Pricing.Stablecoins) == 0 {
		cfg.Pricing.Stablecoins = []string{"USDC", "USDT", "DAI", "BUSD"}
	}
	if cfg.Pricing.Aliases == nil {
		cfg.Pricing.Aliases = map[string]string{
			"stETH": "ETH",
			"WETH":  "ETH",
			"WBNB":  "BNB",
		}
	}
	if cfg.Pricing.CacheTTLMinutes <= 0 {
		cfg.Pricing.CacheTTLMinutes = 10
	}
	if len(cfg.Pricing.NativePairs) == 0 {
		cfg.Pricing.NativePairs = []NativePairConfig{
			{
				Symbol: "ETH", Chain: "ETH",
				Pair:  "0xA478c2975Ab1Ea89e8196811F51A7B7Ade33eB11",
				Base:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", BaseDecimals: 18,
				Quote: "0x6B175474E89094C44Da98b954EedeAC495271d0F", QuoteDecimals: 18,
			},
			{
				Symbol: "BNB", Chain: "BSC",
				Pair:  "0x58F876857a02D6762E0101bb5C46A8c1ED44Dc16",
				Base:  "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", BaseDecimals: 18,
				Quote: "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", QuoteDecimals: 18,
			},
		}
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}
	if cfg.DEXScreener.MaxTokensPerBatchRequest <= 0 {
		cfg.DEXScreener.MaxTokensPerBatchRequest = 30 // DEXScreener limit
	}

	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = "https://node.checkdot.io"
	}
	if cfg.Catalog.ProjectIDs == nil {
		cfg.Catalog.ProjectIDs = map[string]string{
			"ETH":  "ethereum",
			"USDC": "usd-coin",
			"USDT": "tether",
		}
	}
	if cfg.Catalog.ProjectsFile == "" {
		cfg.Catalog.ProjectsFile = "data/projects.json"
	}
	if cfg.Catalog.MaxRetries <= 0 {
		cfg.Catalog.MaxRetries = 3
	}
}
