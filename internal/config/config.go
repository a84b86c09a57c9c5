package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Ethereum node configuration
	Ethereum EthereumConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Reducer configuration
	Reducer ReducerConfig

	// Ops server configuration
	Ops OpsConfig

	// Logging configuration
	Log LogConfig
}

// EthereumConfig holds Ethereum node connection settings
type EthereumConfig struct {
	RPCURL         string        `envconfig:"ETH_RPC_URL" default:"http://localhost:8545"`
	ChainID        int64         `envconfig:"ETH_CHAIN_ID" default:"1"`
	RequestTimeout time.Duration `envconfig:"ETH_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"ETH_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"ETH_RETRY_DELAY" default:"1s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"ledger"`
	Password        string        `envconfig:"DB_PASSWORD" default:"ledger"`
	Name            string        `envconfig:"DB_NAME" default:"token_ledger"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_TTL" default:"10m"`
}

// ReducerConfig holds reducer and host-runtime settings
type ReducerConfig struct {
	// ZeroAddress is the mint/burn sentinel. Injected rather than hardcoded
	// so chains with a different sentinel convention stay testable.
	ZeroAddress string `envconfig:"REDUCER_ZERO_ADDRESS" default:"0x0000000000000000000000000000000000000000"`

	// Contracts to reduce (comma-separated); empty means every contract
	// emitting Transfer/Approval logs
	ContractAddresses []string `envconfig:"REDUCER_CONTRACT_ADDRESSES" default:""`

	StartBlock         int64         `envconfig:"REDUCER_START_BLOCK" default:"0"`
	BatchSize          int           `envconfig:"REDUCER_BATCH_SIZE" default:"100"`
	BlockConfirmations int           `envconfig:"REDUCER_BLOCK_CONFIRMATIONS" default:"12"`
	PollInterval       time.Duration `envconfig:"REDUCER_POLL_INTERVAL" default:"12s"`

	// WorkerCount bounds the concurrent block/tx lookups that hydrate event
	// context; the reduction itself is strictly sequential
	WorkerCount int `envconfig:"REDUCER_WORKER_COUNT" default:"4"`

	TokenCacheSize   int `envconfig:"REDUCER_TOKEN_CACHE_SIZE" default:"1024"`
	AccountCacheSize int `envconfig:"REDUCER_ACCOUNT_CACHE_SIZE" default:"65536"`
}

// OpsConfig holds the operational HTTP server settings
type OpsConfig struct {
	Host            string        `envconfig:"OPS_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"OPS_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"OPS_READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"OPS_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"OPS_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"OPS_RATE_LIMIT_RPS" default:"100"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
