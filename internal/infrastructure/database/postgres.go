package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/bimakw/token-ledger/internal/config"
)

// PostgresDB wraps the sqlx database connection
type PostgresDB struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresDB creates a new PostgreSQL connection
func NewPostgresDB(cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
	)

	return &PostgresDB{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close() error {
	return p.db.Close()
}

// DB returns the underlying sqlx.DB
func (p *PostgresDB) DB() *sqlx.DB {
	return p.db
}

// HealthCheck performs a health check on the database
func (p *PostgresDB) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Migrate creates the ledger tables if they do not exist yet
func (p *PostgresDB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tokens (
			address      VARCHAR(42) PRIMARY KEY,
			name         TEXT NOT NULL,
			symbol       TEXT NOT NULL,
			decimals     SMALLINT NOT NULL CHECK (decimals >= 0 AND decimals <= 255),
			total_supply NUMERIC(78, 0) NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			address    VARCHAR(42) PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS token_balances (
			id              VARCHAR(85) PRIMARY KEY,
			token_address   VARCHAR(42) NOT NULL,
			account_address VARCHAR(42) NOT NULL,
			amount          NUMERIC(78, 0) NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_balances_account ON token_balances (account_address)`,
		`CREATE TABLE IF NOT EXISTS token_allowances (
			id              VARCHAR(128) PRIMARY KEY,
			token_address   VARCHAR(42) NOT NULL,
			owner_address   VARCHAR(42) NOT NULL,
			spender_address VARCHAR(42) NOT NULL,
			amount          NUMERIC(78, 0) NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id            VARCHAR(128) PRIMARY KEY,
			type          VARCHAR(16) NOT NULL,
			timestamp     TIMESTAMPTZ NOT NULL,
			tx_hash       VARCHAR(66) NOT NULL,
			block_number  BIGINT NOT NULL,
			log_index     INT NOT NULL,
			gas_limit     BIGINT NOT NULL,
			gas_price     NUMERIC(78, 0) NOT NULL,
			caller        VARCHAR(42) NOT NULL,
			recipient     VARCHAR(42) NOT NULL,
			value         NUMERIC(78, 0) NOT NULL,
			amount        NUMERIC(78, 0) NOT NULL,
			token_address VARCHAR(42) NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_caller ON transactions (caller)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_recipient ON transactions (recipient)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_token ON transactions (token_address, block_number)`,
		`CREATE TABLE IF NOT EXISTS reducer_cursor (
			id         INT PRIMARY KEY CHECK (id = 1),
			last_block BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	p.logger.Info("Database schema up to date")
	return nil
}
