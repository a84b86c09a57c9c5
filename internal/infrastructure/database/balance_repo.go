package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/token-ledger/internal/domain/entities"
	"github.com/bimakw/token-ledger/internal/domain/repositories"
)

// Ensure BalanceRepo implements BalanceRepository
var _ repositories.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implements BalanceRepository using PostgreSQL
type BalanceRepo struct {
	db *sqlx.DB
}

// NewBalanceRepo creates a new balance repository
func NewBalanceRepo(db *sqlx.DB) *BalanceRepo {
	return &BalanceRepo{db: db}
}

// GetByID retrieves a balance row by composite id
func (r *BalanceRepo) GetByID(ctx context.Context, id string) (*entities.TokenBalance, error) {
	var balance entities.TokenBalance
	query := `SELECT id, token_address, account_address, amount::text AS amount, updated_at
			  FROM token_balances WHERE id = $1`

	if err := r.db.GetContext(ctx, &balance, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	balance.Amount, _ = new(big.Int).SetString(balance.AmountString, 10)
	return &balance, nil
}

// Upsert creates or replaces the balance row for its composite id
func (r *BalanceRepo) Upsert(ctx context.Context, balance *entities.TokenBalance) error {
	query := `
		INSERT INTO token_balances (id, token_address, account_address, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		balance.ID,
		balance.TokenAddress,
		balance.AccountAddress,
		balance.AmountString,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert balance: %w", err)
	}

	return nil
}
