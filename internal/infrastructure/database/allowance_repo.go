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

// Ensure AllowanceRepo implements AllowanceRepository
var _ repositories.AllowanceRepository = (*AllowanceRepo)(nil)

// AllowanceRepo implements AllowanceRepository using PostgreSQL
type AllowanceRepo struct {
	db *sqlx.DB
}

// NewAllowanceRepo creates a new allowance repository
func NewAllowanceRepo(db *sqlx.DB) *AllowanceRepo {
	return &AllowanceRepo{db: db}
}

// GetByID retrieves an allowance row by composite id
func (r *AllowanceRepo) GetByID(ctx context.Context, id string) (*entities.TokenAllowance, error) {
	var allowance entities.TokenAllowance
	query := `SELECT id, token_address, owner_address, spender_address, amount::text AS amount, updated_at
			  FROM token_allowances WHERE id = $1`

	if err := r.db.GetContext(ctx, &allowance, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get allowance: %w", err)
	}

	allowance.Amount, _ = new(big.Int).SetString(allowance.AmountString, 10)
	return &allowance, nil
}

// Upsert creates or replaces the allowance row for its composite id
func (r *AllowanceRepo) Upsert(ctx context.Context, allowance *entities.TokenAllowance) error {
	query := `
		INSERT INTO token_allowances (id, token_address, owner_address, spender_address, amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		allowance.ID,
		allowance.TokenAddress,
		allowance.OwnerAddress,
		allowance.SpenderAddress,
		allowance.AmountString,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert allowance: %w", err)
	}

	return nil
}
