package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/token-ledger/internal/domain/entities"
	"github.com/bimakw/token-ledger/internal/domain/repositories"
)

// Ensure AccountRepo implements AccountRepository
var _ repositories.AccountRepository = (*AccountRepo)(nil)

// AccountRepo implements AccountRepository using PostgreSQL
type AccountRepo struct {
	db *sqlx.DB
}

// NewAccountRepo creates a new account repository
func NewAccountRepo(db *sqlx.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// GetByAddress retrieves an account by address
func (r *AccountRepo) GetByAddress(ctx context.Context, address string) (*entities.Account, error) {
	var account entities.Account
	query := `SELECT address, created_at FROM accounts WHERE address = $1`

	if err := r.db.GetContext(ctx, &account, query, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

// Insert persists a newly seen account; existing rows are left untouched
func (r *AccountRepo) Insert(ctx context.Context, account *entities.Account) error {
	query := `INSERT INTO accounts (address) VALUES ($1) ON CONFLICT (address) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, account.Address); err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}
