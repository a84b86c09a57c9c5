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

// Ensure TokenRepo implements TokenRepository
var _ repositories.TokenRepository = (*TokenRepo)(nil)

// TokenRepo implements TokenRepository using PostgreSQL
type TokenRepo struct {
	db *sqlx.DB
}

// NewTokenRepo creates a new token repository
func NewTokenRepo(db *sqlx.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// GetByAddress retrieves a token by its contract address
func (r *TokenRepo) GetByAddress(ctx context.Context, address string) (*entities.Token, error) {
	var token entities.Token
	query := `SELECT address, name, symbol, decimals, total_supply::text AS total_supply, created_at
			  FROM tokens WHERE address = $1`

	if err := r.db.GetContext(ctx, &token, query, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	token.TotalSupply, _ = new(big.Int).SetString(token.TotalSupplyString, 10)
	return &token, nil
}

// Insert persists a newly discovered token. Tokens are create-once: a
// conflicting insert leaves the existing row untouched.
func (r *TokenRepo) Insert(ctx context.Context, token *entities.Token) error {
	query := `
		INSERT INTO tokens (address, name, symbol, decimals, total_supply)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		token.Address,
		token.Name,
		token.Symbol,
		token.Decimals,
		token.TotalSupplyString,
	)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}

	return nil
}
