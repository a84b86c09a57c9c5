package repositories

import (
	"context"

	"github.com/bimakw/token-ledger/internal/domain/entities"
)

// TokenRepository defines the store boundary for Token entities
type TokenRepository interface {
	// GetByAddress retrieves a token by its contract address, nil if absent
	GetByAddress(ctx context.Context, address string) (*entities.Token, error)

	// Insert persists a newly discovered token; existing rows are left
	// untouched (tokens are create-once, never refreshed)
	Insert(ctx context.Context, token *entities.Token) error
}

// AccountRepository defines the store boundary for Account entities
type AccountRepository interface {
	// GetByAddress retrieves an account by address, nil if absent
	GetByAddress(ctx context.Context, address string) (*entities.Account, error)

	// Insert persists a newly seen account; existing rows are left untouched
	Insert(ctx context.Context, account *entities.Account) error
}
