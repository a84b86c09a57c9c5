package repositories

import (
	"context"

	"github.com/bimakw/token-ledger/internal/domain/entities"
)

// BalanceRepository defines the store boundary for TokenBalance rows
type BalanceRepository interface {
	// GetByID retrieves a balance row by composite id, nil if absent
	GetByID(ctx context.Context, id string) (*entities.TokenBalance, error)

	// Upsert creates or replaces the balance row for its id
	Upsert(ctx context.Context, balance *entities.TokenBalance) error
}

// AllowanceRepository defines the store boundary for TokenAllowance rows
type AllowanceRepository interface {
	// GetByID retrieves an allowance row by composite id, nil if absent
	GetByID(ctx context.Context, id string) (*entities.TokenAllowance, error)

	// Upsert creates or replaces the allowance row for its id (approve
	// replaces, never increments)
	Upsert(ctx context.Context, allowance *entities.TokenAllowance) error
}

// TransactionRepository defines the store boundary for the audit trail
type TransactionRepository interface {
	// GetByID retrieves an audit record by composite id, nil if absent
	GetByID(ctx context.Context, id string) (*entities.Transaction, error)

	// Insert appends an audit record; a second insert with the same id is a
	// no-op so replayed events never produce duplicate records
	Insert(ctx context.Context, tx *entities.Transaction) error
}
