package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/bimakw/token-ledger/internal/domain/entities"
	"github.com/bimakw/token-ledger/internal/domain/repositories"
)

// AllowanceLedger records owner→spender allowances. ERC-20 approve replaces
// the prior allowance, so every Approval fully overwrites the row.
type AllowanceLedger struct {
	repo repositories.AllowanceRepository
}

// NewAllowanceLedger creates a new allowance ledger
func NewAllowanceLedger(repo repositories.AllowanceRepository) *AllowanceLedger {
	return &AllowanceLedger{repo: repo}
}

// Overwrite replaces the allowance for (token, owner, spender) with the
// approved value
func (l *AllowanceLedger) Overwrite(ctx context.Context, token *entities.Token, owner, spender string, value *big.Int) error {
	allowance := &entities.TokenAllowance{
		ID:             entities.AllowanceID(token.Address, owner, spender),
		TokenAddress:   token.Address,
		OwnerAddress:   owner,
		SpenderAddress: spender,
		Amount:         new(big.Int).Set(value),
		AmountString:   value.String(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := l.repo.Upsert(ctx, allowance); err != nil {
		return fmt.Errorf("failed to save allowance %s: %w", allowance.ID, err)
	}

	return nil
}
