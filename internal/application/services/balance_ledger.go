package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/token-ledger/internal/domain/entities"
	"github.com/bimakw/token-ledger/internal/domain/repositories"
)

// BalanceLedger applies a transfer's token amount to the sender and receiver
// balance rows. The zero address is the mint/burn sentinel and never owns a
// balance row.
type BalanceLedger struct {
	repo        repositories.BalanceRepository
	zeroAddress string
	logger      *zap.Logger
}

// NewBalanceLedger creates a new balance ledger
func NewBalanceLedger(repo repositories.BalanceRepository, zeroAddress string, logger *zap.Logger) *BalanceLedger {
	return &BalanceLedger{
		repo:        repo,
		zeroAddress: zeroAddress,
		logger:      logger,
	}
}

// Apply debits the sender and credits the receiver. Either side is skipped
// when it is the zero address: a mint only credits, a burn only debits.
func (l *BalanceLedger) Apply(ctx context.Context, token *entities.Token, from, to string, value *big.Int) error {
	if from != l.zeroAddress {
		if err := l.debit(ctx, token, from, value); err != nil {
			return err
		}
	}

	if to != l.zeroAddress {
		if err := l.credit(ctx, token, to, value); err != nil {
			return err
		}
	}

	return nil
}

// debit subtracts the transferred amount from the sender's balance. When no
// balance row exists, or the recorded amount is below the transferred value,
// the row is first resynchronized to the transferred value. The ledger may
// simply never have observed the balance accruing (contract deployed
// mid-history), so it resyncs instead of rejecting the event.
func (l *BalanceLedger) debit(ctx context.Context, token *entities.Token, account string, value *big.Int) error {
	id := entities.BalanceID(token.Address, account)

	balance, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load balance %s: %w", id, err)
	}

	if balance == nil {
		balance = &entities.TokenBalance{
			ID:             id,
			TokenAddress:   token.Address,
			AccountAddress: account,
			Amount:         new(big.Int).Set(value),
		}
	} else if balance.Amount.Cmp(value) < 0 {
		l.logger.Debug("Balance below transferred amount, resyncing",
			zap.String("balance_id", id),
			zap.String("recorded", balance.Amount.String()),
			zap.String("transferred", value.String()),
		)
		balance.Amount = new(big.Int).Set(value)
	}

	balance.Amount = new(big.Int).Sub(balance.Amount, value)
	balance.AmountString = balance.Amount.String()
	balance.UpdatedAt = time.Now().UTC()

	if err := l.repo.Upsert(ctx, balance); err != nil {
		return fmt.Errorf("failed to save balance %s: %w", id, err)
	}

	return nil
}

// credit adds the transferred amount to the receiver's balance, initializing
// the row at zero when absent
func (l *BalanceLedger) credit(ctx context.Context, token *entities.Token, account string, value *big.Int) error {
	id := entities.BalanceID(token.Address, account)

	balance, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load balance %s: %w", id, err)
	}

	if balance == nil {
		balance = &entities.TokenBalance{
			ID:             id,
			TokenAddress:   token.Address,
			AccountAddress: account,
			Amount:         new(big.Int),
		}
	}

	balance.Amount = new(big.Int).Add(balance.Amount, value)
	balance.AmountString = balance.Amount.String()
	balance.UpdatedAt = time.Now().UTC()

	if err := l.repo.Upsert(ctx, balance); err != nil {
		return fmt.Errorf("failed to save balance %s: %w", id, err)
	}

	return nil
}
