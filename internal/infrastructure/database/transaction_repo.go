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

// Ensure TransactionRepo implements TransactionRepository
var _ repositories.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implements TransactionRepository using PostgreSQL
type TransactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new transaction repository
func NewTransactionRepo(db *sqlx.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// GetByID retrieves an audit record by composite id
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entities.Transaction, error) {
	var tx entities.Transaction
	query := `SELECT id, type, timestamp, tx_hash, block_number, log_index, gas_limit,
					 gas_price::text AS gas_price, caller, recipient,
					 value::text AS value, amount::text AS amount, token_address, created_at
			  FROM transactions WHERE id = $1`

	if err := r.db.GetContext(ctx, &tx, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	tx.GasPrice, _ = new(big.Int).SetString(tx.GasPriceStr, 10)
	tx.Value, _ = new(big.Int).SetString(tx.ValueString, 10)
	tx.Amount, _ = new(big.Int).SetString(tx.AmountString, 10)
	return &tx, nil
}

// Insert appends an audit record. The conflict-ignore on the composite id
// keeps replayed events from committing a second record for the same
// (block, tx hash, log index) triple.
func (r *TransactionRepo) Insert(ctx context.Context, tx *entities.Transaction) error {
	query := `
		INSERT INTO transactions (id, type, timestamp, tx_hash, block_number, log_index,
								  gas_limit, gas_price, caller, recipient, value, amount, token_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.Type,
		tx.Timestamp,
		tx.TxHash,
		tx.BlockNumber,
		tx.LogIndex,
		tx.GasLimit,
		tx.GasPriceStr,
		tx.Caller,
		tx.Recipient,
		tx.ValueString,
		tx.AmountString,
		tx.TokenAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}
