package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/token-ledger/internal/domain/repositories"
)

// Ensure CursorRepo implements CursorRepository
var _ repositories.CursorRepository = (*CursorRepo)(nil)

// CursorRepo implements CursorRepository using PostgreSQL. A single row
// tracks the last fully reduced block.
type CursorRepo struct {
	db *sqlx.DB
}

// NewCursorRepo creates a new cursor repository
func NewCursorRepo(db *sqlx.DB) *CursorRepo {
	return &CursorRepo{db: db}
}

// GetLastBlock returns the last fully reduced block, 0 if none
func (r *CursorRepo) GetLastBlock(ctx context.Context) (int64, error) {
	var lastBlock int64
	query := `SELECT last_block FROM reducer_cursor WHERE id = 1`

	if err := r.db.GetContext(ctx, &lastBlock, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get cursor: %w", err)
	}

	return lastBlock, nil
}

// SetLastBlock advances the checkpoint
func (r *CursorRepo) SetLastBlock(ctx context.Context, blockNumber int64) error {
	query := `
		INSERT INTO reducer_cursor (id, last_block)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET
			last_block = EXCLUDED.last_block,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, blockNumber); err != nil {
		return fmt.Errorf("failed to update cursor: %w", err)
	}

	return nil
}
