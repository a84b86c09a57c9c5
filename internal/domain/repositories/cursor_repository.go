package repositories

import "context"

// CursorRepository tracks the host runtime's position in the chain: the last
// block whose events have been fully reduced.
type CursorRepository interface {
	// GetLastBlock returns the last fully reduced block, 0 if none
	GetLastBlock(ctx context.Context) (int64, error)

	// SetLastBlock advances the checkpoint
	SetLastBlock(ctx context.Context, blockNumber int64) error
}
