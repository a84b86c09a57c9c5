package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/token-ledger/internal/config"
	"github.com/bimakw/token-ledger/internal/domain/repositories"
	"github.com/bimakw/token-ledger/internal/infrastructure/ethereum"
)

// Runner is the host runtime: it polls the chain for new confirmed blocks,
// fetches their token logs in chain order, and feeds them to the reducer one
// at a time. The checkpoint only advances once every event of a range has
// been reduced; a crash replays the range, and the audit trail's composite
// ids keep replayed events from committing duplicate records.
type Runner struct {
	fetcher *ethereum.Fetcher
	reducer *Reducer
	cursor  repositories.CursorRepository
	config  config.ReducerConfig
	logger  *zap.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewRunner creates a new runner
func NewRunner(
	fetcher *ethereum.Fetcher,
	reducer *Reducer,
	cursor repositories.CursorRepository,
	cfg config.ReducerConfig,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		fetcher: fetcher,
		reducer: reducer,
		cursor:  cursor,
		config:  cfg,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start begins the polling loop
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("Starting ledger runner",
		zap.Strings("contracts", r.config.ContractAddresses),
		zap.Int64("start_block", r.config.StartBlock),
	)

	r.wg.Add(1)
	go r.run(ctx)
}

// Stop gracefully stops the runner
func (r *Runner) Stop() {
	r.logger.Info("Stopping ledger runner")
	close(r.stopCh)
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	// Run immediately on start
	r.reduceNewBlocks(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.reduceNewBlocks(ctx)
		}
	}
}

// reduceNewBlocks reduces any confirmed blocks past the checkpoint
func (r *Runner) reduceNewBlocks(ctx context.Context) {
	safeBlock, err := r.fetcher.GetSafeBlockNumber(ctx)
	if err != nil {
		r.logger.Error("Failed to get safe block number", zap.Error(err))
		return
	}

	lastBlock, err := r.cursor.GetLastBlock(ctx)
	if err != nil {
		r.logger.Error("Failed to read cursor", zap.Error(err))
		return
	}

	fromBlock := lastBlock + 1
	if lastBlock == 0 && r.config.StartBlock > 0 {
		fromBlock = r.config.StartBlock
	}
	if fromBlock > safeBlock {
		// Already up to date
		return
	}

	for _, blockRange := range ethereum.SplitBlockRange(fromBlock, safeBlock, r.config.BatchSize) {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		default:
		}

		if err := r.reduceRange(ctx, blockRange); err != nil {
			// Leave the cursor where it is; the whole range is replayed on
			// the next tick
			r.logger.Error("Failed to reduce block range",
				zap.Int64("from", blockRange.From),
				zap.Int64("to", blockRange.To),
				zap.Error(err),
			)
			return
		}

		if err := r.cursor.SetLastBlock(ctx, blockRange.To); err != nil {
			r.logger.Error("Failed to update cursor", zap.Error(err))
			return
		}
		lastReducedBlock.Set(float64(blockRange.To))
	}
}

// reduceRange fetches and sequentially reduces one block range
func (r *Runner) reduceRange(ctx context.Context, blockRange ethereum.BlockRange) error {
	result, err := r.fetcher.FetchEvents(ctx, blockRange.From, blockRange.To)
	if err != nil {
		return err
	}

	var processed, skipped int
	for _, ev := range result.Events {
		outcome, err := r.reducer.Handle(ctx, ev)
		if err != nil {
			evCtx := ev.Context()
			return fmt.Errorf("failed to reduce event %d-%s-%d: %w",
				evCtx.BlockNumber, evCtx.TxHash, evCtx.LogIndex, err)
		}
		if outcome.Skipped {
			skipped++
		} else {
			processed++
		}
	}

	r.logger.Debug("Reduced block range",
		zap.Int64("from", blockRange.From),
		zap.Int64("to", blockRange.To),
		zap.Int("processed", processed),
		zap.Int("skipped", skipped),
		zap.Int("unparsable", result.FailedLogCount),
	)

	return nil
}
