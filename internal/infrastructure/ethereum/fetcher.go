package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/token-ledger/internal/config"
	"github.com/bimakw/token-ledger/internal/domain/entities"
)

// Fetcher pulls token logs for a block range and hydrates them with the
// execution context the reducer needs: block timestamps plus the gas
// parameters and native value of each enclosing transaction. Hydration runs
// concurrently; the returned slice is in chain order so the reduction that
// follows stays strictly sequential.
type Fetcher struct {
	client *Client
	config config.ReducerConfig
	logger *zap.Logger
}

// NewFetcher creates a new event fetcher
func NewFetcher(client *Client, cfg config.ReducerConfig, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// FetchResult contains the result of fetching events for a block range
type FetchResult struct {
	Events         []entities.Event
	FromBlock      int64
	ToBlock        int64
	FailedLogCount int
}

// GetSafeBlockNumber returns the latest block minus the configured
// confirmation lag
func (f *Fetcher) GetSafeBlockNumber(ctx context.Context) (int64, error) {
	latest, err := f.client.GetLatestBlockNumber(ctx)
	if err != nil {
		return 0, err
	}

	safe := int64(latest) - int64(f.config.BlockConfirmations)
	if safe < 0 {
		safe = 0
	}
	return safe, nil
}

// FetchEvents fetches Transfer and Approval events for a range of blocks,
// returned sorted by (block number, log index)
func (f *Fetcher) FetchEvents(ctx context.Context, fromBlock, toBlock int64) (*FetchResult, error) {
	addresses := make([]common.Address, 0, len(f.config.ContractAddresses))
	for _, addr := range f.config.ContractAddresses {
		if addr == "" {
			continue
		}
		addresses = append(addresses, common.HexToAddress(addr))
	}

	query := f.client.BuildFilterQuery(
		big.NewInt(fromBlock),
		big.NewInt(toBlock),
		addresses,
	)

	f.logger.Debug("Fetching logs",
		zap.Int64("from_block", fromBlock),
		zap.Int64("to_block", toBlock),
		zap.Int("contract_count", len(addresses)),
	)

	logs, err := f.client.GetLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logs: %w", err)
	}

	timestamps, txs, err := f.hydrateContext(ctx, logs)
	if err != nil {
		return nil, err
	}

	result := &FetchResult{
		Events:    make([]entities.Event, 0, len(logs)),
		FromBlock: fromBlock,
		ToBlock:   toBlock,
	}

	for _, log := range logs {
		if !IsTokenEvent(log) {
			result.FailedLogCount++
			continue
		}

		tx, ok := txs[log.TxHash]
		if !ok {
			result.FailedLogCount++
			continue
		}

		evCtx := entities.EventContext{
			BlockNumber: int64(log.BlockNumber),
			Timestamp:   timestamps[log.BlockNumber],
			TxHash:      log.TxHash.Hex(),
			TxValue:     tx.Value(),
			GasLimit:    int64(tx.Gas()),
			GasPrice:    tx.GasPrice(),
			LogIndex:    int(log.Index),
		}

		event, err := ParseLog(log, evCtx)
		if err != nil {
			f.logger.Warn("Failed to parse log",
				zap.String("tx_hash", log.TxHash.Hex()),
				zap.Uint("log_index", log.Index),
				zap.Error(err),
			)
			result.FailedLogCount++
			continue
		}

		result.Events = append(result.Events, event)
	}

	sort.SliceStable(result.Events, func(i, j int) bool {
		a, b := result.Events[i].Context(), result.Events[j].Context()
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		return a.LogIndex < b.LogIndex
	})

	return result, nil
}

// hydrateContext resolves block timestamps and enclosing transactions for a
// batch of logs. Lookups are deduplicated and bounded by WorkerCount.
func (f *Fetcher) hydrateContext(ctx context.Context, logs []types.Log) (map[uint64]time.Time, map[common.Hash]*types.Transaction, error) {
	blockNumbers := make(map[uint64]struct{})
	txHashes := make(map[common.Hash]struct{})
	for _, log := range logs {
		blockNumbers[log.BlockNumber] = struct{}{}
		txHashes[log.TxHash] = struct{}{}
	}

	var mu sync.Mutex
	timestamps := make(map[uint64]time.Time, len(blockNumbers))
	txs := make(map[common.Hash]*types.Transaction, len(txHashes))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.config.WorkerCount)

	for number := range blockNumbers {
		number := number
		g.Go(func() error {
			header, err := f.client.GetHeaderByNumber(gCtx, new(big.Int).SetUint64(number))
			if err != nil {
				return fmt.Errorf("failed to get header %d: %w", number, err)
			}
			mu.Lock()
			timestamps[number] = time.Unix(int64(header.Time), 0).UTC()
			mu.Unlock()
			return nil
		})
	}

	for hash := range txHashes {
		hash := hash
		g.Go(func() error {
			tx, err := f.client.GetTransactionByHash(gCtx, hash)
			if err != nil {
				return fmt.Errorf("failed to get transaction %s: %w", hash.Hex(), err)
			}
			mu.Lock()
			txs[hash] = tx
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return timestamps, txs, nil
}

// BlockRange represents an inclusive block range
type BlockRange struct {
	From int64
	To   int64
}

// SplitBlockRange splits a range into batches
func SplitBlockRange(fromBlock, toBlock int64, batchSize int) []BlockRange {
	if fromBlock > toBlock {
		return nil
	}

	var ranges []BlockRange
	for current := fromBlock; current <= toBlock; current += int64(batchSize) {
		end := current + int64(batchSize) - 1
		if end > toBlock {
			end = toBlock
		}
		ranges = append(ranges, BlockRange{From: current, To: end})
	}

	return ranges
}
