package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/bimakw/token-ledger/internal/config"
)

// Client wraps the Ethereum client with retry logic and utilities
type Client struct {
	client  *ethclient.Client
	config  config.EthereumConfig
	logger  *zap.Logger
	chainID *big.Int
}

// NewClient creates a new Ethereum client
func NewClient(cfg config.EthereumConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum node: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	if chainID.Int64() != cfg.ChainID {
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", cfg.ChainID, chainID.Int64())
	}

	logger.Info("Connected to Ethereum node",
		zap.String("rpc_url", cfg.RPCURL),
		zap.Int64("chain_id", chainID.Int64()),
	)

	return &Client{
		client:  client,
		config:  cfg,
		logger:  logger,
		chainID: chainID,
	}, nil
}

// Close closes the Ethereum client connection
func (c *Client) Close() {
	c.client.Close()
}

// GetLatestBlockNumber returns the latest block number
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	var blockNumber uint64
	var err error

	for i := 0; i <= c.config.MaxRetries; i++ {
		blockNumber, err = c.client.BlockNumber(ctx)
		if err == nil {
			return blockNumber, nil
		}

		c.logger.Warn("Failed to get latest block number, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < c.config.MaxRetries {
			time.Sleep(c.config.RetryDelay)
		}
	}

	return 0, fmt.Errorf("failed to get latest block number after %d retries: %w", c.config.MaxRetries, err)
}

// GetHeaderByNumber returns a block header by its number
func (c *Client) GetHeaderByNumber(ctx context.Context, blockNumber *big.Int) (*types.Header, error) {
	var header *types.Header
	var err error

	for i := 0; i <= c.config.MaxRetries; i++ {
		header, err = c.client.HeaderByNumber(ctx, blockNumber)
		if err == nil {
			return header, nil
		}

		c.logger.Warn("Failed to get header, retrying",
			zap.String("block_number", blockNumber.String()),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < c.config.MaxRetries {
			time.Sleep(c.config.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to get header %s after %d retries: %w", blockNumber.String(), c.config.MaxRetries, err)
}

// GetTransactionByHash returns a transaction by its hash
func (c *Client) GetTransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, error) {
	var tx *types.Transaction
	var err error

	for i := 0; i <= c.config.MaxRetries; i++ {
		tx, _, err = c.client.TransactionByHash(ctx, hash)
		if err == nil {
			return tx, nil
		}

		c.logger.Warn("Failed to get transaction, retrying",
			zap.String("tx_hash", hash.Hex()),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < c.config.MaxRetries {
			time.Sleep(c.config.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to get transaction %s after %d retries: %w", hash.Hex(), c.config.MaxRetries, err)
}

// GetLogs retrieves logs matching the filter query
func (c *Client) GetLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	var err error

	for i := 0; i <= c.config.MaxRetries; i++ {
		logs, err = c.client.FilterLogs(ctx, query)
		if err == nil {
			return logs, nil
		}

		c.logger.Warn("Failed to get logs, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < c.config.MaxRetries {
			time.Sleep(c.config.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to get logs after %d retries: %w", c.config.MaxRetries, err)
}

// CallContract performs a read-only eth_call against a contract. Reverts are
// surfaced as errors without retry; only transport failures are retried.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		To:   &to,
		Data: data,
	}

	result, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call failed: %w", err)
	}

	return result, nil
}

// BuildFilterQuery builds a filter query for ERC-20 Transfer and Approval events
func (c *Client) BuildFilterQuery(fromBlock, toBlock *big.Int, addresses []common.Address) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: fromBlock,
		ToBlock:   toBlock,
		Addresses: addresses,
		Topics: [][]common.Hash{
			{TransferEventSignature, ApprovalEventSignature},
		},
	}
}

// ChainID returns the chain ID
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// EthClient returns the underlying ethclient for advanced operations
func (c *Client) EthClient() *ethclient.Client {
	return c.client
}
