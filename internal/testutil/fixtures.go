package testutil

import (
	"math/big"
	"time"

	"github.com/bimakw/token-ledger/internal/domain/entities"
)

// Common test addresses
const (
	ZeroAddress  = "0x0000000000000000000000000000000000000000"
	TokenAddress = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	AliceAddress = "0x1111111111111111111111111111111111111111"
	BobAddress   = "0x2222222222222222222222222222222222222222"
	CharlieAddr  = "0x3333333333333333333333333333333333333333"
)

// CreateTestContext creates an execution context with default values
func CreateTestContext(opts ...ContextOption) entities.EventContext {
	ctx := entities.EventContext{
		BlockNumber: 12345678,
		Timestamp:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		TxHash:      "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		TxValue:     big.NewInt(0),
		GasLimit:    90000,
		GasPrice:    big.NewInt(20000000000),
		LogIndex:    0,
	}

	for _, opt := range opts {
		opt(&ctx)
	}

	return ctx
}

type ContextOption func(*entities.EventContext)

func WithBlockNumber(num int64) ContextOption {
	return func(c *entities.EventContext) {
		c.BlockNumber = num
	}
}

func WithTxHash(hash string) ContextOption {
	return func(c *entities.EventContext) {
		c.TxHash = hash
	}
}

func WithLogIndex(idx int) ContextOption {
	return func(c *entities.EventContext) {
		c.LogIndex = idx
	}
}

func WithTimestamp(ts time.Time) ContextOption {
	return func(c *entities.EventContext) {
		c.Timestamp = ts
	}
}

func WithTxValue(v *big.Int) ContextOption {
	return func(c *entities.EventContext) {
		c.TxValue = v
	}
}

// CreateTestTransfer creates a transfer event with default values
func CreateTestTransfer(from, to string, value int64, opts ...ContextOption) entities.TransferEvent {
	return entities.TransferEvent{
		TokenAddress: TokenAddress,
		From:         from,
		To:           to,
		Value:        big.NewInt(value),
		Ctx:          CreateTestContext(opts...),
	}
}

// CreateTestApproval creates an approval event with default values
func CreateTestApproval(owner, spender string, value int64, opts ...ContextOption) entities.ApprovalEvent {
	return entities.ApprovalEvent{
		TokenAddress: TokenAddress,
		Owner:        owner,
		Spender:      spender,
		Value:        big.NewInt(value),
		Ctx:          CreateTestContext(opts...),
	}
}

// CreateTestToken creates a token entity with default values
func CreateTestToken() *entities.Token {
	supply := new(big.Int).Exp(big.NewInt(10), big.NewInt(21), nil)
	return &entities.Token{
		Address:           TokenAddress,
		Name:              "Test Token",
		Symbol:            "TST",
		Decimals:          18,
		TotalSupply:       supply,
		TotalSupplyString: supply.String(),
		CreatedAt:         time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}
