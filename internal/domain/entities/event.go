package entities

import (
	"math/big"
	"time"
)

// EventContext carries the execution context every log event arrives with:
// where it sits in the chain plus the gas parameters and native value of the
// enclosing transaction.
type EventContext struct {
	BlockNumber int64
	Timestamp   time.Time
	TxHash      string
	TxValue     *big.Int
	GasLimit    int64
	GasPrice    *big.Int
	LogIndex    int
}

// Event is a decoded token log ready for reduction. The host runtime is
// responsible for delivering events in chain order (ascending block number,
// then log index).
type Event interface {
	Context() EventContext
}

// TransferEvent is a decoded ERC-20 Transfer log.
type TransferEvent struct {
	TokenAddress string
	From         string
	To           string
	Value        *big.Int
	Ctx          EventContext
}

// ApprovalEvent is a decoded ERC-20 Approval log.
type ApprovalEvent struct {
	TokenAddress string
	Owner        string
	Spender      string
	Value        *big.Int
	Ctx          EventContext
}

func (e TransferEvent) Context() EventContext { return e.Ctx }
func (e ApprovalEvent) Context() EventContext { return e.Ctx }
