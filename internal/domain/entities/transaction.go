package entities

import (
	"math/big"
	"strconv"
	"time"
)

// TransactionType classifies a processed event for the audit trail.
type TransactionType string

const (
	TypeMint     TransactionType = "MINT"
	TypeBurn     TransactionType = "BURN"
	TypeTransfer TransactionType = "TRANSFER"
	TypeApproval TransactionType = "APPROVAL"
)

// Transaction is the append-only audit record for one processed event.
// Records are never mutated or deleted; exactly one exists per processed
// event, keyed by (block number, tx hash, log index).
type Transaction struct {
	ID           string          `db:"id"`
	Type         TransactionType `db:"type"`
	Timestamp    time.Time       `db:"timestamp"`
	TxHash       string          `db:"tx_hash"`
	BlockNumber  int64           `db:"block_number"`
	LogIndex     int             `db:"log_index"`
	GasLimit     int64           `db:"gas_limit"`
	GasPrice     *big.Int        `db:"-"`
	GasPriceStr  string          `db:"gas_price"`
	Caller       string          `db:"caller"`
	Recipient    string          `db:"recipient"`
	Value        *big.Int        `db:"-"` // native-currency value of the enclosing tx
	ValueString  string          `db:"value"`
	Amount       *big.Int        `db:"-"` // token-denominated event value
	AmountString string          `db:"amount"`
	TokenAddress string          `db:"token_address"`
	CreatedAt    time.Time       `db:"created_at"`
}

// TransactionID builds the composite id for an audit record. The block
// number is included so the id stays unique even across hash collisions
// between chains, and the log index distinguishes multiple logs within one
// transaction.
func TransactionID(blockNumber int64, txHash string, logIndex int) string {
	return strconv.FormatInt(blockNumber, 10) + "-" + txHash + "-" + strconv.Itoa(logIndex)
}

// ClassifyTransfer maps a transfer's endpoints onto the audit type. The zero
// address is the mint/burn sentinel.
func ClassifyTransfer(from, to, zeroAddress string) TransactionType {
	switch {
	case from == zeroAddress:
		return TypeMint
	case to == zeroAddress:
		return TypeBurn
	default:
		return TypeTransfer
	}
}
