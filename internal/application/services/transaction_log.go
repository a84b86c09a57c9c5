package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/bimakw/token-ledger/internal/domain/entities"
	"github.com/bimakw/token-ledger/internal/domain/repositories"
)

// TransactionLog appends one immutable audit record per processed event.
type TransactionLog struct {
	repo        repositories.TransactionRepository
	zeroAddress string
}

// NewTransactionLog creates a new transaction log
func NewTransactionLog(repo repositories.TransactionRepository, zeroAddress string) *TransactionLog {
	return &TransactionLog{
		repo:        repo,
		zeroAddress: zeroAddress,
	}
}

// AppendTransfer records a processed Transfer event, classified as MINT,
// BURN, or TRANSFER by its endpoints
func (t *TransactionLog) AppendTransfer(ctx context.Context, token *entities.Token, ev entities.TransferEvent) error {
	txType := entities.ClassifyTransfer(ev.From, ev.To, t.zeroAddress)
	return t.append(ctx, token, txType, ev.From, ev.To, ev.Value, ev.Ctx)
}

// AppendApproval records a processed Approval event with caller = owner and
// recipient = spender
func (t *TransactionLog) AppendApproval(ctx context.Context, token *entities.Token, ev entities.ApprovalEvent) error {
	return t.append(ctx, token, entities.TypeApproval, ev.Owner, ev.Spender, ev.Value, ev.Ctx)
}

func (t *TransactionLog) append(
	ctx context.Context,
	token *entities.Token,
	txType entities.TransactionType,
	caller, recipient string,
	amount *big.Int,
	evCtx entities.EventContext,
) error {
	record := &entities.Transaction{
		ID:           entities.TransactionID(evCtx.BlockNumber, evCtx.TxHash, evCtx.LogIndex),
		Type:         txType,
		Timestamp:    evCtx.Timestamp,
		TxHash:       evCtx.TxHash,
		BlockNumber:  evCtx.BlockNumber,
		LogIndex:     evCtx.LogIndex,
		GasLimit:     evCtx.GasLimit,
		GasPrice:     evCtx.GasPrice,
		GasPriceStr:  evCtx.GasPrice.String(),
		Caller:       caller,
		Recipient:    recipient,
		Value:        evCtx.TxValue,
		ValueString:  evCtx.TxValue.String(),
		Amount:       amount,
		AmountString: amount.String(),
		TokenAddress: token.Address,
		CreatedAt:    time.Now().UTC(),
	}

	if err := t.repo.Insert(ctx, record); err != nil {
		return fmt.Errorf("failed to append transaction %s: %w", record.ID, err)
	}

	return nil
}
