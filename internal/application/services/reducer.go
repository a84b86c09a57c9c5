package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/token-ledger/internal/domain/entities"
)

// Reducer turns the ordered Transfer/Approval log stream into derived state:
// token and account entities, balances, allowances, and the audit trail. One
// event is reduced to completion before the next is considered; there is no
// multi-event transaction or rollback concept here.
//
// Events that cannot be applied are dropped with a typed skip reason rather
// than failing the stream. Only store or RPC I/O failures surface as errors,
// so the host runtime can retry the batch without advancing its cursor.
type Reducer struct {
	tokens      *TokenRegistry
	accounts    *AccountRegistry
	balances    *BalanceLedger
	allowances  *AllowanceLedger
	audit       *TransactionLog
	zeroAddress string
	logger      *zap.Logger
}

// NewReducer creates a new event reducer
func NewReducer(
	tokens *TokenRegistry,
	accounts *AccountRegistry,
	balances *BalanceLedger,
	allowances *AllowanceLedger,
	audit *TransactionLog,
	zeroAddress string,
	logger *zap.Logger,
) *Reducer {
	return &Reducer{
		tokens:      tokens,
		accounts:    accounts,
		balances:    balances,
		allowances:  allowances,
		audit:       audit,
		zeroAddress: strings.ToLower(zeroAddress),
		logger:      logger,
	}
}

// Handle dispatches one event to the matching handler
func (r *Reducer) Handle(ctx context.Context, ev entities.Event) (Outcome, error) {
	switch e := ev.(type) {
	case entities.TransferEvent:
		return r.HandleTransfer(ctx, e)
	case entities.ApprovalEvent:
		return r.HandleApproval(ctx, e)
	default:
		return Outcome{}, fmt.Errorf("unsupported event type %T", ev)
	}
}

// HandleTransfer reduces one Transfer event: resolve token and accounts,
// apply the balance delta, append the audit record.
func (r *Reducer) HandleTransfer(ctx context.Context, ev entities.TransferEvent) (Outcome, error) {
	token, skip, err := r.tokens.LoadOrCreate(ctx, ev.TokenAddress)
	if err != nil {
		return Outcome{}, err
	}
	if skip != "" {
		return r.skip(skip, ev.Ctx), nil
	}

	fromAccount, err := r.accounts.LoadOrCreate(ctx, ev.From)
	if err != nil {
		return Outcome{}, err
	}
	toAccount, err := r.accounts.LoadOrCreate(ctx, ev.To)
	if err != nil {
		return Outcome{}, err
	}
	if fromAccount == nil || toAccount == nil {
		// unreachable today; kept as a guard
		return r.skip(SkipMissingAccount, ev.Ctx), nil
	}

	// A transfer between two zero addresses moves nothing and means
	// nothing; drop it before any ledger or audit write
	if ev.From == r.zeroAddress && ev.To == r.zeroAddress {
		return r.skip(SkipDegenerateTransfer, ev.Ctx), nil
	}

	if err := r.balances.Apply(ctx, token, ev.From, ev.To, ev.Value); err != nil {
		return Outcome{}, err
	}

	if err := r.audit.AppendTransfer(ctx, token, ev); err != nil {
		return Outcome{}, err
	}

	txType := entities.ClassifyTransfer(ev.From, ev.To, r.zeroAddress)
	eventsProcessedTotal.WithLabelValues(string(txType)).Inc()
	return Processed, nil
}

// HandleApproval reduces one Approval event: resolve token and accounts,
// overwrite the allowance, append the audit record.
func (r *Reducer) HandleApproval(ctx context.Context, ev entities.ApprovalEvent) (Outcome, error) {
	token, skip, err := r.tokens.LoadOrCreate(ctx, ev.TokenAddress)
	if err != nil {
		return Outcome{}, err
	}
	if skip != "" {
		return r.skip(skip, ev.Ctx), nil
	}

	ownerAccount, err := r.accounts.LoadOrCreate(ctx, ev.Owner)
	if err != nil {
		return Outcome{}, err
	}
	spenderAccount, err := r.accounts.LoadOrCreate(ctx, ev.Spender)
	if err != nil {
		return Outcome{}, err
	}
	if ownerAccount == nil || spenderAccount == nil {
		// unreachable today; kept as a guard
		return r.skip(SkipMissingAccount, ev.Ctx), nil
	}

	if err := r.allowances.Overwrite(ctx, token, ev.Owner, ev.Spender, ev.Value); err != nil {
		return Outcome{}, err
	}

	if err := r.audit.AppendApproval(ctx, token, ev); err != nil {
		return Outcome{}, err
	}

	eventsProcessedTotal.WithLabelValues(string(entities.TypeApproval)).Inc()
	return Processed, nil
}

func (r *Reducer) skip(reason SkipReason, evCtx entities.EventContext) Outcome {
	eventsSkippedTotal.WithLabelValues(string(reason)).Inc()
	r.logger.Debug("Skipped event",
		zap.String("reason", string(reason)),
		zap.Int64("block", evCtx.BlockNumber),
		zap.String("tx_hash", evCtx.TxHash),
		zap.Int("log_index", evCtx.LogIndex),
	)
	return Skipped(reason)
}
