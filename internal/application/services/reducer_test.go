package services

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/token-ledger/internal/domain/entities"
	"github.com/bimakw/token-ledger/internal/testutil"
)

type reducerFixture struct {
	reducer      *Reducer
	tokens       *testutil.MockTokenRepository
	accounts     *testutil.MockAccountRepository
	balances     *testutil.MockBalanceRepository
	allowances   *testutil.MockAllowanceRepository
	transactions *testutil.MockTransactionRepository
	reader       *testutil.MockContractReader
}

func setupReducerTest(t *testing.T) *reducerFixture {
	t.Helper()

	f := &reducerFixture{
		tokens:       testutil.NewMockTokenRepository(),
		accounts:     testutil.NewMockAccountRepository(),
		balances:     testutil.NewMockBalanceRepository(),
		allowances:   testutil.NewMockAllowanceRepository(),
		transactions: testutil.NewMockTransactionRepository(),
		reader:       testutil.NewMockContractReader(),
	}

	logger := zap.NewNop()

	tokenRegistry, err := NewTokenRegistry(f.tokens, f.reader, nil, 16, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	accountRegistry, err := NewAccountRegistry(f.accounts, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.reducer = NewReducer(
		tokenRegistry,
		accountRegistry,
		NewBalanceLedger(f.balances, testutil.ZeroAddress, logger),
		NewAllowanceLedger(f.allowances),
		NewTransactionLog(f.transactions, testutil.ZeroAddress),
		testutil.ZeroAddress,
		logger,
	)

	return f
}

func TestReducer_MintTransfer(t *testing.T) {
	f := setupReducerTest(t)
	ctx := context.Background()

	ev := testutil.CreateTestTransfer(testutil.ZeroAddress, testutil.AliceAddress, 100)
	outcome, err := f.reducer.HandleTransfer(ctx, ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Skipped {
		t.Fatalf("unexpected skip: %s", outcome.Reason)
	}

	alice := f.balances.Amount(entities.BalanceID(testutil.TokenAddress, testutil.AliceAddress))
	if alice == nil || alice.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("expected alice balance 100, got %v", alice)
	}

	records := f.transactions.All()
	if len(records) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(records))
	}
	if records[0].Type != entities.TypeMint {
		t.Errorf("expected MINT, got %s", records[0].Type)
	}
	if records[0].Caller != testutil.ZeroAddress || records[0].Recipient != testutil.AliceAddress {
		t.Errorf("unexpected endpoints: %s -> %s", records[0].Caller, records[0].Recipient)
	}
}

func TestReducer_BurnTransfer(t *testing.T) {
	f := setupReducerTest(t)
	ctx := context.Background()

	mint := testutil.CreateTestTransfer(testutil.ZeroAddress, testutil.AliceAddress, 100, testutil.WithLogIndex(0))
	if _, err := f.reducer.HandleTransfer(ctx, mint); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	burn := testutil.CreateTestTransfer(testutil.AliceAddress, testutil.ZeroAddress, 30, testutil.WithLogIndex(1))
	outcome, err := f.reducer.HandleTransfer(ctx, burn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Skipped {
		t.Fatalf("unexpected skip: %s", outcome.Reason)
	}

	alice := f.balances.Amount(entities.BalanceID(testutil.TokenAddress, testutil.AliceAddress))
	if alice == nil || alice.Cmp(big.NewInt(70)) != 0 {
		t.Errorf("expected alice balance 70, got %v", alice)
	}

	records := f.transactions.All()
	if len(records) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(records))
	}
	if records[1].Type != entities.TypeBurn {
		t.Errorf("expected BURN, got %s", records[1].Type)
	}
}

func TestReducer_DegenerateTransferHasNoLedgerEffects(t *testing.T) {
	f := setupReducerTest(t)

	ev := testutil.CreateTestTransfer(testutil.ZeroAddress, testutil.ZeroAddress, 100)
	outcome, err := f.reducer.HandleTransfer(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !outcome.Skipped || outcome.Reason != SkipDegenerateTransfer {
		t.Fatalf("expected degenerate skip, got %+v", outcome)
	}
	if f.balances.Len() != 0 {
		t.Errorf("expected no balance rows, got %d", f.balances.Len())
	}
	if len(f.transactions.All()) != 0 {
		t.Errorf("expected no transactions, got %d", len(f.transactions.All()))
	}
	// Only the sentinel itself was resolved; no real account appears
	if f.accounts.Has(testutil.AliceAddress) || f.accounts.Has(testutil.BobAddress) {
		t.Error("no non-sentinel account should exist")
	}
}

func TestReducer_UnreadableTokenDropsEventEntirely(t *testing.T) {
	f := setupReducerTest(t)
	f.reader.TryNameFunc = func(ctx context.Context, addr string) (string, error) {
		return "", fmt.Errorf("execution reverted")
	}

	ev := testutil.CreateTestTransfer(testutil.AliceAddress, testutil.BobAddress, 10)
	outcome, err := f.reducer.HandleTransfer(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !outcome.Skipped || outcome.Reason != SkipTokenUnreadable {
		t.Fatalf("expected token_unreadable skip, got %+v", outcome)
	}
	if f.accounts.Len() != 0 {
		t.Errorf("expected no accounts, got %d", f.accounts.Len())
	}
	if f.balances.Len() != 0 {
		t.Errorf("expected no balances, got %d", f.balances.Len())
	}
	if len(f.transactions.All()) != 0 {
		t.Errorf("expected no transactions, got %d", len(f.transactions.All()))
	}
}

func TestReducer_ApprovalOverwritesAllowance(t *testing.T) {
	f := setupReducerTest(t)
	ctx := context.Background()

	first := testutil.CreateTestApproval(testutil.AliceAddress, testutil.BobAddress, 25, testutil.WithLogIndex(0))
	if _, err := f.reducer.HandleApproval(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := testutil.CreateTestApproval(testutil.AliceAddress, testutil.BobAddress, 99, testutil.WithLogIndex(1))
	outcome, err := f.reducer.HandleApproval(ctx, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Skipped {
		t.Fatalf("unexpected skip: %s", outcome.Reason)
	}

	id := entities.AllowanceID(testutil.TokenAddress, testutil.AliceAddress, testutil.BobAddress)
	got := f.allowances.Amount(id)
	if got == nil || got.Cmp(big.NewInt(99)) != 0 {
		t.Errorf("expected allowance 99 after second approval, got %v", got)
	}

	records := f.transactions.All()
	if len(records) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(records))
	}
	for _, r := range records {
		if r.Type != entities.TypeApproval {
			t.Errorf("expected APPROVAL, got %s", r.Type)
		}
		if r.Caller != testutil.AliceAddress || r.Recipient != testutil.BobAddress {
			t.Errorf("expected caller=owner recipient=spender, got %s -> %s", r.Caller, r.Recipient)
		}
	}
}

func TestReducer_ReplayedEventCommitsOneRecord(t *testing.T) {
	f := setupReducerTest(t)
	ctx := context.Background()

	ev := testutil.CreateTestApproval(testutil.AliceAddress, testutil.BobAddress, 25)
	if _, err := f.reducer.HandleApproval(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.reducer.HandleApproval(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.transactions.All()) != 1 {
		t.Errorf("expected 1 record for replayed (block, hash, log index), got %d", len(f.transactions.All()))
	}
}

func TestReducer_DistinctLogIndicesCommitDistinctRecords(t *testing.T) {
	f := setupReducerTest(t)
	ctx := context.Background()

	// Two logs of the same enclosing transaction
	a := testutil.CreateTestTransfer(testutil.ZeroAddress, testutil.AliceAddress, 10, testutil.WithLogIndex(0))
	b := testutil.CreateTestTransfer(testutil.ZeroAddress, testutil.BobAddress, 20, testutil.WithLogIndex(1))

	if _, err := f.reducer.HandleTransfer(ctx, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.reducer.HandleTransfer(ctx, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := f.transactions.All()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID == records[1].ID {
		t.Error("composite ids must differ by log index")
	}
}

func TestReducer_ExampleScenario(t *testing.T) {
	// Mint 100 to A, transfer 40 A->B, approve B for 25 from A
	f := setupReducerTest(t)
	ctx := context.Background()

	events := []entities.Event{
		testutil.CreateTestTransfer(testutil.ZeroAddress, testutil.AliceAddress, 100, testutil.WithBlockNumber(100), testutil.WithLogIndex(0)),
		testutil.CreateTestTransfer(testutil.AliceAddress, testutil.BobAddress, 40, testutil.WithBlockNumber(101), testutil.WithLogIndex(0)),
		testutil.CreateTestApproval(testutil.AliceAddress, testutil.BobAddress, 25, testutil.WithBlockNumber(102), testutil.WithLogIndex(0)),
	}

	for i, ev := range events {
		outcome, err := f.reducer.Handle(ctx, ev)
		if err != nil {
			t.Fatalf("event %d: unexpected error: %v", i, err)
		}
		if outcome.Skipped {
			t.Fatalf("event %d: unexpected skip: %s", i, outcome.Reason)
		}
	}

	if f.tokens.InsertCount() != 1 {
		t.Errorf("expected token created once, got %d inserts", f.tokens.InsertCount())
	}
	if !f.accounts.Has(testutil.AliceAddress) || !f.accounts.Has(testutil.BobAddress) {
		t.Error("expected accounts for alice and bob")
	}

	alice := f.balances.Amount(entities.BalanceID(testutil.TokenAddress, testutil.AliceAddress))
	bob := f.balances.Amount(entities.BalanceID(testutil.TokenAddress, testutil.BobAddress))
	if alice == nil || alice.Cmp(big.NewInt(60)) != 0 {
		t.Errorf("expected alice balance 60, got %v", alice)
	}
	if bob == nil || bob.Cmp(big.NewInt(40)) != 0 {
		t.Errorf("expected bob balance 40, got %v", bob)
	}

	allowance := f.allowances.Amount(entities.AllowanceID(testutil.TokenAddress, testutil.AliceAddress, testutil.BobAddress))
	if allowance == nil || allowance.Cmp(big.NewInt(25)) != 0 {
		t.Errorf("expected allowance 25, got %v", allowance)
	}

	records := f.transactions.All()
	if len(records) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(records))
	}
	wantTypes := []entities.TransactionType{entities.TypeMint, entities.TypeTransfer, entities.TypeApproval}
	for i, want := range wantTypes {
		if records[i].Type != want {
			t.Errorf("transaction %d: expected %s, got %s", i, want, records[i].Type)
		}
	}
}

func TestReducer_StoreErrorSurfaces(t *testing.T) {
	f := setupReducerTest(t)
	f.balances.UpsertFunc = func(ctx context.Context, b *entities.TokenBalance) error {
		return fmt.Errorf("connection refused")
	}

	ev := testutil.CreateTestTransfer(testutil.ZeroAddress, testutil.AliceAddress, 100)
	_, err := f.reducer.HandleTransfer(context.Background(), ev)
	if err == nil {
		t.Fatal("expected store error to surface")
	}
}

func TestReducer_AuditRecordCopiesExecutionContext(t *testing.T) {
	f := setupReducerTest(t)

	ev := testutil.CreateTestTransfer(testutil.AliceAddress, testutil.BobAddress, 40,
		testutil.WithBlockNumber(777),
		testutil.WithTxHash("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		testutil.WithLogIndex(3),
		testutil.WithTxValue(big.NewInt(5)),
	)

	if _, err := f.reducer.HandleTransfer(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := f.transactions.All()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]

	if r.ID != entities.TransactionID(777, ev.Ctx.TxHash, 3) {
		t.Errorf("unexpected id %s", r.ID)
	}
	if r.BlockNumber != 777 || r.LogIndex != 3 || r.TxHash != ev.Ctx.TxHash {
		t.Errorf("execution context not copied: %+v", r)
	}
	if r.Value.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("expected native tx value 5, got %v", r.Value)
	}
	if r.Amount.Cmp(big.NewInt(40)) != 0 {
		t.Errorf("expected token amount 40, got %v", r.Amount)
	}
	if r.GasLimit != ev.Ctx.GasLimit || r.GasPrice.Cmp(ev.Ctx.GasPrice) != 0 {
		t.Errorf("gas parameters not copied: %+v", r)
	}
}
