package testutil

import (
	"context"
	"math/big"
	"testing"

	"github.com/bimakw/token-ledger/internal/domain/entities"
)

func TestMockTokenRepository(t *testing.T) {
	repo := NewMockTokenRepository()
	ctx := context.Background()

	// Unknown token yields nil, nil
	token, err := repo.GetByAddress(ctx, TokenAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != nil {
		t.Errorf("expected nil for unknown token, got %+v", token)
	}

	if err := repo.Insert(ctx, CreateTestToken()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err = repo.GetByAddress(ctx, TokenAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == nil {
		t.Fatal("expected token after insert")
	}
	if repo.InsertCount() != 1 {
		t.Errorf("expected 1 insert, got %d", repo.InsertCount())
	}

	// Call tracking
	if len(repo.Calls) != 3 {
		t.Errorf("expected 3 calls, got %d", len(repo.Calls))
	}
}

func TestMockTransactionRepository_IgnoresDuplicateIDs(t *testing.T) {
	repo := NewMockTransactionRepository()
	ctx := context.Background()

	tx := &entities.Transaction{
		ID:     entities.TransactionID(100, "0xaa", 0),
		Type:   entities.TypeTransfer,
		Amount: big.NewInt(10),
	}

	if err := repo.Insert(ctx, tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Insert(ctx, tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.All()) != 1 {
		t.Errorf("expected duplicate id to be ignored, got %d records", len(repo.All()))
	}
}

func TestMockTransactionRepository_PreservesInsertionOrder(t *testing.T) {
	repo := NewMockTransactionRepository()
	ctx := context.Background()

	ids := []string{
		entities.TransactionID(100, "0xaa", 0),
		entities.TransactionID(100, "0xaa", 1),
		entities.TransactionID(101, "0xbb", 0),
	}
	for _, id := range ids {
		if err := repo.Insert(ctx, &entities.Transaction{ID: id, Amount: big.NewInt(1)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	all := repo.All()
	if len(all) != len(ids) {
		t.Fatalf("expected %d records, got %d", len(ids), len(all))
	}
	for i, id := range ids {
		if all[i].ID != id {
			t.Errorf("record %d: expected %s, got %s", i, id, all[i].ID)
		}
	}
}

func TestMockBalanceRepository_Amount(t *testing.T) {
	repo := NewMockBalanceRepository()
	ctx := context.Background()

	id := entities.BalanceID(TokenAddress, AliceAddress)
	if repo.Amount(id) != nil {
		t.Error("expected nil amount for absent row")
	}

	balance := &entities.TokenBalance{
		ID:             id,
		TokenAddress:   TokenAddress,
		AccountAddress: AliceAddress,
		Amount:         big.NewInt(42),
		AmountString:   "42",
	}
	if err := repo.Upsert(ctx, balance); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := repo.Amount(id)
	if got == nil || got.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("expected 42, got %v", got)
	}
	if repo.Len() != 1 {
		t.Errorf("expected 1 row, got %d", repo.Len())
	}
}

func TestMockContractReader_Defaults(t *testing.T) {
	reader := NewMockContractReader()
	ctx := context.Background()

	name, err := reader.TryName(ctx, TokenAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Test Token" {
		t.Errorf("expected default name, got %s", name)
	}

	decimals, err := reader.TryDecimals(ctx, TokenAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decimals.Cmp(big.NewInt(18)) != 0 {
		t.Errorf("expected 18 decimals, got %v", decimals)
	}

	if reader.CallCount("TryName") != 1 || reader.CallCount("TryDecimals") != 1 {
		t.Error("expected per-method call tracking")
	}
}

func TestCreateTestTransfer(t *testing.T) {
	ev := CreateTestTransfer(AliceAddress, BobAddress, 100,
		WithBlockNumber(42),
		WithLogIndex(7),
	)

	if ev.From != AliceAddress || ev.To != BobAddress {
		t.Errorf("unexpected endpoints: %s -> %s", ev.From, ev.To)
	}
	if ev.Value.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("expected value 100, got %v", ev.Value)
	}
	if ev.Ctx.BlockNumber != 42 || ev.Ctx.LogIndex != 7 {
		t.Errorf("options not applied: %+v", ev.Ctx)
	}
}
