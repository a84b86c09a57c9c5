package services

import (
	"context"
	"math/big"
	"testing"

	"github.com/bimakw/token-ledger/internal/domain/entities"
	"github.com/bimakw/token-ledger/internal/testutil"
)

func TestAllowanceLedger_OverwriteReplacesNotAccumulates(t *testing.T) {
	repo := testutil.NewMockAllowanceRepository()
	ledger := NewAllowanceLedger(repo)
	token := testutil.CreateTestToken()
	ctx := context.Background()

	if err := ledger.Overwrite(ctx, token, testutil.AliceAddress, testutil.BobAddress, big.NewInt(25)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ledger.Overwrite(ctx, token, testutil.AliceAddress, testutil.BobAddress, big.NewInt(10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := entities.AllowanceID(token.Address, testutil.AliceAddress, testutil.BobAddress)
	got := repo.Amount(id)
	if got == nil || got.Cmp(big.NewInt(10)) != 0 {
		t.Errorf("expected allowance 10 after overwrite, got %v", got)
	}
}

func TestAllowanceLedger_DistinctSpendersGetDistinctRows(t *testing.T) {
	repo := testutil.NewMockAllowanceRepository()
	ledger := NewAllowanceLedger(repo)
	token := testutil.CreateTestToken()
	ctx := context.Background()

	if err := ledger.Overwrite(ctx, token, testutil.AliceAddress, testutil.BobAddress, big.NewInt(25)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ledger.Overwrite(ctx, token, testutil.AliceAddress, testutil.CharlieAddr, big.NewInt(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bob := repo.Amount(entities.AllowanceID(token.Address, testutil.AliceAddress, testutil.BobAddress))
	charlie := repo.Amount(entities.AllowanceID(token.Address, testutil.AliceAddress, testutil.CharlieAddr))

	if bob == nil || bob.Cmp(big.NewInt(25)) != 0 {
		t.Errorf("expected bob allowance 25, got %v", bob)
	}
	if charlie == nil || charlie.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("expected charlie allowance 5, got %v", charlie)
	}
}
