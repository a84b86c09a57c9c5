package entities

import (
	"math/big"
	"time"
)

// TokenBalance holds the derived balance of one account in one token.
// One row per (token, account) pair; created lazily on the first transfer
// touching the pair and mutated on every subsequent one. Never deleted.
type TokenBalance struct {
	ID             string    `db:"id"`
	TokenAddress   string    `db:"token_address"`
	AccountAddress string    `db:"account_address"`
	Amount         *big.Int  `db:"-"` // Handled separately due to NUMERIC type
	AmountString   string    `db:"amount"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// TokenAllowance holds an owner's authorization for a spender on one token.
// Every Approval event fully replaces the amount for its key; allowances are
// never accumulated.
type TokenAllowance struct {
	ID             string    `db:"id"`
	TokenAddress   string    `db:"token_address"`
	OwnerAddress   string    `db:"owner_address"`
	SpenderAddress string    `db:"spender_address"`
	Amount         *big.Int  `db:"-"`
	AmountString   string    `db:"amount"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// BalanceID builds the composite id for a (token, account) balance row.
// Addresses are fixed-width lowercase hex, so the join is injective.
func BalanceID(tokenAddress, accountAddress string) string {
	return tokenAddress + "-" + accountAddress
}

// AllowanceID builds the composite id for a (token, owner, spender) row.
func AllowanceID(tokenAddress, ownerAddress, spenderAddress string) string {
	return tokenAddress + "-" + ownerAddress + "-" + spenderAddress
}
