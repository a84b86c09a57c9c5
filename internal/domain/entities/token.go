package entities

import (
	"math/big"
	"time"
)

// MaxDecimals is the largest decimals value the ledger will accept for a
// token. Contracts reporting more than this never get a Token row.
const MaxDecimals = 255

// Token represents an ERC-20 contract discovered from its event stream.
// It is created once, on the first event seen for the contract address, and
// never refreshed afterward even if the live contract changes.
type Token struct {
	Address           string    `db:"address"`
	Name              string    `db:"name"`
	Symbol            string    `db:"symbol"`
	Decimals          int       `db:"decimals"`
	TotalSupply       *big.Int  `db:"-"` // Handled separately due to NUMERIC type
	TotalSupplyString string    `db:"total_supply"`
	CreatedAt         time.Time `db:"created_at"`
}

// Account represents any address observed in an event, as sender, receiver,
// owner, or spender. It has no attributes beyond its identity.
type Account struct {
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}
