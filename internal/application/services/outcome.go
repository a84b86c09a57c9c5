package services

// SkipReason says why an event was dropped without touching the ledger.
type SkipReason string

const (
	// SkipTokenUnreadable: one of the four ERC-20 reads reverted, so no
	// Token entity could be created for the emitting contract
	SkipTokenUnreadable SkipReason = "token_unreadable"

	// SkipDecimalsOutOfRange: the contract reported decimals above 255
	SkipDecimalsOutOfRange SkipReason = "decimals_out_of_range"

	// SkipDegenerateTransfer: both endpoints are the zero address
	SkipDegenerateTransfer SkipReason = "degenerate_transfer"

	// SkipMissingAccount: account resolution returned no entity and no
	// error; unreachable today, but the check is kept
	SkipMissingAccount SkipReason = "missing_account"
)

// Outcome reports how a single event reduction ended. Dropped events are not
// errors: the pipeline keeps going, but callers and tests can still see what
// happened and why.
type Outcome struct {
	Skipped bool
	Reason  SkipReason
}

// Processed is the outcome of a fully applied event
var Processed = Outcome{}

// Skipped builds a skip outcome with the given reason
func Skipped(reason SkipReason) Outcome {
	return Outcome{Skipped: true, Reason: reason}
}
