package ethereum

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bimakw/token-ledger/internal/domain/entities"
)

// TransferEventSignature is the keccak256 hash of Transfer(address,address,uint256)
var TransferEventSignature = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// ApprovalEventSignature is the keccak256 hash of Approval(address,address,uint256)
var ApprovalEventSignature = common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925")

// ParseLog decodes a raw token log into a ledger event. The execution
// context is supplied by the caller, which has already resolved the block
// timestamp and enclosing transaction.
func ParseLog(log types.Log, ctx entities.EventContext) (entities.Event, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("log has no topics")
	}

	switch log.Topics[0] {
	case TransferEventSignature:
		return parseTransferLog(log, ctx)
	case ApprovalEventSignature:
		return parseApprovalLog(log, ctx)
	default:
		return nil, fmt.Errorf("unrecognized event signature %s", log.Topics[0].Hex())
	}
}

// parseTransferLog parses a raw log into a TransferEvent
func parseTransferLog(log types.Log, ctx entities.EventContext) (entities.TransferEvent, error) {
	// Transfer(address indexed from, address indexed to, uint256 value)
	if len(log.Topics) != 3 {
		return entities.TransferEvent{}, fmt.Errorf("invalid number of topics: expected 3, got %d", len(log.Topics))
	}

	if len(log.Data) != 32 {
		return entities.TransferEvent{}, fmt.Errorf("invalid data length: expected 32, got %d", len(log.Data))
	}

	from := common.BytesToAddress(log.Topics[1].Bytes())
	to := common.BytesToAddress(log.Topics[2].Bytes())
	value := new(big.Int).SetBytes(log.Data)

	return entities.TransferEvent{
		TokenAddress: strings.ToLower(log.Address.Hex()),
		From:         strings.ToLower(from.Hex()),
		To:           strings.ToLower(to.Hex()),
		Value:        value,
		Ctx:          ctx,
	}, nil
}

// parseApprovalLog parses a raw log into an ApprovalEvent
func parseApprovalLog(log types.Log, ctx entities.EventContext) (entities.ApprovalEvent, error) {
	// Approval(address indexed owner, address indexed spender, uint256 value)
	if len(log.Topics) != 3 {
		return entities.ApprovalEvent{}, fmt.Errorf("invalid number of topics: expected 3, got %d", len(log.Topics))
	}

	if len(log.Data) != 32 {
		return entities.ApprovalEvent{}, fmt.Errorf("invalid data length: expected 32, got %d", len(log.Data))
	}

	owner := common.BytesToAddress(log.Topics[1].Bytes())
	spender := common.BytesToAddress(log.Topics[2].Bytes())
	value := new(big.Int).SetBytes(log.Data)

	return entities.ApprovalEvent{
		TokenAddress: strings.ToLower(log.Address.Hex()),
		Owner:        strings.ToLower(owner.Hex()),
		Spender:      strings.ToLower(spender.Hex()),
		Value:        value,
		Ctx:          ctx,
	}, nil
}

// IsTokenEvent reports whether a log carries one of the two signatures the
// reducer understands
func IsTokenEvent(log types.Log) bool {
	return len(log.Topics) == 3 &&
		(log.Topics[0] == TransferEventSignature || log.Topics[0] == ApprovalEventSignature)
}
