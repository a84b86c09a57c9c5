/*
 * Copyright (c) 2024 Bima Kharisma Wicaksana
 * GitHub: https://github.com/bimakw
 *
 * Licensed under MIT License with Attribution Requirement.
 * See LICENSE file for details.
 */

package ethereum

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrReverted indicates a contract read failed to return a value, signaling
// a non-compliant or guarded contract method.
var ErrReverted = errors.New("contract read reverted")

// ContractReader performs read-only ERC-20 metadata calls. Unlike a
// best-effort metadata fetcher there are no fallback values here: a token
// whose reads revert must not be registered at all, so every failure is
// surfaced to the caller.
type ContractReader struct {
	client *Client
	logger *zap.Logger
}

// NewContractReader creates a new contract reader
func NewContractReader(client *Client, logger *zap.Logger) *ContractReader {
	return &ContractReader{
		client: client,
		logger: logger,
	}
}

// ERC-20 function selectors (first 4 bytes of keccak256 hash)
var (
	// name() -> 0x06fdde03
	nameSig = common.FromHex("0x06fdde03")
	// symbol() -> 0x95d89b41
	symbolSig = common.FromHex("0x95d89b41")
	// decimals() -> 0x313ce567
	decimalsSig = common.FromHex("0x313ce567")
	// totalSupply() -> 0x18160ddd
	totalSupplySig = common.FromHex("0x18160ddd")
)

// TryName reads the token name via eth_call
func (r *ContractReader) TryName(ctx context.Context, tokenAddress string) (string, error) {
	result, err := r.call(ctx, tokenAddress, nameSig, "name")
	if err != nil {
		return "", err
	}
	name, err := decodeStringOrBytes32(result)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReverted, err)
	}
	return name, nil
}

// TrySymbol reads the token symbol via eth_call
func (r *ContractReader) TrySymbol(ctx context.Context, tokenAddress string) (string, error) {
	result, err := r.call(ctx, tokenAddress, symbolSig, "symbol")
	if err != nil {
		return "", err
	}
	symbol, err := decodeStringOrBytes32(result)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReverted, err)
	}
	return symbol, nil
}

// TryDecimals reads the token decimals via eth_call. The full 256-bit word
// is returned so the caller can range-check values a non-compliant contract
// reports outside uint8.
func (r *ContractReader) TryDecimals(ctx context.Context, tokenAddress string) (*big.Int, error) {
	result, err := r.call(ctx, tokenAddress, decimalsSig, "decimals")
	if err != nil {
		return nil, err
	}
	if len(result) < 32 {
		return nil, fmt.Errorf("%w: decimals response too short (%d bytes)", ErrReverted, len(result))
	}
	return new(big.Int).SetBytes(result[:32]), nil
}

// TryTotalSupply reads the token total supply via eth_call
func (r *ContractReader) TryTotalSupply(ctx context.Context, tokenAddress string) (*big.Int, error) {
	result, err := r.call(ctx, tokenAddress, totalSupplySig, "totalSupply")
	if err != nil {
		return nil, err
	}
	if len(result) < 32 {
		return nil, fmt.Errorf("%w: totalSupply response too short (%d bytes)", ErrReverted, len(result))
	}
	return new(big.Int).SetBytes(result[:32]), nil
}

func (r *ContractReader) call(ctx context.Context, tokenAddress string, selector []byte, method string) ([]byte, error) {
	addr := common.HexToAddress(tokenAddress)

	result, err := r.client.CallContract(ctx, addr, selector)
	if err != nil {
		r.logger.Debug("Contract read reverted",
			zap.String("token", tokenAddress),
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %v", ErrReverted, method, err)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: %s returned no data", ErrReverted, method)
	}

	return result, nil
}

// decodeStringOrBytes32 decodes a response that could be either:
// 1. ABI-encoded string: offset (32 bytes) + length (32 bytes) + data (padded to 32 bytes)
// 2. bytes32: raw 32 bytes (e.g., MKR token)
func decodeStringOrBytes32(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty data")
	}

	// If data is less than 32 bytes, invalid
	if len(data) < 32 {
		return "", fmt.Errorf("data too short: %d bytes", len(data))
	}

	// Try to decode as ABI-encoded string first
	// Check if first 32 bytes could be an offset (typically 0x20 = 32)
	if len(data) >= 64 {
		offset := new(big.Int).SetBytes(data[:32])
		if offset.Uint64() == 32 {
			// This looks like an ABI-encoded string
			length := new(big.Int).SetBytes(data[32:64])
			strLen := int(length.Uint64())

			// Handle empty string (length = 0)
			if strLen == 0 {
				return "", nil
			}

			if len(data) >= 64+strLen {
				strData := data[64 : 64+strLen]
				return strings.TrimRight(string(strData), "\x00"), nil
			}
		}
	}

	// Fallback: treat as bytes32
	// Remove trailing null bytes
	result := bytes.TrimRight(data[:32], "\x00")

	// Check if result is printable ASCII
	if isPrintableASCII(result) {
		return string(result), nil
	}

	// Return hex representation if not printable
	return "0x" + hex.EncodeToString(data[:32]), nil
}

// isPrintableASCII checks if all bytes are printable ASCII characters
func isPrintableASCII(data []byte) bool {
	for _, b := range data {
		if b < 32 || b > 126 {
			return false
		}
	}
	return len(data) > 0
}
