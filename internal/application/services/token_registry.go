package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/bimakw/token-ledger/internal/domain/entities"
	"github.com/bimakw/token-ledger/internal/domain/repositories"
	"github.com/bimakw/token-ledger/internal/infrastructure/cache"
)

// ContractReader reads ERC-20 metadata from a live contract. Every method
// either returns a value or fails; there are no partial or fallback states.
type ContractReader interface {
	TryName(ctx context.Context, tokenAddress string) (string, error)
	TrySymbol(ctx context.Context, tokenAddress string) (string, error)
	TryDecimals(ctx context.Context, tokenAddress string) (*big.Int, error)
	TryTotalSupply(ctx context.Context, tokenAddress string) (*big.Int, error)
}

// TokenRegistry ensures a Token entity exists for a contract address. Tokens
// are created once, from the first event seen for the contract, and are
// stale-by-design afterward: a hit never re-validates or refreshes metadata.
type TokenRegistry struct {
	repo   repositories.TokenRepository
	reader ContractReader
	cache  *cache.RedisCache
	known  *lru.Cache[string, *entities.Token]
	logger *zap.Logger
}

// NewTokenRegistry creates a new token registry. The Redis cache is optional.
func NewTokenRegistry(
	repo repositories.TokenRepository,
	reader ContractReader,
	rcache *cache.RedisCache,
	cacheSize int,
	logger *zap.Logger,
) (*TokenRegistry, error) {
	known, err := lru.New[string, *entities.Token](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cache: %w", err)
	}

	return &TokenRegistry{
		repo:   repo,
		reader: reader,
		cache:  rcache,
		known:  known,
		logger: logger,
	}, nil
}

// LoadOrCreate returns the Token entity for a contract address, creating it
// on first sight. A non-empty skip reason means the contract cannot be
// registered and the whole event must be dropped; the error return is
// reserved for store failures.
func (r *TokenRegistry) LoadOrCreate(ctx context.Context, address string) (*entities.Token, SkipReason, error) {
	if token, ok := r.known.Get(address); ok {
		return token, "", nil
	}

	cacheKey := "tokens:" + address
	if r.cache != nil {
		var cached entities.Token
		if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
			if cached.TotalSupply == nil {
				cached.TotalSupply, _ = new(big.Int).SetString(cached.TotalSupplyString, 10)
			}
			r.known.Add(address, &cached)
			return &cached, "", nil
		}
	}

	token, err := r.repo.GetByAddress(ctx, address)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load token %s: %w", address, err)
	}
	if token != nil {
		r.remember(ctx, cacheKey, token)
		return token, "", nil
	}

	// First sight of this contract: all four reads must succeed, in order,
	// short-circuiting on the first revert
	name, err := r.reader.TryName(ctx, address)
	if err != nil {
		return r.skipUnreadable(address, "name", err)
	}

	symbol, err := r.reader.TrySymbol(ctx, address)
	if err != nil {
		return r.skipUnreadable(address, "symbol", err)
	}

	decimals, err := r.reader.TryDecimals(ctx, address)
	if err != nil {
		return r.skipUnreadable(address, "decimals", err)
	}

	totalSupply, err := r.reader.TryTotalSupply(ctx, address)
	if err != nil {
		return r.skipUnreadable(address, "totalSupply", err)
	}

	// The read itself succeeded, but a decimals value that does not fit the
	// fixed-width storage column still disqualifies the contract
	if decimals.Sign() < 0 || decimals.Cmp(big.NewInt(entities.MaxDecimals)) > 0 {
		r.logger.Debug("Token decimals out of range",
			zap.String("token", address),
			zap.String("decimals", decimals.String()),
		)
		return nil, SkipDecimalsOutOfRange, nil
	}

	token = &entities.Token{
		Address:           address,
		Name:              name,
		Symbol:            symbol,
		Decimals:          int(decimals.Int64()),
		TotalSupply:       totalSupply,
		TotalSupplyString: totalSupply.String(),
		CreatedAt:         time.Now().UTC(),
	}

	if err := r.repo.Insert(ctx, token); err != nil {
		return nil, "", fmt.Errorf("failed to insert token %s: %w", address, err)
	}

	r.logger.Info("Registered token",
		zap.String("address", address),
		zap.String("symbol", symbol),
		zap.Int("decimals", token.Decimals),
	)

	r.remember(ctx, cacheKey, token)
	return token, "", nil
}

func (r *TokenRegistry) remember(ctx context.Context, cacheKey string, token *entities.Token) {
	r.known.Add(token.Address, token)
	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, token); err != nil {
			r.logger.Warn("Failed to cache token", zap.Error(err))
		}
	}
}

func (r *TokenRegistry) skipUnreadable(address, method string, err error) (*entities.Token, SkipReason, error) {
	r.logger.Debug("Token unreadable",
		zap.String("token", address),
		zap.String("method", method),
		zap.Error(err),
	)
	return nil, SkipTokenUnreadable, nil
}
