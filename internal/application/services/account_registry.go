package services

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bimakw/token-ledger/internal/domain/entities"
	"github.com/bimakw/token-ledger/internal/domain/repositories"
)

// AccountRegistry ensures an Account entity exists for any address seen in
// an event. Accounts have no external dependency, so creation always
// succeeds short of a store failure.
type AccountRegistry struct {
	repo  repositories.AccountRepository
	known *lru.Cache[string, struct{}]
}

// NewAccountRegistry creates a new account registry
func NewAccountRegistry(repo repositories.AccountRepository, cacheSize int) (*AccountRegistry, error) {
	known, err := lru.New[string, struct{}](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create account cache: %w", err)
	}

	return &AccountRegistry{
		repo:  repo,
		known: known,
	}, nil
}

// LoadOrCreate returns the Account entity for an address, creating it on
// first sight
func (r *AccountRegistry) LoadOrCreate(ctx context.Context, address string) (*entities.Account, error) {
	if _, ok := r.known.Get(address); ok {
		return &entities.Account{Address: address}, nil
	}

	account, err := r.repo.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", address, err)
	}

	if account == nil {
		account = &entities.Account{
			Address:   address,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.repo.Insert(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to insert account %s: %w", address, err)
		}
	}

	r.known.Add(address, struct{}{})
	return account, nil
}
