package memory

import (
	"context"
	"fmt"
	"pixbank/internal/domain"
	"sort"
	"sync"
)

type AccountRepository struct {
	mu        sync.RWMutex
	accounts  map[int64]domain.Account
	nameIndex map[string]int64
	idIndex   map[string]int64
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts:  make(map[int64]domain.Account),
		nameIndex: make(map[string]int64),
		idIndex:   make(map[string]int64),
	}
}

func (r *AccountRepository) Save(ctx context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insert(account)
}

func (r *AccountRepository) insert(account domain.Account) error {
	if _, exists := r.accounts[account.Number()]; exists {
		return fmt.Errorf("account %d already stored", account.Number())
	}
	if _, exists := r.nameIndex[account.OwnerName()]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateOwnerName, account.OwnerName())
	}
	if _, exists := r.idIndex[account.OwnerID()]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateOwnerID, account.OwnerID())
	}

	r.accounts[account.Number()] = account
	r.nameIndex[account.OwnerName()] = account.Number()
	r.idIndex[account.OwnerID()] = account.Number()

	return nil
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number int64) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[number]
	if !exists {
		return nil, fmt.Errorf("%w: number %d", domain.ErrAccountNotFound, number)
	}
	return account, nil
}

func (r *AccountRepository) GetByOwnerID(ctx context.Context, ownerID string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	number, exists := r.idIndex[ownerID]
	if !exists {
		return nil, fmt.Errorf("%w: owner id %s", domain.ErrAccountNotFound, ownerID)
	}
	return r.accounts[number], nil
}

func (r *AccountRepository) ExistsOwnerName(ctx context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.nameIndex[name]
	return exists, nil
}

func (r *AccountRepository) ExistsOwnerID(ctx context.Context, ownerID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.idIndex[ownerID]
	return exists, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		result = append(result, account)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Number() < result[j].Number()
	})

	return result, nil
}

func (r *AccountRepository) Replace(ctx context.Context, accounts []domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prevAccounts, prevNames, prevIDs := r.accounts, r.nameIndex, r.idIndex
	r.accounts = make(map[int64]domain.Account, len(accounts))
	r.nameIndex = make(map[string]int64, len(accounts))
	r.idIndex = make(map[string]int64, len(accounts))

	for _, account := range accounts {
		if err := r.insert(account); err != nil {
			r.accounts, r.nameIndex, r.idIndex = prevAccounts, prevNames, prevIDs
			return fmt.Errorf("replace accounts: %w", err)
		}
	}

	return nil
}
