package memory

import (
	"account_manager/internal/domain"
	"account_manager/internal/repository"
	"context"
	"fmt"
	"sort"
	"sync"
)

type accountEntry struct {
	mu      sync.Mutex
	account *domain.Account
}

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*accountEntry
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*accountEntry),
	}
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID()]; exists {
		return fmt.Errorf("%w: account %s", repository.ErrDuplicate, account.ID())
	}

	r.accounts[account.ID()] = &accountEntry{account: account}
	return nil
}

// GetByID returns the stored account itself. Readers that race with
// writers should go through WithAccount.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	return entry.account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Account, 0, len(r.accounts))
	for _, entry := range r.accounts {
		result = append(result, entry.account)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID() < result[j].ID()
	})
	return result, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[id]; !exists {
		return fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}
	delete(r.accounts, id)
	return nil
}

func (r *AccountRepository) WithAccount(ctx context.Context, id string, fn func(*domain.Account) error) error {
	entry, err := r.entry(id)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.account)
}

func (r *AccountRepository) entry(id string) (*accountEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.accounts[id]
	if !exists {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}
	return entry, nil
}
