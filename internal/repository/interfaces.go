package repository

import (
	"account_manager/internal/domain"
	"context"
	"errors"
)

type AccountRepository interface {
	Save(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Delete(ctx context.Context, id string) error
	// WithAccount runs fn while holding the account's exclusive lock.
	WithAccount(ctx context.Context, id string, fn func(*domain.Account) error) error
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)
