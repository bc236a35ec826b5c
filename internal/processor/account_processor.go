package processor

import (
	"account_manager/internal/domain"
	"account_manager/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

type Operation string

const (
	OperationDeposit  Operation = "deposit"
	OperationWithdraw Operation = "withdrawal"
	OperationInterest Operation = "interest"
)

type MetricsRecorder interface {
	RecordOperation(operation string, duration time.Duration, success bool)
	UpdateAccountBalance(accountID string, balance, totalDeposited float64)
	AccountOpened(accountID string, balance float64)
	AccountClosed(accountID string)
}

// Snapshot is a consistent copy of an account's state taken under its lock.
type Snapshot struct {
	ID             string
	Balance        decimal.Decimal
	TotalDeposited decimal.Decimal
}

// Result describes one applied operation. Amount is the credited interest for
// OperationInterest.
type Result struct {
	Operation Operation
	Amount    decimal.Decimal
	Account   Snapshot
	AppliedAt time.Time
}

type AccountProcessor struct {
	accountRepo repository.AccountRepository
	notifier    domain.Notifier
	metrics     MetricsRecorder
	logger      *slog.Logger
}

func NewAccountProcessor(
	accountRepo repository.AccountRepository,
	notifier domain.Notifier,
	metrics MetricsRecorder,
	logger *slog.Logger,
) *AccountProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = domain.NopNotifier{}
	}

	return &AccountProcessor{
		accountRepo: accountRepo,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
	}
}

func (p *AccountProcessor) OpenAccount(ctx context.Context, id string, initialBalance decimal.Decimal) (Snapshot, error) {
	account, err := domain.NewAccount(id, initialBalance, domain.WithNotifier(p.notifier))
	if err != nil {
		return Snapshot{}, fmt.Errorf("open account %s: %w", id, err)
	}

	if err := p.accountRepo.Save(ctx, account); err != nil {
		return Snapshot{}, err
	}

	if p.metrics != nil {
		p.metrics.AccountOpened(id, initialBalance.InexactFloat64())
	}
	p.logger.InfoContext(ctx, "Account opened",
		slog.String("account_id", id),
		slog.String("balance", initialBalance.String()))

	return snapshotOf(account), nil
}

func (p *AccountProcessor) GetAccount(ctx context.Context, id string) (Snapshot, error) {
	var snap Snapshot
	err := p.accountRepo.WithAccount(ctx, id, func(a *domain.Account) error {
		snap = snapshotOf(a)
		return nil
	})
	return snap, err
}

func (p *AccountProcessor) ListAccounts(ctx context.Context) ([]Snapshot, error) {
	accounts, err := p.accountRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Snapshot, 0, len(accounts))
	for _, a := range accounts {
		snap, err := p.GetAccount(ctx, a.ID())
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, snap)
	}
	return result, nil
}

func (p *AccountProcessor) CloseAccount(ctx context.Context, id string) error {
	if err := p.accountRepo.Delete(ctx, id); err != nil {
		return err
	}

	if p.metrics != nil {
		p.metrics.AccountClosed(id)
	}
	p.logger.InfoContext(ctx, "Account closed", slog.String("account_id", id))
	return nil
}

func (p *AccountProcessor) Deposit(ctx context.Context, id string, amount decimal.Decimal) (Result, error) {
	return p.apply(ctx, id, OperationDeposit, amount, func(a *domain.Account) (decimal.Decimal, error) {
		return amount, a.Deposit(amount)
	})
}

func (p *AccountProcessor) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (Result, error) {
	return p.apply(ctx, id, OperationWithdraw, amount, func(a *domain.Account) (decimal.Decimal, error) {
		return amount, a.Withdraw(amount)
	})
}

func (p *AccountProcessor) ApplyInterest(ctx context.Context, id string, rate decimal.Decimal) (Result, error) {
	return p.apply(ctx, id, OperationInterest, rate, func(a *domain.Account) (decimal.Decimal, error) {
		before := a.Balance()
		if err := a.CalculateInterest(rate); err != nil {
			return decimal.Zero, err
		}
		return a.Balance().Sub(before), nil
	})
}

func (p *AccountProcessor) apply(
	ctx context.Context,
	id string,
	op Operation,
	input decimal.Decimal,
	fn func(*domain.Account) (decimal.Decimal, error),
) (Result, error) {
	startTime := time.Now()

	var result Result
	err := p.accountRepo.WithAccount(ctx, id, func(a *domain.Account) error {
		amount, err := fn(a)
		if err != nil {
			return err
		}
		result = Result{
			Operation: op,
			Amount:    amount,
			Account:   snapshotOf(a),
			AppliedAt: time.Now(),
		}
		return nil
	})

	if p.metrics != nil {
		p.metrics.RecordOperation(string(op), time.Since(startTime), err == nil)
	}

	if err != nil {
		p.logger.WarnContext(ctx, "Account operation rejected",
			slog.String("account_id", id),
			slog.String("operation", string(op)),
			slog.String("input", input.String()),
			slog.String("error", err.Error()))
		return Result{}, fmt.Errorf("%s on account %s: %w", op, id, err)
	}

	if p.metrics != nil {
		p.metrics.UpdateAccountBalance(id,
			result.Account.Balance.InexactFloat64(),
			result.Account.TotalDeposited.InexactFloat64())
	}
	p.logger.InfoContext(ctx, "Account operation applied",
		slog.String("account_id", id),
		slog.String("operation", string(op)),
		slog.String("amount", result.Amount.String()),
		slog.String("balance", result.Account.Balance.String()))

	return result, nil
}

func snapshotOf(a *domain.Account) Snapshot {
	return Snapshot{
		ID:             a.ID(),
		Balance:        a.Balance(),
		TotalDeposited: a.TotalDeposited(),
	}
}
