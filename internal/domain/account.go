package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Account owns a balance that never drops below zero and a lifetime sum of
// successful deposits. It has no internal locking; callers that share an
// Account across goroutines must serialize access themselves.
type Account struct {
	id             string
	balance        decimal.Decimal
	totalDeposited decimal.Decimal
	notifier       Notifier
	now            func() time.Time
}

type AccountOption func(*Account)

func WithNotifier(n Notifier) AccountOption {
	return func(a *Account) {
		if n != nil {
			a.notifier = n
		}
	}
}

func WithClock(now func() time.Time) AccountOption {
	return func(a *Account) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAccount rejects a negative initial balance with ErrInvalidAmount.
func NewAccount(id string, initialBalance decimal.Decimal, opts ...AccountOption) (*Account, error) {
	a := &Account{
		id:       id,
		notifier: NopNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.SetBalance(initialBalance); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Account) ID() string {
	return a.id
}

func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

func (a *Account) TotalDeposited() decimal.Decimal {
	return a.totalDeposited
}

func (a *Account) SetBalance(value decimal.Decimal) error {
	if value.IsNegative() {
		return ErrInvalidAmount
	}
	a.balance = value
	return nil
}

func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	a.balance = a.balance.Add(amount)
	a.totalDeposited = a.totalDeposited.Add(amount)
	a.emit(EventDeposit, amount)
	return nil
}

// Withdraw checks positivity before sufficiency.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(a.balance) {
		return ErrInsufficientFunds
	}

	a.balance = a.balance.Sub(amount)
	a.emit(EventWithdrawal, amount)
	return nil
}

// CalculateInterest credits balance*rate/100, so a rate of 0.3 means 0.3%.
// The credit is not counted as a deposit.
func (a *Account) CalculateInterest(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return ErrInvalidRate
	}

	interest := a.balance.Mul(rate).Div(hundred)
	a.balance = a.balance.Add(interest)
	a.emit(EventInterest, interest)
	return nil
}

func (a *Account) emit(kind EventKind, amount decimal.Decimal) {
	a.notifier.Notify(Event{
		Kind:      kind,
		AccountID: a.id,
		Amount:    amount,
		Balance:   a.balance,
		Timestamp: a.now(),
	})
}
