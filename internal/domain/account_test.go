package domain

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recorder struct {
	events []Event
}

func (r *recorder) Notify(e Event) {
	r.events = append(r.events, e)
}

func newTestAccount(t *testing.T, balance string) (*Account, *recorder) {
	t.Helper()
	rec := &recorder{}
	acc, err := NewAccount("123456789", dec(balance), WithNotifier(rec))
	require.NoError(t, err)
	return acc, rec
}

func TestNewAccount_Defaults(t *testing.T) {
	acc, err := NewAccount("acc-1", decimal.Zero)

	require.NoError(t, err)
	assert.Equal(t, "acc-1", acc.ID())
	assert.True(t, acc.Balance().IsZero())
	assert.True(t, acc.TotalDeposited().IsZero())
}

func TestNewAccount_NegativeInitialBalance(t *testing.T) {
	acc, err := NewAccount("acc-1", dec("-0.01"))

	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Nil(t, acc)
}

func TestAccount_SetBalance(t *testing.T) {
	acc, _ := newTestAccount(t, "10")

	require.NoError(t, acc.SetBalance(dec("42.50")))
	assert.True(t, acc.Balance().Equal(dec("42.5")))

	assert.ErrorIs(t, acc.SetBalance(dec("-1")), ErrInvalidAmount)
	assert.True(t, acc.Balance().Equal(dec("42.5")), "failed set must not change balance")

	require.NoError(t, acc.SetBalance(decimal.Zero))
	assert.True(t, acc.Balance().IsZero())
}

func TestAccount_DepositScenario(t *testing.T) {
	acc, rec := newTestAccount(t, "1000")

	require.NoError(t, acc.Deposit(dec("500")))
	assert.True(t, acc.Balance().Equal(dec("1500")))
	assert.True(t, acc.TotalDeposited().Equal(dec("500")))

	err := acc.Deposit(dec("-100"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.True(t, acc.Balance().Equal(dec("1500")))
	assert.True(t, acc.TotalDeposited().Equal(dec("500")))

	require.Len(t, rec.events, 1)
	assert.Equal(t, EventDeposit, rec.events[0].Kind)
	assert.True(t, rec.events[0].Amount.Equal(dec("500")))
	assert.True(t, rec.events[0].Balance.Equal(dec("1500")))
}

func TestAccount_DepositRejectsNonPositive(t *testing.T) {
	for _, amount := range []string{"0", "-0.01", "-100"} {
		t.Run(amount, func(t *testing.T) {
			acc, rec := newTestAccount(t, "50")

			assert.ErrorIs(t, acc.Deposit(dec(amount)), ErrInvalidAmount)
			assert.True(t, acc.Balance().Equal(dec("50")))
			assert.True(t, acc.TotalDeposited().IsZero())
			assert.Empty(t, rec.events)
		})
	}
}

func TestAccount_WithdrawScenario(t *testing.T) {
	acc, rec := newTestAccount(t, "1000")

	require.NoError(t, acc.Withdraw(dec("300")))
	assert.True(t, acc.Balance().Equal(dec("700")))

	assert.ErrorIs(t, acc.Withdraw(dec("-100")), ErrInvalidAmount)
	assert.ErrorIs(t, acc.Withdraw(dec("800")), ErrInsufficientFunds)
	assert.True(t, acc.Balance().Equal(dec("700")))
	assert.True(t, acc.TotalDeposited().IsZero())

	require.Len(t, rec.events, 1)
	assert.Equal(t, EventWithdrawal, rec.events[0].Kind)
	assert.True(t, rec.events[0].Balance.Equal(dec("700")))
}

func TestAccount_WithdrawEntireBalance(t *testing.T) {
	acc, _ := newTestAccount(t, "25.75")

	require.NoError(t, acc.Withdraw(dec("25.75")))
	assert.True(t, acc.Balance().IsZero())
}

func TestAccount_WithdrawChecksPositivityFirst(t *testing.T) {
	acc, _ := newTestAccount(t, "0")

	assert.ErrorIs(t, acc.Withdraw(decimal.Zero), ErrInvalidAmount)
	assert.ErrorIs(t, acc.Withdraw(dec("0.01")), ErrInsufficientFunds)
}

func TestAccount_InterestScenario(t *testing.T) {
	acc, rec := newTestAccount(t, "1000")

	require.NoError(t, acc.CalculateInterest(dec("0.3")))
	assert.True(t, acc.Balance().Equal(dec("1003")), "got %s", acc.Balance())
	assert.True(t, acc.TotalDeposited().IsZero())

	assert.ErrorIs(t, acc.CalculateInterest(dec("-3")), ErrInvalidRate)
	assert.True(t, acc.Balance().Equal(dec("1003")))

	require.Len(t, rec.events, 1)
	assert.Equal(t, EventInterest, rec.events[0].Kind)
	assert.True(t, rec.events[0].Amount.Equal(dec("3")))
}

func TestAccount_InterestZeroRate(t *testing.T) {
	acc, rec := newTestAccount(t, "1000")

	require.NoError(t, acc.CalculateInterest(decimal.Zero))
	assert.True(t, acc.Balance().Equal(dec("1000")))
	require.Len(t, rec.events, 1)
	assert.True(t, rec.events[0].Amount.IsZero())
}

func TestAccount_InterestCompounds(t *testing.T) {
	acc, _ := newTestAccount(t, "1000")

	require.NoError(t, acc.CalculateInterest(dec("10")))
	require.NoError(t, acc.CalculateInterest(dec("10")))
	assert.True(t, acc.Balance().Equal(dec("1210")), "got %s", acc.Balance())
}

func TestAccount_MixedSequenceKeepsInvariants(t *testing.T) {
	acc, _ := newTestAccount(t, "0")

	steps := []func() error{
		func() error { return acc.Deposit(dec("100")) },
		func() error { return acc.Withdraw(dec("150")) },
		func() error { return acc.CalculateInterest(dec("5")) },
		func() error { return acc.Withdraw(dec("105")) },
		func() error { return acc.Deposit(dec("0")) },
		func() error { return acc.Deposit(dec("20.5")) },
		func() error { return acc.CalculateInterest(dec("-1")) },
	}

	prevTotal := acc.TotalDeposited()
	for _, step := range steps {
		_ = step()
		assert.False(t, acc.Balance().IsNegative())
		assert.True(t, acc.TotalDeposited().GreaterThanOrEqual(prevTotal))
		prevTotal = acc.TotalDeposited()
	}

	assert.True(t, acc.Balance().Equal(dec("20.5")), "got %s", acc.Balance())
	assert.True(t, acc.TotalDeposited().Equal(dec("120.5")))
}

func TestWriterNotifier_FormatsStatusLines(t *testing.T) {
	var buf bytes.Buffer
	acc, err := NewAccount("acc-1", dec("1000"), WithNotifier(NewWriterNotifier(&buf)))
	require.NoError(t, err)

	require.NoError(t, acc.Deposit(dec("500")))
	require.NoError(t, acc.Withdraw(dec("300")))
	require.NoError(t, acc.CalculateInterest(dec("0.3")))

	want := "Deposited: 500. New balance: 1500\n" +
		"Withdrawn: 300. New balance: 1200\n" +
		"Interest credited: 3.6. New balance: 1203.6\n"
	assert.Equal(t, want, buf.String())
}

func TestNotifierFunc(t *testing.T) {
	var got []EventKind
	acc, err := NewAccount("acc-1", decimal.Zero, WithNotifier(NotifierFunc(func(e Event) {
		got = append(got, e.Kind)
	})))
	require.NoError(t, err)

	require.NoError(t, acc.Deposit(dec("1")))
	require.NoError(t, acc.Withdraw(dec("1")))

	assert.Equal(t, []EventKind{EventDeposit, EventWithdrawal}, got)
}

func TestAccount_EventCarriesClockTimestamp(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &recorder{}
	acc, err := NewAccount("acc-1", decimal.Zero, WithNotifier(rec), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	require.NoError(t, acc.Deposit(dec("1")))

	require.Len(t, rec.events, 1)
	assert.Equal(t, fixed, rec.events[0].Timestamp)
	assert.Equal(t, "acc-1", rec.events[0].AccountID)
}
