package cli

import (
	"account_manager/internal/domain"
	"account_manager/internal/processor"
	"account_manager/internal/repository/memory"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, input string) (*Session, *processor.AccountProcessor, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	proc := processor.NewAccountProcessor(memory.NewAccountRepository(), domain.NewWriterNotifier(&out), nil, nil)
	_, err := proc.OpenAccount(context.Background(), "123456789", decimal.NewFromInt(1000))
	require.NoError(t, err)

	s := NewSession(proc, "123456789", decimal.RequireFromString("0.3"), strings.NewReader(input), &out)
	return s, proc, &out
}

func TestSession_HappyPath(t *testing.T) {
	s, proc, out := newSession(t, "500\n300\n")

	require.NoError(t, s.Run(context.Background()))

	want := "Current balance: 1000\n" +
		"Amount to deposit: Deposited: 500. New balance: 1500\n" +
		"Amount to withdraw: Withdrawn: 300. New balance: 1200\n" +
		"Interest credited: 3.6. New balance: 1203.6\n"
	assert.Equal(t, want, out.String())

	snap, err := proc.GetAccount(context.Background(), "123456789")
	require.NoError(t, err)
	assert.True(t, snap.Balance.Equal(decimal.RequireFromString("1203.6")))
	assert.True(t, snap.TotalDeposited.Equal(decimal.NewFromInt(500)))
}

func TestSession_RetriesInvalidInput(t *testing.T) {
	s, proc, out := newSession(t, "abc\n-100\n\n0\n200\n5000\n-1\n100\n")

	require.NoError(t, s.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Deposit failed: not a number. Try again.")
	assert.Contains(t, text, "Deposit failed: amount must be positive. Try again.")
	assert.Contains(t, text, "Deposit failed: no amount entered. Try again.")
	assert.Contains(t, text, "Withdrawal failed: insufficient funds. Try again.")
	assert.Contains(t, text, "Withdrawal failed: amount must be positive. Try again.")
	assert.Equal(t, 4, strings.Count(text, "Deposit failed"))
	assert.Equal(t, 2, strings.Count(text, "Withdrawal failed"))

	snap, _ := proc.GetAccount(context.Background(), "123456789")
	assert.True(t, snap.TotalDeposited.Equal(decimal.NewFromInt(200)))
	// (1000 + 200 - 100) * 1.003
	assert.True(t, snap.Balance.Equal(decimal.RequireFromString("1103.3")), "got %s", snap.Balance)
}

func TestSession_EOFEndsSession(t *testing.T) {
	s, _, _ := newSession(t, "abc\n")

	err := s.Run(context.Background())

	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "got %v", err)
}

func TestSession_UnknownAccount(t *testing.T) {
	proc := processor.NewAccountProcessor(memory.NewAccountRepository(), nil, nil, nil)
	s := NewSession(proc, "ghost", decimal.Zero, strings.NewReader(""), io.Discard)

	assert.Error(t, s.Run(context.Background()))
}

func TestSession_NegativeRateFails(t *testing.T) {
	var out bytes.Buffer
	proc := processor.NewAccountProcessor(memory.NewAccountRepository(), nil, nil, nil)
	_, err := proc.OpenAccount(context.Background(), "a", decimal.NewFromInt(10))
	require.NoError(t, err)
	s := NewSession(proc, "a", decimal.NewFromInt(-3), strings.NewReader("1\n1\n"), &out)

	err = s.Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}
