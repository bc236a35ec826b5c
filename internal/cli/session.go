package cli

import (
	"account_manager/internal/domain"
	"account_manager/internal/processor"
	"account_manager/pkg/validator"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

type AccountService interface {
	GetAccount(ctx context.Context, id string) (processor.Snapshot, error)
	Deposit(ctx context.Context, id string, amount decimal.Decimal) (processor.Result, error)
	Withdraw(ctx context.Context, id string, amount decimal.Decimal) (processor.Result, error)
	ApplyInterest(ctx context.Context, id string, rate decimal.Decimal) (processor.Result, error)
}

// Session walks one account through a deposit, a withdrawal and an interest
// credit, prompting until each amount is accepted.
type Session struct {
	accounts  AccountService
	accountID string
	rate      decimal.Decimal
	in        *bufio.Scanner
	out       io.Writer
}

func NewSession(accounts AccountService, accountID string, rate decimal.Decimal, in io.Reader, out io.Writer) *Session {
	return &Session{
		accounts:  accounts,
		accountID: accountID,
		rate:      rate,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

func (s *Session) Run(ctx context.Context) error {
	snap, err := s.accounts.GetAccount(ctx, s.accountID)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Current balance: %s\n", snap.Balance.String())

	err = s.promptUntilAccepted(ctx, "Amount to deposit: ", "Deposit failed", s.accounts.Deposit)
	if err != nil {
		return err
	}

	err = s.promptUntilAccepted(ctx, "Amount to withdraw: ", "Withdrawal failed", s.accounts.Withdraw)
	if err != nil {
		return err
	}

	if _, err := s.accounts.ApplyInterest(ctx, s.accountID, s.rate); err != nil {
		return fmt.Errorf("apply interest: %w", err)
	}
	return nil
}

func (s *Session) promptUntilAccepted(
	ctx context.Context,
	prompt, failure string,
	apply func(ctx context.Context, id string, amount decimal.Decimal) (processor.Result, error),
) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, prompt)
		line, err := s.readLine()
		if err != nil {
			return err
		}

		amount, err := validator.ParseAmount(line)
		if err == nil {
			_, err = apply(ctx, s.accountID, amount)
		}
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}

		fmt.Fprintf(s.out, "%s: %s. Try again.\n", failure, userMessage(err))
	}
}

func (s *Session) readLine() (string, error) {
	if s.in.Scan() {
		return s.in.Text(), nil
	}
	if err := s.in.Err(); err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return "", io.ErrUnexpectedEOF
}

func retryable(err error) bool {
	return errors.Is(err, validator.ErrEmptyInput) ||
		errors.Is(err, validator.ErrMalformedNumber) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrInsufficientFunds)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, validator.ErrEmptyInput):
		return "no amount entered"
	case errors.Is(err, validator.ErrMalformedNumber):
		return "not a number"
	case errors.Is(err, domain.ErrInvalidAmount):
		return domain.ErrInvalidAmount.Error()
	case errors.Is(err, domain.ErrInsufficientFunds):
		return domain.ErrInsufficientFunds.Error()
	default:
		return err.Error()
	}
}
