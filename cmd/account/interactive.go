package main

import (
	"account_manager/internal/cli"
	"account_manager/internal/domain"
	"account_manager/internal/processor"
	"account_manager/internal/repository/memory"
	"account_manager/pkg/validator"
	"fmt"

	"github.com/spf13/cobra"
)

func newInteractiveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Deposit, withdraw and credit interest on one account from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := validator.ParseAmount(a.cfg.Account.InitialBalance)
			if err != nil {
				return fmt.Errorf("account.initial_balance: %w", err)
			}
			rate, err := validator.ParseRate(a.cfg.Account.InterestRate)
			if err != nil {
				return fmt.Errorf("account.interest_rate: %w", err)
			}

			out := cmd.OutOrStdout()
			proc := processor.NewAccountProcessor(
				memory.NewAccountRepository(),
				domain.NewWriterNotifier(out),
				nil,
				a.logger,
			)

			ctx := cmd.Context()
			if _, err := proc.OpenAccount(ctx, a.cfg.Account.ID, initial); err != nil {
				return err
			}

			return cli.NewSession(proc, a.cfg.Account.ID, rate, cmd.InOrStdin(), out).Run(ctx)
		},
	}

	cmd.Flags().String("id", "", "account identifier")
	cmd.Flags().String("initial-balance", "", "starting balance")
	cmd.Flags().String("rate", "", "interest rate in percent, 0.3 means 0.3%")
	_ = a.v.BindPFlag("account.id", cmd.Flags().Lookup("id"))
	_ = a.v.BindPFlag("account.initial_balance", cmd.Flags().Lookup("initial-balance"))
	_ = a.v.BindPFlag("account.interest_rate", cmd.Flags().Lookup("rate"))

	return cmd
}
