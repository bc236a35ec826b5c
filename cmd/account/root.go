package main

import (
	"account_manager/internal/config"
	"account_manager/pkg/logger"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "account_manager"

type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	syncLogger func() error
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "account",
		Short:         "Single account deposit, withdrawal and interest manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.syncLogger != nil {
				_ = a.syncLogger()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default ./config.yaml if present)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newInteractiveCmd(a), newServeCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}

	log, sync, err := logger.New(logger.Options{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = log.With(slog.String("app", appName))
	a.syncLogger = sync
	slog.SetDefault(a.logger)
	return nil
}
