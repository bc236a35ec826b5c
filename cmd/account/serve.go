package main

import (
	"account_manager/internal/api"
	"account_manager/internal/processor"
	"account_manager/internal/repository/memory"
	"account_manager/internal/service"
	"account_manager/pkg/crypto"
	"account_manager/pkg/metrics"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the account HTTP API and Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "HTTP listen address")
	cmd.Flags().String("metrics-addr", "", "metrics listen address")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("metrics.addr", cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger
	logger.Info("Starting application", slog.String("name", appName))

	metricsCollector := metrics.NewMetricsCollector(logger)
	signer := crypto.NewSigner(a.cfg.SigningKey, logger)
	accountRepo := memory.NewAccountRepository()
	notificationService := service.NewNotificationService(
		[]service.Sink{service.NewLogSink(logger)},
		a.cfg.Notifications.Workers,
		a.cfg.Notifications.QueueSize,
		logger,
	)
	accountProcessor := processor.NewAccountProcessor(accountRepo, notificationService, metricsCollector, logger)
	apiHandler := api.NewAPIHandler(accountProcessor, signer, logger, a.cfg.Server.RequestTimeout)

	var metricsServer *http.Server
	if a.cfg.Metrics.Enabled {
		metricsServer = metricsCollector.StartMetricsServer(a.cfg.Metrics.Addr)
	}

	httpServer, serveErr := startHTTPServer(a.cfg.Server.Addr, apiHandler, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdown(logger, a.cfg.Server.ShutdownTimeout, httpServer, metricsServer, notificationService, metricsCollector)
	logger.Info("Application shutdown complete")
	return runErr
}

func startHTTPServer(addr string, apiHandler *api.APIHandler, logger *slog.Logger) (*http.Server, <-chan error) {
	mux := http.NewServeMux()

	apiHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name": "%s", "status": "ok"}`, appName)
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.String("error", err.Error()))
			errCh <- err
		}
	}()

	return server, errCh
}

func shutdown(
	logger *slog.Logger,
	timeout time.Duration,
	httpServer *http.Server,
	metricsServer *http.Server,
	notificationService *service.NotificationService,
	metricsCollector *metrics.MetricsCollector,
) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := notificationService.Shutdown(ctx); err != nil {
		logger.Error("Notification service shutdown failed", slog.String("error", err.Error()))
	}
	if err := metricsCollector.Shutdown(ctx); err != nil {
		logger.Error("Metrics collector shutdown failed", slog.String("error", err.Error()))
	}
}
