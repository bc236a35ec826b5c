package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
)

type MetricsCollector struct {
	registry          *prometheus.Registry
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	accountBalance    *prometheus.GaugeVec
	totalDeposited    *prometheus.GaugeVec
	openAccounts      prometheus.Gauge
	logger            *slog.Logger
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	collector := &MetricsCollector{
		registry: registry,
		operations: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "account_operations_total",
			Help: "Total number of account operations by kind and outcome",
		}, []string{"operation", "outcome"}),
		operationDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_operation_duration_seconds",
			Help:    "Time taken to apply an account operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "account_balance",
			Help: "Current account balance",
		}, []string{"account_id"}),
		totalDeposited: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "account_total_deposited",
			Help: "Lifetime sum of deposits into the account",
		}, []string{"account_id"}),
		openAccounts: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "accounts_open",
			Help: "Number of registered accounts",
		}),
		logger: logger,
	}

	return collector
}

func (m *MetricsCollector) RecordOperation(operation string, duration time.Duration, success bool) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeRejected
	}

	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *MetricsCollector) UpdateAccountBalance(accountID string, balance, totalDeposited float64) {
	m.accountBalance.WithLabelValues(accountID).Set(balance)
	m.totalDeposited.WithLabelValues(accountID).Set(totalDeposited)
}

func (m *MetricsCollector) AccountOpened(accountID string, balance float64) {
	m.openAccounts.Inc()
	m.UpdateAccountBalance(accountID, balance, 0)
}

func (m *MetricsCollector) AccountClosed(accountID string) {
	m.openAccounts.Dec()
	m.accountBalance.DeleteLabelValues(accountID)
	m.totalDeposited.DeleteLabelValues(accountID)
}

func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	m.logger.Info("Metrics collector shutdown complete")
	return nil
}
