package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"pixbank/internal/domain"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsCollector struct {
	registry          *prometheus.Registry
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	accountBalance    *prometheus.GaugeVec
	pixKeys           prometheus.Gauge
	server            *http.Server
	logger            *slog.Logger
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &MetricsCollector{
		registry: registry,
		operations: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operations by name and outcome",
		}, []string{"operation", "outcome"}),
		operationDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Time taken by a ledger operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "ledger_account_balance",
			Help: "Current account balance",
		}, []string{"account_number", "kind"}),
		pixKeys: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "ledger_pix_keys_registered",
			Help: "Number of registered Pix keys",
		}),
		logger: logger,
	}
}

func (m *MetricsCollector) RecordOperation(operation string, duration time.Duration, err error) {
	m.operations.WithLabelValues(operation, outcome(err)).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *MetricsCollector) UpdateAccountBalance(number int64, kind string, balance float64) {
	m.accountBalance.WithLabelValues(strconv.FormatInt(number, 10), kind).Set(balance)
}

func (m *MetricsCollector) SetPixKeys(count int) {
	m.pixKeys.Set(float64(count))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case domain.IsDomainError(err):
		return "rejected"
	default:
		return "error"
	}
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	m.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(server *http.Server) {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}(m.server)

	return m.server
}

func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	if err := m.server.Shutdown(ctx); err != nil {
		return err
	}
	m.logger.Info("Metrics server stopped")
	return nil
}
