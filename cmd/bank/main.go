package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"pixbank/internal/config"
	"pixbank/internal/console"
	"pixbank/internal/repository/memory"
	"pixbank/internal/service"
	"pixbank/internal/storage"
	"pixbank/pkg/crypto"
	"pixbank/pkg/metrics"
	"sync"
	"syscall"
	"time"
)

const (
	appName = "pixbank"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("Starting application", slog.String("name", appName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsCollector := metrics.NewMetricsCollector(logger)
	if cfg.MetricsAddr != "" {
		metricsCollector.StartMetricsServer(cfg.MetricsAddr)
	}

	var signer storage.Signer
	if cfg.SnapshotSecret != "" {
		signer = crypto.NewSigner(cfg.SnapshotSecret, logger)
	} else if cfg.Persist {
		logger.Warn("SNAPSHOT_SECRET not set, snapshot will be stored unsigned")
	}

	ledger := service.NewLedgerService(memory.NewAccountRepository(), logger,
		service.WithMetrics(metricsCollector))

	if cfg.Persist {
		loadState(ctx, ledger, cfg.DataFile, signer, logger)
	}

	saver := &stateSaver{ledger: ledger, path: cfg.DataFile, signer: signer, logger: logger}

	// The console blocks on stdin, so an interrupt saves from here and exits.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-done:
		case <-ctx.Done():
			select {
			case <-done:
				return
			default:
			}
			logger.Info("Shutdown signal received")
			if cfg.Persist {
				_ = saver.Save()
			}
			os.Exit(130)
		}
	}()

	runErr := console.New(ledger, stdin, stdout, logger).Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	if cfg.Persist {
		if err := saver.Save(); err != nil {
			fmt.Fprintf(stdout, "\nError saving bank state: %v\n", err)
			runErr = errors.Join(runErr, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsCollector.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
	}

	logger.Info("Application shutdown complete")
	return runErr
}

func setupLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler), closeFn, nil
}

// loadState restores the ledger from path. A missing or unreadable snapshot
// leaves the ledger empty.
func loadState(ctx context.Context, ledger *service.LedgerService, path string, signer storage.Signer, logger *slog.Logger) {
	snap, err := storage.LoadSnapshot(path, signer)
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		logger.Info("No previous state found, starting empty", slog.String("path", path))
		return
	case err != nil:
		logger.Error("Failed to load bank state, starting empty",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}

	if err := ledger.Restore(ctx, snap); err != nil {
		logger.Error("Snapshot rejected, starting empty",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}

// stateSaver writes the snapshot at most once per run. The signal handler and
// the normal exit path share it, so they never write the same temp file.
type stateSaver struct {
	once   sync.Once
	err    error
	ledger *service.LedgerService
	path   string
	signer storage.Signer
	logger *slog.Logger
}

func (s *stateSaver) Save() error {
	s.once.Do(func() {
		s.err = saveState(s.ledger, s.path, s.signer, s.logger)
	})
	return s.err
}

func saveState(ledger *service.LedgerService, path string, signer storage.Signer, logger *slog.Logger) error {
	snap, err := ledger.Snapshot(context.Background())
	if err != nil {
		return err
	}
	if err := storage.SaveSnapshot(path, snap, signer); err != nil {
		logger.Error("Failed to save bank state", slog.String("path", path), slog.String("error", err.Error()))
		return err
	}
	logger.Info("Bank state saved",
		slog.String("path", path),
		slog.Int("accounts", len(snap.Accounts)))
	return nil
}
