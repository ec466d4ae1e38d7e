// Command server runs the Soundstake API: campaign and investment endpoints,
// the payment webhook, and the River workers that fan out revenue and
// reconcile unconfirmed milestone transfers.
//
// Import Path: soundstake.io/soundstake/cmd/server
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/app"
	"soundstake.io/soundstake/internal/config"
	"soundstake.io/soundstake/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "soundstake: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Soundstake API",
		zap.Int("port", cfg.Server.Port),
		zap.String("payments_driver", cfg.Payments.Driver),
		zap.String("streaming_driver", cfg.Streaming.Driver),
		zap.Bool("events_enabled", cfg.Events.NATSURL != ""),
		zap.Duration("transfer_timeout", cfg.Payments.TransferTimeout),
		zap.Float64("unlock_min_funding_percent", cfg.Unlock.MinFundingPercent),
	)

	// Workers get their own context: cancelling River's start context is a
	// hard stop, while Shutdown lets running payout jobs finish.
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.Bootstrap(appCtx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer application.Shutdown()

	if err := application.Start(appCtx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(sigCtx, cfg.Server, application.Router)
}

// serve runs the HTTP listener until ctx is cancelled or the listener fails.
func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	listenErr := make(chan error, 1)
	go func() { //nolint:naked-goroutine // the listener owns the process lifetime
		listenErr <- srv.ListenAndServe()
	}()
	logger.Info("API listening", zap.String("addr", srv.Addr))

	select {
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown requested, draining HTTP requests",
			zap.Duration("timeout", cfg.ShutdownTimeout))
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("drain http server: %w", err)
	}
	logger.Info("API stopped")
	return nil
}
