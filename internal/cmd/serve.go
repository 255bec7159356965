package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Digital-Shane/cinemabot/internal/metrics"
	"github.com/Digital-Shane/cinemabot/internal/telegram"
	"github.com/Digital-Shane/cinemabot/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Long: `Run the Telegram bot. Updates are received by long polling unless
webhook_host is configured, in which case a webhook is registered and served
on listen_addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags)
		},
	}
}

func runServe(ctx context.Context, flags *globalFlags) error {
	cfg, logger, handler, err := setup(ctx, flags, os.Stderr)
	if err != nil {
		return err
	}
	defer handler.Close()

	shutdownTracing, err := telemetry.Init(ctx, "cinemabot", logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	metrics.Register(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		stopMetrics := serveMetrics(cfg.MetricsAddr, logger)
		defer stopMetrics()
	}

	transport, err := telegram.New(telegram.Config{
		Token:         cfg.APIToken,
		WebhookHost:   cfg.WebhookHost,
		WebhookPath:   cfg.WebhookPath,
		WebhookSecret: cfg.WebhookSecret,
		ListenAddr:    cfg.ListenAddr,
		MaxRoutines:   cfg.MaxRoutines,
		Logger:        logger,
	}, handler)
	if err != nil {
		return err
	}

	logger.Info("cinemabot started", slog.String("catalog", cfg.Catalog))
	if err := transport.Run(ctx); err != nil {
		return fmt.Errorf("telegram transport: %w", err)
	}
	logger.Info("cinemabot stopped")
	return nil
}

// serveMetrics exposes the Prometheus registry on addr and returns a func
// that shuts the server down.
func serveMetrics(addr string, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.String("error", err.Error()))
		}
	}()
	logger.Info("metrics server started", slog.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("metrics shutdown error", slog.String("error", err.Error()))
		}
	}
}
