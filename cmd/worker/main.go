package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/bootstrap"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/config"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/observability/logging"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", workerMetrics.Handler())
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := http.ListenAndServe(":"+cfg.WorkerMetricsPort, mux); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeSearchCompleted(ctx, func(handlerCtx context.Context, searchID string) error {
		buildCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
		defer cancel()

		start := time.Now()
		workerMetrics.StartReport()
		path, err := app.Reporter.BuildReport(buildCtx, searchID)
		workerMetrics.FinishReport("worker", time.Since(start), err)
		if err != nil {
			return err
		}
		slog.Info("report_written", "search_id", searchID, "path", path)
		return nil
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
