package bootstrap

import (
	"context"
	"fmt"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/config"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/ports"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/usecase"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/infrastructure/embedding/upstage"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/infrastructure/export/excel"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/infrastructure/llm/anthropic"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/infrastructure/queue/nats"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/infrastructure/repository/postgres"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/infrastructure/resilience"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue    *nats.Queue
	Searcher ports.PanelSearcher
	Reporter ports.ReportBuilder
	Metrics  *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN, cfg.PostgresMinConns, cfg.PostgresMaxConns)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	panelRepo := postgres.NewPanelRepository(db)
	if err := panelRepo.EnsureSchema(ctx, cfg.EmbeddingDim); err != nil {
		return nil, fmt.Errorf("ensure panel schema: %w", err)
	}
	historyRepo := postgres.NewHistoryRepository(db)
	if err := historyRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure history schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: cfg.RetryMaxAttempts,
		BreakerEnabled:   cfg.ResilienceBreakerEnabled,
	})

	interpreter := anthropic.New(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, cfg.AnthropicModel, executor)
	embedder := upstage.New(cfg.UpstageBaseURL, cfg.UpstageAPIKey, cfg.UpstageModel, executor)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	apiMetrics := metrics.NewHTTPServerMetrics("api")

	bounds := usecase.ConcordanceBounds{
		SimilarityMin:  cfg.SimilarityMin,
		SimilarityMax:  cfg.SimilarityMax,
		ConcordanceMin: cfg.ConcordanceMin,
		ConcordanceMax: cfg.ConcordanceMax,
	}

	searchUC := usecase.NewSearchUseCase(panelRepo, historyRepo, interpreter, embedder, queue, bounds, apiMetrics)

	writer, err := excel.NewWriter(cfg.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("init report writer: %w", err)
	}
	reportUC := usecase.NewReportUseCase(historyRepo, panelRepo, writer)

	return &App{
		Config:   cfg,
		Queue:    queue,
		Searcher: searchUC,
		Reporter: reportUC,
		Metrics:  apiMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
