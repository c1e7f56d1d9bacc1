package ports

import (
	"context"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

// PanelSearcher is the inbound contract for the search pipeline.
type PanelSearcher interface {
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)
	Refine(ctx context.Context, searchID string, additionalFilters map[string]any) (*domain.RefineResult, error)
	GetSearchInfo(ctx context.Context, searchID string) (*domain.SearchInfo, error)
	ListHistory(ctx context.Context, memberID int64, limit int) ([]domain.SearchInfo, error)
}

// ReportBuilder is the inbound contract for the worker's report generation.
type ReportBuilder interface {
	BuildReport(ctx context.Context, searchID string) (string, error)
}
