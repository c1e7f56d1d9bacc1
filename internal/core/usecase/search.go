package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/filter"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/ports"
)

const (
	defaultLimit = 100
	maxLimit     = 1000

	methodNaturalLanguage  = "natural_language"
	methodRecommendation   = "recommendation"
	methodStructuredFilter = "structured_filter"
)

// Metrics is the consumer-side slice of the search metrics the pipeline
// reports into. A nil Metrics is a no-op.
type Metrics interface {
	SearchCompleted(method, mode string, conditions, results int)
	EmbeddingFailed()
	HistorySaveFailed()
}

type SearchUseCase struct {
	panels      ports.PanelStore
	history     ports.HistoryStore
	interpreter ports.QueryInterpreter
	embedder    ports.Embedder
	events      ports.EventPublisher
	bounds      ConcordanceBounds
	metrics     Metrics
}

func NewSearchUseCase(
	panels ports.PanelStore,
	history ports.HistoryStore,
	interpreter ports.QueryInterpreter,
	embedder ports.Embedder,
	events ports.EventPublisher,
	bounds ConcordanceBounds,
	metrics Metrics,
) *SearchUseCase {
	return &SearchUseCase{
		panels:      panels,
		history:     history,
		interpreter: interpreter,
		embedder:    embedder,
		events:      events,
		bounds:      bounds,
		metrics:     metrics,
	}
}

// Search runs the full pipeline: filter preparation, optional query
// embedding, single or multi-condition execution, concordance scoring, and
// history persistence. History or event failures never fail the search.
func (uc *SearchUseCase) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	limit := clampLimit(req.Limit)

	prepared, err := uc.prepareFilters(ctx, req, limit)
	if err != nil {
		return nil, err
	}

	var queryVector []float32
	if prepared.originalQuery != "" {
		queryVector = uc.embedQuerySoft(ctx, prepared.originalQuery)
	}

	var panels []domain.Panel
	var isSimple bool
	var applied map[string]any

	if len(prepared.conditions) > 0 {
		panels, err = uc.searchConditions(ctx, prepared.conditions, queryVector)
		if err != nil {
			return nil, err
		}
		// A multi-condition specification carries no top-level semantic
		// fields, so its results count as structural matches.
		isSimple = true
		applied = multiConditionMap(prepared.conditions)
	} else {
		single := prepared.single
		preds := filter.Compile(single)
		panels, err = uc.panels.Search(ctx, preds, queryVector, clampLimit(single.Policy.Limit))
		if err != nil {
			return nil, fmt.Errorf("search panels: %w", err)
		}
		isSimple = filter.IsSimple(single)
		applied = single.Map()
	}

	ranked := uc.rank(panels, isSimple)
	searchID := uc.saveHistory(ctx, req.MemberID, prepared.originalQuery, ranked)
	uc.publishCompleted(ctx, searchID)

	if uc.metrics != nil {
		uc.metrics.SearchCompleted(prepared.method, string(req.Mode), max(len(prepared.conditions), 1), len(ranked))
	}

	return &domain.SearchResult{
		SearchID:       searchID,
		Query:          prepared.originalQuery,
		Panels:         ranked,
		TotalCount:     len(ranked),
		SearchMode:     string(req.Mode),
		SearchMethod:   prepared.method,
		AppliedFilters: applied,
	}, nil
}

type preparedFilters struct {
	method        string
	originalQuery string
	single        domain.Filter
	conditions    []domain.Filter
}

// prepareFilters resolves the three input pathways into normalized filters.
// Exactly one pathway must be present; structured filters may augment a
// natural-language parse.
func (uc *SearchUseCase) prepareFilters(ctx context.Context, req domain.SearchRequest, limit int) (preparedFilters, error) {
	query := strings.TrimSpace(req.Query)

	switch {
	case query != "":
		return uc.prepareFromQuery(ctx, query, req.StructuredFilters, req.Mode, limit)

	case req.SearchParams != nil:
		f := filter.Normalize(req.SearchParams, req.Mode)
		if f.Policy.Limit == 0 {
			f.Policy.Limit = limit
		}
		return preparedFilters{method: methodRecommendation, single: f}, nil

	case req.StructuredFilters != nil:
		f := filter.Normalize(req.StructuredFilters, req.Mode)
		if f.Policy.Limit == 0 {
			f.Policy.Limit = limit
		}
		return preparedFilters{method: methodStructuredFilter, single: f}, nil

	default:
		return preparedFilters{}, domain.WrapError(domain.ErrInvalidInput, "prepare filters",
			fmt.Errorf("one of query, search_params, structured_filters is required"))
	}
}

func (uc *SearchUseCase) prepareFromQuery(
	ctx context.Context,
	query string,
	structured map[string]any,
	mode domain.SearchMode,
	limit int,
) (preparedFilters, error) {
	if filter.HasMultiConditionMarkers(query) {
		rawConditions, err := uc.interpreter.ParseConditions(ctx, query)
		if err == nil && len(rawConditions) > 0 {
			conditions := make([]domain.Filter, 0, len(rawConditions))
			for _, raw := range rawConditions {
				expanded := filter.ExpandFrequency(raw, query)
				f := filter.Normalize(expanded, mode)
				if f.Policy.Limit == 0 {
					f.Policy.Limit = defaultLimit
				}
				conditions = append(conditions, f)
			}
			return preparedFilters{
				method:        methodNaturalLanguage,
				originalQuery: query,
				conditions:    conditions,
			}, nil
		}
		if err != nil {
			slog.Warn("multi_condition_parse_failed", "error", err)
		}
	}

	raw, err := uc.interpreter.Parse(ctx, query)
	if err != nil {
		return preparedFilters{}, fmt.Errorf("parse query: %w", err)
	}
	raw = filter.ExpandFrequency(raw, query)
	f := filter.Normalize(raw, mode)

	// The interpreter's default limit yields to an explicit caller limit.
	if (f.Policy.Limit == 0 || f.Policy.Limit == defaultLimit) && limit != defaultLimit {
		f.Policy.Limit = limit
	}
	if f.Policy.Limit == 0 {
		f.Policy.Limit = limit
	}

	if structured != nil {
		augment := filter.Normalize(structured, mode)
		for key, value := range augment.Fields {
			f.Fields[key] = value
		}
	}

	return preparedFilters{
		method:        methodNaturalLanguage,
		originalQuery: query,
		single:        f,
	}, nil
}

// searchConditions runs each condition with its own limit and unions the
// results, first occurrence of a panel id winning. Condition order, then
// within-condition order, is preserved; there is no cross-condition cap.
func (uc *SearchUseCase) searchConditions(
	ctx context.Context,
	conditions []domain.Filter,
	queryVector []float32,
) ([]domain.Panel, error) {
	var merged []domain.Panel
	seen := make(map[string]struct{})

	for i, condition := range conditions {
		preds := filter.Compile(condition)
		panels, err := uc.panels.Search(ctx, preds, queryVector, clampLimit(condition.Policy.Limit))
		if err != nil {
			return nil, fmt.Errorf("search condition %d: %w", i, err)
		}
		for _, panel := range panels {
			if _, dup := seen[panel.PanelID]; dup {
				continue
			}
			seen[panel.PanelID] = struct{}{}
			merged = append(merged, panel)
		}
	}
	return merged, nil
}

// rank attaches concordance scores and fills fallback profile summaries.
func (uc *SearchUseCase) rank(panels []domain.Panel, isSimple bool) []domain.RankedPanel {
	ranked := make([]domain.RankedPanel, 0, len(panels))
	for _, panel := range panels {
		var concordance *float64
		switch {
		case isSimple:
			one := 1.0
			concordance = &one
		case panel.Similarity != nil:
			score := uc.bounds.Normalize(*panel.Similarity)
			concordance = &score
		}

		if panel.ProfileSummary == "" {
			panel.ProfileSummary = fallbackSummary(panel)
		}
		ranked = append(ranked, domain.RankedPanel{Panel: panel, Concordance: concordance})
	}
	return ranked
}

func (uc *SearchUseCase) embedQuerySoft(ctx context.Context, query string) []float32 {
	vector, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		slog.Warn("query_embedding_failed", "error", err)
		if uc.metrics != nil {
			uc.metrics.EmbeddingFailed()
		}
		return nil
	}
	return vector
}

// saveHistory persists the search outcome. An unset concordance is stored as
// 0.0; the response keeps it unset. On persistence failure the search id
// degrades to a locally generated one, which cannot be refined later.
func (uc *SearchUseCase) saveHistory(
	ctx context.Context,
	memberID *int64,
	query string,
	ranked []domain.RankedPanel,
) string {
	panelIDs := make([]string, len(ranked))
	rates := make([]float64, len(ranked))
	for i, p := range ranked {
		panelIDs[i] = p.PanelID
		if p.Concordance != nil {
			rates[i] = *p.Concordance
		}
	}

	id, err := uc.history.Create(ctx, memberID, query, panelIDs, rates)
	if err != nil {
		slog.Warn("history_save_failed", "error", err)
		if uc.metrics != nil {
			uc.metrics.HistorySaveFailed()
		}
		return uuid.NewString()
	}
	return fmt.Sprintf("%d", id)
}

func (uc *SearchUseCase) publishCompleted(ctx context.Context, searchID string) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishSearchCompleted(ctx, searchID); err != nil {
		slog.Warn("search_completed_publish_failed", "search_id", searchID, "error", err)
	}
}

func multiConditionMap(conditions []domain.Filter) map[string]any {
	maps := make([]any, len(conditions))
	for i, condition := range conditions {
		maps[i] = condition.Map()
	}
	return map[string]any{"conditions": maps}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
