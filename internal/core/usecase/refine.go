package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/filter"
)

// Refine narrows a previously stored result set with an additional filter.
// The additional filter is compiled as-is, without re-applying the original
// search mode policy.
func (uc *SearchUseCase) Refine(ctx context.Context, searchID string, additionalFilters map[string]any) (*domain.RefineResult, error) {
	entry, err := uc.loadHistory(ctx, searchID)
	if err != nil {
		return nil, err
	}

	if len(entry.PanelIDs) == 0 {
		return &domain.RefineResult{
			OriginalCount:  0,
			FilteredCount:  0,
			Panels:         []domain.RankedPanel{},
			AppliedFilters: additionalFilters,
		}, nil
	}

	var queryVector []float32
	if entry.Content != "" {
		queryVector = uc.embedQuerySoft(ctx, entry.Content)
	}

	f := filter.FromRaw(additionalFilters)
	preds := filter.Compile(f)

	panels, err := uc.panels.SearchWithinIDs(ctx, entry.PanelIDs, preds, queryVector)
	if err != nil {
		return nil, fmt.Errorf("refine search %s: %w", searchID, err)
	}

	ranked := uc.rank(panels, filter.IsSimple(f))

	return &domain.RefineResult{
		OriginalCount:  len(entry.PanelIDs),
		FilteredCount:  len(ranked),
		Panels:         ranked,
		AppliedFilters: additionalFilters,
	}, nil
}

// GetSearchInfo returns the stored view of a past search, pairing each panel
// id with its persisted concordance rate (0.0 when the rate list is short).
func (uc *SearchUseCase) GetSearchInfo(ctx context.Context, searchID string) (*domain.SearchInfo, error) {
	entry, err := uc.loadHistory(ctx, searchID)
	if err != nil {
		return nil, err
	}
	info := historyToInfo(entry)
	return &info, nil
}

// ListHistory returns the recent searches of a member, newest first.
func (uc *SearchUseCase) ListHistory(ctx context.Context, memberID int64, limit int) ([]domain.SearchInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := uc.history.ListByMember(ctx, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	infos := make([]domain.SearchInfo, len(entries))
	for i := range entries {
		infos[i] = historyToInfo(&entries[i])
	}
	return infos, nil
}

// loadHistory resolves a string search id to its stored entry. Ids that do
// not parse as stored identifiers (e.g. locally generated fallback ids) are
// not found by definition.
func (uc *SearchUseCase) loadHistory(ctx context.Context, searchID string) (*domain.SearchHistory, error) {
	id, err := strconv.ParseInt(searchID, 10, 64)
	if err != nil {
		return nil, domain.WrapError(domain.ErrSearchNotFound, "load history",
			fmt.Errorf("unrecognized search id %q", searchID))
	}
	entry, err := uc.history.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func historyToInfo(entry *domain.SearchHistory) domain.SearchInfo {
	rates := entry.ConcordanceRates
	withRates := make([]domain.PanelRate, len(entry.PanelIDs))
	for i, panelID := range entry.PanelIDs {
		rate := 0.0
		if i < len(rates) {
			rate = rates[i]
		}
		withRates[i] = domain.PanelRate{PanelID: panelID, ConcordanceRate: rate}
	}

	createdAt := ""
	if !entry.CreatedAt.IsZero() {
		createdAt = entry.CreatedAt.Format("2006-01-02")
	}

	return domain.SearchInfo{
		SearchID:         strconv.FormatInt(entry.ID, 10),
		Query:            entry.Content,
		PanelCount:       len(entry.PanelIDs),
		PanelIDs:         entry.PanelIDs,
		ConcordanceRates: rates,
		PanelsWithRates:  withRates,
		CreatedAt:        createdAt,
	}
}
