package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

func TestRefineEmptyHistoryShortCircuits(t *testing.T) {
	store := &fakePanelStore{}
	history := &fakeHistoryStore{entry: &domain.SearchHistory{ID: 3, Content: "남성"}}

	uc := newTestUseCase(store, history, &fakeInterpreter{}, &fakeEmbedder{}, nil)
	result, err := uc.Refine(context.Background(), "3", map[string]any{"residence": "서울"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OriginalCount != 0 || result.FilteredCount != 0 {
		t.Fatalf("expected zero counts, got %+v", result)
	}
	if store.withinIDs != nil {
		t.Fatal("store must not be queried for an empty result set")
	}
	if len(result.Panels) != 0 {
		t.Fatalf("expected empty panels slice, got %v", result.Panels)
	}
}

func TestRefineSearchesWithinStoredIDs(t *testing.T) {
	store := &fakePanelStore{withinResult: []domain.Panel{{PanelID: "a", Gender: "MALE"}}}
	history := &fakeHistoryStore{entry: &domain.SearchHistory{
		ID:       5,
		Content:  "서울 거주자",
		PanelIDs: []string{"a", "b", "c"},
	}}

	uc := newTestUseCase(store, history, &fakeInterpreter{}, &fakeEmbedder{}, nil)
	result, err := uc.Refine(context.Background(), "5", map[string]any{"gender": "MALE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.withinIDs) != 3 {
		t.Fatalf("expected candidate set of 3 ids, got %v", store.withinIDs)
	}
	if len(store.withinPreds) != 1 || store.withinPreds[0].Field != "gender" {
		t.Fatalf("expected compiled gender predicate, got %+v", store.withinPreds)
	}
	if result.OriginalCount != 3 || result.FilteredCount != 1 {
		t.Fatalf("expected counts 3/1, got %d/%d", result.OriginalCount, result.FilteredCount)
	}
	if c := result.Panels[0].Concordance; c == nil || *c != 1.0 {
		t.Fatalf("expected structural concordance 1.0, got %v", c)
	}
}

func TestRefineUnknownSearchID(t *testing.T) {
	uc := newTestUseCase(&fakePanelStore{}, &fakeHistoryStore{}, &fakeInterpreter{}, &fakeEmbedder{}, nil)

	_, err := uc.Refine(context.Background(), "not-a-number", map[string]any{"gender": "MALE"})
	if !domain.IsKind(err, domain.ErrSearchNotFound) {
		t.Fatalf("expected search-not-found, got %v", err)
	}
}

func TestGetSearchInfoPadsMissingRates(t *testing.T) {
	history := &fakeHistoryStore{entry: &domain.SearchHistory{
		ID:               9,
		Content:          "흡연자",
		PanelIDs:         []string{"a", "b", "c"},
		ConcordanceRates: []float64{0.95, 0.78},
		CreatedAt:        time.Date(2025, 11, 2, 10, 0, 0, 0, time.UTC),
	}}

	uc := newTestUseCase(&fakePanelStore{}, history, &fakeInterpreter{}, &fakeEmbedder{}, nil)
	info, err := uc.GetSearchInfo(context.Background(), "9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.SearchID != "9" || info.PanelCount != 3 {
		t.Fatalf("unexpected info header: %+v", info)
	}
	if len(info.PanelsWithRates) != 3 {
		t.Fatalf("expected 3 paired rates, got %v", info.PanelsWithRates)
	}
	if info.PanelsWithRates[2].ConcordanceRate != 0.0 {
		t.Fatalf("expected missing rate padded with 0.0, got %v", info.PanelsWithRates[2])
	}
	if info.CreatedAt != "2025-11-02" {
		t.Fatalf("expected date-only created_at, got %q", info.CreatedAt)
	}
}

func TestListHistoryDefaultsLimit(t *testing.T) {
	history := &fakeHistoryStore{entries: []domain.SearchHistory{{ID: 1, Content: "a"}}}

	uc := newTestUseCase(&fakePanelStore{}, history, &fakeInterpreter{}, &fakeEmbedder{}, nil)
	infos, err := uc.ListHistory(context.Background(), 42, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if history.listLimit != 20 {
		t.Fatalf("expected default limit 20, got %d", history.listLimit)
	}
	if len(infos) != 1 || infos[0].SearchID != "1" {
		t.Fatalf("unexpected infos: %+v", infos)
	}
}
