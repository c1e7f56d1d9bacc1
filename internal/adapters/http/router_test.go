package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

type fakeSearcher struct {
	lastRequest domain.SearchRequest
	result      *domain.SearchResult
	searchErr   error

	refineID      string
	refineFilters map[string]any
	refineResult  *domain.RefineResult

	infoErr error
}

func (s *fakeSearcher) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	s.lastRequest = req
	return s.result, s.searchErr
}

func (s *fakeSearcher) Refine(_ context.Context, searchID string, filters map[string]any) (*domain.RefineResult, error) {
	s.refineID = searchID
	s.refineFilters = filters
	return s.refineResult, nil
}

func (s *fakeSearcher) GetSearchInfo(context.Context, string) (*domain.SearchInfo, error) {
	if s.infoErr != nil {
		return nil, s.infoErr
	}
	return &domain.SearchInfo{SearchID: "1"}, nil
}

func (s *fakeSearcher) ListHistory(context.Context, int64, int) ([]domain.SearchInfo, error) {
	return []domain.SearchInfo{{SearchID: "1"}}, nil
}

func TestSearchEndpointParsesRequest(t *testing.T) {
	searcher := &fakeSearcher{result: &domain.SearchResult{
		SearchID: "1",
		Panels:   []domain.RankedPanel{},
	}}
	handler := NewRouter(searcher, nil).Handler()

	body := `{"query":"서울 거주 남성","search_mode":"strict","limit":50}`
	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if searcher.lastRequest.Query != "서울 거주 남성" {
		t.Fatalf("unexpected query: %q", searcher.lastRequest.Query)
	}
	if searcher.lastRequest.Mode != domain.ModeStrict || searcher.lastRequest.Limit != 50 {
		t.Fatalf("unexpected request: %+v", searcher.lastRequest)
	}

	var resp domain.SearchResult
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SearchID != "1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSearchEndpointDefaultsToFlexibleMode(t *testing.T) {
	searcher := &fakeSearcher{result: &domain.SearchResult{}}
	handler := NewRouter(searcher, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"남성"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if searcher.lastRequest.Mode != domain.ModeFlexible {
		t.Fatalf("expected flexible default, got %q", searcher.lastRequest.Mode)
	}
}

func TestSearchEndpointMapsErrorKinds(t *testing.T) {
	searcher := &fakeSearcher{searchErr: domain.WrapError(domain.ErrInvalidInput, "prepare filters", errors.New("empty"))}
	handler := NewRouter(searcher, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchEndpointRejectsInvalidJSON(t *testing.T) {
	handler := NewRouter(&fakeSearcher{}, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRefineEndpointRoutesIDAndFilters(t *testing.T) {
	searcher := &fakeSearcher{refineResult: &domain.RefineResult{FilteredCount: 1}}
	handler := NewRouter(searcher, nil).Handler()

	body := `{"filters":{"gender":"MALE"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/searches/17/refine", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if searcher.refineID != "17" {
		t.Fatalf("expected search id 17, got %q", searcher.refineID)
	}
	if searcher.refineFilters["gender"] != "MALE" {
		t.Fatalf("unexpected filters: %v", searcher.refineFilters)
	}
}

func TestRefineEndpointRequiresFilters(t *testing.T) {
	handler := NewRouter(&fakeSearcher{}, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/searches/17/refine", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetSearchInfoMapsNotFound(t *testing.T) {
	searcher := &fakeSearcher{infoErr: domain.WrapError(domain.ErrSearchNotFound, "load history", errors.New("missing"))}
	handler := NewRouter(searcher, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/searches/999", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListSearchesRequiresMemberID(t *testing.T) {
	handler := NewRouter(&fakeSearcher{}, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/searches", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := NewRouter(&fakeSearcher{}, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header to be set")
	}
}
