// Package httpadapter exposes the search pipeline over a thin JSON API.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/ports"
)

type Router struct {
	searcher       ports.PanelSearcher
	metricsHandler http.Handler
}

func NewRouter(searcher ports.PanelSearcher, metricsHandler http.Handler) *Router {
	return &Router{
		searcher:       searcher,
		metricsHandler: metricsHandler,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/search", rt.search)
	mux.HandleFunc("/v1/searches", rt.listSearches)
	mux.HandleFunc("/v1/searches/", rt.searchByID)
	if rt.metricsHandler != nil {
		mux.Handle("/metrics", rt.metricsHandler)
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequestBody struct {
	Query             string         `json:"query"`
	SearchParams      map[string]any `json:"search_params"`
	StructuredFilters map[string]any `json:"structured_filters"`
	SearchMode        string         `json:"search_mode"`
	Limit             int            `json:"limit"`
	MemberID          *int64         `json:"member_id"`
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var body searchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.searcher.Search(r.Context(), domain.SearchRequest{
		Query:             body.Query,
		SearchParams:      body.SearchParams,
		StructuredFilters: body.StructuredFilters,
		Mode:              domain.ParseSearchMode(body.SearchMode),
		Limit:             body.Limit,
		MemberID:          body.MemberID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) listSearches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	memberID, err := strconv.ParseInt(r.URL.Query().Get("member_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "member_id is required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	infos, err := rt.searcher.ListHistory(r.Context(), memberID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": infos})
}

// searchByID serves GET /v1/searches/{id} and POST /v1/searches/{id}/refine.
func (rt *Router) searchByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/searches/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "search id is required"})
		return
	}

	if searchID, ok := strings.CutSuffix(rest, "/refine"); ok {
		rt.refine(w, r, searchID)
		return
	}

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	info, err := rt.searcher.GetSearchInfo(r.Context(), rest)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (rt *Router) refine(w http.ResponseWriter, r *http.Request, searchID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if searchID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "search id is required"})
		return
	}

	var body struct {
		Filters map[string]any `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(body.Filters) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filters is required"})
		return
	}

	result, err := rt.searcher.Refine(r.Context(), searchID, body.Filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
