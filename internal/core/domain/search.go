package domain

import "time"

// SearchRequest is the inbound shape of a top-level search. Exactly one of
// Query, SearchParams, or StructuredFilters must be set; StructuredFilters
// may additionally augment a Query.
type SearchRequest struct {
	Query             string
	SearchParams      map[string]any
	StructuredFilters map[string]any
	Mode              SearchMode
	Limit             int
	MemberID          *int64
}

// SearchHistory is one append-only record of a completed top-level search.
type SearchHistory struct {
	ID               int64
	MemberID         *int64
	Content          string
	PanelIDs         []string
	ConcordanceRates []float64
	CreatedAt        time.Time
}

// SearchResult is the response of a top-level search.
type SearchResult struct {
	SearchID       string         `json:"search_id"`
	Query          string         `json:"query,omitempty"`
	Panels         []RankedPanel  `json:"panels"`
	TotalCount     int            `json:"total_count"`
	SearchMode     string         `json:"search_mode"`
	SearchMethod   string         `json:"search_method"`
	AppliedFilters map[string]any `json:"applied_filters"`
}

// RefineResult is the response of narrowing a previous search.
type RefineResult struct {
	OriginalCount  int            `json:"original_count"`
	FilteredCount  int            `json:"filtered_count"`
	Panels         []RankedPanel  `json:"panels"`
	AppliedFilters map[string]any `json:"applied_filters"`
}

// PanelRate pairs a stored panel id with its persisted concordance rate.
type PanelRate struct {
	PanelID         string  `json:"panel_id"`
	ConcordanceRate float64 `json:"concordance_rate"`
}

// SearchInfo is the stored view of a past search.
type SearchInfo struct {
	SearchID         string      `json:"search_id"`
	Query            string      `json:"query"`
	PanelCount       int         `json:"panel_count"`
	PanelIDs         []string    `json:"panel_ids"`
	ConcordanceRates []float64   `json:"concordance_rates"`
	PanelsWithRates  []PanelRate `json:"panels_with_rates"`
	CreatedAt        string      `json:"created_at,omitempty"`
}
