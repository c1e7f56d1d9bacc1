package ports

import (
	"context"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

// PanelStore executes compiled predicate sets against the panel record store.
type PanelStore interface {
	// Search runs the predicates ANDed together, optionally ordered by vector
	// distance, capped at limit. An empty predicate set matches everything.
	Search(ctx context.Context, preds []domain.Predicate, queryVector []float32, limit int) ([]domain.Panel, error)
	// SearchWithinIDs is Search restricted to a fixed candidate id set, used
	// by refinement. No limit beyond the id set itself.
	SearchWithinIDs(ctx context.Context, panelIDs []string, preds []domain.Predicate, queryVector []float32) ([]domain.Panel, error)
	// GetByIDs loads panels by explicit id, store order.
	GetByIDs(ctx context.Context, panelIDs []string) ([]domain.Panel, error)
}

// HistoryStore persists and reads append-only search history entries.
type HistoryStore interface {
	Create(ctx context.Context, memberID *int64, content string, panelIDs []string, concordanceRates []float64) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.SearchHistory, error)
	ListByMember(ctx context.Context, memberID int64, limit int) ([]domain.SearchHistory, error)
}

// QueryInterpreter turns natural language into raw filter maps. Parse returns
// a single specification; ParseConditions returns the multi-condition form
// and may fail structurally, in which case callers fall back to Parse.
type QueryInterpreter interface {
	Parse(ctx context.Context, query string) (map[string]any, error)
	ParseConditions(ctx context.Context, query string) ([]map[string]any, error)
}

// Embedder builds the query vector for hybrid ranking. Failures are soft:
// callers continue without vector ordering.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EventPublisher announces completed searches to downstream consumers.
type EventPublisher interface {
	PublishSearchCompleted(ctx context.Context, searchID string) error
}

// EventSubscriber consumes completed-search announcements.
type EventSubscriber interface {
	SubscribeSearchCompleted(ctx context.Context, handler func(context.Context, string) error) error
}

// ReportWriter renders a stored search into a result artifact and returns its
// path.
type ReportWriter interface {
	WriteSearchReport(entry *domain.SearchHistory, panels []domain.Panel) (string, error)
}
