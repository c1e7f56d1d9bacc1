package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

// HistoryRepository persists search history entries. Panel ids and their
// concordance rates are stored as JSONB arrays, index-paired.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	query := `
CREATE TABLE IF NOT EXISTS search_history (
	id BIGSERIAL PRIMARY KEY,
	member_id BIGINT,
	content TEXT NOT NULL,
	panel_ids JSONB NOT NULL DEFAULT '[]'::jsonb,
	concordance_rate JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_search_history_member ON search_history(member_id, created_at DESC);
`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute history ddl: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Create(
	ctx context.Context,
	memberID *int64,
	content string,
	panelIDs []string,
	rates []float64,
) (int64, error) {
	if panelIDs == nil {
		panelIDs = []string{}
	}
	if rates == nil {
		rates = []float64{}
	}

	idsJSON, err := json.Marshal(panelIDs)
	if err != nil {
		return 0, fmt.Errorf("marshal panel ids: %w", err)
	}
	ratesJSON, err := json.Marshal(rates)
	if err != nil {
		return 0, fmt.Errorf("marshal concordance rates: %w", err)
	}

	var member sql.NullInt64
	if memberID != nil {
		member = sql.NullInt64{Int64: *memberID, Valid: true}
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
INSERT INTO search_history (member_id, content, panel_ids, concordance_rate)
VALUES ($1, $2, $3, $4)
RETURNING id`, member, content, idsJSON, ratesJSON).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert search history: %w", err)
	}
	return id, nil
}

func (r *HistoryRepository) GetByID(ctx context.Context, id int64) (*domain.SearchHistory, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, member_id, content, panel_ids, concordance_rate, created_at
FROM search_history
WHERE id = $1`, id)

	entry, err := scanHistory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrSearchNotFound, "get search history",
			fmt.Errorf("search %d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get search history: %w", err)
	}
	return entry, nil
}

func (r *HistoryRepository) ListByMember(ctx context.Context, memberID int64, limit int) ([]domain.SearchHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, member_id, content, panel_ids, concordance_rate, created_at
FROM search_history
WHERE member_id = $1
ORDER BY created_at DESC
LIMIT $2`, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}
	defer rows.Close()

	var entries []domain.SearchHistory
	for rows.Next() {
		entry, err := scanHistory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list search history: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search history: %w", err)
	}
	return entries, nil
}

func scanHistory(scan func(dest ...any) error) (*domain.SearchHistory, error) {
	var (
		entry     domain.SearchHistory
		member    sql.NullInt64
		idsJSON   []byte
		ratesJSON []byte
	)
	if err := scan(&entry.ID, &member, &entry.Content, &idsJSON, &ratesJSON, &entry.CreatedAt); err != nil {
		return nil, err
	}
	if member.Valid {
		v := member.Int64
		entry.MemberID = &v
	}
	if len(idsJSON) > 0 {
		if err := json.Unmarshal(idsJSON, &entry.PanelIDs); err != nil {
			return nil, fmt.Errorf("decode panel ids: %w", err)
		}
	}
	if len(ratesJSON) > 0 {
		if err := json.Unmarshal(ratesJSON, &entry.ConcordanceRates); err != nil {
			return nil, fmt.Errorf("decode concordance rates: %w", err)
		}
	}
	return &entry, nil
}
