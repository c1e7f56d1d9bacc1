package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

func TestHistoryCreatePersistsJSONArrays(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO search_history")).
		WithArgs(nil, "서울 거주 남성", []byte(`["a","b"]`), []byte(`[0.95,0.78]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	repo := NewHistoryRepository(db)
	id, err := repo.Create(context.Background(), nil, "서울 거주 남성", []string{"a", "b"}, []float64{0.95, 0.78})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 11 {
		t.Fatalf("expected id 11, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHistoryCreateDefaultsNilSlicesToEmptyArrays(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	member := int64(42)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO search_history")).
		WithArgs(member, "빈 검색", []byte(`[]`), []byte(`[]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	repo := NewHistoryRepository(db)
	if _, err := repo.Create(context.Background(), &member, "빈 검색", nil, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHistoryGetByIDDecodesArrays(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	createdAt := time.Date(2025, 11, 2, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "member_id", "content", "panel_ids", "concordance_rate", "created_at"}).
		AddRow(int64(5), int64(42), "흡연자", []byte(`["a","b","c"]`), []byte(`[0.95,0.78,0.6]`), createdAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM search_history")).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	repo := NewHistoryRepository(db)
	entry, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if entry.ID != 5 || entry.MemberID == nil || *entry.MemberID != 42 {
		t.Fatalf("unexpected entry header: %+v", entry)
	}
	if len(entry.PanelIDs) != 3 || entry.PanelIDs[2] != "c" {
		t.Fatalf("unexpected panel ids: %v", entry.PanelIDs)
	}
	if len(entry.ConcordanceRates) != 3 || entry.ConcordanceRates[0] != 0.95 {
		t.Fatalf("unexpected rates: %v", entry.ConcordanceRates)
	}
	if !entry.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected created_at: %v", entry.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHistoryGetByIDMissingRowMapsToNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM search_history")).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "content", "panel_ids", "concordance_rate", "created_at"}))

	repo := NewHistoryRepository(db)
	_, err = repo.GetByID(context.Background(), 999)
	if !domain.IsKind(err, domain.ErrSearchNotFound) {
		t.Fatalf("expected search-not-found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHistoryListByMemberAppliesLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "member_id", "content", "panel_ids", "concordance_rate", "created_at"}).
		AddRow(int64(2), int64(42), "최근 검색", []byte(`["x"]`), []byte(`[1]`), time.Now()).
		AddRow(int64(1), int64(42), "이전 검색", []byte(`[]`), []byte(`[]`), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(int64(42), 20).
		WillReturnRows(rows)

	repo := NewHistoryRepository(db)
	entries, err := repo.ListByMember(context.Background(), 42, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != 2 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
