package excel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

func TestWriteSearchReport(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	age := 29
	entry := &domain.SearchHistory{
		ID:               21,
		Content:          "서울 거주 20대",
		PanelIDs:         []string{"p1", "p2"},
		ConcordanceRates: []float64{0.95},
		CreatedAt:        time.Date(2025, 11, 2, 14, 0, 0, 0, time.UTC),
	}
	panels := []domain.Panel{
		{PanelID: "p1", Age: &age, Gender: "FEMALE", Residence: "서울"},
		{PanelID: "p2"},
	}

	path, err := writer.WriteSearchReport(entry, panels)
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	if path != filepath.Join(dir, "21.xlsx") {
		t.Fatalf("unexpected artifact path: %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()

	header, err := f.GetCellValue("Panels", "A1")
	if err != nil || header != "panel_id" {
		t.Fatalf("unexpected header cell: %q, %v", header, err)
	}
	first, err := f.GetCellValue("Panels", "A2")
	if err != nil || first != "p1" {
		t.Fatalf("unexpected first panel id: %q, %v", first, err)
	}
	rate, err := f.GetCellValue("Panels", "L2")
	if err != nil || rate != "0.95" {
		t.Fatalf("unexpected concordance cell: %q, %v", rate, err)
	}
	query, err := f.GetCellValue("Search", "B2")
	if err != nil || query != "서울 거주 20대" {
		t.Fatalf("unexpected summary query: %q, %v", query, err)
	}
}

func TestWriteSearchReportPadsMissingRates(t *testing.T) {
	writer, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	entry := &domain.SearchHistory{
		ID:       22,
		Content:  "검색",
		PanelIDs: []string{"p1"},
	}
	path, err := writer.WriteSearchReport(entry, []domain.Panel{{PanelID: "p1"}})
	if err != nil {
		t.Fatalf("write report: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()

	rate, err := f.GetCellValue("Panels", "L2")
	if err != nil || rate != "0" {
		t.Fatalf("expected padded rate 0, got %q, %v", rate, err)
	}
}
