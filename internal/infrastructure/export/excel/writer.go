// Package excel renders a stored search into an .xlsx result artifact, one
// row per panel, with the search metadata on a summary sheet.
package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

type Writer struct {
	dir string
}

func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "./data/results"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

var panelHeaders = []string{
	"panel_id", "age", "gender", "residence", "occupation", "marital_status",
	"phone_brand", "car_brand", "smoking_experience", "drinking_experience",
	"electronic_devices", "concordance_rate", "profile_summary",
}

// WriteSearchReport writes <dir>/<search_id>.xlsx and returns its path.
// Concordance rates pair with panels by stored index; missing rates render
// as 0.0.
func (w *Writer) WriteSearchReport(entry *domain.SearchHistory, panels []domain.Panel) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Panels"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range panelHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	rateByID := make(map[string]float64, len(entry.PanelIDs))
	for i, panelID := range entry.PanelIDs {
		if i < len(entry.ConcordanceRates) {
			rateByID[panelID] = entry.ConcordanceRates[i]
		}
	}

	for i, panel := range panels {
		row := i + 2
		values := []any{
			panel.PanelID,
			ageValue(panel.Age),
			panel.Gender,
			panel.Residence,
			panel.Occupation,
			panel.MaritalStatus,
			panel.PhoneBrand,
			panel.CarBrand,
			strings.Join(panel.SmokingExperience, ", "),
			strings.Join(panel.DrinkingExperience, ", "),
			strings.Join(panel.ElectronicDevices, ", "),
			rateByID[panel.PanelID],
			panel.ProfileSummary,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return "", fmt.Errorf("panel cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return "", fmt.Errorf("write panel row %d: %w", row, err)
			}
		}
	}

	if err := writeSummarySheet(f, entry, len(panels)); err != nil {
		return "", err
	}

	path := filepath.Join(w.dir, fmt.Sprintf("%d.xlsx", entry.ID))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

func writeSummarySheet(f *excelize.File, entry *domain.SearchHistory, panelCount int) error {
	const sheet = "Search"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][2]any{
		{"search_id", entry.ID},
		{"query", entry.Content},
		{"panel_count", panelCount},
	}
	if !entry.CreatedAt.IsZero() {
		rows = append(rows, [2]any{"created_at", entry.CreatedAt.Format("2006-01-02 15:04:05")})
	}

	for i, pair := range rows {
		row := i + 1
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), pair[0]); err != nil {
			return fmt.Errorf("write summary key: %w", err)
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), pair[1]); err != nil {
			return fmt.Errorf("write summary value: %w", err)
		}
	}
	return nil
}

func ageValue(age *int) any {
	if age == nil {
		return ""
	}
	return *age
}
