package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/ports"
)

// ReportUseCase turns a completed search into a downloadable result artifact.
// It runs in the worker, driven by search-completed events.
type ReportUseCase struct {
	history ports.HistoryStore
	panels  ports.PanelStore
	writer  ports.ReportWriter
}

func NewReportUseCase(history ports.HistoryStore, panels ports.PanelStore, writer ports.ReportWriter) *ReportUseCase {
	return &ReportUseCase{history: history, panels: panels, writer: writer}
}

// BuildReport loads the stored search and its panels and writes the report,
// returning the artifact path.
func (uc *ReportUseCase) BuildReport(ctx context.Context, searchID string) (string, error) {
	id, err := strconv.ParseInt(searchID, 10, 64)
	if err != nil {
		return "", domain.WrapError(domain.ErrSearchNotFound, "build report",
			fmt.Errorf("unrecognized search id %q", searchID))
	}

	entry, err := uc.history.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	var panels []domain.Panel
	if len(entry.PanelIDs) > 0 {
		panels, err = uc.panels.GetByIDs(ctx, entry.PanelIDs)
		if err != nil {
			return "", fmt.Errorf("load report panels: %w", err)
		}
	}

	path, err := uc.writer.WriteSearchReport(entry, panels)
	if err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
