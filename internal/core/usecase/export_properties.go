package usecase

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/numfmt"
	"appraisal-portal/internal/core/port"
)

const maxExportRows = 50000

var exportHeader = []string{
	"id", "debitur", "properties_type", "object_type", "phone_number",
	"land_area", "building_area", "address", "latitude", "longitude",
	"valuations_count", "last_valuation_date", "last_total_value", "last_report_number",
}

type ExportPropertiesUseCase struct {
	repo   port.PropertyRepositoryPort
	writer port.SpreadsheetWriterPort
}

func NewExportPropertiesUseCase(repo port.PropertyRepositoryPort, writer port.SpreadsheetWriterPort) *ExportPropertiesUseCase {
	return &ExportPropertiesUseCase{repo: repo, writer: writer}
}

func (uc *ExportPropertiesUseCase) Execute(ctx context.Context, filters domain.PropertyFilters, w io.Writer) (int, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ExportProperties"})

	ucLogger.Info("Use case started", nil)

	items, err := uc.repo.ListForExport(ctx, filters, maxExportRows)
	if err != nil {
		ucLogger.Error("Failed to load properties for export", err, nil)
		return 0, fmt.Errorf("failed to load properties for export: %w", err)
	}

	sheet := domain.Sheet{Header: exportHeader, Rows: make([][]string, 0, len(items))}
	for _, it := range items {
		sheet.Rows = append(sheet.Rows, []string{
			strconv.FormatInt(it.ID, 10),
			it.Debitur,
			it.PropertiesType,
			it.ObjectType,
			it.PhoneNumber,
			numfmt.FormatDecimal(it.LandArea),
			numfmt.FormatDecimal(it.BuildingArea),
			it.Address,
			it.Latitude,
			it.Longitude,
			strconv.Itoa(it.ValuationsCount),
			it.LastValuationDate,
			strconv.FormatInt(it.LastTotalValue, 10),
			it.LastReportNumber,
		})
	}

	if err := uc.writer.WriteCSV(w, sheet); err != nil {
		ucLogger.Error("Failed to write CSV", err, nil)
		return 0, fmt.Errorf("failed to write csv: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"rows": len(items)})
	return len(items), nil
}
