package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/editor"
	"appraisal-portal/internal/core/numfmt"
	"appraisal-portal/internal/core/port"

	"golang.org/x/text/cases"
)

type ImportPropertiesUseCase struct {
	repo      port.PropertyRepositoryPort
	reader    port.SpreadsheetReaderPort
	publisher port.EventPublisherPort
	maxRows   int
}

func NewImportPropertiesUseCase(
	repo port.PropertyRepositoryPort,
	reader port.SpreadsheetReaderPort,
	publisher port.EventPublisherPort,
	maxRows int,
) *ImportPropertiesUseCase {
	return &ImportPropertiesUseCase{
		repo:      repo,
		reader:    reader,
		publisher: publisher,
		maxRows:   maxRows,
	}
}

// Execute читает таблицу, превращает каждую строку в объект с одной оценкой
// и сохраняет корректные строки. Ошибки строк собираются в отчет и не прерывают импорт.
func (uc *ImportPropertiesUseCase) Execute(ctx context.Context, req domain.ImportRequest, file io.Reader) (*domain.ImportReport, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "ImportProperties",
		"file_name": req.FileName,
	})

	ucLogger.Info("Use case started", nil)

	sheet, err := uc.reader.Read(req.FileName, file)
	if err != nil {
		ucLogger.Error("Failed to read spreadsheet", err, nil)
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, domain.ErrEmptyImport
	}
	if uc.maxRows > 0 && len(sheet.Rows) > uc.maxRows {
		ucLogger.Warn("Spreadsheet exceeds row limit", port.Fields{"rows": len(sheet.Rows), "max_rows": uc.maxRows})
		return nil, fmt.Errorf("%w: %d > %d", domain.ErrTooManyRows, len(sheet.Rows), uc.maxRows)
	}

	columns, unmapped := ResolveColumns(sheet.Header, req.Mapping)
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no column matches a known field", domain.ErrValidationFailed)
	}

	report := &domain.ImportReport{
		FileName:        req.FileName,
		UnmappedColumns: unmapped,
	}

	for i, row := range sheet.Rows {
		if isBlankRow(row) {
			continue
		}
		report.TotalRows++
		rowNum := i + 1

		property, fieldErrs := buildPropertyFromRow(row, columns, req.PropertiesType)
		if len(fieldErrs) == 0 {
			fieldErrs = trimDraftPrefix(editor.FromDraft(property).Validate(property.PropertiesType))
		}
		if len(fieldErrs) > 0 {
			report.Errors = append(report.Errors, domain.ImportRowError{Row: rowNum, Fields: fieldErrs, Reason: "validation failed"})
			continue
		}

		id, err := uc.repo.Create(ctx, &property)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			ucLogger.Warn("Failed to save imported row", port.Fields{"row": rowNum, "error": err.Error()})
			report.Errors = append(report.Errors, domain.ImportRowError{Row: rowNum, Reason: "save failed"})
			continue
		}
		report.Imported++
		report.CreatedIDs = append(report.CreatedIDs, id)
	}

	event := domain.ImportCompletedEvent{
		FileName:   req.FileName,
		Imported:   report.Imported,
		Failed:     len(report.Errors),
		UserID:     req.UserID,
		OccurredAt: time.Now().UTC(),
	}
	if err := uc.publisher.PublishImportCompleted(ctx, event); err != nil {
		ucLogger.Warn("Failed to publish import completed event", port.Fields{"error": err.Error()})
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_rows": report.TotalRows,
		"imported":   report.Imported,
		"failed":     len(report.Errors),
	})
	return report, nil
}

var headerFolder = cases.Fold()

func foldHeader(s string) string {
	s = headerFolder.String(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "_")
}

func isImportField(field string) bool {
	return domain.IsPropertyField(field) || domain.IsValuationField(field)
}

// ResolveColumns сопоставляет колонки таблицы полям. Явное сопоставление
// сравнивается без учета регистра; без него колонка подходит, если ее заголовок
// совпадает с именем поля ("Land Area" -> land_area).
func ResolveColumns(header []string, mapping map[string]string) (map[int]string, []string) {
	folded := make(map[string]string, len(mapping))
	for column, field := range mapping {
		folded[foldHeader(column)] = strings.TrimSpace(field)
	}

	columns := make(map[int]string)
	var unmapped []string
	for i, h := range header {
		key := foldHeader(h)
		field, ok := folded[key]
		if !ok && len(mapping) == 0 {
			field, ok = key, true
		}
		if !ok || !isImportField(field) {
			if strings.TrimSpace(h) != "" {
				unmapped = append(unmapped, h)
			}
			continue
		}
		columns[i] = field
	}
	return columns, unmapped
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func buildPropertyFromRow(row []string, columns map[int]string, defaultType string) (domain.Property, domain.ValidationErrors) {
	p := domain.Property{PropertiesType: defaultType}
	changes := make(domain.ChangeSet)
	valuationChanges := make(domain.ChangeSet)
	errs := make(domain.ValidationErrors)

	for i, field := range columns {
		if i >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[i])
		if domain.IsValuationField(field) {
			if value != "" {
				valuationChanges[field] = value
			}
			continue
		}
		if field == domain.FieldLandArea || field == domain.FieldBuildingArea {
			if _, ok := numfmt.ParseNumber(value); !ok {
				errs[field] = "Area must be a number"
				continue
			}
		}
		if field == domain.FieldPropertiesType && value == "" {
			continue
		}
		changes[field] = value
	}
	if len(errs) > 0 {
		return p, errs
	}

	editor.ApplyPropertyChanges(&p, changes)
	if len(valuationChanges) > 0 {
		var v domain.Valuation
		editor.ApplyValuationChanges(&v, valuationChanges)
		p.Valuations = []domain.Valuation{v}
	}
	return p, nil
}

// trimDraftPrefix убирает "new_valuations.0." из ключей: в строке импорта одна оценка.
func trimDraftPrefix(errs domain.ValidationErrors) domain.ValidationErrors {
	if len(errs) == 0 {
		return errs
	}
	out := make(domain.ValidationErrors, len(errs))
	for k, v := range errs {
		out[strings.TrimPrefix(k, "new_valuations.0.")] = v
	}
	return out
}
