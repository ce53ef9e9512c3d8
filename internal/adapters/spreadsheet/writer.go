package spreadsheet_adapter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"appraisal-portal/internal/core/domain"
)

// Writer пишет CSV по RFC 4180. Значения, которые табличный редактор принял бы за формулу,
// получают префикс-апостроф.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteCSV(dst io.Writer, sheet domain.Sheet) error {
	cw := csv.NewWriter(dst)

	if err := cw.Write(sanitizeRecord(sheet.Header)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i, row := range sheet.Rows {
		if err := cw.Write(sanitizeRecord(row)); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func sanitizeRecord(record []string) []string {
	out := make([]string, len(record))
	for i, v := range record {
		out[i] = EscapeFormula(v)
	}
	return out
}

// formulaPrefixes - символы, с которых табличные редакторы начинают формулу
const formulaPrefixes = "=+-@\t\r"

// EscapeFormula защищает от CSV-инъекции: '=', '+', '-', '@', табуляция или CR в начале значения.
// Обычные числа ("-6.2", "-6,2") остаются как есть.
func EscapeFormula(v string) string {
	if v == "" || !strings.ContainsRune(formulaPrefixes, rune(v[0])) {
		return v
	}
	if _, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64); err == nil {
		return v
	}
	return "'" + v
}
