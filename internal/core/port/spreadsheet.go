package port

import (
	"io"

	"appraisal-portal/internal/core/domain"
)

type SpreadsheetReaderPort interface {
	// Read выбирает формат по расширению fileName (.csv, .xlsx).
	Read(fileName string, r io.Reader) (*domain.Sheet, error)
}

type SpreadsheetWriterPort interface {
	WriteCSV(w io.Writer, sheet domain.Sheet) error
}
