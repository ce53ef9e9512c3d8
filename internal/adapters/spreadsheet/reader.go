package spreadsheet_adapter

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"appraisal-portal/internal/core/domain"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader читает CSV и XLSX в domain.Sheet.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// Read выбирает формат по расширению файла. Пустые строки в конце отбрасываются.
func (r *Reader) Read(fileName string, src io.Reader) (*domain.Sheet, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		records, err = readCSV(src)
	case ".xlsx":
		records, err = readXLSX(src)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filepath.Ext(fileName))
	}
	if err != nil {
		return nil, err
	}

	records = trimTrailingBlank(records)
	if len(records) == 0 {
		return nil, domain.ErrEmptyImport
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	return &domain.Sheet{Header: header, Rows: records[1:]}, nil
}

func readCSV(src io.Reader) ([][]string, error) {
	br := bufio.NewReader(src)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(bom, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	delimiter, err := sniffDelimiter(br)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return records, nil
}

// sniffDelimiter смотрит на первую строку: Excel с региональными настройками сохраняет CSV через ';'.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	peek, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("failed to read csv: %w", err)
	}
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	if bytes.Count(peek, []byte{';'}) > bytes.Count(peek, []byte{','}) {
		return ';', nil
	}
	return ',', nil
}

func readXLSX(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.ErrEmptyImport
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func trimTrailingBlank(records [][]string) [][]string {
	end := len(records)
	for end > 0 && isBlank(records[end-1]) {
		end--
	}
	return records[:end]
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
