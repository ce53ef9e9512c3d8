package spreadsheet_adapter

import (
	"bytes"
	"strings"
	"testing"

	"appraisal-portal/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	t.Run("comma with bom and quotes", func(t *testing.T) {
		src := "\xEF\xBB\xBFDebitur, Object Type ,Total Value\n\"PT Maju, Tbk\",ruko,\"Rp 1.500.000\"\n\n"
		sheet, err := NewReader().Read("aset.CSV", strings.NewReader(src))
		require.NoError(t, err)
		assert.Equal(t, []string{"Debitur", "Object Type", "Total Value"}, sheet.Header)
		require.Len(t, sheet.Rows, 1)
		assert.Equal(t, "PT Maju, Tbk", sheet.Rows[0][0])
	})

	t.Run("semicolon", func(t *testing.T) {
		src := "debitur;luas_tanah\nPT A;120,5\nPT B;80\n"
		sheet, err := NewReader().Read("data.csv", strings.NewReader(src))
		require.NoError(t, err)
		require.Len(t, sheet.Rows, 2)
		assert.Equal(t, []string{"PT A", "120,5"}, sheet.Rows[0])
	})

	t.Run("ragged rows", func(t *testing.T) {
		sheet, err := NewReader().Read("a.csv", strings.NewReader("a,b,c\n1\n1,2,3,4\n"))
		require.NoError(t, err)
		assert.Len(t, sheet.Rows[0], 1)
		assert.Len(t, sheet.Rows[1], 4)
	})

	t.Run("only blank lines", func(t *testing.T) {
		_, err := NewReader().Read("a.csv", strings.NewReader(",,\n , \n"))
		assert.ErrorIs(t, err, domain.ErrEmptyImport)
	})
}

func TestReadUnsupportedFormat(t *testing.T) {
	_, err := NewReader().Read("report.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheetName, "A1", &[]interface{}{"Debitur", "Object Type", "Total Value"}))
	require.NoError(t, f.SetSheetRow(sheetName, "A2", &[]interface{}{"PT Maju", "ruko", "Rp 2.000"}))
	require.NoError(t, f.SetSheetRow(sheetName, "A3", &[]interface{}{"PT Jaya", "gudang"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	sheet, err := NewReader().Read("import.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Debitur", "Object Type", "Total Value"}, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Rp 2.000", sheet.Rows[0][2])
	assert.Equal(t, []string{"PT Jaya", "gudang"}, sheet.Rows[1])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter().WriteCSV(&buf, domain.Sheet{
		Header: []string{"debitur", "address", "latitude", "note"},
		Rows: [][]string{
			{"PT \"Maju\"", "Jl. A, No. 1", "-6.2", "=HYPERLINK(\"x\")"},
			{"@evil", "line1\nline2", "-6,2", "+62 812"},
		},
	})
	require.NoError(t, err)

	want := "debitur,address,latitude,note\n" +
		"\"PT \"\"Maju\"\"\",\"Jl. A, No. 1\",-6.2,\"'=HYPERLINK(\"\"x\"\")\"\n" +
		"'@evil,\"line1\nline2\",\"-6,2\",'+62 812\n"
	assert.Equal(t, want, buf.String())
}

func TestEscapeFormula(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"plain":    "plain",
		"=1+1":     "'=1+1",
		"-1+1":     "'-1+1",
		"-42":      "-42",
		"+7":       "+7",
		"@SUM(A1)": "'@SUM(A1)",
		"\t=1+1":   "'\t=1+1",
		"\rcmd":    "'\rcmd",
		"\t5":      "'\t5",
	}
	for in, want := range tests {
		assert.Equal(t, want, EscapeFormula(in), in)
	}
}
