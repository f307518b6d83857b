package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"garimpeiro/internal/textutil"
)

// Columns describes where the key and status live in a ledger sheet.
type Columns struct {
	KeyHeader    string
	StatusHeader string
	KeyIndex     int
	StatusIndex  int
	Sheet        string
	CancelMarker string
}

// DefaultColumns returns the authority export layout.
func DefaultColumns() Columns {
	return Columns{
		KeyHeader:    "Chave de Acesso",
		StatusHeader: "Situação",
		KeyIndex:     DefaultKeyIndex,
		StatusIndex:  DefaultStatusIndex,
		CancelMarker: DefaultCancelMarker,
	}
}

// Load reads a ledger from an .xlsx or .csv file.
func Load(path string, cols Columns) (*Ledger, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path, cols.Sheet)
	case ".csv", ".txt":
		rows, err = readDelimited(path)
	default:
		return nil, fmt.Errorf("unsupported ledger format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	return FromRows(rows, cols)
}

// FromRows builds a ledger from tabular rows. A header row is consumed when
// both configured headers are found in it.
func FromRows(rows [][]string, cols Columns) (*Ledger, error) {
	l := New(cols.CancelMarker)
	keyIdx, statusIdx := cols.KeyIndex, cols.StatusIndex
	if len(rows) > 0 {
		if k, s, ok := resolveHeaders(rows[0], cols); ok {
			keyIdx, statusIdx = k, s
			rows = rows[1:]
		}
	}
	for _, row := range rows {
		if keyIdx >= len(row) || statusIdx >= len(row) {
			l.Dropped++
			continue
		}
		l.Set(row[keyIdx], row[statusIdx])
	}
	if l.Len() == 0 {
		return nil, ErrNoValidKeys
	}
	return l, nil
}

func resolveHeaders(header []string, cols Columns) (int, int, bool) {
	if strings.TrimSpace(cols.KeyHeader) == "" || strings.TrimSpace(cols.StatusHeader) == "" {
		return 0, 0, false
	}
	keyIdx, statusIdx := -1, -1
	for idx, cell := range header {
		switch {
		case keyIdx < 0 && textutil.EqualFold(cell, cols.KeyHeader):
			keyIdx = idx
		case statusIdx < 0 && textutil.EqualFold(cell, cols.StatusHeader):
			statusIdx = idx
		}
	}
	return keyIdx, statusIdx, keyIdx >= 0 && statusIdx >= 0
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func readDelimited(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// sniffDelimiter picks ';' when the first line has more semicolons than
// commas, matching spreadsheets exported with a Brazilian locale.
func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
