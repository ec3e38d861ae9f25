package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/markdown"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoSheets is returned when a workbook contains no sheets.
	ErrNoSheets = errors.New("workbook has no sheets")

	// ErrNoUsableData is returned when no sheet yields a table.
	ErrNoUsableData = errors.New("workbook has no usable data")

	// ErrLegacyExcelFormat is returned for pre-2007 OLE2 .xls files.
	ErrLegacyExcelFormat = errors.New("legacy .xls format is not supported: convert the workbook to .xlsx")
)

// ole2Magic identifies OLE2 compound files, the container of legacy .xls.
var ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0}

// Sheet is one worksheet rendered as a Markdown table.
type Sheet struct {
	// Name is the worksheet name as stored in the workbook.
	Name string

	// Markdown is the sheet content as a pipe table.
	Markdown string
}

// ExcelOption configures workbook conversion.
type ExcelOption func(*excelConverter)

// WithSkipRows skips the first n rows of every sheet before header detection.
func WithSkipRows(n int) ExcelOption {
	return func(c *excelConverter) {
		if n > 0 {
			c.skipRows = n
		}
	}
}

// WithMinHeaderCells sets how many populated cells a row needs to be
// treated as the header row. The default is 2.
func WithMinHeaderCells(n int) ExcelOption {
	return func(c *excelConverter) {
		if n > 0 {
			c.minHeaderCells = n
		}
	}
}

// WithSheetFilter restricts conversion to the named sheets.
func WithSheetFilter(names ...string) ExcelOption {
	return func(c *excelConverter) {
		c.sheetFilter = make(map[string]bool, len(names))
		for _, name := range names {
			c.sheetFilter[name] = true
		}
	}
}

// excelConverter holds per-conversion settings.
type excelConverter struct {
	skipRows       int
	minHeaderCells int
	sheetFilter    map[string]bool
}

// Workbook converts every sheet of an in-memory .xlsx workbook into a
// Markdown table. Sheets appear in workbook order. A sheet that yields
// no table is skipped; the whole call fails only when no sheet converts.
func Workbook(data []byte, opts ...ExcelOption) ([]Sheet, error) {
	if bytes.HasPrefix(data, ole2Magic) {
		return nil, ErrLegacyExcelFormat
	}

	conv := &excelConverter{minHeaderCells: 2}
	for _, opt := range opts {
		opt(conv)
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	names := file.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}

	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		if conv.sheetFilter != nil && !conv.sheetFilter[name] {
			continue
		}
		rows, err := file.GetRows(name)
		if err != nil {
			continue
		}
		table, ok := conv.sheetTable(rows)
		if !ok {
			continue
		}
		sheets = append(sheets, Sheet{Name: name, Markdown: table})
	}
	if len(sheets) == 0 {
		return nil, ErrNoUsableData
	}
	return sheets, nil
}

// sheetTable renders one sheet's rows as a Markdown table. The header is
// the first row with at least minHeaderCells populated cells; empty header
// cells inherit the value to their left, mirroring merged-cell layouts.
// When no row qualifies, the first row is used as-is.
func (c *excelConverter) sheetTable(rows [][]string) (string, bool) {
	if c.skipRows > 0 {
		if c.skipRows >= len(rows) {
			return "", false
		}
		rows = rows[c.skipRows:]
	}
	if len(rows) == 0 {
		return "", false
	}

	// Cell rows come back ragged; pad to the widest row.
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return "", false
	}
	padded := make([][]string, len(rows))
	for i, row := range rows {
		padded[i] = padRow(row, width)
	}

	headerIdx := -1
	for i, row := range padded {
		if countCells(row) >= c.minHeaderCells {
			headerIdx = i
			break
		}
	}

	var header []string
	var body [][]string
	if headerIdx >= 0 {
		header = forwardFill(padded[headerIdx])
		body = padded[headerIdx+1:]
	} else {
		// Fallback: promote the first row to header without fill.
		if countCells(padded[0]) == 0 {
			return "", false
		}
		header = padded[0]
		body = padded[1:]

		// The fallback path requires data rows; a bare header is noise.
		if len(dropEmptyRows(body)) == 0 {
			return "", false
		}
	}

	body = dropEmptyRows(body)

	md := markdown.NewMarkdown(io.Discard)
	md.Table(markdown.TableSet{
		Header: header,
		Rows:   body,
	})
	return md.String(), true
}

// padRow extends row with empty cells up to width.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

// countCells returns the number of populated cells in a row.
func countCells(row []string) int {
	n := 0
	for _, cell := range row {
		if cell != "" {
			n++
		}
	}
	return n
}

// forwardFill replaces empty cells with the nearest populated cell to
// their left. Leading empty cells stay empty.
func forwardFill(row []string) []string {
	filled := make([]string, len(row))
	last := ""
	for i, cell := range row {
		if cell != "" {
			last = cell
		}
		filled[i] = last
	}
	return filled
}

// dropEmptyRows removes rows whose cells are all empty.
func dropEmptyRows(rows [][]string) [][]string {
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if countCells(row) > 0 {
			kept = append(kept, row)
		}
	}
	return kept
}
