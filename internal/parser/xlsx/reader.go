// Package xlsx reads one worksheet of an .xlsx workbook into a
// schema.RecordSet. Every cell is returned as its formatted text, except
// date-formatted cells which always read as YYYY-MM-DD; typing is left to the
// transformer.
package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

// isoDate renders the workbook's short date format as ISO so dates survive
// the text round trip unambiguously.
const isoDate = "yyyy-mm-dd"

// builtinDateFmts are the built-in number format ids that display a date.
var builtinDateFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true,
	34: true, 35: true, 36: true, 50: true, 51: true,
	52: true, 53: true, 54: true, 57: true, 58: true,
}

// Parser reads a worksheet. The zero value reads the first sheet.
type Parser struct {
	Sheet string
}

// Parse reads the header row and every data row of the selected sheet.
//
// Headers are normalized (trimmed, NFC). Rows with no non-blank cell are
// skipped. Cells beyond a row's last written cell are absent from its Row;
// columns with an empty header are ignored, and for duplicated headers the
// first column wins.
func (p Parser) Parse(r io.Reader) (schema.RecordSet, error) {
	f, err := excelize.OpenReader(r, excelize.Options{ShortDatePattern: isoDate})
	if err != nil {
		return schema.RecordSet{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.Sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return schema.RecordSet{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = list[0]
	}
	grid, err := f.GetRows(sheet)
	if err != nil {
		return schema.RecordSet{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if err := isoDates(f, sheet, grid); err != nil {
		return schema.RecordSet{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromGrid(grid), nil
}

// isoDates rewrites every data cell whose number format displays a date as
// YYYY-MM-DD, whatever the display pattern. A dd/mm/yyyy cell would
// otherwise reach the coercer as ambiguous text.
func isoDates(f *excelize.File, sheet string, grid [][]string) error {
	if len(grid) < 2 {
		return nil
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	props, err := f.GetWorkbookProps()
	if err != nil {
		return err
	}
	date1904 := props.Date1904 != nil && *props.Date1904
	dateStyle := make(map[int]bool)
	for r := 1; r < len(grid) && r < len(raw); r++ {
		for c, text := range grid[r] {
			if strings.TrimSpace(text) == "" || c >= len(raw[r]) {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			idx, err := f.GetCellStyle(sheet, name)
			if err != nil {
				return err
			}
			isDate, seen := dateStyle[idx]
			if !seen {
				if isDate, err = styleIsDate(f, idx); err != nil {
					return err
				}
				dateStyle[idx] = isDate
			}
			if !isDate {
				continue
			}
			if iso, ok := serialToISO(raw[r][c], date1904); ok {
				grid[r][c] = iso
			}
		}
	}
	return nil
}

func styleIsDate(f *excelize.File, idx int) (bool, error) {
	if idx == 0 {
		return false, nil
	}
	st, err := f.GetStyle(idx)
	if err != nil {
		return false, err
	}
	if st.CustomNumFmt != nil {
		return dateFormatCode(*st.CustomNumFmt), nil
	}
	return builtinDateFmts[st.NumFmt], nil
}

// dateFormatCode reports whether a custom format code has a day or year
// token once quoted literals, escapes and bracketed sections are dropped.
func dateFormatCode(code string) bool {
	var quoted, bracket, escaped bool
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = r != '"'
		case bracket:
			bracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = true
		case r == '[':
			bracket = true
		case r == 'd' || r == 'y':
			return true
		}
	}
	return false
}

// serialToISO converts a raw cell value to YYYY-MM-DD. Numeric serials go
// through the workbook's date system; cells stored as ISO text keep their
// date part.
func serialToISO(raw string, date1904 bool) (string, bool) {
	s := strings.TrimSpace(raw)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return "", false
		}
		return t.Format("2006-01-02"), true
	}
	if len(s) >= 10 {
		if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return s[:10], true
		}
	}
	return "", false
}

func fromGrid(grid [][]string) schema.RecordSet {
	var rs schema.RecordSet
	if len(grid) == 0 {
		return rs
	}

	rs.Headers = make([]string, len(grid[0]))
	index := make(map[string]int, len(grid[0]))
	for i, h := range grid[0] {
		n := schema.NormalizeHeader(h)
		rs.Headers[i] = n
		if _, dup := index[n]; n != "" && !dup {
			index[n] = i
		}
	}

	for _, cells := range grid[1:] {
		if blank(cells) {
			continue
		}
		row := make(schema.Row, len(index))
		for h, i := range index {
			if i < len(cells) {
				row[h] = cells[i]
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
