package schema

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Row is one raw worksheet row keyed by normalized header. A missing key is
// an absent cell; an empty string is an empty cell.
type Row map[string]string

// Get returns the raw cell and whether it was present.
func (r Row) Get(header string) (string, bool) {
	v, ok := r[header]
	return v, ok
}

// RecordSet is a sheet as read from the source: the normalized header row
// and every data row.
type RecordSet struct {
	Headers []string
	Rows    []Row
}

// Len returns the number of data rows.
func (rs RecordSet) Len() int { return len(rs.Rows) }

// Record is one coerced row keyed by canonical field name. Values are
// string, decimal.Decimal, bool, time.Time or nil.
type Record map[string]any

// NormalizeHeader trims surrounding whitespace and folds the header into
// Unicode NFC so accented names compare equal whatever composition the
// workbook used.
func NormalizeHeader(h string) string {
	return norm.NFC.String(strings.TrimSpace(h))
}
