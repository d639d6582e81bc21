// Package transformer converts raw worksheet rows into typed records.
//
// Coercion is fail-soft at the cell level: a value that cannot be parsed
// becomes nil and is counted, never raised. Only sheet-level problems (missing
// columns) are errors, and those are caught earlier by schema validation.
package transformer

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

// affirmativePrefix is the leading letter of "oui" / "obligatoire".
const affirmativePrefix = "o"

// Stats summarizes one coercion pass. It is diagnostic only.
type Stats struct {
	Rows       int            // rows coerced
	ParsedRows int            // rows where every non-empty typed cell parsed
	NullCells  map[string]int // field -> non-empty cells that degraded to nil
	EmptyRows  int            // rows whose record is entirely nil/false
}

// TotalNullCells sums NullCells.
func (s Stats) TotalNullCells() int {
	n := 0
	for _, c := range s.NullCells {
		n += c
	}
	return n
}

// RejectFunc receives every non-empty cell that could not be read. row is
// the 1-based data row.
type RejectFunc func(row int, f schema.Field, raw string)

// Coerce applies a Spec's per-field kinds to raw rows.
type Coerce struct {
	Fields   []schema.Field
	OnReject RejectFunc // optional
}

// Apply returns one Record per input row, in order. Every field of the Spec
// is present in every Record.
func (c Coerce) Apply(rows []schema.Row) ([]schema.Record, Stats) {
	st := Stats{Rows: len(rows), NullCells: map[string]int{}}
	out := make([]schema.Record, 0, len(rows))

	for i, row := range rows {
		rec := make(schema.Record, len(c.Fields))
		clean := true
		empty := true
		for _, f := range c.Fields {
			raw, present := row.Get(schema.NormalizeHeader(f.Header))
			v, ok := CoerceField(f.Kind, raw, present)
			if !ok {
				clean = false
				st.NullCells[f.Name]++
				if c.OnReject != nil {
					c.OnReject(i+1, f, raw)
				}
			}
			if v != nil && v != false {
				empty = false
			}
			rec[f.Name] = v
		}
		if clean {
			st.ParsedRows++
		}
		if empty {
			st.EmptyRows++
		}
		out = append(out, rec)
	}
	return out, st
}

// CoerceField converts one cell. ok is false only when a non-empty cell
// failed to parse and degraded to nil; empty or absent cells are not
// failures.
func CoerceField(kind schema.Kind, raw string, present bool) (v any, ok bool) {
	switch kind {
	case schema.KindNumeric:
		return coerceNumeric(raw, present)
	case schema.KindDate:
		return coerceDate(raw, present)
	case schema.KindBoolPrefix:
		return coerceBoolPrefix(raw, present), true
	default:
		if !present || raw == "" {
			return nil, true
		}
		return raw, true
	}
}

func coerceNumeric(raw string, present bool) (any, bool) {
	s := strings.TrimSpace(raw)
	if !present || s == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, false
	}
	return d, true
}

func coerceDate(raw string, present bool) (any, bool) {
	s := strings.TrimSpace(raw)
	if !present || s == "" {
		return nil, true
	}
	t, err := dateparse.ParseIn(s, time.UTC,
		dateparse.PreferMonthFirst(true),
		dateparse.RetryAmbiguousDateWithSwap(true),
	)
	if err != nil {
		return nil, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func coerceBoolPrefix(raw string, present bool) bool {
	if !present {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), affirmativePrefix)
}
