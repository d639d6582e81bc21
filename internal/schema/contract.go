// Package schema holds the declarative description of an import job (the
// column contract, the canonical field names and their coercion kinds, the
// staging table and the stored procedure) together with the tabular shapes
// that flow through the pipeline.
package schema

import (
	"fmt"
	"strings"
)

// Kind selects the coercion rule applied to a field.
type Kind string

const (
	KindText       Kind = "text"
	KindNumeric    Kind = "numeric"
	KindDate       Kind = "date"
	KindBoolPrefix Kind = "bool_prefix"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindNumeric, KindDate, KindBoolPrefix:
		return true
	}
	return false
}

// Field maps one source header to one canonical staging column.
type Field struct {
	Header string // header as it appears in the workbook (after trimming)
	Name   string // staging column name
	Kind   Kind
}

// Spec is the immutable description of one import job. Field order is the
// staging insertion order; the Field headers form the required column set.
type Spec struct {
	Name         string
	Description  string
	Fields       []Field
	StagingTable string // logical name; the dialect adds any decoration (#)
	Procedure    string
	Param        ParamSpec
}

// RequiredColumns returns the source headers the workbook must carry.
func (s Spec) RequiredColumns() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Header
	}
	return out
}

// Columns returns the canonical staging columns in insertion order.
func (s Spec) Columns() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Mapping returns header -> canonical field name.
func (s Spec) Mapping() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Header] = f.Name
	}
	return out
}

// Validate checks rs against the job's required column set.
func (s Spec) Validate(rs RecordSet) error {
	return ValidateHeaders(rs.Headers, s.RequiredColumns())
}

// Check reports structural mistakes in the Spec itself: empty names, unknown
// kinds and duplicate headers or columns. It is meant for tests and for the
// job registry, not for per-run validation.
func (s Spec) Check() error {
	var problems []string
	if strings.TrimSpace(s.Name) == "" {
		problems = append(problems, "name is empty")
	}
	if strings.TrimSpace(s.StagingTable) == "" {
		problems = append(problems, "staging table is empty")
	}
	if strings.TrimSpace(s.Procedure) == "" {
		problems = append(problems, "procedure is empty")
	}
	if len(s.Fields) == 0 {
		problems = append(problems, "no fields")
	}
	if !s.Param.Kind.Valid() {
		problems = append(problems, fmt.Sprintf("unknown param kind %q", s.Param.Kind))
	}
	headers := make(map[string]struct{}, len(s.Fields))
	names := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		h := NormalizeHeader(f.Header)
		if h == "" || f.Name == "" {
			problems = append(problems, fmt.Sprintf("fields[%d]: empty header or name", i))
			continue
		}
		if !f.Kind.Valid() {
			problems = append(problems, fmt.Sprintf("fields[%d] %s: unknown kind %q", i, f.Name, f.Kind))
		}
		if _, dup := headers[h]; dup {
			problems = append(problems, fmt.Sprintf("fields[%d]: duplicate header %q", i, f.Header))
		}
		if _, dup := names[f.Name]; dup {
			problems = append(problems, fmt.Sprintf("fields[%d]: duplicate column %q", i, f.Name))
		}
		headers[h] = struct{}{}
		names[f.Name] = struct{}{}
	}
	if len(problems) > 0 {
		return fmt.Errorf("job %q: %s", s.Name, strings.Join(problems, "; "))
	}
	return nil
}
