package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParamKind is the type of a job's business parameter.
type ParamKind string

const (
	ParamYear ParamKind = "year"
	ParamDate ParamKind = "date"
)

// DateLayout is the command-line form of date parameters.
const DateLayout = "2006-01-02"

// Valid reports whether k is a known parameter kind.
func (k ParamKind) Valid() bool { return k == ParamYear || k == ParamDate }

// ParamSpec names the single scalar passed to a job's stored procedure.
type ParamSpec struct {
	Flag     string // command-line flag, without dashes
	Name     string // procedure parameter name, without @
	Kind     ParamKind
	Required bool // year jobs require it; date jobs default to today
}

// Parse turns the raw command-line value into the procedure argument: an int
// for years and a date-only time.Time (UTC) for dates. An empty date
// defaults to the calendar day of now.
func (p ParamSpec) Parse(raw string, now time.Time) (any, error) {
	raw = strings.TrimSpace(raw)
	switch p.Kind {
	case ParamYear:
		if raw == "" {
			return nil, fmt.Errorf("--%s is required (YYYY)", p.Flag)
		}
		y, err := strconv.Atoi(raw)
		if err != nil || len(raw) != 4 || y < 1900 {
			return nil, fmt.Errorf("invalid year %q: want YYYY", raw)
		}
		return y, nil
	case ParamDate:
		if raw == "" {
			if p.Required {
				return nil, fmt.Errorf("--%s is required (YYYY-MM-DD)", p.Flag)
			}
			y, m, d := now.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", raw)
		}
		return t, nil
	}
	return nil, fmt.Errorf("unknown parameter kind %q", p.Kind)
}
