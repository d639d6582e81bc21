package schema

import (
	"fmt"
	"strings"
)

// ValidationError reports every required column absent from a sheet.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation: missing columns: %s", strings.Join(e.Missing, ", "))
}

// ValidateHeaders verifies that every required column is among the observed
// headers. Both sides are normalized before comparison; extra observed
// columns and ordering are ignored. Missing columns are reported in required
// order, each once.
func ValidateHeaders(observed, required []string) error {
	have := make(map[string]struct{}, len(observed))
	for _, h := range observed {
		have[NormalizeHeader(h)] = struct{}{}
	}
	var missing []string
	seen := make(map[string]struct{}, len(required))
	for _, r := range required {
		n := NormalizeHeader(r)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := have[n]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
