// Package datasource abstracts where an import workbook comes from.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw bytes of one workbook.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source in logs, e.g. the file path.
	Name() string
}
