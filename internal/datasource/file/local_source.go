// Package file implements a local filesystem-backed workbook source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"

	"github.com/Ratebah20/HR-plateform-learning/internal/datasource"
)

// Local opens a workbook from the local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Name returns the bound path.
func (l *Local) Name() string { return l.path }

// Open returns the file for reading. A context that is already done is
// reported without touching the filesystem. Filesystem errors wrap the
// underlying error so errors.Is(err, os.ErrNotExist) still works.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", l.path, err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: is a directory", l.path)
	}
	return f, nil
}

// Fingerprint returns the xxh3 hash of the file's content as 16 hex digits,
// used to correlate a run with the exact workbook it imported.
func Fingerprint(ctx context.Context, src datasource.Source) (string, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, rc); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
