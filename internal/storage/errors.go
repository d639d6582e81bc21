package storage

import (
	"errors"
	"fmt"
)

// ErrRowCountMismatch is wrapped by StagingLoadError when the server accepted
// the load but reported a different number of rows.
var ErrRowCountMismatch = errors.New("staged row count mismatch")

// ConnectionError reports an incomplete descriptor, an unreachable server or
// an authentication failure.
type ConnectionError struct {
	Target string // descriptor rendered without secrets
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// StagingLoadError reports a rejected or short bulk load.
type StagingLoadError struct {
	Table         string
	Expected      int
	Loaded        int64
	ServerMessage string
	Err           error
}

func (e *StagingLoadError) Error() string {
	if errors.Is(e.Err, ErrRowCountMismatch) {
		return fmt.Sprintf("stage %s: loaded %d of %d rows", e.Table, e.Loaded, e.Expected)
	}
	if e.ServerMessage != "" {
		return fmt.Sprintf("stage %s: %s", e.Table, e.ServerMessage)
	}
	return fmt.Sprintf("stage %s: %v", e.Table, e.Err)
}

func (e *StagingLoadError) Unwrap() error { return e.Err }

// ProcedureError carries the server's message verbatim.
type ProcedureError struct {
	Procedure     string
	ServerMessage string
	Err           error
}

func (e *ProcedureError) Error() string {
	if e.ServerMessage != "" {
		return fmt.Sprintf("procedure %s: %s", e.Procedure, e.ServerMessage)
	}
	return fmt.Sprintf("procedure %s: %v", e.Procedure, e.Err)
}

func (e *ProcedureError) Unwrap() error { return e.Err }
