// Package pipeline runs one import job end to end:
//
//	validate → clean → connect → stage → invoke → commit
//
// The sheet is checked and coerced before any connection is opened. Staging
// and the procedure call share one session and one transaction, so a failed
// call discards the staged rows with it.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ratebah20/HR-plateform-learning/internal/logging"
	"github.com/Ratebah20/HR-plateform-learning/internal/metrics"
	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
	"github.com/Ratebah20/HR-plateform-learning/internal/storage"
	"github.com/Ratebah20/HR-plateform-learning/internal/transformer"
)

// State is a point in the run lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateValidated State = "validated"
	StateCleaned   State = "cleaned"
	StateConnected State = "connected"
	StateStaged    State = "staged"
	StateInvoked   State = "invoked"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

// ConnectFunc opens the session a run stages into.
type ConnectFunc func(ctx context.Context) (*storage.Session, error)

// Pipeline binds a job to its database.
type Pipeline struct {
	Spec    schema.Spec
	Connect ConnectFunc

	// CreateStaging declares the temporary table before loading it. Leave
	// it off when the database provides the table itself.
	CreateStaging bool
	// FetchResults returns the procedure's result set in Result.Output.
	FetchResults bool
	// OnReject receives each cell that could not be read. Optional.
	OnReject transformer.RejectFunc
	// Timeout bounds everything from connect to commit. Zero means no
	// deadline beyond ctx.
	Timeout time.Duration
}

// Result describes a finished run, successful or not.
type Result struct {
	RunID    string
	Job      string
	State    State // StateDone or StateFailed
	Step     State // last state reached before a failure
	Read     int   // data rows read from the sheet
	Staged   int64
	Stats    transformer.Stats
	Output   *storage.ResultSet
	Duration time.Duration
}

// StepError reports the step a run failed in. The underlying error is one of
// *schema.ValidationError, *storage.ConnectionError, *storage.StagingLoadError
// or *storage.ProcedureError.
type StepError struct {
	Job  string
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %s: %v", e.Job, e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// Run imports rs and calls the job's procedure with param as its single
// positional argument.
func (p Pipeline) Run(ctx context.Context, rs schema.RecordSet, param any) (Result, error) {
	res := Result{RunID: uuid.NewString(), Job: p.Spec.Name, State: StateIdle, Step: StateIdle, Read: rs.Len()}
	start := time.Now()
	job := p.Spec.Name

	logging.Infof("pipeline: %s run %s started (%d rows, %s=%v)", job, res.RunID, res.Read, p.Spec.Param.Name, formatParam(param))

	finish := func(err error) (Result, error) {
		res.Duration = time.Since(start)
		if err != nil {
			res.State = StateFailed
			logging.Errorf("pipeline: %s run %s failed after %s: %v", job, res.RunID, res.Step, err)
		} else {
			res.State = StateDone
			logging.Infof("pipeline: %s run %s done in %s (%d staged)", job, res.RunID, res.Duration.Truncate(time.Millisecond), res.Staged)
		}
		metrics.RecordRun(job, string(res.State))
		return res, err
	}

	advance := func(name string, next State, t0 time.Time) {
		metrics.RecordStep(job, name, nil, time.Since(t0))
		logging.Debugf("pipeline: %s %s -> %s", job, res.Step, next)
		res.Step = next
	}
	step := func(name string, next State, fn func() error) error {
		t0 := time.Now()
		if err := fn(); err != nil {
			metrics.RecordStep(job, name, err, time.Since(t0))
			return &StepError{Job: job, Step: name, Err: err}
		}
		advance(name, next, t0)
		return nil
	}

	if err := step("validate", StateValidated, func() error { return p.Spec.Validate(rs) }); err != nil {
		return finish(err)
	}
	metrics.RecordRows(job, "read", int64(res.Read))

	var recs []schema.Record
	// Cleaning never fails; unreadable cells become NULL and are counted.
	t0 := time.Now()
	recs, res.Stats = transformer.Coerce{Fields: p.Spec.Fields, OnReject: p.OnReject}.Apply(rs.Rows)
	p.reportClean(res.Stats)
	advance("clean", StateCleaned, t0)

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	var sess *storage.Session
	if err := step("connect", StateConnected, func() error {
		var err error
		sess, err = p.Connect(ctx)
		return err
	}); err != nil {
		return finish(err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logging.Warnf("pipeline: %s close session: %v", job, err)
		}
	}()

	table := sess.Dialect().StagingTable(p.Spec.StagingTable)
	if err := step("stage", StateStaged, func() error {
		if p.CreateStaging {
			if err := storage.CreateStaging(ctx, sess, table, p.Spec.Fields); err != nil {
				return err
			}
		}
		n, err := storage.Stage(ctx, sess, table, p.Spec.Columns(), recs)
		res.Staged = n
		return err
	}); err != nil {
		return finish(err)
	}
	metrics.RecordRows(job, "staged", res.Staged)

	if err := step("invoke", StateInvoked, func() error {
		out, err := storage.Invoke(ctx, sess, storage.Call{
			Name:       p.Spec.Procedure,
			Positional: []any{param},
			Fetch:      p.FetchResults,
		})
		res.Output = out
		return err
	}); err != nil {
		return finish(err)
	}

	if err := step("commit", StateDone, sess.Commit); err != nil {
		return finish(err)
	}
	return finish(nil)
}

func (p Pipeline) reportClean(st transformer.Stats) {
	job := p.Spec.Name
	metrics.RecordRows(job, "parsed_rows", int64(st.ParsedRows))
	metrics.RecordRows(job, "null_cells", int64(st.TotalNullCells()))

	switch {
	case st.Rows == 0:
		logging.Warnf("pipeline: %s sheet has no data rows; the procedure runs on an empty staging table", job)
	case st.EmptyRows == st.Rows:
		logging.Warnf("pipeline: %s every row is empty after cleaning", job)
	}
	for _, f := range p.Spec.Fields {
		if n := st.NullCells[f.Name]; n > 0 {
			logging.Warnf("pipeline: %s %d %s value(s) in %q could not be read and were left empty", job, n, f.Kind, f.Header)
		}
	}
	logging.Infof("pipeline: %s cleaned %d rows (%d fully parsed)", job, st.Rows, st.ParsedRows)
}

func formatParam(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(schema.DateLayout)
	}
	return v
}
