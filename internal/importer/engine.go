package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/lbx/internal/models"
	"github.com/desertthunder/lbx/internal/services"
	"github.com/desertthunder/lbx/internal/shared"
	"golang.org/x/time/rate"
)

// State enumerates the engine's run states.
type State int

const (
	Idle State = iota
	Validating
	DryRunComplete
	Submitting
	Complete
	Interrupted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case DryRunComplete:
		return "dry_run_complete"
	case Submitting:
		return "submitting"
	case Complete:
		return "complete"
	case Interrupted:
		return "interrupted"
	default:
		return ""
	}
}

// AuditLog records confirmed batch submissions for later inspection.
//
// Implementations must be non-essential: the engine treats audit failures as
// log-worthy, never fatal, and resume decisions come from the JSON
// checkpoint alone.
type AuditLog interface {
	Record(submission *models.Submission) error
}

// previewSize is how many listens the dry-run report shows from each end of
// the file.
const previewSize = 5

// DryRunReport summarizes what a submit run would do, without any network or
// progress-file activity.
type DryRunReport struct {
	SourceFile string
	Total      int         // valid listens
	WouldFail  int         // rows that would be rejected
	RowErrors  []*RowError // every rejected row, in file order
	Earliest   time.Time
	Latest     time.Time
	BatchSize  int
	Batches    int
	First      []models.Listen // first listens in file order
	Last       []models.Listen // last listens in file order
	SHA256     string
}

// SubmitOpts contains per-run submission options.
type SubmitOpts struct {
	// ProgressPath overrides the default <source>.progress.json checkpoint.
	ProgressPath string
	// SkipInvalid drops rejected rows instead of failing the run. Off by
	// default: a gap-free import requires a clean file, so run dry-run first.
	SkipInvalid bool
}

// SubmitResult reports what a submit run accomplished. Confirmed is always
// the durably checkpointed count, including on failure, so the user knows
// resuming is safe.
type SubmitResult struct {
	JobID            string
	SourceFile       string
	Total            int
	SkippedRows      int // invalid rows dropped via SkipInvalid
	AlreadyConfirmed int // prefix confirmed by a previous run
	SubmittedNow     int
	Confirmed        int
	BatchesSubmitted int
	State            State
}

// BatchError describes a batch that failed after all retry attempts.
type BatchError struct {
	Batch     models.SubmissionBatch
	Confirmed int
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%v: batch %d (records %d-%d) failed with %d listens confirmed: %v",
		shared.ErrSubmission, e.Batch.Index+1, e.Batch.Start+1, e.Batch.End(), e.Confirmed, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// EngineOpts contains configuration options for creating an ImportEngine.
type EngineOpts struct {
	Parser    *Parser
	Store     *ProgressStore
	BatchSize int
	// RateLimit is submission requests per second; 0.5 means one request
	// every two seconds, which is what the remote API tolerates comfortably.
	RateLimit float64
	Backoff   BackoffPolicy
	Audit     AuditLog
}

// ImportEngine orchestrates parsing → batching → submission → checkpointing.
//
// One engine drives one run at a time; it is not safe for concurrent use.
// An ambiguous failure (request accepted remotely but the response lost) is
// treated as failed and the batch re-submitted on resume, so duplicates on
// the remote side are possible and accepted; gaps are not.
type ImportEngine struct {
	service   services.Service
	parser    *Parser
	store     *ProgressStore
	batchSize int
	limiter   *rate.Limiter
	backoff   BackoffPolicy
	audit     AuditLog
	state     State
}

// NewImportEngine creates a new ImportEngine submitting through the provided service.
func NewImportEngine(service services.Service, opts EngineOpts) *ImportEngine {
	if opts.Parser == nil {
		opts.Parser = NewParser(nil)
	}
	if opts.Store == nil {
		opts.Store = NewProgressStore()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 0.5
	}

	return &ImportEngine{
		service:   service,
		parser:    opts.Parser,
		store:     opts.Store,
		batchSize: opts.BatchSize,
		limiter:   rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		backoff:   opts.Backoff,
		audit:     opts.Audit,
		state:     Idle,
	}
}

// State returns the engine's current run state.
func (e *ImportEngine) State() State {
	return e.state
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// DryRun validates the entire input and reports what submission would do.
//
// Every rejected row is collected rather than stopping at the first; no
// network request is made and the progress file is never touched.
func (e *ImportEngine) DryRun(ctx context.Context, path string, progress chan<- ProgressUpdate) (*DryRunReport, error) {
	e.state = Validating

	e.sendProgress(progress, parseInputUpdate(path))
	result, err := e.parser.ParseFile(path)
	if err != nil {
		e.state = Interrupted
		return nil, err
	}
	e.sendProgress(progress, parsedUpdate(len(result.Listens), len(result.RowErrors)))

	report := &DryRunReport{
		SourceFile: path,
		Total:      len(result.Listens),
		WouldFail:  len(result.RowErrors),
		RowErrors:  result.RowErrors,
		BatchSize:  e.batchSize,
		Batches:    BatchCount(len(result.Listens), e.batchSize),
		SHA256:     result.SHA256,
	}

	for _, listen := range result.Listens {
		at := listen.Time()
		if report.Earliest.IsZero() || at.Before(report.Earliest) {
			report.Earliest = at
		}
		if report.Latest.IsZero() || at.After(report.Latest) {
			report.Latest = at
		}
	}

	report.First = result.Listens[:min(previewSize, len(result.Listens))]
	report.Last = result.Listens[max(0, len(result.Listens)-previewSize):]

	e.state = DryRunComplete
	return report, nil
}

// Submit performs the real import, resuming from any existing checkpoint.
//
// Batches go out strictly in file order, one at a time; after each confirmed
// batch the checkpoint is durably saved before the next one starts, so the
// checkpoint always covers a true prefix of fully submitted records. The
// first failed batch ends the run.
func (e *ImportEngine) Submit(ctx context.Context, path string, opts SubmitOpts, progress chan<- ProgressUpdate) (*SubmitResult, error) {
	e.state = Validating
	res := &SubmitResult{SourceFile: path}

	fail := func(err error) (*SubmitResult, error) {
		e.state = Interrupted
		res.State = Interrupted
		return res, err
	}

	e.sendProgress(progress, parseInputUpdate(path))
	parsed, err := e.parser.ParseFile(path)
	if err != nil {
		return fail(err)
	}

	if len(parsed.RowErrors) > 0 {
		if !opts.SkipInvalid {
			// A bad row would leave a silent gap in the import; the file has
			// to be clean (or explicitly skipped) before anything is sent.
			return fail(fmt.Errorf("input has %d invalid rows (run dry-run for the full report, or pass skip-invalid): first is %w",
				len(parsed.RowErrors), parsed.RowErrors[0]))
		}
		res.SkippedRows = len(parsed.RowErrors)
	}
	res.Total = len(parsed.Listens)

	if res.Total == 0 {
		return fail(fmt.Errorf("%w: no listens to submit in %s", shared.ErrInvalidInput, path))
	}

	progressPath := opts.ProgressPath
	if progressPath == "" {
		progressPath = DefaultProgressPath(path)
	}

	state, err := e.store.Load(progressPath)
	if err != nil {
		return fail(err)
	}
	if err := e.store.Check(state, parsed); err != nil {
		return fail(err)
	}

	if state.Fresh() {
		state.JobID = shared.GenerateID()
		state.SourceFile = filepath.Base(path)
		state.SourceSHA256 = parsed.SHA256
		state.TotalRecords = len(parsed.Listens)
	}
	res.JobID = state.JobID
	res.AlreadyConfirmed = state.SubmittedCount
	res.Confirmed = state.SubmittedCount

	if state.SubmittedCount > 0 {
		e.sendProgress(progress, resumeUpdate(state.SubmittedCount, state.TotalRecords))
	}

	if state.SubmittedCount >= len(parsed.Listens) {
		// Nothing left: a completed import re-run is a successful no-op.
		e.state = Complete
		res.State = Complete
		e.sendProgress(progress, importDoneUpdate(state.SubmittedCount))
		return res, nil
	}

	// Record the job identity before the first request so an interrupt
	// between submission and save still has a checkpoint to resume against.
	if err := e.store.Save(progressPath, state); err != nil {
		return fail(err)
	}

	e.state = Submitting
	remaining := parsed.Listens[state.SubmittedCount:]
	batches := Batches(remaining, e.batchSize, state.SubmittedCount)

	for i, batch := range batches {
		if err := e.limiter.Wait(ctx); err != nil {
			return fail(&BatchError{Batch: batch, Confirmed: state.SubmittedCount, Err: err})
		}

		e.sendProgress(progress, submitBatchUpdate(batch, i+1, len(batches)))

		policy := e.backoff
		policy.Notify = func(attempt int, wait time.Duration) {
			e.sendProgress(progress, retryWaitUpdate(i+1, len(batches), attempt, wait))
		}
		err := Retry(ctx, policy, func() error {
			return e.service.SubmitListens(ctx, batch.Listens)
		})
		if err != nil {
			return fail(&BatchError{Batch: batch, Confirmed: state.SubmittedCount, Err: err})
		}

		state.SubmittedCount = batch.End()
		if err := e.store.Save(progressPath, state); err != nil {
			// The batch went out but the checkpoint didn't stick; resuming
			// would re-send it, so surface the failure now.
			return fail(&BatchError{Batch: batch, Confirmed: res.Confirmed, Err: err})
		}

		res.Confirmed = state.SubmittedCount
		res.SubmittedNow += len(batch.Listens)
		res.BatchesSubmitted++

		if e.audit != nil {
			// Audit rows are observational; a failed insert never stops the run.
			_ = e.audit.Record(models.NewSubmission(state.JobID, state.SourceFile, batch, time.Now().UTC()))
		}

		e.sendProgress(progress, batchConfirmedUpdate(i+1, len(batches), state.SubmittedCount, state.TotalRecords))
	}

	e.state = Complete
	res.State = Complete
	e.sendProgress(progress, importDoneUpdate(state.SubmittedCount))
	return res, nil
}
