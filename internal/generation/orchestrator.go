package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultPollInterval      = 5 * time.Second
	defaultMaxTransientPolls = 6
	defaultPollTimeout       = 30 * time.Minute
)

var (
	// ErrBusy rejects a request while a job is already in flight. The
	// in-flight job is not touched.
	ErrBusy = errors.New("a generation job is already in flight")

	// ErrAuthPending is returned when the gate denied access; the user must
	// re-request after completing the authorization flow.
	ErrAuthPending = errors.New("authorization pending, re-run after granting access")

	// ErrAbandoned is returned to a caller whose job was discarded by Reset
	// before reaching a terminal state.
	ErrAbandoned = errors.New("generation abandoned")
)

// Orchestrator sequences a single generation job: authorization check,
// submission, polling, terminal result. It owns the one process-wide
// status cell; concurrent requests cannot both start a job.
type Orchestrator struct {
	gate              AuthGate
	jobs              MediaJobClient
	pollInterval      time.Duration
	maxTransientPolls int
	pollTimeout       time.Duration

	mu      sync.Mutex
	seq     uint64
	status  Status
	result  *Result
	lastErr *Error
}

type Options struct {
	Gate AuthGate
	Jobs MediaJobClient

	// PollInterval is the fixed delay between poll calls (default 5s).
	PollInterval time.Duration
	// MaxTransientPolls caps consecutive transport-level poll failures
	// before the job fails with a timeout classification.
	MaxTransientPolls int
	// PollTimeout is the overall polling deadline.
	PollTimeout time.Duration
}

func New(opts Options) *Orchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.MaxTransientPolls <= 0 {
		opts.MaxTransientPolls = defaultMaxTransientPolls
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}

	return &Orchestrator{
		gate:              opts.Gate,
		jobs:              opts.Jobs,
		pollInterval:      opts.PollInterval,
		maxTransientPolls: opts.MaxTransientPolls,
		pollTimeout:       opts.PollTimeout,
		status:            StatusIdle,
	}
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Result returns the output of the most recently completed job, nil
// otherwise.
func (o *Orchestrator) Result() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// LastError returns the terminal failure of the most recent job, nil when
// it succeeded or none ran.
func (o *Orchestrator) LastError() *Error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Reset discards the current job's result or error and returns to idle.
// An outstanding remote job is abandoned, not cancelled.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.status = StatusIdle
	o.result = nil
	o.lastErr = nil
}

// Request runs one generation job to a terminal state and blocks the
// caller until then. It returns ErrBusy while another job is in flight,
// and ErrAuthPending when access has not been granted yet.
func (o *Orchestrator) Request(ctx context.Context, cfg JobConfig) (*Result, error) {
	seq, err := o.begin()
	if err != nil {
		return nil, err
	}

	granted, err := o.gate.Check(ctx)
	if err != nil {
		// Lenient on purpose: an errored check is not a denial. A real
		// permission problem still surfaces at submit time.
		slog.Warn("auth check failed, assuming access granted", "error", err)
		granted = true
	}
	if !granted {
		if !o.transition(seq, StatusIdle) {
			return nil, ErrAbandoned
		}
		go o.gate.PromptInteractive(context.WithoutCancel(ctx))
		return nil, ErrAuthPending
	}

	if !o.transition(seq, StatusGenerating) {
		return nil, ErrAbandoned
	}

	handle, err := o.jobs.Submit(ctx, cfg)
	if err != nil {
		return nil, o.fail(seq, classify(err, ClassSubmissionFailed))
	}
	slog.Info("generation job submitted", "job", handle.ID(), "kind", cfg.Kind)

	if !o.transition(seq, StatusPolling) {
		return nil, ErrAbandoned
	}

	return o.pollUntilTerminal(ctx, seq, handle)
}

func (o *Orchestrator) pollUntilTerminal(ctx context.Context, seq uint64, handle JobHandle) (*Result, error) {
	deadline := time.Now().Add(o.pollTimeout)
	transient := 0

	for {
		if o.stale(seq) {
			return nil, ErrAbandoned
		}
		if time.Now().After(deadline) {
			return nil, o.fail(seq, &Error{
				Class:   ClassTimeout,
				Message: fmt.Sprintf("job %s did not finish within %s", handle.ID(), o.pollTimeout),
			})
		}

		res, err := o.jobs.Poll(ctx, handle)
		switch {
		case err != nil:
			// Transport hiccup: retried silently at the next interval, but
			// not forever.
			transient++
			slog.Debug("transient poll failure", "job", handle.ID(), "attempt", transient, "error", err)
			if transient >= o.maxTransientPolls {
				return nil, o.fail(seq, &Error{
					Class:   ClassTimeout,
					Message: fmt.Sprintf("job %s unreachable after %d poll attempts: %v", handle.ID(), transient, err),
				})
			}
		case res.Error != nil:
			terminal := res.Error
			if terminal.Class == "" {
				terminal = &Error{Class: ClassPollingFailed, Message: terminal.Message}
			}
			return nil, o.fail(seq, terminal)
		case res.Done:
			result := &Result{URI: res.ResultURI, Payload: res.Payload, MIMEType: res.MIMEType}
			if !o.complete(seq, result) {
				return nil, ErrAbandoned
			}
			slog.Info("generation job completed", "job", handle.ID(), "uri", result.URI)
			return result, nil
		default:
			transient = 0
		}

		select {
		case <-ctx.Done():
			// Caller-level abandonment; the remote job keeps running.
			o.transition(seq, StatusIdle)
			return nil, ctx.Err()
		case <-time.After(o.pollInterval):
		}
	}
}

// begin claims the status cell for a new attempt. Only idle, completed and
// error are valid starting points; a fresh request discards the previous
// outcome.
func (o *Orchestrator) begin() (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.status {
	case StatusCheckingAuth, StatusGenerating, StatusPolling:
		return 0, ErrBusy
	}

	o.seq++
	o.status = StatusCheckingAuth
	o.result = nil
	o.lastErr = nil
	return o.seq, nil
}

// transition moves to the next state unless the attempt was superseded by
// Reset or a newer request.
func (o *Orchestrator) transition(seq uint64, status Status) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seq != seq {
		return false
	}
	o.status = status
	return true
}

func (o *Orchestrator) complete(seq uint64, result *Result) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seq != seq {
		return false
	}
	o.status = StatusCompleted
	o.result = result
	return true
}

func (o *Orchestrator) fail(seq uint64, terminal *Error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seq != seq {
		return ErrAbandoned
	}
	o.status = StatusError
	o.lastErr = terminal
	return terminal
}

func (o *Orchestrator) stale(seq uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.seq != seq
}

// classify wraps a vendor error, keeping an explicit classification when
// the vendor already assigned one.
func classify(err error, fallback ErrorClass) *Error {
	var terminal *Error
	if errors.As(err, &terminal) {
		return terminal
	}
	return &Error{Class: fallback, Message: err.Error()}
}
