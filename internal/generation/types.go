package generation

import (
	"context"

	"pitchreel/internal/chat"
)

// Status is the lifecycle of the single in-flight (or most recently
// finished) generation job.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusCheckingAuth Status = "checking-auth"
	StatusGenerating   Status = "generating"
	StatusPolling      Status = "polling"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// JobConfig describes one generation attempt. It is built fresh per attempt
// and never mutated after submission.
type JobConfig struct {
	Kind        MediaKind
	Prompt      string
	AspectRatio string
	Resolution  string
	Reference   *chat.Attachment
}

// JobHandle is an opaque reference to a submitted remote job.
type JobHandle interface {
	ID() string
}

type ErrorClass string

const (
	ClassAuthRequired     ErrorClass = "auth-required"
	ClassSubmissionFailed ErrorClass = "submission-failed"
	ClassPollingFailed    ErrorClass = "polling-failed"
	ClassTimeout          ErrorClass = "timeout"
)

// Error is a terminal job failure with a user-facing classification.
type Error struct {
	Class   ErrorClass
	Message string
}

func (e *Error) Error() string {
	return string(e.Class) + ": " + e.Message
}

// PollResult is one poll response. A non-nil Error with Done set marks a
// terminal failure; Done with an empty Error carries the output locator.
// Vendors that return media inline put the bytes in Payload instead of (or
// alongside) a URI.
type PollResult struct {
	Done      bool
	Error     *Error
	ResultURI string
	Payload   []byte
	MIMEType  string
}

// Result is the output of a completed job: a remote locator, inline bytes,
// or both.
type Result struct {
	URI      string
	Payload  []byte
	MIMEType string
}

// AuthGate reports whether the generation service may be called and can
// kick off an out-of-band authorization flow.
type AuthGate interface {
	Check(ctx context.Context) (bool, error)
	PromptInteractive(ctx context.Context)
}

// MediaJobClient is the vendor port: submit a job, then poll its handle
// until a terminal state. A Poll transport error is transient; terminal
// failures arrive inside the PollResult.
type MediaJobClient interface {
	Submit(ctx context.Context, cfg JobConfig) (JobHandle, error)
	Poll(ctx context.Context, handle JobHandle) (PollResult, error)
}
