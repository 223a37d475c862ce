package convert

import "errors"

var (
	// ErrBatchRunning is returned by queue mutations rejected during a batch.
	ErrBatchRunning = errors.New("a batch is running")

	// ErrNoPendingJobs is returned when a batch is started without work.
	ErrNoPendingJobs = errors.New("no pending jobs")

	ErrJobNotFound = errors.New("job not found")
)

// ErrorKind is the failure category of a job.
type ErrorKind int

const (
	// KindConfig means a tool path is unset or does not resolve.
	KindConfig ErrorKind = iota + 1
	// KindInput means the source file is missing or unsupported.
	KindInput
	// KindLaunch means the OS refused to spawn a resolved tool.
	KindLaunch
	// KindRuntime means a tool exited non-zero.
	KindRuntime
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "configuration"
	case KindInput:
		return "input"
	case KindLaunch:
		return "launch"
	case KindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Error terminates a job. Msg is shown to the user as the job's error message.
type Error struct {
	Kind ErrorKind
	// Op is the pipeline step, e.g. "transcode" or "encode".
	Op  string
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
