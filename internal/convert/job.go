package convert

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether only removal or a re-queue can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one file's conversion request and its result.
type Job struct {
	ID        string
	InputPath string
	// OutputPath is assigned when encoding starts.
	OutputPath   string
	Status       Status
	Progress     float64
	ErrorMessage string
}

// isValidTransition enforces the job state machine.
// running -> pending only happens on cancellation.
func isValidTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed || to == StatusPending
	case StatusCompleted, StatusFailed:
		return to == StatusPending
	default:
		return false
	}
}
