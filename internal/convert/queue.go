package convert

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mrclmr/exhalebatch/internal/audio"
)

// Queue is the ordered collection of jobs. Removal, clearing and re-queueing
// are rejected while a batch is running.
type Queue struct {
	mu      sync.RWMutex
	jobs    []*Job
	running bool
	// outputs holds the output path reserved for each job of the running batch.
	outputs map[string]string
	events  *EventLog
	newID   func() string
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		events: NewEventLog(0),
		newID:  uuid.NewString,
	}
}

// Events returns the log every queue change is published to.
func (q *Queue) Events() *EventLog {
	return q.events
}

// Add appends one pending job per path. Adding is allowed during a batch,
// the new jobs wait for the next one.
func (q *Queue) Add(paths ...string) []Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	added := make([]Job, 0, len(paths))
	for _, p := range paths {
		j := &Job{
			ID:        q.newID(),
			InputPath: p,
			Status:    StatusPending,
		}
		q.jobs = append(q.jobs, j)
		added = append(added, *j)
		q.events.Publish(Event{Type: EventAdded, Job: *j})
	}
	return added
}

// Remove deletes the jobs with ids. Nothing is removed if one id is unknown.
func (q *Queue) Remove(ids ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return ErrBatchRunning
	}
	for _, id := range ids {
		if q.find(id) == nil {
			return fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
	}
	q.jobs = slices.DeleteFunc(q.jobs, func(j *Job) bool {
		if slices.Contains(ids, j.ID) {
			q.events.Publish(Event{Type: EventRemoved, Job: *j})
			return true
		}
		return false
	})
	return nil
}

// Clear removes every job.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return ErrBatchRunning
	}
	for _, j := range q.jobs {
		q.events.Publish(Event{Type: EventRemoved, Job: *j})
	}
	q.jobs = nil
	return nil
}

// Requeue moves completed or failed jobs back to pending.
func (q *Queue) Requeue(ids ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return ErrBatchRunning
	}
	for _, id := range ids {
		j := q.find(id)
		if j == nil {
			return fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		if !j.Status.IsTerminal() {
			continue
		}
		j.Status = StatusPending
		j.Progress = 0
		j.ErrorMessage = ""
		q.events.Publish(Event{Type: EventStatus, Job: *j})
	}
	return nil
}

// Jobs returns a snapshot of all jobs in queue order.
func (q *Queue) Jobs() []Job {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]Job, len(q.jobs))
	for i, j := range q.jobs {
		out[i] = *j
	}
	return out
}

// Job returns a snapshot of the job with id.
func (q *Queue) Job(id string) (Job, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	j := q.find(id)
	if j == nil {
		return Job{}, false
	}
	return *j, true
}

// Running reports whether a batch is active.
func (q *Queue) Running() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.running
}

func (q *Queue) find(id string) *Job {
	for _, j := range q.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// beginBatch marks the queue as running and returns the pending ids in order.
func (q *Queue) beginBatch() ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return nil, ErrBatchRunning
	}
	var ids []string
	for _, j := range q.jobs {
		if j.Status == StatusPending {
			ids = append(ids, j.ID)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoPendingJobs
	}
	q.running = true
	q.outputs = q.reserveOutputs(ids)
	return ids, nil
}

// reserveOutputs gives every job of a batch its own output path. A job whose
// preferred path is taken by an earlier job or is the input of a batch job
// gets the next alternative.
func (q *Queue) reserveOutputs(ids []string) map[string]string {
	taken := make(map[string]bool, 2*len(ids))
	for _, id := range ids {
		taken[audio.PathKey(q.find(id).InputPath)] = true
	}
	outputs := make(map[string]string, len(ids))
	for _, id := range ids {
		input := q.find(id).InputPath
		for n := 0; ; n++ {
			out := audio.AlternativeOutputPath(input, n)
			if !taken[audio.PathKey(out)] {
				taken[audio.PathKey(out)] = true
				outputs[id] = out
				break
			}
		}
	}
	return outputs
}

// endBatch summarizes the jobs of a batch and publishes EventBatchComplete.
func (q *Queue) endBatch(ids []string, canceled bool) Summary {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := Summary{Total: len(ids), Canceled: canceled}
	for _, id := range ids {
		j := q.find(id)
		if j == nil {
			continue
		}
		switch j.Status {
		case StatusCompleted:
			s.Completed++
		case StatusFailed:
			s.Failed++
		case StatusPending:
			s.Pending++
		default:
		}
	}
	q.running = false
	q.outputs = nil
	q.events.Publish(Event{Type: EventBatchComplete, Summary: &s})
	return s
}

// transition moves job id to status to and applies mutate under the lock.
func (q *Queue) transition(id string, to Status, mutate func(j *Job)) (Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j := q.find(id)
	if j == nil {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if !isValidTransition(j.Status, to) {
		return Job{}, fmt.Errorf("invalid transition: %s -> %s", j.Status, to)
	}
	j.Status = to
	if mutate != nil {
		mutate(j)
	}
	q.events.Publish(Event{Type: EventStatus, Job: *j})
	return *j, nil
}

func (q *Queue) start(id string) (Job, error) {
	return q.transition(id, StatusRunning, func(j *Job) {
		j.Progress = 0
		j.OutputPath = ""
		j.ErrorMessage = ""
	})
}

func (q *Queue) complete(id string) error {
	_, err := q.transition(id, StatusCompleted, func(j *Job) {
		j.Progress = 1
	})
	return err
}

func (q *Queue) fail(id string, msg string) error {
	_, err := q.transition(id, StatusFailed, func(j *Job) {
		j.ErrorMessage = msg
	})
	return err
}

// cancel returns a running job to pending.
func (q *Queue) cancel(id string) error {
	_, err := q.transition(id, StatusPending, func(j *Job) {
		j.Progress = 0
		j.OutputPath = ""
	})
	return err
}

// claimOutput records the output path reserved for job id and returns it.
// Without a reservation the preferred path of input is used.
func (q *Queue) claimOutput(id, input string) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	path, ok := q.outputs[id]
	if !ok {
		path = audio.OutputPath(input)
	}
	if j := q.find(id); j != nil && j.Status == StatusRunning {
		j.OutputPath = path
	}
	return path
}

// setProgress only ever raises the progress of a running job.
func (q *Queue) setProgress(id string, progress float64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j := q.find(id)
	if j == nil || j.Status != StatusRunning {
		return
	}
	progress = min(progress, 1)
	if progress <= j.Progress {
		return
	}
	j.Progress = progress
	q.events.Publish(Event{Type: EventProgress, Job: *j})
}
