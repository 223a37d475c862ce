package convert

import (
	"errors"
	"testing"
)

func TestQueue_Add(t *testing.T) {
	q := NewQueue()

	added := q.Add("/music/a.wav", "/music/b.flac")

	if len(added) != 2 {
		t.Fatalf("added %d jobs", len(added))
	}
	if added[0].ID == added[1].ID || added[0].ID == "" {
		t.Fatalf("ids not unique: %q %q", added[0].ID, added[1].ID)
	}
	jobs := q.Jobs()
	for i, j := range jobs {
		if j.Status != StatusPending || j.Progress != 0 || j.OutputPath != "" {
			t.Fatalf("job %d = %+v", i, j)
		}
	}
	if jobs[0].InputPath != "/music/a.wav" || jobs[1].InputPath != "/music/b.flac" {
		t.Fatalf("order = %v", jobs)
	}
}

func TestQueue_Remove(t *testing.T) {
	q := newTestQueue(t, "a.wav", "b.wav", "c.wav")
	ids := jobIDs(q)

	if err := q.Remove(ids[1], "unknown"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("Remove() error = %v, want %v", err, ErrJobNotFound)
	}
	if got := len(q.Jobs()); got != 3 {
		t.Fatalf("partial remove, %d jobs left", got)
	}

	if err := q.Remove(ids[1]); err != nil {
		t.Fatal(err)
	}
	if got := q.Jobs(); len(got) != 2 || got[0].ID != ids[0] || got[1].ID != ids[2] {
		t.Fatalf("jobs = %v", got)
	}
	if _, ok := q.Job(ids[1]); ok {
		t.Fatal("removed job still found")
	}
}

func TestQueue_Clear(t *testing.T) {
	q := newTestQueue(t, "a.wav", "b.wav")

	if err := q.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := len(q.Jobs()); got != 0 {
		t.Fatalf("%d jobs left", got)
	}
}

func TestQueue_Requeue(t *testing.T) {
	q := newTestQueue(t, "a.wav", "b.wav", "c.wav")
	ids := jobIDs(q)
	if _, err := q.beginBatch(); err != nil {
		t.Fatal(err)
	}
	mustStart(t, q, ids[0])
	mustStart(t, q, ids[1])
	if err := q.complete(ids[0]); err != nil {
		t.Fatal(err)
	}
	if err := q.fail(ids[1], "broken"); err != nil {
		t.Fatal(err)
	}
	q.endBatch(ids, false)

	if err := q.Requeue(ids...); err != nil {
		t.Fatal(err)
	}
	for _, j := range q.Jobs() {
		if j.Status != StatusPending || j.Progress != 0 || j.ErrorMessage != "" {
			t.Fatalf("job = %+v", j)
		}
	}
}

func TestQueue_Transitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusPending, StatusRunning, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusFailed, false},
		{StatusRunning, StatusCompleted, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusPending, true},
		{StatusCompleted, StatusRunning, false},
		{StatusCompleted, StatusFailed, false},
		{StatusCompleted, StatusPending, true},
		{StatusFailed, StatusCompleted, false},
		{StatusFailed, StatusPending, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := isValidTransition(tt.from, tt.to); got != tt.ok {
				t.Fatalf("isValidTransition() = %v, want %v", got, tt.ok)
			}
		})
	}
}

func TestQueue_CompleteRequiresRunning(t *testing.T) {
	q := newTestQueue(t, "a.wav")
	id := jobIDs(q)[0]

	if err := q.complete(id); err == nil {
		t.Fatal("pending job completed")
	}
	if err := q.fail("unknown", "x"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("fail() error = %v", err)
	}
}

func TestQueue_Progress(t *testing.T) {
	q := newTestQueue(t, "a.wav")
	id := jobIDs(q)[0]

	q.setProgress(id, 0.5)
	if p := q.Jobs()[0].Progress; p != 0 {
		t.Fatalf("progress of pending job = %.2f", p)
	}

	mustStart(t, q, id)
	for _, p := range []float64{0.2, 0.5, 0.3, 2} {
		q.setProgress(id, p)
	}
	if p := q.Jobs()[0].Progress; p != 1 {
		t.Fatalf("progress = %.2f, want 1", p)
	}

	events, _ := q.Events().Since(0)
	var progress []float64
	for _, e := range events {
		if e.Type == EventProgress {
			progress = append(progress, e.Job.Progress)
		}
	}
	want := []float64{0.2, 0.5, 1}
	if len(progress) != len(want) {
		t.Fatalf("progress events = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Fatalf("progress events = %v, want %v", progress, want)
		}
	}
}

func TestQueue_BeginBatch(t *testing.T) {
	q := NewQueue()
	if _, err := q.beginBatch(); !errors.Is(err, ErrNoPendingJobs) {
		t.Fatalf("beginBatch() error = %v", err)
	}

	q.Add("a.wav", "b.wav")
	got, err := q.beginBatch()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !q.Running() {
		t.Fatalf("ids = %v, running = %v", got, q.Running())
	}
	if _, err := q.beginBatch(); !errors.Is(err, ErrBatchRunning) {
		t.Fatalf("beginBatch() error = %v", err)
	}
	if err := q.Requeue(got...); !errors.Is(err, ErrBatchRunning) {
		t.Fatalf("Requeue() error = %v", err)
	}

	s := q.endBatch(got, true)
	if s != (Summary{Total: 2, Pending: 2, Canceled: true}) {
		t.Fatalf("summary = %+v", s)
	}
	if q.Running() {
		t.Fatal("still running")
	}
}

func jobIDs(q *Queue) []string {
	jobs := q.Jobs()
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func mustStart(t *testing.T, q *Queue, id string) {
	t.Helper()
	if _, err := q.start(id); err != nil {
		t.Fatal(err)
	}
}
