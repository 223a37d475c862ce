package convert

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventType classifies events published by the queue and the converter.
type EventType string

const (
	EventAdded         EventType = "added"
	EventRemoved       EventType = "removed"
	EventStatus        EventType = "status"
	EventProgress      EventType = "progress"
	EventBatchComplete EventType = "batch_complete"
)

// Event is a sequenced notification. Job is a snapshot taken when the
// event was published, Summary is only set for EventBatchComplete.
type Event struct {
	Seq       int64
	Timestamp time.Time
	Type      EventType
	Job       Job
	Summary   *Summary
}

const defaultMaxEvents = 4096

// EventLog keeps the most recent events and wakes up readers.
// Publish never blocks, so it is safe to call while holding other locks.
type EventLog struct {
	mu        sync.Mutex
	nextSeq   int64
	maxEvents int
	events    []Event
	changed   chan struct{}
}

// NewEventLog creates a log holding at most maxEvents events.
func NewEventLog(maxEvents int) *EventLog {
	if maxEvents <= 0 {
		maxEvents = defaultMaxEvents
	}
	return &EventLog{
		maxEvents: maxEvents,
		events:    make([]Event, 0, min(maxEvents, 64)),
		changed:   make(chan struct{}),
	}
}

// Publish appends event and assigns sequence and timestamp.
func (l *EventLog) Publish(event Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextSeq++
	event.Seq = l.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	l.events = append(l.events, event)
	if len(l.events) > l.maxEvents {
		trim := len(l.events) - l.maxEvents
		l.events = append([]Event(nil), l.events[trim:]...)
	}

	close(l.changed)
	l.changed = make(chan struct{})
	return event
}

// Since returns events with sequence strictly greater than seq and a channel
// closed by the next Publish.
func (l *EventLog) Since(seq int64) ([]Event, <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Event
	for _, event := range l.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out, l.changed
}

// LastSeq returns the sequence of the most recent event.
func (l *EventLog) LastSeq() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextSeq
}

// Subscribe delivers the events published from now on in sequence order.
// A subscriber slower than the log capacity misses the trimmed events,
// which is logged as a warning. The channel is closed when ctx is done.
func (l *EventLog) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event)
	seq := l.LastSeq()
	go func() {
		defer close(ch)
		for {
			events, changed := l.Since(seq)
			if len(events) > 0 && events[0].Seq > seq+1 {
				slog.Warn("events dropped", "count", events[0].Seq-seq-1)
			}
			for _, event := range events {
				select {
				case ch <- event:
					seq = event.Seq
				case <-ctx.Done():
					return
				}
			}
			if len(events) > 0 {
				continue
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
