package convert

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestEventLog_Since(t *testing.T) {
	l := NewEventLog(3)

	for range 5 {
		l.Publish(Event{Type: EventProgress})
	}

	events, _ := l.Since(0)
	if len(events) != 3 {
		t.Fatalf("kept %d events, want 3", len(events))
	}
	if events[0].Seq != 3 || events[2].Seq != 5 {
		t.Fatalf("seqs = %d..%d, want 3..5", events[0].Seq, events[2].Seq)
	}
	if l.LastSeq() != 5 {
		t.Fatalf("LastSeq() = %d", l.LastSeq())
	}

	events, changed := l.Since(5)
	if len(events) != 0 {
		t.Fatalf("events = %v", events)
	}
	select {
	case <-changed:
		t.Fatal("changed closed without publish")
	default:
	}
	e := l.Publish(Event{Type: EventAdded})
	select {
	case <-changed:
	default:
		t.Fatal("changed not closed by publish")
	}
	if e.Seq != 6 || e.Timestamp.IsZero() {
		t.Fatalf("published = %+v", e)
	}
}

func TestEventLog_Subscribe(t *testing.T) {
	l := NewEventLog(0)
	l.Publish(Event{Type: EventAdded})

	ctx, cancel := context.WithCancel(context.Background())
	events := l.Subscribe(ctx)

	go func() {
		for range 3 {
			l.Publish(Event{Type: EventStatus})
		}
	}()

	var seqs []int64
	for len(seqs) < 3 {
		select {
		case e := <-events:
			seqs = append(seqs, e.Seq)
		case <-time.After(5 * time.Second):
			t.Fatalf("received %v", seqs)
		}
	}
	if seqs[0] != 2 || seqs[1] != 3 || seqs[2] != 4 {
		t.Fatalf("seqs = %v, want [2 3 4]", seqs)
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("event after cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestEventLog_SubscribeSlowReader(t *testing.T) {
	var buf bytes.Buffer
	defaultLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	l := NewEventLog(2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := l.Subscribe(ctx)

	// Nothing is read until the log has trimmed the first events.
	for range 5 {
		l.Publish(Event{Type: EventProgress})
	}

	var last int64
	for last < 5 {
		select {
		case e := <-events:
			if e.Seq <= last {
				t.Fatalf("seq %d after %d", e.Seq, last)
			}
			last = e.Seq
		case <-time.After(5 * time.Second):
			t.Fatalf("last seq = %d", last)
		}
	}
	if !strings.Contains(buf.String(), "events dropped") {
		t.Fatalf("no warning logged: %q", buf.String())
	}
}
