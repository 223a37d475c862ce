package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/mrclmr/exhalebatch/internal/convert"
	"github.com/mrclmr/exhalebatch/internal/history"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	exitVal := m.Run()
	os.Exit(exitVal)
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		err := os.WriteFile(filepath.Join(dir, name), nil, 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.wav", "b.MP3", "cover.jpg", "c.flac.temp.wav", "d.m4a.meta.m4a", ".hidden.wav")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "sub"), "e.wav")
	other := t.TempDir()
	touch(t, other, "f.flac", "notes.txt")

	got, err := expandInputs([]string{
		dir,
		filepath.Join(dir, "a.wav"),
		filepath.Join(other, "f.flac"),
		filepath.Join(other, "notes.txt"),
	})
	if err != nil {
		t.Fatalf("expandInputs() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.wav"),
		filepath.Join(dir, "b.MP3"),
		filepath.Join(other, "f.flac"),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expandInputs() = %v, want %v", got, want)
	}
}

func TestExpandInputs_Missing(t *testing.T) {
	_, err := expandInputs([]string{filepath.Join(t.TempDir(), "missing.wav")})
	if err == nil || !strings.Contains(err.Error(), "input not found") {
		t.Fatalf("expandInputs() error = %v", err)
	}
}

func TestWritePlaylist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.m3u")
	jobs := []convert.Job{
		{InputPath: "/m/a.wav", OutputPath: "/m/a.m4a", Status: convert.StatusCompleted},
		{InputPath: "/m/b.wav", Status: convert.StatusFailed, ErrorMessage: "broken"},
		{InputPath: "/m/c.flac", OutputPath: "/m/c.m4a", Status: convert.StatusCompleted},
	}

	err := writePlaylist(path, jobs)
	if err != nil {
		t.Fatalf("writePlaylist() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `#EXTM3U
#EXTINF:-1,a
file:///m/a.m4a
#EXTINF:-1,c
file:///m/c.m4a
`
	if string(data) != want {
		t.Fatalf("playlist = %q, want %q", data, want)
	}
}

func TestSummaryTable(t *testing.T) {
	out := summaryTable([]convert.Job{
		{InputPath: "/m/a.wav", OutputPath: "/m/a.m4a", Status: convert.StatusCompleted},
		{InputPath: "/m/b.wav", Status: convert.StatusFailed, ErrorMessage: "Invalid input file\n\nThe WAV file is corrupted"},
	})
	for _, s := range []string{"a.wav", "/m/a.m4a", "completed", "failed", "Invalid input file"} {
		if !strings.Contains(out, s) {
			t.Fatalf("summary table misses %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "corrupted") {
		t.Fatalf("summary table shows more than the first error line:\n%s", out)
	}
}

func TestFollow_RecordsMissedJobs(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = store.Close()
	}()

	a := convert.Job{ID: "a", InputPath: "/m/a.wav", OutputPath: "/m/a.m4a", Status: convert.StatusCompleted}
	b := convert.Job{ID: "b", InputPath: "/m/b.wav", Status: convert.StatusFailed, ErrorMessage: "broken"}
	c := convert.Job{ID: "c", InputPath: "/m/c.wav", Status: convert.StatusPending}

	// The status event of b was dropped.
	now := time.Now()
	events := make(chan convert.Event, 2)
	events <- convert.Event{Seq: 1, Timestamp: now, Type: convert.EventStatus, Job: a}
	events <- convert.Event{Seq: 9, Timestamp: now, Type: convert.EventBatchComplete, Summary: &convert.Summary{}}
	close(events)

	rec := &recorder{store: store, preset: "5", recorded: map[string]bool{}}
	follow(ctx, events, &logView{logged: map[string]int{}}, rec, func() []convert.Job {
		return []convert.Job{a, b, c}
	})

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.JobID+":"+e.Status)
	}
	slices.Sort(got)
	want := []string{"a:completed", "b:failed"}
	if !slices.Equal(got, want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
}
