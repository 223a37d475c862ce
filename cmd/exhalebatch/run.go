package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/mrclmr/exhalebatch/internal/audio"
	"github.com/mrclmr/exhalebatch/internal/config"
	"github.com/mrclmr/exhalebatch/internal/convert"
	"github.com/mrclmr/exhalebatch/internal/history"
	"github.com/mrclmr/exhalebatch/internal/m3u"
)

const lockName = "exhalebatch.lock"

func run(ctx context.Context, s *config.Settings, args []string, playlist string) error {
	paths, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no supported input files")
	}

	cfg := s.Config().Normalized()

	lockDir := cfg.TempDir
	if lockDir == "" {
		lockDir = os.TempDir()
	} else if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	lock := flock.New(filepath.Join(lockDir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another exhalebatch is converting (lock %s)", lock.Path())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	var store *history.Store
	if s.HistoryPath != "" {
		store, err = history.Open(ctx, s.HistoryPath)
		if err != nil {
			slog.Warn("history disabled", "err", err)
		} else {
			defer func() {
				_ = store.Close()
			}()
		}
	}

	queue := convert.NewQueue()

	// Events are followed until batch_complete, also after ctx was canceled.
	evCtx, stopEvents := context.WithCancel(context.WithoutCancel(ctx))
	defer stopEvents()
	events := queue.Events().Subscribe(evCtx)

	queue.Add(paths...)

	v := newView(os.Stdout, cfg.DetailedProgress)
	followed := make(chan struct{})
	go func() {
		defer close(followed)
		rec := &recorder{store: store, preset: cfg.Preset, recorded: map[string]bool{}}
		follow(evCtx, events, v, rec, queue.Jobs)
	}()

	converter := convert.New(queue, audio.NewRunner(exec.CommandContext))
	summary, err := converter.Run(ctx, cfg)
	if err != nil {
		stopEvents()
		<-followed
		v.stop()
		return err
	}
	<-followed
	v.stop()

	_, _ = fmt.Fprintln(os.Stdout, summaryTable(queue.Jobs()))

	if playlist != "" {
		err = writePlaylist(playlist, queue.Jobs())
		if err != nil {
			return err
		}
	}

	switch {
	case summary.Canceled:
		return context.Canceled
	case summary.Failed > 0:
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total)
	default:
		return nil
	}
}

// follow feeds events to the view and records finished jobs until the batch
// is complete. Jobs whose status events were dropped are recorded from the
// final queue state.
func follow(ctx context.Context, events <-chan convert.Event, v view, rec *recorder, jobs func() []convert.Job) {
	for e := range events {
		v.handle(e)
		switch e.Type {
		case convert.EventBatchComplete:
			rec.reconcile(ctx, jobs(), e.Timestamp)
			return
		case convert.EventStatus:
			if e.Job.Status.IsTerminal() {
				rec.record(ctx, e.Job, e.Timestamp)
			}
		default:
		}
	}
}

// recorder writes each finished job once to the history store.
// A nil store records nothing.
type recorder struct {
	store    *history.Store
	preset   audio.Preset
	recorded map[string]bool
}

func (r *recorder) record(ctx context.Context, job convert.Job, at time.Time) {
	if r.store == nil || r.recorded[job.ID] {
		return
	}
	err := r.store.Record(ctx, history.Entry{
		JobID:        job.ID,
		InputPath:    job.InputPath,
		OutputPath:   job.OutputPath,
		Preset:       r.preset.String(),
		Status:       string(job.Status),
		ErrorMessage: job.ErrorMessage,
		FinishedAt:   at,
	})
	if err != nil {
		slog.Warn("history not recorded", "path", job.InputPath, "err", err)
		return
	}
	r.recorded[job.ID] = true
}

func (r *recorder) reconcile(ctx context.Context, jobs []convert.Job, at time.Time) {
	for _, job := range jobs {
		if job.Status.IsTerminal() {
			r.record(ctx, job, at)
		}
	}
}

// expandInputs makes args absolute and replaces directories by the
// supported files they contain. Subdirectories are not searched.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	seen := map[string]bool{}
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("input not found: %w", err)
		}
		if !info.IsDir() {
			if !audio.Supported(abs) {
				slog.Warn("skipping unsupported file", "path", abs)
				continue
			}
			add(abs)
			continue
		}

		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, ".") || isWorkFile(name) {
				continue
			}
			path := filepath.Join(abs, name)
			if !audio.Supported(path) {
				slog.Debug("skipping unsupported file", "path", path)
				continue
			}
			add(path)
		}
	}
	return paths, nil
}

// isWorkFile reports files left behind by an interrupted conversion.
func isWorkFile(name string) bool {
	return strings.HasSuffix(name, ".temp.wav") || strings.HasSuffix(name, ".meta.m4a")
}

func summaryTable(jobs []convert.Job) string {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		detail := j.OutputPath
		if j.Status == convert.StatusFailed {
			detail, _, _ = strings.Cut(j.ErrorMessage, "\n")
		}
		rows = append(rows, []string{filepath.Base(j.InputPath), string(j.Status), detail})
	}
	return renderTable([]column{
		col("File").wrap(pathWidth),
		col("Status"),
		col("Output / Error").wrap(pathWidth),
	}, rows)
}

func writePlaylist(path string, jobs []convert.Job) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	p := m3u.NewPlaylist(f)
	for _, j := range jobs {
		if j.Status == convert.StatusCompleted {
			p.Add(j.OutputPath, m3u.Unknown)
		}
	}
	err = p.Write()
	if err != nil {
		_ = f.Close()
		return err
	}
	err = f.Close()
	if err != nil {
		return err
	}
	slog.Info("playlist", "path", path, "files", p.Len())
	return nil
}
