package cmd

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"

	"github.com/mrclmr/exhalebatch/internal/convert"
)

// view follows the events of a batch.
type view interface {
	handle(e convert.Event)
	stop()
}

func newView(w io.Writer, detailed bool) view {
	if detailed && isTerminal(w) {
		return newBarView(w)
	}
	return &logView{logged: map[string]int{}}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// trackerTotal is the resolution of a progress bar.
const trackerTotal = 1000

// barView renders one progress bar per running job.
type barView struct {
	pw       progress.Writer
	trackers map[string]*progress.Tracker
}

func newBarView(w io.Writer) *barView {
	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetMessageLength(40)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Value = false
	pw.Style().Visibility.Percentage = true
	go pw.Render()

	return &barView{pw: pw, trackers: map[string]*progress.Tracker{}}
}

func (v *barView) handle(e convert.Event) {
	switch e.Type {
	case convert.EventStatus:
		t := v.tracker(e.Job)
		switch e.Job.Status {
		case convert.StatusCompleted:
			t.SetValue(trackerTotal)
			t.MarkAsDone()
		case convert.StatusFailed:
			t.UpdateMessage(filepath.Base(e.Job.InputPath) + " (failed)")
			t.MarkAsErrored()
		case convert.StatusPending:
			t.UpdateMessage(filepath.Base(e.Job.InputPath) + " (canceled)")
			t.MarkAsErrored()
		default:
		}
	case convert.EventProgress:
		v.tracker(e.Job).SetValue(int64(e.Job.Progress * trackerTotal))
	default:
	}
}

func (v *barView) tracker(job convert.Job) *progress.Tracker {
	t, ok := v.trackers[job.ID]
	if !ok {
		t = &progress.Tracker{
			Message: filepath.Base(job.InputPath),
			Total:   trackerTotal,
			Units:   progress.UnitsDefault,
		}
		v.pw.AppendTracker(t)
		v.trackers[job.ID] = t
	}
	return t
}

func (v *barView) stop() {
	v.pw.Stop()
	for v.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}

// logView logs the progress in quarters at debug level.
// Status changes are already logged by the converter.
type logView struct {
	logged map[string]int
}

func (v *logView) handle(e convert.Event) {
	if e.Type != convert.EventProgress {
		return
	}
	quarter := int(e.Job.Progress * 4)
	if quarter <= v.logged[e.Job.ID] {
		return
	}
	v.logged[e.Job.ID] = quarter
	slog.Debug("progress", "path", e.Job.InputPath, "percent", quarter*25)
}

func (*logView) stop() {}
