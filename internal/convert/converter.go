package convert

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrclmr/exhalebatch/internal/audio"
)

// Summary counts the outcome of the jobs of one batch.
type Summary struct {
	Total     int
	Completed int
	Failed    int
	// Pending jobs were not started or returned by a cancellation.
	Pending  int
	Canceled bool
}

// Converter runs batches of pending queue jobs with bounded concurrency.
type Converter struct {
	queue   *Queue
	starter audio.Starter
	clock   Clock

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	summary Summary
}

type Option func(c *Converter)

// WithClock replaces the clock of the progress simulation.
func WithClock(clock Clock) Option {
	return func(c *Converter) {
		c.clock = clock
	}
}

func New(queue *Queue, starter audio.Starter, opts ...Option) *Converter {
	c := &Converter{
		queue:   queue,
		starter: starter,
		clock:   realClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start dispatches the currently pending jobs in queue order and returns
// immediately. At most cfg.Parallel jobs run at the same time, a free slot
// is filled with the next pending job right away.
func (c *Converter) Start(ctx context.Context, cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		select {
		case <-c.done:
		default:
			return ErrBatchRunning
		}
	}

	ids, err := c.queue.beginBatch()
	if err != nil {
		return err
	}

	cfg = cfg.Normalized()
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		defer cancel()
		s := c.run(ctx, cfg, ids)
		c.mu.Lock()
		c.summary = s
		c.mu.Unlock()
	}()
	return nil
}

// Wait blocks until the current batch is complete.
func (c *Converter) Wait() Summary {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return Summary{}
	}
	<-done

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

// Cancel kills the processes of all running jobs and waits until they are
// back to pending. Jobs not yet dispatched stay pending.
func (c *Converter) Cancel() Summary {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return c.Wait()
}

// Run starts a batch and waits for it.
func (c *Converter) Run(ctx context.Context, cfg Config) (Summary, error) {
	if err := c.Start(ctx, cfg); err != nil {
		return Summary{}, err
	}
	return c.Wait(), nil
}

func (c *Converter) run(ctx context.Context, cfg Config, ids []string) Summary {
	p := &pipeline{
		cfg:     cfg,
		starter: c.starter,
		clock:   c.clock,
		queue:   c.queue,
	}

	slog.Debug("batch started", "jobs", len(ids), "parallel", cfg.Parallel)

	// Job failures are not returned to the group, siblings keep running.
	var g errgroup.Group
	g.SetLimit(cfg.Parallel)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			c.convert(ctx, p, id)
			return nil
		})
	}
	_ = g.Wait()

	s := c.queue.endBatch(ids, ctx.Err() != nil)
	slog.Debug("batch complete", "completed", s.Completed, "failed", s.Failed, "pending", s.Pending)
	return s
}

func (c *Converter) convert(ctx context.Context, p *pipeline, id string) {
	if ctx.Err() != nil {
		return
	}
	job, err := c.queue.start(id)
	if err != nil {
		slog.Warn("job not started", "id", id, "err", err)
		return
	}
	slog.Info("converting", "path", job.InputPath)

	err = p.run(ctx, job)
	switch {
	case err != nil && ctx.Err() != nil:
		err = c.queue.cancel(id)
		slog.Info("canceled", "path", job.InputPath)
	case err != nil:
		slog.Error("failed", "path", job.InputPath, "err", err)
		err = c.queue.fail(id, err.Error())
	default:
		err = c.queue.complete(id)
		if done, ok := c.queue.Job(id); ok {
			slog.Info("completed", "path", done.OutputPath)
		}
	}
	if err != nil {
		slog.Warn("job state not updated", "id", id, "err", err)
	}
}
