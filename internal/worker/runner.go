package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one periodic task. Run receives a context cancelled on Stop.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives jobs on independent tickers. A slow run delays only its own
// next tick.
type Runner struct {
	jobs   []Job
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(jobs ...Job) *Runner {
	return &Runner{jobs: jobs}
}

func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	for _, job := range r.jobs {
		if job.Interval <= 0 {
			slog.Warn("worker job disabled: non-positive interval", "job", job.Name)
			continue
		}
		r.wg.Add(1)
		go func(job Job) {
			defer r.wg.Done()
			r.loop(ctx, job)
		}(job)
	}
	slog.Info("workers started", "jobs", len(r.jobs))
}

// Stop cancels in-flight runs and waits for them, or for ctx to expire.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("workers stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, job)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("worker job panicked", "job", job.Name, "panic", rec)
		}
	}()
	if err := job.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("worker job failed", "job", job.Name, "error", err.Error())
	}
}
