package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"perchbot/logger"
	"perchbot/metrics"

	"github.com/google/uuid"
)

var (
	ErrBusy      = errors.New("a job of this kind is already running")
	ErrCancelled = errors.New("job cancelled")
)

type (
	// Job describes a running job.
	Job struct {
		ID      string
		Kind    string
		Owner   string
		Started time.Time
	}

	slot struct {
		Job
		cancel context.CancelCauseFunc
	}

	// Runner runs long jobs in the background, at most one per kind. A job that times out or
	// is cancelled gives up its slot at once, even if its function has not returned yet.
	Runner struct {
		log *slog.Logger
		wg  sync.WaitGroup

		mu    sync.Mutex
		slots map[string]*slot
	}
)

func NewRunner(log *slog.Logger) *Runner {
	if log == nil {
		log = logger.Service("queue")
	}
	return &Runner{log: log, slots: make(map[string]*slot)}
}

// Run starts fn unless a job of kind is running. The returned channel receives exactly one
// value: fn's error, or the context error on timeout or cancellation.
func (r *Runner) Run(ctx context.Context, kind, owner string, timeout time.Duration, fn func(ctx context.Context) error) (<-chan error, error) {
	kind = strings.ToLower(kind)

	r.mu.Lock()
	if _, busy := r.slots[kind]; busy {
		r.mu.Unlock()
		metrics.JobsRejected.Inc()
		return nil, fmt.Errorf("%s: %w", kind, ErrBusy)
	}

	jobCtx, cancel := context.WithCancelCause(ctx)
	if timeout > 0 {
		var stop context.CancelFunc
		jobCtx, stop = context.WithTimeout(jobCtx, timeout)
		inner := cancel
		cancel = func(cause error) {
			inner(cause)
			stop()
		}
	}

	s := &slot{
		Job:    Job{ID: uuid.NewString(), Kind: kind, Owner: owner, Started: time.Now()},
		cancel: cancel,
	}
	r.slots[kind] = s
	r.mu.Unlock()

	metrics.JobsActive.Inc()
	log := r.log.With("kind", kind, "job", s.ID, "owner", owner)
	log.Debug("Job started", "timeout", timeout)

	result := make(chan error, 1)
	finished := make(chan error, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				finished <- fmt.Errorf("job panicked: %v", p)
			}
		}()
		finished <- fn(jobCtx)
	}()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer metrics.JobsActive.Dec()

		var err error
		select {
		case err = <-finished:
		case <-jobCtx.Done():
			err = context.Cause(jobCtx)
			log.Warn("Job abandoned", "error", err)
		}
		if jobCtx.Err() != nil {
			err = context.Cause(jobCtx)
		}
		r.release(kind, s.ID)
		cancel(nil)

		log.Debug("Job finished", "took", time.Since(s.Started), "error", err)
		result <- err
	}()

	return result, nil
}

// Cancel stops the job of kind. It reports whether one was running.
func (r *Runner) Cancel(kind string) bool {
	r.mu.Lock()
	s, ok := r.slots[strings.ToLower(kind)]
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.cancel(ErrCancelled)
	r.release(s.Kind, s.ID)
	return true
}

// Active lists the running jobs sorted by kind.
func (r *Runner) Active() []Job {
	r.mu.Lock()
	out := make([]Job, 0, len(r.slots))
	for _, s := range r.slots {
		out = append(out, s.Job)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

func (r *Runner) Busy(kind string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.slots[strings.ToLower(kind)]
	return ok
}

// Wait blocks until every started job has reported.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// release frees kind only if it still belongs to job id.
func (r *Runner) release(kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[kind]; ok && s.ID == id {
		delete(r.slots, kind)
	}
}
