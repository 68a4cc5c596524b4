// Package refresh runs fetch cycles over every data source on a fixed
// interval and writes each successful snapshot into the shared cache.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/wealthvista/internal/datasource"
	"github.com/seenimoa/wealthvista/internal/infra"
	"github.com/seenimoa/wealthvista/pkg/models"
	"github.com/seenimoa/wealthvista/pkg/utils"
)

// ErrCycleInProgress is returned by RunCycle when another cycle is running.
var ErrCycleInProgress = errors.New("refresh cycle already in progress")

// ErrAlreadyStarted is returned by Start on a refresher that is running.
var ErrAlreadyStarted = errors.New("refresher already started")

// SourceResult is the outcome of one source within a cycle.
type SourceResult struct {
	Source   string          `json:"source"`
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
	Err      error           `json:"-"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// OK reports whether the source produced a snapshot that was cached.
func (r SourceResult) OK() bool { return r.Err == nil }

// CycleReport summarizes one fetch cycle.
type CycleReport struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Results    []SourceResult `json:"results"`
}

// Failed returns the number of sources that failed in the cycle.
func (r CycleReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// Options configures a Refresher.
type Options struct {
	Interval time.Duration
	// RunOnStart runs one cycle immediately when Start is called.
	RunOnStart bool
	// OnCycle, if set, is called after every completed cycle.
	OnCycle func(CycleReport)
}

// Refresher is the periodic fetch loop. At most one cycle runs at a time;
// a tick that arrives during a cycle is dropped.
type Refresher struct {
	cache   *infra.Cache
	sources []datasource.Source
	opts    Options
	log     *slog.Logger

	running atomic.Bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	last    *CycleReport
	nCycles int
}

// New creates a refresher writing into cache. Each source must have a
// distinct category.
func New(cache *infra.Cache, sources []datasource.Source, opts Options, log *slog.Logger) *Refresher {
	return &Refresher{
		cache:   cache,
		sources: sources,
		opts:    opts,
		log:     log,
	}
}

// Start launches the background loop. It returns once the loop goroutine is
// running; the initial cycle (if enabled) runs inside it.
func (r *Refresher) Start(ctx context.Context) error {
	if r.opts.Interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", r.opts.Interval)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx, r.done)

	r.log.Info("refresher started", "interval", r.opts.Interval, "sources", len(r.sources))
	return nil
}

// Stop cancels the loop and waits for it, including any in-flight cycle, to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.log.Info("refresher stopped")
}

func (r *Refresher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if r.opts.RunOnStart {
		r.tick(ctx)
	}

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
			// A tick that fired while the cycle overran is absorbed; the
			// next opportunity is one full interval later.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	if _, err := r.RunCycle(ctx); errors.Is(err, ErrCycleInProgress) {
		r.log.Warn("tick skipped, previous cycle still running")
	}
}

// RunCycle runs one full cycle now. It returns ErrCycleInProgress without
// doing anything if a cycle is already executing.
func (r *Refresher) RunCycle(ctx context.Context) (CycleReport, error) {
	if !r.running.CompareAndSwap(false, true) {
		return CycleReport{}, ErrCycleInProgress
	}
	defer r.running.Store(false)

	report := r.runCycle(ctx)

	r.mu.Lock()
	r.last = &report
	r.nCycles++
	r.mu.Unlock()

	if r.opts.OnCycle != nil {
		r.opts.OnCycle(report)
	}
	return report, nil
}

// Running reports whether a cycle is executing right now.
func (r *Refresher) Running() bool { return r.running.Load() }

// LastReport returns the most recent completed cycle, if any.
func (r *Refresher) LastReport() (CycleReport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return CycleReport{}, false
	}
	return *r.last, true
}

// Cycles returns how many cycles have completed.
func (r *Refresher) Cycles() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nCycles
}

// Interval returns the configured cycle period.
func (r *Refresher) Interval() time.Duration { return r.opts.Interval }

// runCycle fetches every source concurrently. Failures are isolated: a
// failed source is logged and its cache entry left as it was.
func (r *Refresher) runCycle(ctx context.Context) CycleReport {
	report := CycleReport{
		ID:        uuid.NewString(),
		StartedAt: utils.NowIST(),
		Results:   make([]SourceResult, len(r.sources)),
	}
	log := r.log.With("cycle", report.ID)
	log.Info("fetch cycle started")

	var g errgroup.Group
	for i, src := range r.sources {
		g.Go(func() error {
			report.Results[i] = r.fetchOne(ctx, src, report.StartedAt, log)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = utils.NowIST()
	log.Info("fetch cycle finished",
		"duration", report.FinishedAt.Sub(report.StartedAt),
		"failed", report.Failed(),
		"sources", len(report.Results),
	)
	return report
}

func (r *Refresher) fetchOne(ctx context.Context, src datasource.Source, at time.Time, log *slog.Logger) (res SourceResult) {
	res = SourceResult{Source: src.Name(), Category: src.Category()}
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic: %v", p)
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			res.Error = res.Err.Error()
			log.Warn("source fetch failed, keeping previous snapshot",
				"source", res.Source, "key", res.Category, "duration", res.Duration, "error", res.Err)
			return
		}
		log.Info("source cached",
			"source", res.Source, "key", res.Category, "count", res.Count, "duration", res.Duration)
	}()

	snap, err := src.Fetch(ctx, at)
	if err == nil && snap == nil {
		err = datasource.ErrNoData
	}
	if err != nil {
		res.Err = err
		return res
	}

	r.cache.Set(string(src.Category()), snap)
	res.Count = snap.Len()
	return res
}
