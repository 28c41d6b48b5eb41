package live

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	rerrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// DefaultQueueSize is the capacity of a Host's work queue.
const DefaultQueueSize = 256

// ErrHostStopped is returned by Do after Stop. It carries code P062.
var ErrHostStopped = rerrors.New("P062")

// Host runs all work on its Runtime from one goroutine.
type Host struct {
	rt     *reactive.Runtime
	logger *slog.Logger

	tasks    chan func()
	done     chan struct{}
	loopDone chan struct{}

	stopOnce sync.Once
	closed   atomic.Bool

	processed atomic.Uint64
	panics    atomic.Uint64
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithQueueSize sets the capacity of the work queue.
func WithQueueSize(n int) HostOption {
	return func(h *Host) {
		if n > 0 {
			h.tasks = make(chan func(), n)
		}
	}
}

// NewHost creates a Host for rt and starts its loop. The runtime must not
// be used from any other goroutine afterwards.
func NewHost(rt *reactive.Runtime, logger *slog.Logger, opts ...HostOption) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Host{
		rt:       rt,
		logger:   logger,
		tasks:    make(chan func(), DefaultQueueSize),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.loop()
	return h
}

// Runtime returns the hosted runtime. It may only be used inside functions
// passed to Do or Dispatch.
func (h *Host) Runtime() *reactive.Runtime {
	return h.rt
}

// loop executes queued work until Stop. Work still queued at Stop is dropped.
func (h *Host) loop() {
	defer close(h.loopDone)
	for {
		select {
		case task := <-h.tasks:
			task()
		case <-h.done:
			return
		}
	}
}

// execute runs fn, converting a panic into a logged error so a faulty
// effect cannot take the loop down.
func (h *Host) execute(fn func()) error {
	defer h.processed.Add(1)
	err := reactive.Catch(fn)
	if err != nil {
		h.panics.Add(1)
		h.logger.Error("host task panic", "error", err)
	}
	return err
}

// Dispatch queues fn to run on the host goroutine and returns immediately.
// It returns false if the host is stopped or the queue is full.
//
// Example:
//
//	go func() {
//	    n := fetchCount()
//	    host.Dispatch(func() { counter.Count.Set(n) })
//	}()
func (h *Host) Dispatch(fn func()) bool {
	if h.closed.Load() {
		return false
	}
	select {
	case h.tasks <- func() { _ = h.execute(fn) }:
		return true
	case <-h.done:
		return false
	default:
		h.logger.Warn("host queue full, discarding task")
		return false
	}
}

// Do runs fn on the host goroutine and waits for it to finish. A panic in
// fn is returned as an error. If ctx ends first Do returns ctx.Err(); fn may
// still run later if it was already queued.
func (h *Host) Do(ctx context.Context, fn func()) error {
	if h.closed.Load() {
		return ErrHostStopped
	}

	result := make(chan error, 1)
	task := func() { result <- h.execute(fn) }

	select {
	case h.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHostStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-h.loopDone:
		// The loop may have finished our task just before stopping.
		select {
		case err := <-result:
			return err
		default:
			return ErrHostStopped
		}
	}
}

// Stop ends the loop and waits for the task in progress to finish.
// Calling it more than once is a no-op.
func (h *Host) Stop() {
	h.stopOnce.Do(func() {
		h.closed.Store(true)
		close(h.done)
	})
	<-h.loopDone
}

// HostStats are counters of a Host's loop.
type HostStats struct {
	Processed uint64 `json:"processed"`
	Panics    uint64 `json:"panics"`
	Queued    int    `json:"queued"`
}

// Stats returns the loop counters. It is safe to call from any goroutine.
func (h *Host) Stats() HostStats {
	return HostStats{
		Processed: h.processed.Load(),
		Panics:    h.panics.Load(),
		Queued:    len(h.tasks),
	}
}
