// Package limiter serializes outbound API calls through a single FIFO queue with
// at most one call in flight and a minimum spacing between consecutive dispatches.
package limiter

import (
	"context"
	"errors"
	"sync"
	"time"

	"aeosinnotion/pkg/logx"
	"aeosinnotion/pkg/metrics"
)

// ErrClosed is returned for calls scheduled on, or still queued in, a closed limiter.
var ErrClosed = errors.New("limiter closed")

// Stats is a snapshot of limiter counters.
type Stats struct {
	Scheduled uint64
	Executed  uint64
	Cancelled uint64
	Queued    int
}

type job struct {
	ctx      context.Context //nolint:containedctx // Caller context travels with the queued call
	fn       func(context.Context) error
	enqueued time.Time
	done     chan error
}

// Limiter dispatches queued calls one at a time in arrival order, starting each call
// no sooner than minTime after the previous call started.
type Limiter struct {
	minTime  time.Duration
	recorder metrics.Recorder
	logger   *logx.Logger

	mu        sync.Mutex
	queue     []*job
	closed    bool
	stats     Stats
	lastStart time.Time

	wake     chan struct{}
	stop     chan struct{}
	finished chan struct{}
	once     sync.Once
}

// New starts a limiter. A nil recorder discards metrics.
func New(minTime time.Duration, recorder metrics.Recorder) *Limiter {
	l := &Limiter{
		minTime:  minTime,
		recorder: metrics.OrNop(recorder),
		logger:   logx.NewLogger("limiter"),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go l.loop()
	return l
}

// Schedule queues fn and blocks until it has run, returning its error.
// If ctx ends while fn is still queued, fn is never run and ctx.Err() is returned.
func (l *Limiter) Schedule(ctx context.Context, fn func(context.Context) error) error {
	j := &job{ctx: ctx, fn: fn, enqueued: time.Now(), done: make(chan error, 1)}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, j)
	l.stats.Scheduled++
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		// The worker drops cancelled jobs when it reaches them. If fn already started,
		// it sees the same cancelled ctx.
		return ctx.Err()
	}
}

// Stats returns a snapshot of the limiter counters.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stats
	s.Queued = len(l.queue)
	return s
}

// Close stops the dispatcher after the in-flight call, failing queued calls with ErrClosed.
func (l *Limiter) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		close(l.stop)
	})
	<-l.finished
}

func (l *Limiter) next() (*job, bool) {
	for {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return nil, false
		}
		if len(l.queue) > 0 {
			j := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()
			return j, true
		}
		l.mu.Unlock()

		select {
		case <-l.wake:
		case <-l.stop:
			return nil, false
		}
	}
}

func (l *Limiter) loop() {
	defer close(l.finished)
	defer l.drain()

	for {
		j, ok := l.next()
		if !ok {
			return
		}
		if !l.wait(j) {
			continue
		}

		l.mu.Lock()
		l.lastStart = time.Now()
		l.mu.Unlock()

		wait := time.Since(j.enqueued)
		l.recorder.ObserveQueueWait(wait)
		if wait > 5*l.minTime && l.minTime > 0 {
			l.logger.Debug("call waited %s in queue", wait.Round(time.Millisecond))
		}

		err := j.fn(j.ctx)

		l.mu.Lock()
		l.stats.Executed++
		l.mu.Unlock()
		j.done <- err
	}
}

// wait holds j until the spacing since the previous start has elapsed.
// Returns false when j was cancelled or the limiter stopped meanwhile.
func (l *Limiter) wait(j *job) bool {
	l.mu.Lock()
	delay := time.Duration(0)
	if !l.lastStart.IsZero() {
		delay = l.minTime - time.Since(l.lastStart)
	}
	l.mu.Unlock()

	if err := j.ctx.Err(); err != nil {
		l.cancel(j, err)
		return false
	}
	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-j.ctx.Done():
		l.cancel(j, j.ctx.Err())
		return false
	case <-l.stop:
		j.done <- ErrClosed
		return false
	}
}

func (l *Limiter) cancel(j *job, err error) {
	l.mu.Lock()
	l.stats.Cancelled++
	l.mu.Unlock()
	j.done <- err
}

func (l *Limiter) drain() {
	l.mu.Lock()
	pending := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, j := range pending {
		j.done <- ErrClosed
	}
	if len(pending) > 0 {
		l.logger.Warn("limiter closed with %d queued calls", len(pending))
	}
}
