package assembler

import (
	"context"
	"sync/atomic"

	apperrors "video-transcript/internal/app/errors"
	"video-transcript/internal/app/metrics"
)

// Limiter bounds the number of simultaneous audio transcriptions. The
// speech-to-text stage dominates CPU and transient disk; without a cap,
// concurrent long videos would exhaust the host. Requests past the queue
// bound are rejected instead of admitted unbounded; queued waiters still
// honor context cancellation.
type Limiter struct {
	slots    chan struct{}
	waiting  atomic.Int64
	maxQueue int64
}

// NewLimiter creates a limiter admitting maxConcurrent transcriptions and
// queuing up to maxQueue more.
func NewLimiter(maxConcurrent, maxQueue int) *Limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if maxQueue < 0 {
		maxQueue = 0
	}
	return &Limiter{
		slots:    make(chan struct{}, maxConcurrent),
		maxQueue: int64(maxConcurrent + maxQueue),
	}
}

// Acquire blocks for a worker slot until the context is done. It returns
// ErrTranscriberBusy immediately when the queue is already full.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.waiting.Add(1) > l.maxQueue {
		l.waiting.Add(-1)
		return apperrors.ErrTranscriberBusy
	}
	metrics.TranscriberQueueDepth.Inc()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.waiting.Add(-1)
		metrics.TranscriberQueueDepth.Dec()
		return ctx.Err()
	}
}

// Release frees a slot acquired earlier.
func (l *Limiter) Release() {
	<-l.slots
	l.waiting.Add(-1)
	metrics.TranscriberQueueDepth.Dec()
}
