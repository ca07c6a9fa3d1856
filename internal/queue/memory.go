package queue

import (
	"context"
	"sync"

	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

// MemoryQueue is an in-process queue for development and tests. It is not
// durable: jobs are lost when the process exits.
type MemoryQueue struct {
	jobs chan domain.DispatchJob

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 1
	}
	return &MemoryQueue{
		jobs: make(chan domain.DispatchJob, buffer),
		done: make(chan struct{}),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job domain.DispatchJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, handle Handler) error {
	for {
		// A stopped consumer takes no further job.
		if ctx.Err() != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-q.done:
			return ErrClosed
		case job := <-q.jobs:
			if err := handle(ctx, job); err != nil {
				logger.Warnf("Job %s failed, requeueing: %v", job.ID, err)
				select {
				case q.jobs <- job:
				default:
					logger.Errorf("Queue full, dropping job %s", job.ID)
				}
				return err
			}
		}
	}
}

// Ping fails once the queue is closed.
func (q *MemoryQueue) Ping(ctx context.Context) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}
	return nil
}

// Len reports the number of buffered jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.done)
	}
	return nil
}
