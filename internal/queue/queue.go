// Package queue carries dispatch jobs from the orchestrator to workers.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/onurcolak/dispatch-service/internal/domain"
)

// Handler processes one job. Returning nil acknowledges the job; an error
// leaves it for redelivery.
type Handler func(ctx context.Context, job domain.DispatchJob) error

// Queue is a single-topic FIFO of dispatch jobs with at-least-once delivery.
type Queue interface {
	Enqueue(ctx context.Context, job domain.DispatchJob) error
	// Consume blocks, passing jobs to handle until ctx is done or the
	// backend fails.
	Consume(ctx context.Context, handle Handler) error
	Ping(ctx context.Context) error
	Close() error
}

var ErrClosed = errors.New("queue closed")

func encode(job domain.DispatchJob) ([]byte, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dispatch job: %w", err)
	}
	return data, nil
}

func decode(data []byte) (domain.DispatchJob, error) {
	var job domain.DispatchJob
	if err := json.Unmarshal(data, &job); err != nil {
		return job, fmt.Errorf("failed to unmarshal dispatch job: %w", err)
	}
	return job, nil
}
