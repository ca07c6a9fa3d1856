package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

const processingSuffix = ":processing"

// ValkeyQueue is a reliable list queue. Producers LPUSH; consumers BLMOVE the
// oldest entry into a processing list and LREM it once handled, so a crash
// leaves in-flight jobs in the processing list for Recover to requeue.
type ValkeyQueue struct {
	client      valkey.Client
	name        string
	processing  string
	pollTimeout time.Duration
}

func NewValkeyQueue(client valkey.Client, name string) *ValkeyQueue {
	return &ValkeyQueue{
		client:      client,
		name:        name,
		processing:  name + processingSuffix,
		pollTimeout: time.Second,
	}
}

func (q *ValkeyQueue) Enqueue(ctx context.Context, job domain.DispatchJob) error {
	data, err := encode(job)
	if err != nil {
		return err
	}

	cmd := q.client.B().Lpush().Key(q.name).Element(string(data)).Build()
	if err := q.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to push job to %s: %w", q.name, err)
	}

	return nil
}

// Recover moves jobs left in the processing list back onto the consuming end
// of the queue. They are taken again in their original order, ahead of jobs
// that were never started. Call it once at startup, before any consumer runs.
func (q *ValkeyQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		// The newest in-flight job sits on the left of the processing list; moving
		// it first leaves the oldest one rightmost.
		cmd := q.client.B().Lmove().Source(q.processing).Destination(q.name).Left().Right().Build()
		err := q.client.Do(ctx, cmd).Error()
		if valkey.IsValkeyNil(err) {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("failed to recover in-flight jobs: %w", err)
		}
		moved++
	}

	if moved > 0 {
		logger.Warnf("Requeued %d in-flight jobs from %s", moved, q.processing)
	}
	return moved, nil
}

func (q *ValkeyQueue) Consume(ctx context.Context, handle Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		cmd := q.client.B().Blmove().Source(q.name).Destination(q.processing).
			Right().Left().Timeout(q.pollTimeout.Seconds()).Build()

		payload, err := q.client.Do(ctx, cmd).ToString()
		if valkey.IsValkeyNil(err) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to pop job from %s: %w", q.name, err)
		}

		job, err := decode([]byte(payload))
		if err != nil {
			logger.Errorf("Dropping malformed job payload: %v", err)
			q.ack(ctx, payload)
			continue
		}

		if err := handle(ctx, job); err != nil {
			q.requeue(ctx, payload)
			return fmt.Errorf("job %s: %w", job.ID, err)
		}

		q.ack(ctx, payload)
	}
}

// Len returns the number of waiting jobs.
func (q *ValkeyQueue) Len(ctx context.Context) (int64, error) {
	return q.client.Do(ctx, q.client.B().Llen().Key(q.name).Build()).AsInt64()
}

func (q *ValkeyQueue) ack(ctx context.Context, payload string) {
	cmd := q.client.B().Lrem().Key(q.processing).Count(1).Element(payload).Build()
	if err := q.client.Do(context.WithoutCancel(ctx), cmd).Error(); err != nil {
		logger.Errorf("Failed to ack job in %s: %v", q.processing, err)
	}
}

// requeue puts the payload back on the consuming end so it is taken next.
func (q *ValkeyQueue) requeue(ctx context.Context, payload string) {
	ctx = context.WithoutCancel(ctx)
	cmds := valkey.Commands{
		q.client.B().Lrem().Key(q.processing).Count(1).Element(payload).Build(),
		q.client.B().Rpush().Key(q.name).Element(payload).Build(),
	}
	for _, resp := range q.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			logger.Errorf("Failed to requeue job on %s: %v", q.name, err)
		}
	}
}

func (q *ValkeyQueue) Ping(ctx context.Context) error {
	return q.client.Do(ctx, q.client.B().Ping().Build()).Error()
}

// Close is a no-op: the valkey client is owned by the caller.
func (q *ValkeyQueue) Close() error {
	return nil
}
