// Package audit records side-effect audit entries without blocking the caller.
package audit

import (
	"context"
	"time"

	"github.com/onurcolak/dispatch-service/internal/metrics"
	"github.com/onurcolak/dispatch-service/internal/requestctx"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

type Entry struct {
	Table         string
	RowID         string
	Action        string
	ActorID       string
	IP            string
	CorrelationID string
	Remark        string
	At            time.Time
}

type Sink interface {
	Write(ctx context.Context, entry Entry) error
}

// Recorder writes entries asynchronously. Failures are logged and counted and
// never reach the primary operation.
type Recorder struct {
	sink    Sink
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
}

func NewRecorder(sink Sink, m *metrics.Metrics) *Recorder {
	return &Recorder{
		sink:    sink,
		metrics: m,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// Record fills identity fields from ctx and writes the entry on its own
// goroutine. The returned channel yields the write result exactly once and is
// buffered, so callers may ignore it.
func (r *Recorder) Record(ctx context.Context, entry Entry) <-chan error {
	done := make(chan error, 1)

	if r == nil || r.sink == nil {
		done <- nil
		return done
	}

	actor := requestctx.ActorFrom(ctx)
	if entry.ActorID == "" {
		entry.ActorID = actor.ID
	}
	if entry.IP == "" {
		entry.IP = actor.IP
	}
	if entry.CorrelationID == "" {
		entry.CorrelationID = requestctx.CorrelationID(ctx)
	}
	if entry.At.IsZero() {
		entry.At = r.now().UTC()
	}

	writeCtx := context.WithoutCancel(ctx)

	go func() {
		writeCtx, cancel := context.WithTimeout(writeCtx, r.timeout)
		defer cancel()

		err := r.sink.Write(writeCtx, entry)
		if err != nil {
			r.metrics.AuditFailed()
			logger.With(writeCtx).Errorf("Audit write failed for %s %s/%s: %v", entry.Action, entry.Table, entry.RowID, err)
		}
		done <- err
	}()

	return done
}
