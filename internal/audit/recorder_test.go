package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/onurcolak/dispatch-service/internal/metrics"
	"github.com/onurcolak/dispatch-service/internal/requestctx"
)

type captureSink struct {
	entries chan Entry
	err     error
}

func (s *captureSink) Write(ctx context.Context, entry Entry) error {
	s.entries <- entry
	return s.err
}

func TestRecorder_FillsIdentityFromContext(t *testing.T) {
	sink := &captureSink{entries: make(chan Entry, 1)}
	recorder := NewRecorder(sink, nil)
	recorder.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	ctx := requestctx.WithActor(context.Background(), requestctx.Actor{ID: "admin-7", IP: "10.1.2.3"})
	ctx = requestctx.WithCorrelationID(ctx, "req-123")

	if err := <-recorder.Record(ctx, Entry{Table: "msg_apis", RowID: "5", Action: "provider.status"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	entry := <-sink.entries
	if entry.ActorID != "admin-7" || entry.IP != "10.1.2.3" || entry.CorrelationID != "req-123" {
		t.Fatalf("identity not filled from context: %+v", entry)
	}
	if !entry.At.Equal(recorder.now()) {
		t.Fatalf("expected timestamp %v, got %v", recorder.now(), entry.At)
	}
}

func TestRecorder_WriteSurvivesCancelledRequest(t *testing.T) {
	sink := &captureSink{entries: make(chan Entry, 1)}
	recorder := NewRecorder(sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := recorder.Record(ctx, Entry{Table: "msg_logs", RowID: "1", Action: "delivery.replayed"})
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("expected write to succeed after cancel, got %v", err)
	}
}

func TestRecorder_FailureIsCountedNotPropagated(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sink := &captureSink{entries: make(chan Entry, 1), err: errors.New("table locked")}
	recorder := NewRecorder(sink, m)

	err := <-recorder.Record(context.Background(), Entry{Table: "otp_verifications", RowID: "9", Action: "otp.issued"})
	if err == nil {
		t.Fatalf("expected the write error on the result channel")
	}

	if got := testutil.ToFloat64(m.AuditFailures); got != 1 {
		t.Fatalf("expected 1 audit failure, got %v", got)
	}
}

func TestRecorder_NilSinkIsNoop(t *testing.T) {
	recorder := NewRecorder(nil, nil)

	if err := <-recorder.Record(context.Background(), Entry{Action: "dispatch.accepted"}); err != nil {
		t.Fatalf("expected nil from a recorder without sink, got %v", err)
	}
}
