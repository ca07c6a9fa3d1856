package worker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
	"github.com/onurcolak/dispatch-service/internal/metrics"
	"github.com/onurcolak/dispatch-service/internal/queue"
	"github.com/onurcolak/dispatch-service/internal/service"
	"github.com/onurcolak/dispatch-service/pkg/gateway"
)

type staticTemplates map[int64]*domain.MessageTemplate

func (s staticTemplates) GetByID(ctx context.Context, id int64) (*domain.MessageTemplate, error) {
	return s[id], nil
}

type staticRegistry map[domain.Channel]*domain.ProviderConfig

func (r staticRegistry) ActiveProvider(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error) {
	if p, ok := r[channel]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w for %s", errs.ErrNoActiveProvider, channel)
}

func (r staticRegistry) Signature(ctx context.Context, channel domain.Channel) (string, error) {
	return "", nil
}

func waitForEntries(t *testing.T, writer *fakeLogWriter, n int) []domain.DeliveryLogEntry {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if entries := writer.snapshot(); len(entries) >= n {
			return entries
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d log entries, got %d", n, len(writer.snapshot()))
	return nil
}

func TestPipeline_DispatchToDeliveryLog(t *testing.T) {
	queries := make(chan string, 4)
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"sent"}`)
	}))
	defer provider.Close()

	sms := "Hi {NAME}, your code is {OTP}"
	templates := staticTemplates{1: {
		ID:               1,
		SendSMS:          domain.FlagYes,
		SendWhatsApp:     domain.FlagNo,
		SendEmail:        domain.FlagNo,
		SendNotification: domain.FlagNo,
		SMSContent:       &sms,
	}}
	registry := staticRegistry{domain.ChannelSMS: {
		ID:      11,
		APIType: domain.ChannelSMS,
		BaseURL: provider.URL,
		Params:  "to=[NUMBER]&msg=[MESSAGE]",
		Method:  domain.MethodGet,
		Status:  domain.StatusActive,
	}}

	q := queue.NewMemoryQueue(16)
	defer q.Close()

	policy, _ := service.ParseEmailPolicy("2-6,10")
	m := metrics.New(prometheus.NewRegistry())
	dispatcher := service.NewDispatchService(templates, registry, q, nil, nil, policy, nil, m)

	result, err := dispatcher.Dispatch(context.Background(), domain.DispatchRequest{
		TemplateID:   1,
		Placeholders: map[string]string{"{NAME}": "Asha", "{OTP}": "482913"},
		Recipient:    domain.Recipient{Phone: "9876543210"},
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(result.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %+v", result)
	}

	writer := &fakeLogWriter{}
	exec := NewInstrumentedExecutor(gateway.NewClient(environments.GatewayConfig{Timeout: 2 * time.Second}, nil), m)
	pool := NewPool(q, exec, writer, newFakeTracker(), nil,
		environments.WorkerConfig{Count: 2, RestartDelay: 10 * time.Millisecond, DedupeTTL: time.Hour}, 0, m)

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer pool.Stop()

	entries := waitForEntries(t, writer, 1)

	// Give a second consumer the chance to misbehave before counting.
	time.Sleep(50 * time.Millisecond)
	if n := len(writer.snapshot()); n != 1 {
		t.Fatalf("expected exactly 1 log entry, got %d", n)
	}

	entry := entries[0]
	expectedParams := "to=9876543210&msg=Hi%20Asha%2C%20your%20code%20is%20482913"

	if entry.Message != "Hi Asha, your code is 482913" {
		t.Fatalf("unexpected message %q", entry.Message)
	}
	if entry.Params != expectedParams {
		t.Fatalf("expected params %q, got %q", expectedParams, entry.Params)
	}
	if got := <-queries; got != expectedParams {
		t.Fatalf("provider received query %q, expected %q", got, expectedParams)
	}
	if entry.Status != domain.DeliverySuccess || entry.APIResponse != `{"status":"sent"}` {
		t.Fatalf("unexpected outcome %+v", entry)
	}
	if entry.JobID != result.Jobs[0].ID {
		t.Fatalf("expected job id %q, got %q", result.Jobs[0].ID, entry.JobID)
	}

	if got := testutil.ToFloat64(m.JobsProcessed.WithLabelValues("SMS", "success")); got != 1 {
		t.Fatalf("expected 1 processed SMS job, got %v", got)
	}
	if got := testutil.CollectAndCount(m.GatewayDuration); got != 1 {
		t.Fatalf("expected 1 gateway duration series, got %d", got)
	}
}
