package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/queue"
	"github.com/onurcolak/dispatch-service/internal/service"
	"github.com/onurcolak/dispatch-service/internal/worker"
	"github.com/onurcolak/dispatch-service/pkg/response"
	validatorpkg "github.com/onurcolak/dispatch-service/pkg/validator"
)

type stubTemplates map[int64]*domain.MessageTemplate

func (s stubTemplates) GetByID(ctx context.Context, id int64) (*domain.MessageTemplate, error) {
	return s[id], nil
}

type stubRegistry struct{}

func (stubRegistry) ActiveProvider(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error) {
	return &domain.ProviderConfig{
		ID:      1,
		APIType: channel,
		BaseURL: "http://gateway.local/send",
		Params:  "to=[NUMBER]&msg=[MESSAGE]",
		Method:  domain.MethodGet,
		Status:  domain.StatusActive,
	}, nil
}

func (stubRegistry) Signature(ctx context.Context, channel domain.Channel) (string, error) {
	return "", nil
}

type stubDeliveries map[int64]*domain.DeliveryLogEntry

func (s stubDeliveries) GetByID(ctx context.Context, id int64) (*domain.DeliveryLogEntry, error) {
	return s[id], nil
}

func (s stubDeliveries) GetAll(
	ctx context.Context,
	filter domain.DeliveryFilter,
	page, pageSize int,
) ([]domain.DeliveryLogEntry, int64, error) {
	return nil, 0, nil
}

func (s stubDeliveries) GetStats(ctx context.Context) (*domain.DeliveryStats, error) {
	return &domain.DeliveryStats{}, nil
}

type stubOtpStore struct {
	latest   *domain.OtpRecord
	verified bool
}

func (s *stubOtpStore) Create(ctx context.Context, rec *domain.OtpRecord) error {
	return nil
}

func (s *stubOtpStore) FindLatestUnverified(ctx context.Context, userID, code string) (*domain.OtpRecord, error) {
	return s.latest, nil
}

func (s *stubOtpStore) HasVerified(ctx context.Context, userID, code string) (bool, error) {
	return s.verified, nil
}

func (s *stubOtpStore) MarkVerified(ctx context.Context, id int64) (bool, error) {
	return true, nil
}

func (s *stubOtpStore) UpdateType(ctx context.Context, id int64, channels string) error {
	return nil
}

func (s *stubOtpStore) Discard(ctx context.Context, id int64) error {
	return nil
}

func newDispatchService(t *testing.T, deliveries stubDeliveries) (*service.DispatchService, *queue.MemoryQueue) {
	t.Helper()

	sms := "Hello {NAME}"
	templates := stubTemplates{7: {
		ID:               7,
		SendSMS:          domain.FlagYes,
		SendWhatsApp:     domain.FlagNo,
		SendEmail:        domain.FlagNo,
		SendNotification: domain.FlagNo,
		SMSContent:       &sms,
	}}

	policy, err := service.ParseEmailPolicy("2-6,10")
	if err != nil {
		t.Fatalf("ParseEmailPolicy returned error: %v", err)
	}

	q := queue.NewMemoryQueue(8)
	t.Cleanup(func() { _ = q.Close() })

	return service.NewDispatchService(templates, stubRegistry{}, q, deliveries, nil, policy, nil, nil), q
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newValidatedEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validatorpkg.New()
	return e
}

// TestDispatch_BadJSON verifies that invalid JSON returns 400 Bad Request.
func TestDispatch_BadJSON(t *testing.T) {
	e := echo.New()
	handler := NewDispatchHandler(nil)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/dispatch", `{"templateId": 7, "phone":`)

	if err := handler.Dispatch(c); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var resp response.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Fatalf("expected an error response, got %+v", resp)
	}
}

// TestDispatch_ValidationFails verifies that a missing template id and a
// malformed email are reported as 422 with per-field details.
func TestDispatch_ValidationFails(t *testing.T) {
	e := newValidatedEcho()
	handler := NewDispatchHandler(nil)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/dispatch", `{"templateId": 0, "email": "not-an-email"}`)

	if err := handler.Dispatch(c); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	var resp validatorpkg.ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	for _, field := range []string{"templateId", "email"} {
		if _, ok := resp.Details[field]; !ok {
			t.Fatalf("expected Details to contain %q, got %v", field, resp.Details)
		}
	}
}

func TestDispatch_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "accepted", body: `{"templateId": 7, "phone": "9876543210", "placeholders": {"{NAME}": "Asha"}}`, want: http.StatusAccepted},
		{name: "unknown template", body: `{"templateId": 99, "phone": "9876543210"}`, want: http.StatusNotFound},
		{name: "no contact", body: `{"templateId": 7}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, q := newDispatchService(t, nil)
			handler := NewDispatchHandler(svc)
			c, rec := newJSONContext(newValidatedEcho(), http.MethodPost, "/api/v1/dispatch", tt.body)

			if err := handler.Dispatch(c); err != nil {
				t.Fatalf("Dispatch returned error: %v", err)
			}

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d (%s)", tt.want, rec.Code, rec.Body.String())
			}
			if tt.want == http.StatusAccepted && q.Len() != 1 {
				t.Fatalf("expected 1 queued job, got %d", q.Len())
			}
		})
	}
}

// TestVerifyOtp_MalformedCode verifies that a code that is not six digits is
// rejected by validation before the service is reached.
func TestVerifyOtp_MalformedCode(t *testing.T) {
	e := newValidatedEcho()
	handler := NewOtpHandler(nil)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/otp/verify", `{"subjectId": "user-1", "otp": "12ab56"}`)

	if err := handler.VerifyOtp(c); err != nil {
		t.Fatalf("VerifyOtp returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	var resp validatorpkg.ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if _, ok := resp.Details["otp"]; !ok {
		t.Fatalf("expected Details to contain 'otp', got %v", resp.Details)
	}
}

func TestVerifyOtp_StatusMapping(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name       string
		store      *stubOtpStore
		want       int
		wantReason domain.OtpFailureReason
	}{
		{name: "verified", store: &stubOtpStore{latest: &domain.OtpRecord{ID: 1, ExpiresAt: future}}, want: http.StatusOK},
		{name: "wrong code", store: &stubOtpStore{}, want: http.StatusBadRequest, wantReason: domain.OtpReasonInvalid},
		{name: "expired", store: &stubOtpStore{latest: &domain.OtpRecord{ID: 1, ExpiresAt: past}}, want: http.StatusGone, wantReason: domain.OtpReasonExpired},
		{name: "already verified", store: &stubOtpStore{verified: true}, want: http.StatusConflict, wantReason: domain.OtpReasonAlreadyVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewOtpService(tt.store, nil, environments.OTPConfig{TemplateID: 2, TTL: 5 * time.Minute}, nil, nil)
			handler := NewOtpHandler(svc)
			c, rec := newJSONContext(newValidatedEcho(), http.MethodPost, "/api/v1/otp/verify",
				`{"subjectId": "user-1", "otp": "482913"}`)

			if err := handler.VerifyOtp(c); err != nil {
				t.Fatalf("VerifyOtp returned error: %v", err)
			}

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d (%s)", tt.want, rec.Code, rec.Body.String())
			}

			var body struct {
				Data domain.OtpVerifyResult `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to unmarshal response body: %v", err)
			}
			if body.Data.Verified != (tt.wantReason == "") || body.Data.Reason != tt.wantReason {
				t.Fatalf("expected reason %q, got %+v", tt.wantReason, body.Data)
			}
		})
	}
}

func TestGetDeliveries_InvalidFilter(t *testing.T) {
	e := newValidatedEcho()
	handler := NewDeliveryHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deliveries?status=pending&channel=Fax", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetDeliveries(c); err != nil {
		t.Fatalf("GetDeliveries returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	var resp validatorpkg.ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	for _, field := range []string{"status", "channel"} {
		if _, ok := resp.Details[field]; !ok {
			t.Fatalf("expected Details to contain %q, got %v", field, resp.Details)
		}
	}
}

func TestGetDeliveries_InvalidPageSize(t *testing.T) {
	e := newValidatedEcho()
	handler := NewDeliveryHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deliveries?pageSize=500", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetDeliveries(c); err != nil {
		t.Fatalf("GetDeliveries returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestReplayDelivery_StatusMapping(t *testing.T) {
	deliveries := stubDeliveries{
		1: {ID: 1, Status: domain.DeliverySuccess, JobPayload: `{"id":"job-1","channel":"SMS"}`},
		2: {ID: 2, Status: domain.DeliveryFailed, JobPayload: `{"id":"job-2","channel":"SMS","recipient":"9876543210"}`},
	}

	tests := []struct {
		name string
		id   string
		want int
	}{
		{name: "invalid id", id: "abc", want: http.StatusBadRequest},
		{name: "missing entry", id: "9", want: http.StatusNotFound},
		{name: "successful entry", id: "1", want: http.StatusConflict},
		{name: "failed entry", id: "2", want: http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newDispatchService(t, deliveries)
			handler := NewDeliveryHandler(svc)

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/api/v1/deliveries/:id/replay")
			c.SetParamNames("id")
			c.SetParamValues(tt.id)

			if err := handler.ReplayDelivery(c); err != nil {
				t.Fatalf("ReplayDelivery returned error: %v", err)
			}

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d (%s)", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateProvider_ValidationFails(t *testing.T) {
	e := newValidatedEcho()
	handler := NewAdminHandler(nil)

	body := `{"apiType": "Fax", "baseUrl": "not a url", "method": "PUT"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/providers", body)

	if err := handler.CreateProvider(c); err != nil {
		t.Fatalf("CreateProvider returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	var resp validatorpkg.ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	for _, field := range []string{"apiType", "baseUrl", "method"} {
		if _, ok := resp.Details[field]; !ok {
			t.Fatalf("expected Details to contain %q, got %v", field, resp.Details)
		}
	}
}

func TestHealth_ReportsComponents(t *testing.T) {
	q := queue.NewMemoryQueue(1)
	handler := NewHealthHandler(nil, nil, q, "memory")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Health(c); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}

	var body struct {
		Status     string `json:"status"`
		Components map[string]struct {
			Status  string `json:"status"`
			Backend string `json:"backend"`
		} `json:"components"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 without a database, got %d", rec.Code)
	}
	if body.Status != "down" {
		t.Fatalf("expected overall status down without a database, got %q", body.Status)
	}
	if got := body.Components["redis"].Status; got != "disabled" {
		t.Fatalf("expected redis disabled, got %q", got)
	}
	if got := body.Components["queue"]; got.Status != "up" || got.Backend != "memory" {
		t.Fatalf("unexpected queue component %+v", got)
	}

	_ = q.Close()
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := handler.Health(c); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if got := body.Components["queue"].Status; got != "down" {
		t.Fatalf("expected queue down after close, got %q", got)
	}
}

func TestWorkers_KafkaBackendForcesSingleConsumer(t *testing.T) {
	q := queue.NewMemoryQueue(1)
	t.Cleanup(func() { _ = q.Close() })

	cfg := &environments.Config{}
	cfg.Queue.Backend = "kafka"
	cfg.Worker.Count = 4
	cfg.Worker.RestartDelay = 10 * time.Millisecond

	pool := worker.NewPool(q, nil, nil, nil, nil, cfg.Worker, 0, nil)
	handler := NewWorkerHandler(pool, context.Background(), cfg)
	e := newValidatedEcho()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/workers/start", `{"workers":8,"alertThreshold":3}`)
	if err := handler.StartWorkers(c); err != nil {
		t.Fatalf("StartWorkers returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	status := pool.GetStatus()
	if !status.Running || status.Workers != 1 || status.AlertThreshold != 3 {
		t.Fatalf("expected one running kafka consumer with threshold 3, got %+v", status)
	}

	c, rec = newJSONContext(e, http.MethodPost, "/api/v1/workers/stop", "")
	if err := handler.StopWorkers(c); err != nil {
		t.Fatalf("StopWorkers returned error: %v", err)
	}
	if rec.Code != http.StatusOK || pool.IsRunning() {
		t.Fatalf("expected pool stopped, got status %d running=%v", rec.Code, pool.IsRunning())
	}
}

func TestWorkers_StartRejectsOutOfRangeCount(t *testing.T) {
	cfg := &environments.Config{}
	cfg.Queue.Backend = "memory"

	pool := worker.NewPool(queue.NewMemoryQueue(1), nil, nil, nil, nil, cfg.Worker, 0, nil)
	handler := NewWorkerHandler(pool, context.Background(), cfg)

	c, rec := newJSONContext(newValidatedEcho(), http.MethodPost, "/api/v1/workers/start", `{"workers":0}`)
	if err := handler.StartWorkers(c); err != nil {
		t.Fatalf("StartWorkers returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
	if pool.IsRunning() {
		t.Fatalf("pool must not start on invalid input")
	}
}
