package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/onurcolak/dispatch-service/internal/audit"
	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
)

//
// Test fakes shared by the service tests.
//

func strPtr(s string) *string { return &s }

type fakeTemplates struct {
	byID map[int64]*domain.MessageTemplate
}

func (f *fakeTemplates) GetByID(ctx context.Context, id int64) (*domain.MessageTemplate, error) {
	return f.byID[id], nil
}

type fakeRegistry struct {
	providers  map[domain.Channel]*domain.ProviderConfig
	signatures map[domain.Channel]string
}

func (f *fakeRegistry) ActiveProvider(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error) {
	if p, ok := f.providers[channel]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w for %s", errs.ErrNoActiveProvider, channel)
}

func (f *fakeRegistry) Signature(ctx context.Context, channel domain.Channel) (string, error) {
	return f.signatures[channel], nil
}

type fakeQueue struct {
	mu        sync.Mutex
	jobs      []domain.DispatchJob
	failFor   map[domain.Channel]bool
	onEnqueue func(job domain.DispatchJob)
}

func (q *fakeQueue) Enqueue(ctx context.Context, job domain.DispatchJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.failFor[job.Channel] {
		return fmt.Errorf("simulated queue error")
	}
	if q.onEnqueue != nil {
		q.onEnqueue(job)
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) channels() []domain.Channel {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.Channel, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j.Channel)
	}
	return out
}

type fakeDeliveries struct {
	entries map[int64]*domain.DeliveryLogEntry
}

func (f *fakeDeliveries) GetByID(ctx context.Context, id int64) (*domain.DeliveryLogEntry, error) {
	return f.entries[id], nil
}

func (f *fakeDeliveries) GetAll(
	ctx context.Context,
	filter domain.DeliveryFilter,
	page, pageSize int,
) ([]domain.DeliveryLogEntry, int64, error) {
	var out []domain.DeliveryLogEntry
	for _, e := range f.entries {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeDeliveries) GetStats(ctx context.Context) (*domain.DeliveryStats, error) {
	stats := &domain.DeliveryStats{}
	for _, e := range f.entries {
		if e.Status == domain.DeliverySuccess {
			stats.Success++
		} else {
			stats.Failed++
		}
		stats.Total++
	}
	return stats, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *fakeAudit) Record(ctx context.Context, entry audit.Entry) <-chan error {
	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()

	done := make(chan error, 1)
	done <- nil
	return done
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

// fakeOtpStore mirrors the repository queries in memory.
type fakeOtpStore struct {
	mu      sync.Mutex
	records []*domain.OtpRecord
	nextID  int64
}

func (s *fakeOtpStore) Create(ctx context.Context, rec *domain.OtpRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec.ID = s.nextID
	copied := *rec
	s.records = append(s.records, &copied)
	return nil
}

func (s *fakeOtpStore) FindLatestUnverified(ctx context.Context, userID, code string) (*domain.OtpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []*domain.OtpRecord
	for _, r := range s.records {
		if r.UserID == userID && r.Otp == code && !r.IsVerified {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	copied := *matches[0]
	return &copied, nil
}

func (s *fakeOtpStore) HasVerified(ctx context.Context, userID, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.UserID == userID && r.Otp == code && r.IsVerified {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeOtpStore) MarkVerified(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == id && !r.IsVerified {
			r.IsVerified = true
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeOtpStore) UpdateType(ctx context.Context, id int64, channels string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == id {
			r.Type = channels
		}
	}
	return nil
}

func (s *fakeOtpStore) Discard(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, r := range s.records {
		if r.ID != id || r.IsVerified {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func (s *fakeOtpStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

//
// Fixtures
//

func smsProvider() *domain.ProviderConfig {
	return &domain.ProviderConfig{
		ID:      1,
		APIType: domain.ChannelSMS,
		BaseURL: "https://sms.example.com/send",
		Params:  "to=[NUMBER]&msg=[MESSAGE]",
		Method:  domain.MethodGet,
		Status:  domain.StatusActive,
	}
}

func allProviders() map[domain.Channel]*domain.ProviderConfig {
	providers := make(map[domain.Channel]*domain.ProviderConfig)
	for i, c := range domain.DispatchOrder {
		providers[c] = &domain.ProviderConfig{
			ID:      int64(i + 1),
			APIType: c,
			BaseURL: "https://" + string(c) + ".example.com/send",
			Params:  "to=[NUMBER]&msg=[MESSAGE]",
			Method:  domain.MethodGet,
			Status:  domain.StatusActive,
		}
	}
	return providers
}

func newTemplate(id int64, sms, whatsapp, email domain.Flag) *domain.MessageTemplate {
	return &domain.MessageTemplate{
		ID:               id,
		SendSMS:          sms,
		SendWhatsApp:     whatsapp,
		SendEmail:        email,
		SendNotification: domain.FlagNo,
		SMSContent:       strPtr("Hi {NAME}, your code is {OTP}"),
		WhatsAppContent:  strPtr("Hi {NAME}, your code is {OTP}"),
		MailSubject:      strPtr("Code for {NAME}"),
		MailContent:      strPtr("Hi {NAME}, your code is {OTP}"),
	}
}

type serviceFixture struct {
	templates  *fakeTemplates
	registry   *fakeRegistry
	queue      *fakeQueue
	deliveries *fakeDeliveries
	audit      *fakeAudit
	svc        *DispatchService
}

func newServiceFixture(templates ...*domain.MessageTemplate) *serviceFixture {
	f := &serviceFixture{
		templates:  &fakeTemplates{byID: make(map[int64]*domain.MessageTemplate)},
		registry:   &fakeRegistry{providers: allProviders(), signatures: map[domain.Channel]string{}},
		queue:      &fakeQueue{},
		deliveries: &fakeDeliveries{entries: make(map[int64]*domain.DeliveryLogEntry)},
		audit:      &fakeAudit{},
	}
	for _, t := range templates {
		f.templates.byID[t.ID] = t
	}

	policy, _ := ParseEmailPolicy("2-6,10")

	ids := 0
	f.svc = NewDispatchService(f.templates, f.registry, f.queue, f.deliveries, nil, policy, f.audit, nil)
	f.svc.newID = func() string {
		ids++
		return fmt.Sprintf("job-%d", ids)
	}
	return f
}
