package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onurcolak/dispatch-service/internal/audit"
	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
	"github.com/onurcolak/dispatch-service/internal/metrics"
	"github.com/onurcolak/dispatch-service/internal/placeholder"
	"github.com/onurcolak/dispatch-service/internal/requestctx"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

type templateStore interface {
	GetByID(ctx context.Context, id int64) (*domain.MessageTemplate, error)
}

type providerRegistry interface {
	ActiveProvider(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error)
	Signature(ctx context.Context, channel domain.Channel) (string, error)
}

type jobQueue interface {
	Enqueue(ctx context.Context, job domain.DispatchJob) error
}

type deliveryStore interface {
	GetByID(ctx context.Context, id int64) (*domain.DeliveryLogEntry, error)
	GetAll(ctx context.Context, filter domain.DeliveryFilter, page, pageSize int) ([]domain.DeliveryLogEntry, int64, error)
	GetStats(ctx context.Context) (*domain.DeliveryStats, error)
}

type DeliveryCache interface {
	GetAllCachedDeliveries(ctx context.Context) (map[string]*domain.CachedDelivery, error)
}

type auditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) <-chan error
}

type DispatchService struct {
	templates   templateStore
	registry    providerRegistry
	queue       jobQueue
	deliveries  deliveryStore
	cache       DeliveryCache
	emailPolicy EmailPolicy
	audit       auditRecorder
	metrics     *metrics.Metrics
	now         func() time.Time
	newID       func() string
}

func NewDispatchService(
	templates templateStore,
	registry providerRegistry,
	queue jobQueue,
	deliveries deliveryStore,
	cache DeliveryCache,
	emailPolicy EmailPolicy,
	recorder auditRecorder,
	m *metrics.Metrics,
) *DispatchService {
	return &DispatchService{
		templates:   templates,
		registry:    registry,
		queue:       queue,
		deliveries:  deliveries,
		cache:       cache,
		emailPolicy: emailPolicy,
		audit:       recorder,
		metrics:     m,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Dispatch renders the template for every eligible channel and enqueues one job
// per channel. It returns as soon as the jobs are queued.
func (s *DispatchService) Dispatch(ctx context.Context, req domain.DispatchRequest) (*domain.DispatchResult, error) {
	if req.TemplateID <= 0 {
		return nil, fmt.Errorf("%w: id %d", errs.ErrTemplateNotFound, req.TemplateID)
	}
	if req.Recipient.Empty() {
		return nil, errs.ErrNoContact
	}

	tmpl, err := s.resolveTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	log := logger.With(ctx)
	result := &domain.DispatchResult{Accepted: true, Jobs: []domain.JobRef{}}

	attempted := 0
	for _, channel := range domain.DispatchOrder {
		job, reason := s.buildJob(ctx, tmpl, channel, req)
		if reason != "" {
			s.skip(result, channel, reason)
			continue
		}

		attempted++
		if err := s.queue.Enqueue(ctx, job); err != nil {
			log.Errorf("Failed to enqueue %s job for template %d: %v", channel, tmpl.ID, err)
			s.skip(result, channel, domain.SkipEnqueueFailed)
			continue
		}

		s.metrics.Enqueued(string(channel))
		result.Jobs = append(result.Jobs, domain.JobRef{ID: job.ID, Channel: channel})
	}

	if attempted > 0 && len(result.Jobs) == 0 {
		return result, fmt.Errorf("%w: template %d", errs.ErrEnqueue, tmpl.ID)
	}

	log.Infof("Dispatch for template %d enqueued %d job(s), skipped %d channel(s)",
		tmpl.ID, len(result.Jobs), len(result.Skipped))

	s.record(ctx, audit.Entry{
		Table:  "message_templates",
		RowID:  strconv.FormatInt(tmpl.ID, 10),
		Action: "dispatch.accepted",
		Remark: joinChannels(result.Channels()),
	})

	return result, nil
}

func (s *DispatchService) resolveTemplate(ctx context.Context, id int64) (*domain.MessageTemplate, error) {
	tmpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, fmt.Errorf("%w: id %d", errs.ErrTemplateNotFound, id)
	}
	return tmpl, nil
}

// buildJob returns the job for one channel, or the reason the channel is skipped.
func (s *DispatchService) buildJob(
	ctx context.Context,
	tmpl *domain.MessageTemplate,
	channel domain.Channel,
	req domain.DispatchRequest,
) (domain.DispatchJob, domain.SkipReason) {
	log := logger.With(ctx)
	content := tmpl.Content(channel)

	if reason := s.eligibility(tmpl, channel, req.Recipient); reason != "" {
		return domain.DispatchJob{}, reason
	}
	recipient := req.Recipient.For(channel)

	body, err := placeholder.Render(content.Body, req.Placeholders)
	if err != nil {
		log.Warnf("Failed to render %s content for template %d: %v", channel, tmpl.ID, err)
		return domain.DispatchJob{}, domain.SkipRenderError
	}
	subject, err := placeholder.Render(content.Subject, req.Placeholders)
	if err != nil {
		return domain.DispatchJob{}, domain.SkipRenderError
	}
	title, err := placeholder.Render(content.Title, req.Placeholders)
	if err != nil {
		return domain.DispatchJob{}, domain.SkipRenderError
	}

	if left := placeholder.Unresolved(body); len(left) > 0 {
		log.Debugf("Template %d %s content has unresolved tokens: %v", tmpl.ID, channel, left)
	}

	provider, err := s.registry.ActiveProvider(ctx, channel)
	if err != nil {
		if errors.Is(err, errs.ErrNoActiveProvider) {
			log.Warnf("No active provider for %s, skipping channel", channel)
		} else {
			log.Errorf("Failed to resolve %s provider: %v", channel, err)
		}
		return domain.DispatchJob{}, domain.SkipNoActiveProvider
	}

	signature, err := s.registry.Signature(ctx, channel)
	if err != nil {
		log.Warnf("Failed to resolve %s signature, sending unsigned: %v", channel, err)
	}

	actor := requestctx.ActorFrom(ctx)

	return domain.DispatchJob{
		ID:          s.newID(),
		Channel:     channel,
		TemplateID:  tmpl.ID,
		TemplateRef: valueOf(tmpl.SMSTemplateID),
		Recipient:   recipient,
		Subject:     subject,
		Title:       title,
		Message:     Sign(body, signature),
		Attachment:  req.Attachment,
		Provider: domain.ProviderRef{
			ID:      provider.ID,
			BaseURL: provider.BaseURL,
			Params:  provider.Params,
			Method:  provider.Method,
		},
		SubjectID:     req.SubjectID,
		ActorID:       actor.ID,
		CorrelationID: requestctx.CorrelationID(ctx),
		EnqueuedAt:    s.now().UTC(),
	}, ""
}

// eligibility checks the template flag, the email exclusion set and the
// recipient for one channel.
func (s *DispatchService) eligibility(
	tmpl *domain.MessageTemplate,
	channel domain.Channel,
	recipient domain.Recipient,
) domain.SkipReason {
	content := tmpl.Content(channel)
	if !content.Enabled {
		return domain.SkipDisabled
	}
	if channel == domain.ChannelEmail && !s.emailPolicy.Allows(tmpl.ID) {
		return domain.SkipExcluded
	}
	if !content.Complete(channel) {
		return domain.SkipNoContent
	}
	if recipient.For(channel) == "" {
		return domain.SkipNoRecipient
	}
	return ""
}

// Plan lists, in dispatch order, the channels a dispatch of the template to the
// recipient would currently use. Nothing is rendered or enqueued.
func (s *DispatchService) Plan(ctx context.Context, templateID int64, recipient domain.Recipient) ([]domain.Channel, error) {
	tmpl, err := s.resolveTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var channels []domain.Channel
	for _, channel := range domain.DispatchOrder {
		if s.eligibility(tmpl, channel, recipient) != "" {
			continue
		}
		if _, err := s.registry.ActiveProvider(ctx, channel); err != nil {
			continue
		}
		channels = append(channels, channel)
	}

	return channels, nil
}

func (s *DispatchService) skip(result *domain.DispatchResult, channel domain.Channel, reason domain.SkipReason) {
	result.Skipped = append(result.Skipped, domain.ChannelSkip{Channel: channel, Reason: reason})
	s.metrics.Skipped(string(channel), string(reason))
}

func (s *DispatchService) GetDeliveries(
	ctx context.Context,
	filter domain.DeliveryFilter,
	page,
	pageSize int,
) ([]domain.DeliveryLogEntry, int64, error) {
	return s.deliveries.GetAll(ctx, filter, page, pageSize)
}

func (s *DispatchService) GetDeliveryStats(ctx context.Context) (*domain.DeliveryStats, error) {
	return s.deliveries.GetStats(ctx)
}

func (s *DispatchService) GetCachedDeliveries(ctx context.Context) (map[string]*domain.CachedDelivery, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("redis client not configured")
	}
	return s.cache.GetAllCachedDeliveries(ctx)
}

// ReplayDelivery re-enqueues the job stored with a failed delivery log entry
// under a new job id.
func (s *DispatchService) ReplayDelivery(ctx context.Context, id int64) (*domain.JobRef, error) {
	entry, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: id %d", errs.ErrDeliveryNotFound, id)
	}
	if entry.Status != domain.DeliveryFailed || entry.JobPayload == "" {
		return nil, fmt.Errorf("%w: id %d", errs.ErrReplayNotAllowed, id)
	}

	var job domain.DispatchJob
	if err := json.Unmarshal([]byte(entry.JobPayload), &job); err != nil {
		return nil, fmt.Errorf("failed to decode stored job %d: %w", id, err)
	}

	job.ID = s.newID()
	job.ActorID = requestctx.ActorFrom(ctx).ID
	job.CorrelationID = requestctx.CorrelationID(ctx)
	job.EnqueuedAt = s.now().UTC()

	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEnqueue, err)
	}

	s.metrics.Enqueued(string(job.Channel))
	logger.With(ctx).Infof("Replayed delivery %d as job %s", id, job.ID)

	s.record(ctx, audit.Entry{
		Table:  "msg_logs",
		RowID:  strconv.FormatInt(id, 10),
		Action: "delivery.replayed",
		Remark: job.ID,
	})

	return &domain.JobRef{ID: job.ID, Channel: job.Channel}, nil
}

func (s *DispatchService) record(ctx context.Context, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, entry)
}

func joinChannels(channels []domain.Channel) string {
	names := make([]string, 0, len(channels))
	for _, c := range channels {
		names = append(names, string(c))
	}
	return strings.Join(names, ",")
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
