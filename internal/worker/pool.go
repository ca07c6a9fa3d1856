// Package worker consumes dispatch jobs, calls providers and records the outcome.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/metrics"
	"github.com/onurcolak/dispatch-service/internal/queue"
	"github.com/onurcolak/dispatch-service/internal/requestctx"
	"github.com/onurcolak/dispatch-service/pkg/logger"
	"github.com/onurcolak/dispatch-service/pkg/webhook"
)

type jobSource interface {
	Consume(ctx context.Context, handle queue.Handler) error
}

type executor interface {
	Execute(ctx context.Context, job domain.DispatchJob) domain.ExecutionResult
}

type deliveryWriter interface {
	Create(ctx context.Context, entry *domain.DeliveryLogEntry) error
}

// JobTracker keeps idempotency markers and recent outcomes.
type JobTracker interface {
	IsJobDone(ctx context.Context, jobID string) (bool, error)
	MarkJobDone(ctx context.Context, jobID string, ttl time.Duration) error
	CacheDelivery(ctx context.Context, delivery domain.CachedDelivery) error
}

type Alerter interface {
	SendAlert(ctx context.Context, alert webhook.Alert) error
}

type Pool struct {
	source    jobSource
	executor  executor
	log       deliveryWriter
	tracker   JobTracker
	alerts    Alerter
	metrics   *metrics.Metrics
	dedupeTTL time.Duration

	workers        int
	restartDelay   time.Duration
	alertThreshold int

	// Internal state
	running  bool
	cancel   context.CancelFunc
	doneChan chan struct{}
	mu       sync.RWMutex

	// Statistics
	startedAt           time.Time
	lastJobAt           time.Time
	jobsProcessed       int64
	jobsSucceeded       int64
	jobsFailed          int64
	jobsSkipped         int64
	consecutiveFailures int
	lastAlertSentAt     time.Time
}

// NewPool wires a pool. tracker and alerts may be nil.
func NewPool(
	source jobSource,
	exec executor,
	log deliveryWriter,
	tracker JobTracker,
	alerts Alerter,
	cfg environments.WorkerConfig,
	alertThreshold int,
	m *metrics.Metrics,
) *Pool {
	return &Pool{
		source:         source,
		executor:       exec,
		log:            log,
		tracker:        tracker,
		alerts:         alerts,
		metrics:        m,
		dedupeTTL:      cfg.DedupeTTL,
		workers:        cfg.Count,
		restartDelay:   cfg.RestartDelay,
		alertThreshold: alertThreshold,
	}
}

func (p *Pool) StartWithParams(ctx context.Context, workers int, alertThreshold int) error {
	if workers <= 0 {
		workers = 1
	}

	p.mu.Lock()
	p.workers = workers
	p.alertThreshold = alertThreshold
	p.consecutiveFailures = 0
	p.mu.Unlock()

	return p.Start(ctx)
}

// Start launches the consumers. The pool outlives ctx's cancellation and runs
// until Stop is called.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()

	if p.running {
		p.mu.Unlock()
		logger.Warnf("Worker pool is already running")
		return nil
	}

	workers := p.workers
	if workers <= 0 {
		workers = 1
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.running = true
	p.cancel = cancel
	p.doneChan = make(chan struct{})
	p.startedAt = time.Now()
	p.mu.Unlock()

	logger.Infof("Starting worker pool with %d worker(s)", workers)

	go p.run(runCtx, workers)

	return nil
}

func (p *Pool) run(ctx context.Context, workers int) {
	defer close(p.doneChan)

	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i <= workers; i++ {
		id := i
		g.Go(func() error {
			p.consume(gctx, id)
			return nil
		})
	}

	_ = g.Wait()
}

// consume keeps one consumer attached to the queue, restarting it after
// backend errors until ctx is done.
func (p *Pool) consume(ctx context.Context, id int) {
	for {
		err := p.source.Consume(ctx, p.handle)
		if ctx.Err() != nil {
			logger.Debugf("Worker %d stopped", id)
			return
		}
		if errors.Is(err, queue.ErrClosed) {
			logger.Warnf("Worker %d: queue closed", id)
			return
		}
		if err != nil {
			logger.Errorf("Worker %d consumer error: %v (restarting in %v)", id, err, p.restartDelay)
		}

		select {
		case <-time.After(p.restartDelay):
		case <-ctx.Done():
			return
		}
	}
}

// handle executes one job and writes exactly one delivery log entry for it.
// A job whose idempotency marker is already set is acknowledged without
// calling the provider again.
func (p *Pool) handle(ctx context.Context, job domain.DispatchJob) error {
	jobCtx := requestctx.WithCorrelationID(ctx, job.CorrelationID)
	jobCtx = requestctx.WithActor(jobCtx, requestctx.Actor{ID: job.ActorID})
	log := logger.With(jobCtx)

	if p.tracker != nil {
		done, err := p.tracker.IsJobDone(jobCtx, job.ID)
		if err != nil {
			log.Warnf("Failed to check idempotency marker for job %s: %v", job.ID, err)
		}
		if done {
			log.Infof("Job %s already delivered, skipping", job.ID)
			p.mu.Lock()
			p.jobsSkipped++
			p.mu.Unlock()
			return nil
		}
	}

	// Once taken, a job runs to completion even if Stop is called meanwhile.
	// The gateway timeout bounds the call.
	jobCtx = context.WithoutCancel(jobCtx)
	result := p.executor.Execute(jobCtx, job)

	entry := newLogEntry(job, result)
	if err := p.log.Create(jobCtx, entry); err != nil {
		return fmt.Errorf("failed to write delivery log for job %s: %w", job.ID, err)
	}

	if p.tracker != nil {
		if err := p.tracker.MarkJobDone(jobCtx, job.ID, p.dedupeTTL); err != nil {
			log.Warnf("Failed to set idempotency marker for job %s: %v", job.ID, err)
		}
		cached := domain.CachedDelivery{
			JobID:     job.ID,
			Channel:   job.Channel,
			Status:    entry.Status,
			Recipient: job.Recipient,
			SentAt:    time.Now().UTC(),
		}
		if err := p.tracker.CacheDelivery(jobCtx, cached); err != nil {
			log.Warnf("Failed to cache delivery for job %s: %v", job.ID, err)
		}
	}

	p.metrics.Processed(string(job.Channel), string(entry.Status))

	if result.Success {
		log.Infof("Job %s delivered via %s provider %d in %v", job.ID, job.Channel, job.Provider.ID, result.Duration)
	} else {
		log.Warnf("Job %s failed via %s provider %d: %s", job.ID, job.Channel, job.Provider.ID, result.Response)
	}

	p.recordOutcome(job, result)
	return nil
}

func newLogEntry(job domain.DispatchJob, result domain.ExecutionResult) *domain.DeliveryLogEntry {
	status := domain.DeliveryFailed
	if result.Success {
		status = domain.DeliverySuccess
	}

	var payload string
	if data, err := json.Marshal(job); err == nil {
		payload = string(data)
	}

	return &domain.DeliveryLogEntry{
		JobID:       job.ID,
		Channel:     job.Channel,
		APIID:       job.Provider.ID,
		Numbers:     job.Recipient,
		Message:     job.Message,
		BaseURL:     job.Provider.BaseURL,
		Params:      result.Params,
		APIResponse: result.Response,
		Status:      status,
		JobPayload:  payload,
	}
}

func (p *Pool) recordOutcome(job domain.DispatchJob, result domain.ExecutionResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastJobAt = time.Now()
	p.jobsProcessed++

	if result.Success {
		if p.consecutiveFailures > 0 {
			logger.Debugf("Resetting consecutive failure count (was: %d)", p.consecutiveFailures)
		}
		p.jobsSucceeded++
		p.consecutiveFailures = 0
		return
	}

	p.jobsFailed++
	p.consecutiveFailures++

	threshold := p.alertThreshold
	if threshold > 0 && p.consecutiveFailures%threshold == 0 && p.alerts != nil {
		logger.Warnf("%d consecutive job failures, sending alert", p.consecutiveFailures)
		go p.sendAlert(job, result, p.consecutiveFailures)
	}
}

func (p *Pool) sendAlert(job domain.DispatchJob, result domain.ExecutionResult, consecutive int) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	alert := webhook.Alert{
		Alert:               "consecutive_failures",
		Channel:             string(job.Channel),
		JobID:               job.ID,
		ConsecutiveFailures: consecutive,
		LastResponse:        result.Response,
		Timestamp:           time.Now().UTC(),
		Message:             fmt.Sprintf("%d dispatch jobs failed in a row", consecutive),
	}

	if err := p.alerts.SendAlert(ctx, alert); err != nil {
		logger.Errorf("Failed to send failure alert: %v", err)
		return
	}

	p.mu.Lock()
	p.lastAlertSentAt = time.Now()
	p.mu.Unlock()
	logger.Infof("Failure alert sent (consecutive failures: %d)", consecutive)
}

func (p *Pool) Stop() error {
	p.mu.Lock()

	if !p.running {
		p.mu.Unlock()
		logger.Warnf("Worker pool is not running")
		return nil
	}

	p.running = false
	cancel := p.cancel
	doneChan := p.doneChan
	p.mu.Unlock()

	cancel()
	<-doneChan

	logger.Infof("Worker pool stopped")
	return nil
}

func (p *Pool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

func (p *Pool) GetStatus() PoolStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return PoolStatus{
		Running:             p.running,
		Workers:             p.workers,
		StartedAt:           p.startedAt,
		LastJobAt:           p.lastJobAt,
		JobsProcessed:       p.jobsProcessed,
		JobsSucceeded:       p.jobsSucceeded,
		JobsFailed:          p.jobsFailed,
		JobsSkipped:         p.jobsSkipped,
		ConsecutiveFailures: p.consecutiveFailures,
		AlertThreshold:      p.alertThreshold,
		LastAlertSentAt:     p.lastAlertSentAt,
	}
}

type PoolStatus struct {
	Running             bool      `json:"running"`
	Workers             int       `json:"workers"`
	StartedAt           time.Time `json:"startedAt,omitempty"`
	LastJobAt           time.Time `json:"lastJobAt,omitempty"`
	JobsProcessed       int64     `json:"jobsProcessed"`
	JobsSucceeded       int64     `json:"jobsSucceeded"`
	JobsFailed          int64     `json:"jobsFailed"`
	JobsSkipped         int64     `json:"jobsSkipped"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	AlertThreshold      int       `json:"alertThreshold"`
	LastAlertSentAt     time.Time `json:"lastAlertSentAt,omitempty"`
}
