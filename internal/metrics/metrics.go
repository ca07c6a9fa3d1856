package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	JobsEnqueued    *prometheus.CounterVec
	ChannelsSkipped *prometheus.CounterVec
	JobsProcessed   *prometheus.CounterVec
	GatewayDuration *prometheus.SummaryVec
	OtpIssued       prometheus.Counter
	OtpVerified     *prometheus.CounterVec
	AuditFailures   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_jobs_enqueued_total",
			Help: "Dispatch jobs enqueued per channel",
		}, []string{"channel"}),
		ChannelsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_channels_skipped_total",
			Help: "Channels skipped during dispatch per reason",
		}, []string{"channel", "reason"}),
		JobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_jobs_processed_total",
			Help: "Jobs executed by workers per channel and outcome",
		}, []string{"channel", "status"}),
		GatewayDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "gateway_request_duration_seconds",
			Help:       "Provider call latency in seconds",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			MaxAge:     5 * time.Minute,
		}, []string{"channel", "status"}),
		OtpIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otp_issued_total",
			Help: "OTP codes issued",
		}),
		OtpVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_verify_total",
			Help: "OTP verification attempts per result",
		}, []string{"result"}),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit trail writes that failed",
		}),
	}

	reg.MustRegister(
		m.JobsEnqueued,
		m.ChannelsSkipped,
		m.JobsProcessed,
		m.GatewayDuration,
		m.OtpIssued,
		m.OtpVerified,
		m.AuditFailures,
	)

	return m
}

func (m *Metrics) Enqueued(channel string) {
	if m == nil {
		return
	}
	m.JobsEnqueued.WithLabelValues(channel).Inc()
}

func (m *Metrics) Skipped(channel, reason string) {
	if m == nil {
		return
	}
	m.ChannelsSkipped.WithLabelValues(channel, reason).Inc()
}

func (m *Metrics) Processed(channel, status string) {
	if m == nil {
		return
	}
	m.JobsProcessed.WithLabelValues(channel, status).Inc()
}

func (m *Metrics) ObserveGateway(channel, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.GatewayDuration.WithLabelValues(channel, status).Observe(d.Seconds())
}

func (m *Metrics) OtpIssue() {
	if m == nil {
		return
	}
	m.OtpIssued.Inc()
}

func (m *Metrics) OtpVerify(result string) {
	if m == nil {
		return
	}
	m.OtpVerified.WithLabelValues(result).Inc()
}

func (m *Metrics) AuditFailed() {
	if m == nil {
		return
	}
	m.AuditFailures.Inc()
}
