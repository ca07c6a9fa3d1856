package worker

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/metrics"
)

// InstrumentedExecutor traces each provider call and records its latency.
type InstrumentedExecutor struct {
	next    executor
	tracer  trace.Tracer
	metrics *metrics.Metrics
}

func NewInstrumentedExecutor(next executor, m *metrics.Metrics) *InstrumentedExecutor {
	return &InstrumentedExecutor{
		next:    next,
		tracer:  otel.Tracer("dispatch-service/gateway"),
		metrics: m,
	}
}

func (e *InstrumentedExecutor) Execute(ctx context.Context, job domain.DispatchJob) domain.ExecutionResult {
	ctx, span := e.tracer.Start(ctx, "Gateway.Execute",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("dispatch.job_id", job.ID),
			attribute.String("dispatch.channel", string(job.Channel)),
			attribute.String("dispatch.correlation_id", job.CorrelationID),
			attribute.String("provider.id", strconv.FormatInt(job.Provider.ID, 10)),
			attribute.String("provider.method", job.Provider.Method),
		))
	defer span.End()

	result := e.next.Execute(ctx, job)

	status := string(domain.DeliverySuccess)
	if result.Success {
		span.SetAttributes(attribute.Int("http.status_code", result.StatusCode))
	} else {
		status = string(domain.DeliveryFailed)
		if result.Err != nil {
			span.RecordError(result.Err)
		}
		span.SetStatus(codes.Error, result.Response)
	}

	e.metrics.ObserveGateway(string(job.Channel), status, result.Duration)

	return result
}
