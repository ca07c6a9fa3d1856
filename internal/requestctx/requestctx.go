// Package requestctx carries request-scoped identity through explicit context values.
package requestctx

import "context"

type ctxKey int

const (
	actorKey ctxKey = iota
	correlationKey
)

// Actor identifies who triggered an operation.
type Actor struct {
	ID string
	IP string
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the zero Actor when none is set.
func ActorFrom(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorKey).(Actor); ok {
		return actor
	}
	return Actor{}
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey).(string); ok {
		return id
	}
	return ""
}
