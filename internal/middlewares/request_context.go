package middlewares

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/onurcolak/dispatch-service/internal/requestctx"
)

const ActorHeader = "X-Actor-ID"

// RequestContext stores the caller identity and a correlation id on the
// request context. The correlation id is the request id when one is set.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			correlationID := req.Header.Get(echo.HeaderXRequestID)
			if correlationID == "" {
				correlationID = c.Response().Header().Get(echo.HeaderXRequestID)
			}
			if correlationID == "" {
				correlationID = uuid.NewString()
				c.Response().Header().Set(echo.HeaderXRequestID, correlationID)
			}

			ctx := requestctx.WithActor(req.Context(), requestctx.Actor{
				ID: req.Header.Get(ActorHeader),
				IP: c.RealIP(),
			})
			ctx = requestctx.WithCorrelationID(ctx, correlationID)

			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
