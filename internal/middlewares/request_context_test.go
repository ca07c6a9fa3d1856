package middlewares

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/dispatch-service/internal/requestctx"
)

func TestRequestContext_UsesRequestIDAndActor(t *testing.T) {
	c, _ := newEchoContext(http.MethodPost, "/api/v1/dispatch")
	c.Request().Header.Set(echo.HeaderXRequestID, "req-123")
	c.Request().Header.Set(ActorHeader, "admin-7")
	c.Request().Header.Set(echo.HeaderXRealIP, "10.1.2.3")

	var (
		actor requestctx.Actor
		corr  string
	)
	handler := RequestContext()(func(c echo.Context) error {
		actor = requestctx.ActorFrom(c.Request().Context())
		corr = requestctx.CorrelationID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if corr != "req-123" {
		t.Errorf("expected correlation id req-123, got %q", corr)
	}
	if actor.ID != "admin-7" || actor.IP != "10.1.2.3" {
		t.Errorf("unexpected actor %+v", actor)
	}
}

func TestRequestContext_GeneratesCorrelationID(t *testing.T) {
	c, rec := newEchoContext(http.MethodGet, "/health")

	var corr string
	handler := RequestContext()(func(c echo.Context) error {
		corr = requestctx.CorrelationID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if corr == "" {
		t.Fatalf("expected a generated correlation id")
	}
	if got := rec.Header().Get(echo.HeaderXRequestID); got != corr {
		t.Fatalf("expected response header %q, got %q", corr, got)
	}
}
