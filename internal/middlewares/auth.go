package middlewares

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/dispatch-service/pkg/logger"
	"github.com/onurcolak/dispatch-service/pkg/response"
)

const APIKeyHeader = "x-api-key"

// ParseKeys splits a configured key list. Several comma-separated keys are
// accepted at once so a key can be rotated without downtime.
func ParseKeys(value string) []string {
	var keys []string
	for _, key := range strings.Split(value, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// matchesAny compares against every key so timing does not reveal which one matched.
func matchesAny(token string, keys []string) bool {
	matched := 0
	for _, key := range keys {
		matched |= subtle.ConstantTimeCompare([]byte(token), []byte(key))
	}
	return matched == 1
}

// APIKeyAuth guards a route group named scope with the configured key list.
func APIKeyAuth(scope, configured string) echo.MiddlewareFunc {
	keys := ParseKeys(configured)

	// No keys configured is a server-side misconfiguration.
	if len(keys) == 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return response.InternalServerError(
					c,
					fmt.Errorf("API key is not configured for the %s endpoints", scope),
				)
			}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(APIKeyHeader)
			if token == "" || !matchesAny(token, keys) {
				logger.With(c.Request().Context()).Warnf("Rejected %s request to %s from %s",
					scope, c.Request().URL.Path, c.RealIP())
				return response.Unauthorized(c)
			}

			return next(c)
		}
	}
}
