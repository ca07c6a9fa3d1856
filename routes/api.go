package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/handlers"
	"github.com/onurcolak/dispatch-service/internal/middlewares"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Dispatch *handlers.DispatchHandler
	Otp      *handlers.OtpHandler
	Delivery *handlers.DeliveryHandler
	Admin    *handlers.AdminHandler
	Worker   *handlers.WorkerHandler
}

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(e *echo.Echo, h Handlers, cfg *environments.Config) {
	e.GET("/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1")

	// Callers that send notifications use the dispatch key
	dispatchAuth := middlewares.APIKeyAuth("dispatch", cfg.Auth.DispatchAPIKey)

	v1.POST("/dispatch", h.Dispatch.Dispatch, dispatchAuth)

	otp := v1.Group("/otp", dispatchAuth)
	otp.POST("/issue", h.Otp.IssueOtp)
	otp.POST("/verify", h.Otp.VerifyOtp)

	// Operators use the admin key
	adminAuth := middlewares.APIKeyAuth("admin", cfg.Auth.AdminAPIKey)

	deliveries := v1.Group("/deliveries", adminAuth)
	deliveries.GET("", h.Delivery.GetDeliveries)
	deliveries.GET("/stats", h.Delivery.GetStats)
	deliveries.GET("/cached", h.Delivery.GetCachedDeliveries)
	deliveries.POST("/:id/replay", h.Delivery.ReplayDelivery)

	providers := v1.Group("/providers", adminAuth)
	providers.GET("", h.Admin.ListProviders)
	providers.POST("", h.Admin.CreateProvider)
	providers.PUT("/:id/status", h.Admin.SetProviderStatus)

	signatures := v1.Group("/signatures", adminAuth)
	signatures.GET("", h.Admin.ListSignatures)
	signatures.PUT("", h.Admin.UpsertSignature)

	workers := v1.Group("/workers", adminAuth)
	workers.POST("/start", h.Worker.StartWorkers)
	workers.POST("/stop", h.Worker.StopWorkers)
	workers.GET("/status", h.Worker.GetWorkerStatus)
}
