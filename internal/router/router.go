// Package router wires the dashboard endpoints onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/letzhq/letz-insights/internal/handler"
)

// RegisterRoutes registers the health check and the versioned dashboard
// API. The optional middleware (rate limiter, response cache) is applied
// to the /v1 group only, so /healthz always answers directly.
func RegisterRoutes(e *echo.Echo, h *handler.InsightsHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1", mw...)
	v1.GET("/overview", h.GetOverview)
	v1.GET("/messages/recent", h.GetRecentMessages)
	v1.GET("/users", h.GetUsers)
	v1.GET("/users/:id/messages", h.GetUserMessages)
	v1.GET("/cohorts/retention", h.GetCohortRetention)
	v1.GET("/recovery/attribution", h.GetRecoveryAttribution)
}
