package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/letzhq/letz-insights/internal/analytics"
)

// OverviewResponse is the dashboard's headline metric row.
type OverviewResponse struct {
	TotalUsers          int64   `json:"total_users"`
	NewToday            int64   `json:"new_today"`
	NewThisWeek         int64   `json:"new_this_week"`
	ActiveToday         int64   `json:"active_today"`
	Outside24hUsers     int64   `json:"outside_24h_users"`
	Outside24hPct       float64 `json:"outside_24h_pct"`
	TemplatesSent24h    int64   `json:"templates_sent_24h"`
	UsersWithCompletion int64   `json:"users_with_completed_activity"`
}

// GetOverview returns headline counts, all deduplicated by waid. "Today"
// starts at midnight in the business timezone.
func (h *InsightsHandler) GetOverview(c echo.Context) error {
	ctx := c.Request().Context()
	now := time.Now().UTC()

	zone := h.weekZone()
	y, m, d := now.In(zone).Date()
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, zone)

	total, err := h.Users.CountDistinct(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	newToday, err := h.Users.CountCreatedSince(ctx, startOfToday)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	monday := analytics.MondayOf(analytics.DateOnly(now, zone))
	startOfWeek := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, zone)
	newWeek, err := h.Users.CountCreatedSince(ctx, startOfWeek)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	activeToday, err := h.Messages.CountActiveSince(ctx, startOfToday)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	active24h, err := h.Messages.CountActiveSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	templates24h, err := h.Recovery.CountSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	withCompletion, err := h.Activities.CountUsersWithCompletion(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	outside := total - active24h
	if outside < 0 {
		outside = 0
	}
	var outsidePct float64
	if total > 0 {
		outsidePct = math.Round(1000*float64(outside)/float64(total)) / 10
	}

	return c.JSON(http.StatusOK, OverviewResponse{
		TotalUsers:          total,
		NewToday:            newToday,
		NewThisWeek:         newWeek,
		ActiveToday:         activeToday,
		Outside24hUsers:     outside,
		Outside24hPct:       outsidePct,
		TemplatesSent24h:    templates24h,
		UsersWithCompletion: withCompletion,
	})
}
