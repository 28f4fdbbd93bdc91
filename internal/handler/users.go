package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/letzhq/letz-insights/internal/analytics"
	"github.com/letzhq/letz-insights/internal/model"
)

const userPreviewLimit = 80

// UserRow is the per-user directory row: one entry per waid with derived
// engagement fields.
type UserRow struct {
	ID              uint64 `json:"id"`
	WAID            string `json:"waid"`
	Name            string `json:"name"`
	Timezone        string `json:"timezone,omitempty"`
	Level           string `json:"level,omitempty"`
	XPTotal         int64  `json:"xp_total"`
	RecoverySends   int64  `json:"recovery_sends"`
	LastUserMessage string `json:"last_user_message,omitempty"`
	LastUserAt      string `json:"last_user_at,omitempty"`
	LastBotMessage  string `json:"last_bot_message,omitempty"`
	LastBotAt       string `json:"last_bot_at,omitempty"`
	Outside24h      bool   `json:"outside_24h"`
}

// GetUsers returns the user directory: one canonical row per waid, with
// XP totals, recovery-template counts, decoded last-message previews in
// each direction, and the 24h messaging-window flag. Timestamps are
// rendered in each user's own timezone.
func (h *InsightsHandler) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()
	now := time.Now().UTC()

	users, err := h.Users.ListCanonical(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	xp, err := h.Activities.XPTotals(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	recoveryCounts, err := h.Recovery.CountsByUser(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	lastFromUser, err := h.Messages.LastMessagesBySender(ctx, model.SenderUser)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	lastFromBot, err := h.Messages.LastMessagesBySender(ctx, model.SenderCompanion)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		loc := analytics.ResolveTimezone(deref(u.Timezone))
		row := UserRow{
			ID:            u.ID,
			WAID:          u.WAID,
			Name:          displayName(u.FullName),
			Timezone:      deref(u.Timezone),
			Level:         deref(u.Level),
			XPTotal:       xp[u.ID],
			RecoverySends: recoveryCounts[u.ID],
			Outside24h:    true,
		}
		if lm, ok := lastFromUser[u.ID]; ok {
			decoded := analytics.Decode(lm.Message, deref(lm.Type))
			row.LastUserMessage = analytics.Truncate(decoded.Text, userPreviewLimit)
			row.LastUserAt = analytics.FormatLocal(lm.SentAt, loc)
			row.Outside24h = now.Sub(lm.SentAt) > 24*time.Hour
		}
		if lm, ok := lastFromBot[u.ID]; ok {
			decoded := analytics.Decode(lm.Message, deref(lm.Type))
			row.LastBotMessage = analytics.Truncate(decoded.Text, userPreviewLimit)
			row.LastBotAt = analytics.FormatLocal(lm.SentAt, loc)
		}
		rows = append(rows, row)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows})
}
