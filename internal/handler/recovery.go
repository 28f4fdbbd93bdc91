package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/letzhq/letz-insights/internal/analytics"
)

// GetRecoveryAttribution returns the recovery-ladder attribution report:
// per-send reply and activity credit plus Monday-week rollups, overall and
// split by template.
func (h *InsightsHandler) GetRecoveryAttribution(c echo.Context) error {
	ctx := c.Request().Context()

	sendRows, err := h.Recovery.ListSends(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	replyRows, err := h.Messages.UserMessageTimes(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	completionRows, err := h.Activities.ListCompletions(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	sends := make(map[uint64][]analytics.RecoverySend, len(sendRows))
	for _, s := range sendRows {
		sends[s.UserID] = append(sends[s.UserID], analytics.RecoverySend{
			UserID:   s.UserID,
			Template: s.TemplateName,
			Step:     s.LadderStep,
			SentAt:   s.SentAt,
		})
	}
	replies := make(map[uint64][]time.Time)
	for _, r := range replyRows {
		replies[r.UserID] = append(replies[r.UserID], r.SentAt)
	}
	completions := make(map[uint64][]time.Time)
	for _, a := range completionRows {
		completions[a.UserID] = append(completions[a.UserID], a.CompletedAt)
	}

	report := analytics.AttributeRecovery(sends, replies, completions, h.weekZone())
	return c.JSON(http.StatusOK, report)
}
