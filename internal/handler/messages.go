package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/letzhq/letz-insights/internal/analytics"
	"github.com/letzhq/letz-insights/internal/model"
	"github.com/letzhq/letz-insights/internal/repository"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 500
	previewTextLimit    = 200
)

// MessageRow is one display message: derived fields only, never the raw
// payload. Built fresh on every read.
type MessageRow struct {
	ID         uint64 `json:"id"`
	Time       string `json:"time"`
	User       string `json:"user,omitempty"`
	Sender     string `json:"sender"`
	Type       string `json:"type"`
	Text       string `json:"text"`
	Template   bool   `json:"template"`
	Translated string `json:"translated,omitempty"`
}

// GetRecentMessages returns the newest messages across all users with
// decoded text and timestamps rendered in each user's own timezone.
func (h *InsightsHandler) GetRecentMessages(c echo.Context) error {
	ctx := c.Request().Context()
	limit := queryLimit(c, defaultMessageLimit)

	msgs, err := h.Messages.ListRecent(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	rows := make([]MessageRow, 0, len(msgs))
	for _, m := range msgs {
		decoded := analytics.Decode(m.Message.Message, deref(m.Type))
		loc := analytics.ResolveTimezone(deref(m.Timezone))
		rows = append(rows, MessageRow{
			ID:       m.ID,
			Time:     analytics.FormatLocal(m.SentAt, loc),
			User:     displayName(m.FullName),
			Sender:   m.Sender,
			Type:     decoded.Label,
			Text:     analytics.Truncate(decoded.Text, previewTextLimit),
			Template: decoded.Label == analytics.LabelTemplate,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// GetUserMessages returns one user's history as the final display
// sequence: payloads decoded, media messages merged with their
// transcript/caption companions, timestamps in the user's local time.
// With ?translate=true, user-sent text is translated through the cached
// translator; translation failure silently passes the original through.
func (h *InsightsHandler) GetUserMessages(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	limit := queryLimit(c, 100)
	msgs, err := h.Messages.ListByUser(ctx, userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// ListByUser returns newest first; pairing and display both want
	// chronological order.
	conv := make([]analytics.ConversationMessage, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		decoded := analytics.Decode(m.Message, deref(m.Type))
		conv = append(conv, analytics.ConversationMessage{
			ID:     m.ID,
			Sender: m.Sender,
			SentAt: m.SentAt,
			Label:  decoded.Label,
			Text:   decoded.Text,
		})
	}
	merged := analytics.MergeMedia(conv)

	translateWanted := c.QueryParam("translate") == "true" || c.QueryParam("translate") == "1"
	loc := analytics.ResolveTimezone(deref(user.Timezone))

	rows := make([]MessageRow, 0, len(merged))
	for _, m := range merged {
		row := MessageRow{
			ID:       m.ID,
			Time:     analytics.FormatLocal(m.SentAt, loc),
			Sender:   m.Sender,
			Type:     m.Label,
			Text:     analytics.Truncate(m.Text, previewTextLimit),
			Template: m.Label == analytics.LabelTemplate,
		}
		if translateWanted && h.Translator != nil && m.Sender == model.SenderUser {
			if translated, changed := h.Translator.Translate(ctx, m.Text, "auto", h.TranslateTarget); changed {
				row.Translated = analytics.Truncate(translated, previewTextLimit)
			}
		}
		rows = append(rows, row)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":       user.ID,
			"waid":     user.WAID,
			"name":     displayName(user.FullName),
			"timezone": deref(user.Timezone),
		},
		"items": rows,
	})
}

func queryLimit(c echo.Context, def int) int {
	limit := def
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	return limit
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func displayName(s *string) string {
	if s == nil || *s == "" {
		return "Unknown"
	}
	return *s
}
