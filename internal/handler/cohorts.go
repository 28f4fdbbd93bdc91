package handler

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/letzhq/letz-insights/internal/analytics"
)

// GetCohortRetention returns the weekly cohort retention report. Users are
// identified by waid so re-onboarded accounts collapse into one timeline,
// and message instants are bucketed into business-timezone dates before
// the cohort math runs.
func (h *InsightsHandler) GetCohortRetention(c echo.Context) error {
	ctx := c.Request().Context()
	zone := h.weekZone()

	opts := analytics.CohortOptions{}
	if n, err := strconv.Atoi(c.QueryParam("retention_days")); err == nil && n > 0 {
		opts.RetentionDays = n
	}
	if n, err := strconv.Atoi(c.QueryParam("lookback_days")); err == nil && n > 0 {
		opts.LookbackDays = n
	}

	times, err := h.Messages.UserMessageTimes(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	completions, err := h.Activities.ListCompletions(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Collapse message instants into per-waid timelines of distinct local
	// dates. user_id -> waid comes from the same rows, so completions of
	// older duplicate accounts land on the right timeline too.
	waidByUser := make(map[uint64]string)
	type timeline struct {
		first       time.Time
		dates       map[time.Time]bool
		completions []time.Time
	}
	timelines := make(map[string]*timeline)
	for _, t := range times {
		waidByUser[t.UserID] = t.WAID
		tl := timelines[t.WAID]
		if tl == nil {
			tl = &timeline{dates: make(map[time.Time]bool)}
			timelines[t.WAID] = tl
		}
		date := analytics.DateOnly(t.SentAt, zone)
		tl.dates[date] = true
		if tl.first.IsZero() || date.Before(tl.first) {
			tl.first = date
		}
	}
	for _, comp := range completions {
		waid, ok := waidByUser[comp.UserID]
		if !ok {
			continue
		}
		tl := timelines[waid]
		tl.completions = append(tl.completions, analytics.DateOnly(comp.CompletedAt, zone))
	}

	waids := make([]string, 0, len(timelines))
	for waid := range timelines {
		waids = append(waids, waid)
	}
	sort.Strings(waids)

	users := make([]analytics.UserTimeline, 0, len(waids))
	for _, waid := range waids {
		tl := timelines[waid]
		dates := make([]time.Time, 0, len(tl.dates))
		for d := range tl.dates {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		users = append(users, analytics.UserTimeline{
			WAID:        waid,
			FirstActive: tl.first,
			ActiveDates: dates,
			Completions: tl.completions,
		})
	}

	// Cohort ages compare against today's business-zone date, matching how
	// the active dates above were bucketed.
	today := analytics.DateOnly(time.Now(), zone)
	report := analytics.ComputeCohortRetention(users, today, opts)
	return c.JSON(http.StatusOK, report)
}
