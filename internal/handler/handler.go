// Package handler exposes the JSON endpoints of the insights dashboard.
// Handlers fetch rectangular rows through the repositories, hand them to
// the pure analytics layer, and serialize the derived tables. Nothing here
// writes to the store.
package handler

import (
	"time"

	"github.com/letzhq/letz-insights/internal/repository"
	"github.com/letzhq/letz-insights/internal/translate"
)

// InsightsHandler aggregates the repositories and capabilities the
// dashboard endpoints need.
type InsightsHandler struct {
	Users      *repository.UserRepo
	Messages   *repository.MessageRepo
	Recovery   *repository.RecoveryRepo
	Activities *repository.ActivityRepo

	// Translator is optional; nil disables the ?translate= query option.
	Translator      *translate.CachedTranslator
	TranslateTarget string

	// WeekZone is the business timezone used for cohort weeks, weekly
	// rollups and "today" boundaries.
	WeekZone *time.Location
}

// weekZone never returns nil so date math can rely on it.
func (h *InsightsHandler) weekZone() *time.Location {
	if h.WeekZone == nil {
		return time.UTC
	}
	return h.WeekZone
}
