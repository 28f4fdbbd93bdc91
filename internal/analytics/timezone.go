// Package analytics contains the derivation layer of the insights service:
// pure, deterministic computations that turn raw message rows, recovery logs
// and activity completions into display rows and aggregate tables. Nothing in
// this package performs I/O or reads the system clock; callers inject "now"
// where a reference time is needed.
package analytics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	// Embed the IANA database so zone lookups behave the same on hosts
	// without a system zoneinfo directory (containers, scratch images).
	_ "time/tzdata"
)

// tzOffsetRe extracts an optional sign, a 1-2 digit hour and optional
// minutes from free-form offset strings such as "UTC-3", "GMT+5:30",
// "-03:00" or a bare "8".
var tzOffsetRe = regexp.MustCompile(`([+-]?)(\d{1,2})(?::(\d{2}))?`)

// ResolveTimezone parses a free-form timezone string stored on a user row
// into a *time.Location. It first tries a direct IANA lookup
// ("America/Sao_Paulo"), then falls back to the offset grammar above.
// An explicit leading sign or a "UTC-"/"GMT-"/"UTC+"/"GMT+" marker decides
// the direction; without any marker the offset is taken as east of UTC.
// Returns nil when neither branch succeeds; callers render such values in
// UTC with a " UTC" suffix instead of failing.
func ResolveTimezone(raw string) *time.Location {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if loc, err := time.LoadLocation(s); err == nil {
		return loc
	}

	m := tzOffsetRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	sign := 1
	if m[1] == "-" {
		sign = -1
	}
	upper := strings.ToUpper(s)
	switch {
	case strings.Contains(upper, "UTC-") || strings.Contains(upper, "GMT-") || strings.HasPrefix(s, "-"):
		sign = -1
	case strings.Contains(upper, "UTC+") || strings.Contains(upper, "GMT+") || strings.HasPrefix(s, "+"):
		sign = 1
	}

	hours, _ := strconv.Atoi(m[2])
	minutes := 0
	if m[3] != "" {
		minutes, _ = strconv.Atoi(m[3])
	}
	// The sign applies to the whole offset, so "UTC-3:30" is -(3h30m).
	total := sign * (hours*60 + minutes)
	if total == 0 {
		return time.UTC
	}

	mins := total % 60
	if mins < 0 {
		mins = -mins
	}
	name := fmt.Sprintf("UTC%+03d:%02d", total/60, mins)
	return time.FixedZone(name, total*60)
}

// localTimeLayout matches the dashboard's compact timestamp format.
const localTimeLayout = "Jan 02, 15:04"

// FormatLocal renders a UTC instant in the given zone. A nil zone means the
// user's timezone could not be resolved: the instant is shown in UTC and
// labelled as such. The zero time renders as the "no data" placeholder.
func FormatLocal(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "—"
	}
	if loc == nil {
		return t.UTC().Format(localTimeLayout) + " UTC"
	}
	return t.In(loc).Format(localTimeLayout)
}
