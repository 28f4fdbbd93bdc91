package analytics

import (
	"sort"
	"time"
)

// RecoverySend is one outbound recovery-ladder template send.
type RecoverySend struct {
	UserID   uint64
	Template string
	Step     int
	SentAt   time.Time
}

// SendAttribution credits post-send user behavior to one send. The
// attribution window runs from SentAt to the user's next send (nil WindowEnd
// means the window is open-ended).
type SendAttribution struct {
	UserID          uint64     `json:"user_id"`
	Template        string     `json:"template"`
	Step            int        `json:"step"`
	SentAt          time.Time  `json:"sent_at"`
	WindowEnd       *time.Time `json:"window_end,omitempty"`
	Replied         bool       `json:"replied_before_next_template"`
	Activity12h     bool       `json:"activity_12h"`
	Activity24h     bool       `json:"activity_24h"`
	ResponseMinutes *float64   `json:"response_minutes,omitempty"`
}

// RecoveryRollup aggregates attributions per Monday-start week, optionally
// split by template name.
type RecoveryRollup struct {
	WeekStart             string   `json:"week_start"`
	Template              string   `json:"template,omitempty"`
	Sends                 int      `json:"sends"`
	Replies               int      `json:"replies"`
	ReplyRatePct          float64  `json:"reply_rate_pct"`
	Activity12hPct        float64  `json:"activity_12h_pct"`
	Activity24hPct        float64  `json:"activity_24h_pct"`
	AvgResponseMinutes    *float64 `json:"avg_response_minutes,omitempty"`
	MedianResponseMinutes *float64 `json:"median_response_minutes,omitempty"`
}

// AttributionReport is the full attribution output.
type AttributionReport struct {
	Sends            []SendAttribution `json:"sends"`
	Weekly           []RecoveryRollup  `json:"weekly"`
	WeeklyByTemplate []RecoveryRollup  `json:"weekly_by_template"`
}

// AttributeRecovery attributes each user's replies and activity completions
// to the latest prior recovery send.
//
// For send i of a user the window is [sent_at_i, sent_at_i+1), or open-ended
// for the last send. A reply counts when it falls strictly after the send
// and strictly inside the window. Activity flags use the shorter of the
// fixed 12h/24h horizon and the window end, inclusive of that bound.
// Weekly rollups bucket sends into Monday-start weeks of weekZone (UTC when
// nil). Output ordering is deterministic for identical inputs.
func AttributeRecovery(sends map[uint64][]RecoverySend, replies map[uint64][]time.Time, completions map[uint64][]time.Time, weekZone *time.Location) AttributionReport {
	if weekZone == nil {
		weekZone = time.UTC
	}

	userIDs := make([]uint64, 0, len(sends))
	for id := range sends {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	var out []SendAttribution
	for _, userID := range userIDs {
		userSends := make([]RecoverySend, len(sends[userID]))
		copy(userSends, sends[userID])
		sort.Slice(userSends, func(i, j int) bool { return userSends[i].SentAt.Before(userSends[j].SentAt) })

		userReplies := sortedTimes(replies[userID])
		userCompletions := sortedTimes(completions[userID])

		for i, send := range userSends {
			attr := SendAttribution{
				UserID:   send.UserID,
				Template: send.Template,
				Step:     send.Step,
				SentAt:   send.SentAt,
			}
			if i+1 < len(userSends) {
				end := userSends[i+1].SentAt
				attr.WindowEnd = &end
			}

			for _, reply := range userReplies {
				if !reply.After(send.SentAt) {
					continue
				}
				if attr.WindowEnd != nil && !reply.Before(*attr.WindowEnd) {
					break
				}
				attr.Replied = true
				minutes := reply.Sub(send.SentAt).Minutes()
				attr.ResponseMinutes = &minutes
				break
			}

			attr.Activity12h = anyWithin(userCompletions, send.SentAt, horizonEnd(send.SentAt, 12*time.Hour, attr.WindowEnd))
			attr.Activity24h = anyWithin(userCompletions, send.SentAt, horizonEnd(send.SentAt, 24*time.Hour, attr.WindowEnd))

			out = append(out, attr)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].SentAt.Before(out[j].SentAt)
		}
		return out[i].UserID < out[j].UserID
	})

	return AttributionReport{
		Sends:            out,
		Weekly:           rollup(out, weekZone, false),
		WeeklyByTemplate: rollup(out, weekZone, true),
	}
}

// horizonEnd clamps a fixed horizon after sentAt to the window end.
func horizonEnd(sentAt time.Time, horizon time.Duration, windowEnd *time.Time) time.Time {
	end := sentAt.Add(horizon)
	if windowEnd != nil && windowEnd.Before(end) {
		end = *windowEnd
	}
	return end
}

// anyWithin reports whether any instant falls strictly after from and at or
// before until.
func anyWithin(times []time.Time, from, until time.Time) bool {
	for _, t := range times {
		if t.After(from) && !t.After(until) {
			return true
		}
		if t.After(until) {
			break
		}
	}
	return false
}

func sortedTimes(times []time.Time) []time.Time {
	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return sorted
}

type rollupKey struct {
	week     string
	template string
}

func rollup(attrs []SendAttribution, weekZone *time.Location, byTemplate bool) []RecoveryRollup {
	type bucket struct {
		sends, replies, act12, act24 int
		responses                    []float64
	}
	buckets := make(map[rollupKey]*bucket)
	for _, attr := range attrs {
		key := rollupKey{week: MondayOf(DateOnly(attr.SentAt, weekZone)).Format("2006-01-02")}
		if byTemplate {
			key.template = attr.Template
		}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.sends++
		if attr.Replied {
			b.replies++
		}
		if attr.Activity12h {
			b.act12++
		}
		if attr.Activity24h {
			b.act24++
		}
		if attr.ResponseMinutes != nil {
			b.responses = append(b.responses, *attr.ResponseMinutes)
		}
	}

	keys := make([]rollupKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].week != keys[j].week {
			return keys[i].week < keys[j].week
		}
		return keys[i].template < keys[j].template
	})

	out := make([]RecoveryRollup, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		row := RecoveryRollup{
			WeekStart:      key.week,
			Template:       key.template,
			Sends:          b.sends,
			Replies:        b.replies,
			ReplyRatePct:   pct1(b.replies, b.sends),
			Activity12hPct: pct1(b.act12, b.sends),
			Activity24hPct: pct1(b.act24, b.sends),
		}
		if len(b.responses) > 0 {
			avg := round1(meanFloat(b.responses))
			med := round1(medianFloat(b.responses))
			row.AvgResponseMinutes = &avg
			row.MedianResponseMinutes = &med
		}
		out = append(out, row)
	}
	return out
}

func meanFloat(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func medianFloat(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
