package analytics

import (
	"math"
	"sort"
	"time"
)

// UserTimeline is one user's activity history, already bucketed into local
// (business-timezone) civil dates by the caller. Dates are represented as
// midnight-UTC instants; use DateOnly to build them.
type UserTimeline struct {
	WAID        string
	FirstActive time.Time   // local date of the user's first message
	ActiveDates []time.Time // local dates with at least one message sent
	Completions []time.Time // local dates of completed activities, one entry per completion
}

// CohortOptions tune the retention calculation. Zero values fall back to
// the defaults below.
type CohortOptions struct {
	RetentionDays  int   // length of the day-level retention curve
	RollingWindows []int // rolling retention windows, in days
	LookbackDays   int   // look-back for avg/median active days
}

const (
	defaultRetentionDays = 14
	defaultLookbackDays  = 14
	activityBlocks       = 4 // W1..W4, seven days each
	blockThresholds      = 4 // %, with >=1 .. >=4 completions per block
)

var defaultRollingWindows = []int{7, 14, 30}

// RollingRetention is the share of a cohort active at least once within the
// first WindowDays cohort days. Pct is nil while the cohort is younger than
// the window, so young cohorts never understate their retention.
type RollingRetention struct {
	WindowDays int      `json:"window_days"`
	Pct        *float64 `json:"pct"`
}

// BlockActivity reports, for one 7-day block relative to each user's first
// active date, the share of the cohort with at least 1..4 completed
// activities in that block. Only blocks every cohort member has fully lived
// through are reported.
type BlockActivity struct {
	Block      int       `json:"block"`
	PctAtLeast []float64 `json:"pct_at_least"`
}

// CohortRow is the derived table for one weekly cohort.
type CohortRow struct {
	WeekStart        string             `json:"week_start"`
	Size             int                `json:"size"`
	DayRetention     []float64          `json:"day_retention"` // index 0 = cohort day 1
	Rolling          []RollingRetention `json:"rolling"`
	AvgActiveDays    float64            `json:"avg_active_days"`
	MedianActiveDays float64            `json:"median_active_days"`
	Blocks           []BlockActivity    `json:"blocks"`
}

// CohortReport is the full retention output: one row per cohort plus global
// active-day aggregates across all users.
type CohortReport struct {
	Cohorts          []CohortRow `json:"cohorts"`
	AvgActiveDays    float64     `json:"avg_active_days"`
	MedianActiveDays float64     `json:"median_active_days"`
}

// DateOnly reduces an instant to the civil date it falls on in loc
// (UTC when loc is nil), represented as midnight UTC.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MondayOf returns the Monday of the ISO week containing the given date.
func MondayOf(date time.Time) time.Time {
	back := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -back)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func pct1(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(100 * float64(n) / float64(total))
}

// ComputeCohortRetention buckets users into weekly cohorts by their first
// active date and derives the retention tables described above. Cohort day
// numbering is 1-based: the first active day is day 1. All percentages are
// against the cohort size at computation time. The reference time now is
// injected so the calculation is pure and reproducible.
func ComputeCohortRetention(users []UserTimeline, now time.Time, opts CohortOptions) CohortReport {
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = defaultRetentionDays
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = defaultLookbackDays
	}
	if len(opts.RollingWindows) == 0 {
		opts.RollingWindows = defaultRollingWindows
	}
	nowDate := DateOnly(now, time.UTC)

	cohorts := make(map[time.Time][]UserTimeline)
	for _, u := range users {
		if u.FirstActive.IsZero() {
			continue
		}
		week := MondayOf(u.FirstActive)
		cohorts[week] = append(cohorts[week], u)
	}

	weeks := make([]time.Time, 0, len(cohorts))
	for week := range cohorts {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	report := CohortReport{Cohorts: make([]CohortRow, 0, len(weeks))}
	var allActiveCounts []int

	for _, week := range weeks {
		members := cohorts[week]
		size := len(members)
		row := CohortRow{
			WeekStart:    week.Format("2006-01-02"),
			Size:         size,
			DayRetention: make([]float64, opts.RetentionDays),
		}

		// Distinct cohort days per user, deduplicated: a user counts once
		// per day no matter how many messages they sent.
		cohortDays := make([]map[int]bool, size)
		for ui, u := range members {
			days := make(map[int]bool, len(u.ActiveDates))
			for _, d := range u.ActiveDates {
				day := daysBetween(u.FirstActive, d) + 1
				if day >= 1 {
					days[day] = true
				}
			}
			cohortDays[ui] = days
		}

		for day := 1; day <= opts.RetentionDays; day++ {
			active := 0
			for _, days := range cohortDays {
				if days[day] {
					active++
				}
			}
			row.DayRetention[day-1] = pct1(active, size)
		}

		cohortAge := daysBetween(week, nowDate)
		for _, window := range opts.RollingWindows {
			rr := RollingRetention{WindowDays: window}
			if cohortAge >= window {
				active := 0
				for _, days := range cohortDays {
					for day := 1; day <= window; day++ {
						if days[day] {
							active++
							break
						}
					}
				}
				p := pct1(active, size)
				rr.Pct = &p
			}
			row.Rolling = append(row.Rolling, rr)
		}

		activeCounts := make([]int, size)
		for ui, days := range cohortDays {
			n := 0
			for day := range days {
				if day <= opts.LookbackDays {
					n++
				}
			}
			activeCounts[ui] = n
		}
		row.AvgActiveDays = round1(mean(activeCounts))
		row.MedianActiveDays = round1(median(activeCounts))
		allActiveCounts = append(allActiveCounts, activeCounts...)

		// Block Wk spans relative days [7(k-1), 7k-1] from each user's first
		// active date. A block is reported once even the cohort's latest
		// possible member (first active on the cohort Sunday) has lived
		// through it: now >= week_start + 6 + 7k days.
		for block := 1; block <= activityBlocks; block++ {
			if cohortAge < 6+7*block {
				continue
			}
			lo, hi := 7*(block-1), 7*block-1
			counts := make([]int, size)
			for ui, u := range members {
				for _, d := range u.Completions {
					rel := daysBetween(u.FirstActive, d)
					if rel >= lo && rel <= hi {
						counts[ui]++
					}
				}
			}
			ba := BlockActivity{Block: block, PctAtLeast: make([]float64, blockThresholds)}
			for threshold := 1; threshold <= blockThresholds; threshold++ {
				n := 0
				for _, cnt := range counts {
					if cnt >= threshold {
						n++
					}
				}
				ba.PctAtLeast[threshold-1] = pct1(n, size)
			}
			row.Blocks = append(row.Blocks, ba)
		}

		report.Cohorts = append(report.Cohorts, row)
	}

	report.AvgActiveDays = round1(mean(allActiveCounts))
	report.MedianActiveDays = round1(median(allActiveCounts))
	return report
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}
