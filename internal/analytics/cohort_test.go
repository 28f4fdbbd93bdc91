package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monday is a known Monday used as a cohort anchor throughout.
var monday = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time { return monday.AddDate(0, 0, offset) }

func TestMondayOf(t *testing.T) {
	assert.Equal(t, monday, MondayOf(monday))
	assert.Equal(t, monday, MondayOf(day(3)))  // Thursday
	assert.Equal(t, monday, MondayOf(day(6)))  // Sunday
	assert.Equal(t, day(7), MondayOf(day(7)))  // next Monday
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, time.June, 2, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, monday, DateOnly(ts, nil))
	// 23:30 UTC is already June 3rd at UTC+3.
	assert.Equal(t, day(1), DateOnly(ts, time.FixedZone("UTC+03:00", 3*3600)))
}

func TestComputeCohortRetention_CohortDays(t *testing.T) {
	users := []UserTimeline{{
		WAID:        "5511999",
		FirstActive: monday,
		ActiveDates: []time.Time{day(0), day(1), day(7)},
	}}
	report := ComputeCohortRetention(users, day(20), CohortOptions{})
	require.Len(t, report.Cohorts, 1)
	row := report.Cohorts[0]

	assert.Equal(t, "2025-06-02", row.WeekStart)
	assert.Equal(t, 1, row.Size)
	// Active dates D, D+1, D+7 are cohort days 1, 2 and 8.
	assert.Equal(t, 100.0, row.DayRetention[0])
	assert.Equal(t, 100.0, row.DayRetention[1])
	assert.Equal(t, 0.0, row.DayRetention[2])
	assert.Equal(t, 100.0, row.DayRetention[7])
}

func TestComputeCohortRetention_RollingGuard(t *testing.T) {
	users := []UserTimeline{{
		WAID:        "5511999",
		FirstActive: monday,
		ActiveDates: []time.Time{day(0), day(1), day(7)},
	}}

	t.Run("mature cohort", func(t *testing.T) {
		report := ComputeCohortRetention(users, day(8), CohortOptions{RollingWindows: []int{7}})
		require.Len(t, report.Cohorts, 1)
		rr := report.Cohorts[0].Rolling[0]
		require.NotNil(t, rr.Pct)
		assert.Equal(t, 100.0, *rr.Pct)
	})

	t.Run("cohort age 3 days is undefined", func(t *testing.T) {
		report := ComputeCohortRetention(users, day(3), CohortOptions{RollingWindows: []int{7}})
		require.Len(t, report.Cohorts, 1)
		assert.Nil(t, report.Cohorts[0].Rolling[0].Pct)
	})
}

func TestComputeCohortRetention_SplitsCohortsByWeek(t *testing.T) {
	users := []UserTimeline{
		{WAID: "a", FirstActive: day(0), ActiveDates: []time.Time{day(0)}},
		{WAID: "b", FirstActive: day(4), ActiveDates: []time.Time{day(4)}},   // same ISO week
		{WAID: "c", FirstActive: day(9), ActiveDates: []time.Time{day(9)}},   // next week
	}
	report := ComputeCohortRetention(users, day(30), CohortOptions{})
	require.Len(t, report.Cohorts, 2)
	assert.Equal(t, "2025-06-02", report.Cohorts[0].WeekStart)
	assert.Equal(t, 2, report.Cohorts[0].Size)
	assert.Equal(t, "2025-06-09", report.Cohorts[1].WeekStart)
	assert.Equal(t, 1, report.Cohorts[1].Size)
}

func TestComputeCohortRetention_PercentagesRounded(t *testing.T) {
	users := []UserTimeline{
		{WAID: "a", FirstActive: day(0), ActiveDates: []time.Time{day(0), day(1)}},
		{WAID: "b", FirstActive: day(1), ActiveDates: []time.Time{day(1)}},
		{WAID: "c", FirstActive: day(2), ActiveDates: []time.Time{day(2)}},
	}
	report := ComputeCohortRetention(users, day(20), CohortOptions{})
	require.Len(t, report.Cohorts, 1)
	// One of three users active on their cohort day 2 -> 33.3, not 33.333...
	assert.Equal(t, 33.3, report.Cohorts[0].DayRetention[1])
}

func TestComputeCohortRetention_ActiveDayStats(t *testing.T) {
	users := []UserTimeline{
		{WAID: "a", FirstActive: day(0), ActiveDates: []time.Time{day(0), day(1), day(2), day(3)}},
		{WAID: "b", FirstActive: day(0), ActiveDates: []time.Time{day(0), day(1)}},
		// Active day outside the 14-day look-back must not count.
		{WAID: "c", FirstActive: day(0), ActiveDates: []time.Time{day(0), day(20)}},
	}
	report := ComputeCohortRetention(users, day(40), CohortOptions{})
	require.Len(t, report.Cohorts, 1)
	row := report.Cohorts[0]
	assert.Equal(t, round1((4.0+2.0+1.0)/3.0), row.AvgActiveDays)
	assert.Equal(t, 2.0, row.MedianActiveDays)
	assert.Equal(t, 2.0, report.MedianActiveDays)
}

func TestComputeCohortRetention_BlockCompletion(t *testing.T) {
	users := []UserTimeline{
		{
			WAID:        "a",
			FirstActive: monday,
			ActiveDates: []time.Time{day(0)},
			Completions: []time.Time{day(0), day(2), day(8)}, // two in W1, one in W2
		},
		{
			WAID:        "b",
			FirstActive: monday,
			ActiveDates: []time.Time{day(0)},
			Completions: []time.Time{day(9)}, // one in W2
		},
	}

	t.Run("mature blocks", func(t *testing.T) {
		report := ComputeCohortRetention(users, day(6+28+1), CohortOptions{})
		require.Len(t, report.Cohorts, 1)
		blocks := report.Cohorts[0].Blocks
		require.Len(t, blocks, 4)

		w1 := blocks[0]
		assert.Equal(t, 1, w1.Block)
		assert.Equal(t, []float64{50.0, 50.0, 0.0, 0.0}, w1.PctAtLeast)

		w2 := blocks[1]
		assert.Equal(t, []float64{100.0, 0.0, 0.0, 0.0}, w2.PctAtLeast)
	})

	t.Run("young cohort reports only lived-through blocks", func(t *testing.T) {
		// W1 is complete for the whole cohort at week_start+13; W2 needs +20.
		report := ComputeCohortRetention(users, day(13), CohortOptions{})
		require.Len(t, report.Cohorts, 1)
		require.Len(t, report.Cohorts[0].Blocks, 1)
		assert.Equal(t, 1, report.Cohorts[0].Blocks[0].Block)
	})
}

func TestComputeCohortRetention_Deterministic(t *testing.T) {
	users := []UserTimeline{
		{WAID: "a", FirstActive: day(0), ActiveDates: []time.Time{day(0), day(3)}},
		{WAID: "b", FirstActive: day(8), ActiveDates: []time.Time{day(8), day(9)}},
		{WAID: "c", FirstActive: day(1), ActiveDates: []time.Time{day(1)}, Completions: []time.Time{day(2)}},
	}
	now := day(45)
	first := ComputeCohortRetention(users, now, CohortOptions{})
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ComputeCohortRetention(users, now, CohortOptions{}))
	}
}

func TestComputeCohortRetention_Empty(t *testing.T) {
	report := ComputeCohortRetention(nil, monday, CohortOptions{})
	assert.Empty(t, report.Cohorts)
	assert.Equal(t, 0.0, report.AvgActiveDays)
}
