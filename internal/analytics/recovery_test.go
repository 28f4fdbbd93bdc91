package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sendBase = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC) // a Monday

func TestAttributeRecovery_ReplyWindow(t *testing.T) {
	sends := map[uint64][]RecoverySend{
		7: {
			{UserID: 7, Template: "recovery_1", Step: 1, SentAt: sendBase},
			{UserID: 7, Template: "recovery_2", Step: 2, SentAt: sendBase.AddDate(0, 0, 3)},
		},
	}
	replies := map[uint64][]time.Time{
		7: {sendBase.AddDate(0, 0, 1)}, // day 1, inside S1's window only
	}

	report := AttributeRecovery(sends, replies, nil, nil)
	require.Len(t, report.Sends, 2)

	s1, s2 := report.Sends[0], report.Sends[1]
	assert.True(t, s1.Replied)
	require.NotNil(t, s1.ResponseMinutes)
	assert.Equal(t, 24*60.0, *s1.ResponseMinutes)

	assert.False(t, s2.Replied, "the reply precedes S2's window")
	assert.Nil(t, s2.ResponseMinutes)
	assert.Nil(t, s2.WindowEnd, "last send has an open-ended window")
}

func TestAttributeRecovery_ReplyAtWindowEndNotCounted(t *testing.T) {
	next := sendBase.Add(2 * time.Hour)
	sends := map[uint64][]RecoverySend{
		7: {
			{UserID: 7, Template: "a", Step: 1, SentAt: sendBase},
			{UserID: 7, Template: "b", Step: 2, SentAt: next},
		},
	}
	replies := map[uint64][]time.Time{7: {next}} // exactly at the boundary

	report := AttributeRecovery(sends, replies, nil, nil)
	assert.False(t, report.Sends[0].Replied, "window is half-open")
	assert.False(t, report.Sends[1].Replied, "reply must be strictly after the send")
}

func TestAttributeRecovery_ActivityHorizons(t *testing.T) {
	t.Run("within 12h", func(t *testing.T) {
		sends := map[uint64][]RecoverySend{1: {{UserID: 1, Template: "a", Step: 1, SentAt: sendBase}}}
		completions := map[uint64][]time.Time{1: {sendBase.Add(6 * time.Hour)}}
		report := AttributeRecovery(sends, nil, completions, nil)
		assert.True(t, report.Sends[0].Activity12h)
		assert.True(t, report.Sends[0].Activity24h)
	})

	t.Run("between 12h and 24h", func(t *testing.T) {
		sends := map[uint64][]RecoverySend{1: {{UserID: 1, Template: "a", Step: 1, SentAt: sendBase}}}
		completions := map[uint64][]time.Time{1: {sendBase.Add(18 * time.Hour)}}
		report := AttributeRecovery(sends, nil, completions, nil)
		assert.False(t, report.Sends[0].Activity12h)
		assert.True(t, report.Sends[0].Activity24h)
	})

	t.Run("horizon clamped to window end", func(t *testing.T) {
		sends := map[uint64][]RecoverySend{1: {
			{UserID: 1, Template: "a", Step: 1, SentAt: sendBase},
			{UserID: 1, Template: "b", Step: 2, SentAt: sendBase.Add(2 * time.Hour)},
		}}
		// Completion 3h after S1: inside the 12h horizon but past S1's window.
		completions := map[uint64][]time.Time{1: {sendBase.Add(3 * time.Hour)}}
		report := AttributeRecovery(sends, nil, completions, nil)
		assert.False(t, report.Sends[0].Activity12h)
		assert.False(t, report.Sends[0].Activity24h)
		assert.True(t, report.Sends[1].Activity12h)
	})
}

func TestAttributeRecovery_WeeklyRollups(t *testing.T) {
	sends := map[uint64][]RecoverySend{
		1: {{UserID: 1, Template: "recovery_1", Step: 1, SentAt: sendBase}},
		2: {{UserID: 2, Template: "recovery_2", Step: 2, SentAt: sendBase.Add(26 * time.Hour)}},
		3: {{UserID: 3, Template: "recovery_1", Step: 1, SentAt: sendBase.AddDate(0, 0, 7)}},
	}
	replies := map[uint64][]time.Time{
		1: {sendBase.Add(30 * time.Minute)},
		2: {sendBase.Add(26*time.Hour + 90*time.Minute)},
	}

	report := AttributeRecovery(sends, replies, nil, nil)

	require.Len(t, report.Weekly, 2)
	week1 := report.Weekly[0]
	assert.Equal(t, "2025-06-02", week1.WeekStart)
	assert.Equal(t, 2, week1.Sends)
	assert.Equal(t, 2, week1.Replies)
	assert.Equal(t, 100.0, week1.ReplyRatePct)
	require.NotNil(t, week1.AvgResponseMinutes)
	assert.Equal(t, 60.0, *week1.AvgResponseMinutes)
	require.NotNil(t, week1.MedianResponseMinutes)
	assert.Equal(t, 60.0, *week1.MedianResponseMinutes)

	week2 := report.Weekly[1]
	assert.Equal(t, "2025-06-09", week2.WeekStart)
	assert.Equal(t, 0.0, week2.ReplyRatePct)
	assert.Nil(t, week2.AvgResponseMinutes)

	require.Len(t, report.WeeklyByTemplate, 3)
	assert.Equal(t, "recovery_1", report.WeeklyByTemplate[0].Template)
	assert.Equal(t, "recovery_2", report.WeeklyByTemplate[1].Template)
	assert.Equal(t, "2025-06-09", report.WeeklyByTemplate[2].WeekStart)
}

func TestAttributeRecovery_WeekZone(t *testing.T) {
	// 01:00 UTC Monday is still Sunday at UTC-3, so the send lands in the
	// previous business week.
	mondayEarly := time.Date(2025, time.June, 2, 1, 0, 0, 0, time.UTC)
	sends := map[uint64][]RecoverySend{1: {{UserID: 1, Template: "a", Step: 1, SentAt: mondayEarly}}}

	utcReport := AttributeRecovery(sends, nil, nil, time.UTC)
	assert.Equal(t, "2025-06-02", utcReport.Weekly[0].WeekStart)

	spReport := AttributeRecovery(sends, nil, nil, time.FixedZone("UTC-03:00", -3*3600))
	assert.Equal(t, "2025-05-26", spReport.Weekly[0].WeekStart)
}

func TestAttributeRecovery_Deterministic(t *testing.T) {
	sends := map[uint64][]RecoverySend{
		3: {{UserID: 3, Template: "b", Step: 2, SentAt: sendBase.Add(time.Hour)}},
		1: {{UserID: 1, Template: "a", Step: 1, SentAt: sendBase}},
		2: {{UserID: 2, Template: "a", Step: 1, SentAt: sendBase}},
	}
	replies := map[uint64][]time.Time{1: {sendBase.Add(5 * time.Minute)}}

	first := AttributeRecovery(sends, replies, nil, nil)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, AttributeRecovery(sends, replies, nil, nil))
	}
	// Ties on sent_at break by user ID.
	assert.Equal(t, uint64(1), first.Sends[0].UserID)
	assert.Equal(t, uint64(2), first.Sends[1].UserID)
}

func TestAttributeRecovery_Empty(t *testing.T) {
	report := AttributeRecovery(nil, nil, nil, nil)
	assert.Empty(t, report.Sends)
	assert.Empty(t, report.Weekly)
}
