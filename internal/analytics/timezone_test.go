package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTimezone_IANA(t *testing.T) {
	loc := ResolveTimezone("America/Sao_Paulo")
	require.NotNil(t, loc)

	// Sao Paulo has been at a fixed -3h since DST was abolished in 2019.
	utc := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 9, utc.In(loc).Hour())

	// Historical offset correctness: DST was in effect in January 2018 (-2h).
	historic := time.Date(2018, time.January, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, historic.In(loc).Hour())
}

func TestResolveTimezone_Offsets(t *testing.T) {
	cases := []struct {
		in      string
		offsetS int
	}{
		{"UTC-3", -3 * 3600},
		{"GMT-3", -3 * 3600},
		{"UTC+5:30", 5*3600 + 30*60},
		{"-3", -3 * 3600},
		{"-03:00", -3 * 3600},
		{"+2", 2 * 3600},
		{"8", 8 * 3600}, // no sign marker: east of UTC
		{"utc-4", -4 * 3600},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			loc := ResolveTimezone(tc.in)
			require.NotNil(t, loc)
			_, offset := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC).In(loc).Zone()
			assert.Equal(t, tc.offsetS, offset)
		})
	}
}

func TestResolveTimezone_Invalid(t *testing.T) {
	assert.Nil(t, ResolveTimezone("garbage"))
	assert.Nil(t, ResolveTimezone(""))
	assert.Nil(t, ResolveTimezone("   "))
}

func TestResolveTimezone_Deterministic(t *testing.T) {
	for _, in := range []string{"America/Sao_Paulo", "UTC-3", "garbage"} {
		first := ResolveTimezone(in)
		second := ResolveTimezone(in)
		if first == nil {
			assert.Nil(t, second)
			continue
		}
		require.NotNil(t, second)
		assert.Equal(t, first.String(), second.String())
	}
}

func TestFormatLocal(t *testing.T) {
	ts := time.Date(2025, time.March, 5, 14, 30, 0, 0, time.UTC)

	t.Run("resolved zone", func(t *testing.T) {
		assert.Equal(t, "Mar 05, 11:30", FormatLocal(ts, ResolveTimezone("UTC-3")))
	})
	t.Run("nil zone renders UTC with suffix", func(t *testing.T) {
		assert.Equal(t, "Mar 05, 14:30 UTC", FormatLocal(ts, nil))
	})
	t.Run("zero time", func(t *testing.T) {
		assert.Equal(t, "—", FormatLocal(time.Time{}, nil))
	})
}
