package parser

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseDateTimeUTC(t *testing.T) {
	ti, utc, err := ParseDateTime("20150910T135212Z")

	require.NoError(t, err)
	assert.True(t, utc)
	assert.Equal(t, 10, ti.Day())
	assert.Equal(t, time.September, ti.Month())
	assert.Equal(t, 2015, ti.Year())
	assert.Equal(t, 13, ti.Hour())
	assert.Equal(t, 52, ti.Minute())
	assert.Equal(t, 12, ti.Second())
}

func Test_ParseDateTimeFloating(t *testing.T) {
	ti, utc, err := ParseDateTime("20150910T135212")

	require.NoError(t, err)
	assert.False(t, utc)
	assert.Equal(t, 13, ti.Hour())
}

func Test_ParseDateTimeErrors(t *testing.T) {
	for _, in := range []string{"20150910", "20150910T1352", "20150910T135212X", "2015091OT135212"} {
		_, _, err := ParseDateTime(in)
		assert.Error(t, err, in)
	}
}

func Test_ParseDate(t *testing.T) {
	ti, err := ParseDate("20150910")

	require.NoError(t, err)
	assert.Equal(t, 2015, ti.Year())
	assert.Equal(t, time.September, ti.Month())
	assert.Equal(t, 10, ti.Day())

	_, err = ParseDate("2015091")
	assert.Error(t, err)
	_, err = ParseDate("20151310")
	assert.Error(t, err)
}

func Test_ParseTimeOfDay(t *testing.T) {
	ti, utc, err := ParseTimeOfDay("230000Z")
	require.NoError(t, err)
	assert.True(t, utc)
	assert.Equal(t, 23, ti.Hour())

	ti, utc, err = ParseTimeOfDay("083015")
	require.NoError(t, err)
	assert.False(t, utc)
	assert.Equal(t, 30, ti.Minute())
	assert.Equal(t, 15, ti.Second())

	_, _, err = ParseTimeOfDay("0830")
	assert.Error(t, err)
}

func Test_ParseUTCOffset(t *testing.T) {
	tests := map[string]time.Duration{
		"+0100":   time.Hour,
		"-0500":   -5 * time.Hour,
		"+0000":   0,
		"+011544": time.Hour + 15*time.Minute + 44*time.Second,
	}
	for in, expected := range tests {
		off, err := ParseUTCOffset(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, off, in)
		assert.Equal(t, in, FormatUTCOffset(off))
	}

	for _, in := range []string{"0100", "+1", "+2400", "+0160", "+01:00"} {
		_, err := ParseUTCOffset(in)
		assert.Error(t, err, in)
	}
}

func Test_ParseDuration(t *testing.T) {
	neg, d, err := ParseDuration("-PT15M")
	require.NoError(t, err)
	assert.True(t, neg)
	assert.Equal(t, 15*time.Minute, d.ToDuration())

	neg, d, err = ParseDuration("P1DT2H")
	require.NoError(t, err)
	assert.False(t, neg)
	assert.Equal(t, 26*time.Hour, d.ToDuration())

	_, d, err = ParseDuration("+P2W")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Weeks)

	for _, in := range []string{"P", "PT", "P1DT", "P1W2D", "PT1H2D", "1D", "P1Y"} {
		_, _, err := ParseDuration(in)
		assert.Error(t, err, in)
	}
}

func Test_LoadTimezone(t *testing.T) {
	tz, err := LoadTimezone("Europe/Paris")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", tz.String())

	tz, err = LoadTimezone("america/new_york")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", tz.String())

	_, err = LoadTimezone("Nowhere/Atlantis")
	assert.Error(t, err)
}
