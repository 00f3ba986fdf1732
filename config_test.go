package ical

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 1600, cfg.Timezone.HorizonStartYear)
	assert.Equal(t, 2200, cfg.Timezone.HorizonEndYear)
	assert.Equal(t, DefaultMaxOccurrences, cfg.Timezone.MaxOccurrences)
}

func Test_LoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig([]byte(`
log_level = "debug"
floating_location = "Europe/Vienna"

[timezone]
horizon_end_year = 2100
max_occurrences = 100
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Europe/Vienna", cfg.FloatingLocation)
	assert.Equal(t, 1600, cfg.Timezone.HorizonStartYear)
	assert.Equal(t, 2100, cfg.Timezone.HorizonEndYear)
	assert.Equal(t, 100, cfg.Timezone.MaxOccurrences)
}

func Test_LoadConfigErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":      `log_level = `,
		"unknown key": `colour = "blue"`,
		"level":       `log_level = "loud"`,
		"location":    `floating_location = "Nowhere/Atlantis"`,
		"horizon":     "[timezone]\nhorizon_start_year = 2000\nhorizon_end_year = 1999",
		"occurrences": "[timezone]\nmax_occurrences = 0",
	}

	for name, input := range tests {
		_, err := LoadConfig([]byte(input))
		assert.Error(t, err, name)
	}
}

func Test_ConfigParserOptions(t *testing.T) {
	cfg, err := LoadConfig([]byte(`
log_level = "warn"
floating_location = "Asia/Tokyo"

[timezone]
max_occurrences = 10
`))
	require.NoError(t, err)

	var logs bytes.Buffer
	opts, err := cfg.ParserOptions(&logs)
	require.NoError(t, err)

	cal, err := FromBytes(crlf(calendarICS), opts...)
	require.NoError(t, err)

	tz, ok := cal.Timezone("Europe/Vienna")
	require.True(t, ok)
	table, err := tz.Transitions()
	require.NoError(t, err)
	assert.Equal(t, 20, table.Len())
	assert.Contains(t, logs.String(), "recurrence expansion capped")
	assert.Contains(t, logs.String(), `"module":"ical"`)

	floating, err := FromBytes(crlf("BEGIN:VEVENT\nDTSTART:20200101T090000\nEND:VEVENT\n"), opts...)
	require.NoError(t, err)
	start, err := DecodedAs[time.Time](floating, "DTSTART")
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func Test_ConfigParserLogsBrokenProperties(t *testing.T) {
	cfg := DefaultConfig()

	var logs bytes.Buffer
	opts, err := cfg.ParserOptions(&logs)
	require.NoError(t, err)

	cal, err := FromBytes(crlf("BEGIN:VEVENT\nDTSTART:notadate\nEND:VEVENT\n"), opts...)
	require.NoError(t, err)
	assert.True(t, cal.IsBroken())
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "DTSTART")
}
