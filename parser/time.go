package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	duration "github.com/ChannelMeter/iso8601duration"
)

const (
	DateLayout        = "20060102"
	DateTimeLayout    = "20060102T150405"
	DateTimeLayoutUTC = "20060102T150405Z"
	TimeLayout        = "150405"
)

// ParseDate parses a DATE value (YYYYMMDD).
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("expected date, got: '%s'", s)
	}
	return time.Parse(DateLayout, s)
}

// ParseDateTime parses a DATE-TIME value. The wall clock is returned in UTC
// and utc reports whether the value carried the trailing 'Z'.
func ParseDateTime(s string) (t time.Time, utc bool, err error) {
	switch len(s) {
	case len(DateTimeLayoutUTC):
		if !strings.HasSuffix(s, "Z") {
			break
		}
		t, err = time.Parse(DateTimeLayoutUTC, s)
		return t, true, err
	case len(DateTimeLayout):
		t, err = time.Parse(DateTimeLayout, s)
		return t, false, err
	}
	return time.Time{}, false, fmt.Errorf("expected date-time, got: '%s'", s)
}

// ParseTimeOfDay parses a TIME value (HHMMSS with optional 'Z').
func ParseTimeOfDay(s string) (t time.Time, utc bool, err error) {
	raw := strings.TrimSuffix(s, "Z")
	if len(raw) != len(TimeLayout) {
		return time.Time{}, false, fmt.Errorf("expected time, got: '%s'", s)
	}
	t, err = time.Parse(TimeLayout, raw)
	return t, raw != s, err
}

var utcOffset = regexp.MustCompile(`^([-+])(\d\d)(\d\d)(\d\d)?$`)

// ParseUTCOffset parses a UTC-OFFSET value such as +0100, -0500 or +011544.
func ParseUTCOffset(s string) (time.Duration, error) {
	m := utcOffset.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("expected utc offset, got: '%s'", s)
	}

	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	seconds := 0
	if m[4] != "" {
		seconds, _ = strconv.Atoi(m[4])
	}
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("expected utc offset, got: '%s'", s)
	}

	offset := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	if offset >= 24*time.Hour {
		return 0, fmt.Errorf("offset must be less than 24 hours, was %s", s)
	}
	if m[1] == "-" {
		offset = -offset
	}
	return offset, nil
}

// FormatUTCOffset renders an offset as ±HHMM, or ±HHMMSS when it has seconds.
func FormatUTCOffset(offset time.Duration) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	total := int(offset / time.Second)
	hours, minutes, seconds := total/3600, total%3600/60, total%60
	if seconds != 0 {
		return fmt.Sprintf("%s%02d%02d%02d", sign, hours, minutes, seconds)
	}
	return fmt.Sprintf("%s%02d%02d", sign, hours, minutes)
}

var durationValue = regexp.MustCompile(`^[-+]?P(\d+W|(\d+D)?(T(\d+H)?(\d+M)?(\d+S)?)?)$`)

// ParseDuration parses a DURATION value. Weeks cannot be combined with other
// units, as in RFC 5545 section 3.3.6.
func ParseDuration(s string) (negative bool, d *duration.Duration, err error) {
	if !durationValue.MatchString(s) || strings.HasSuffix(s, "P") || strings.HasSuffix(s, "T") {
		return false, nil, fmt.Errorf("invalid iCalendar duration: %s", s)
	}

	negative = strings.HasPrefix(s, "-")
	d, err = duration.FromString(strings.TrimLeft(s, "+-"))
	if err != nil {
		return false, nil, fmt.Errorf("invalid iCalendar duration: %s: %w", s, err)
	}
	return negative, d, nil
}

// TZMapper, when set, is consulted before the host database for TZID values.
type TZMapper func(tzid string) (*time.Location, error)

// LoadTimezone resolves a TZID against the host timezone database, retrying
// with title-cased segments (america/new_york -> America/New_York).
func LoadTimezone(tzid string) (*time.Location, error) {
	tz, err := time.LoadLocation(tzid)
	if err == nil {
		return tz, err
	}

	tokens := strings.Split(tzid, "_")
	for idx, t := range tokens {
		t = strings.ToLower(t)

		if t != "of" && t != "es" {
			tokens[idx] = titleSegments(t)
		} else {
			tokens[idx] = t
		}
	}

	return time.LoadLocation(strings.Join(tokens, "_"))
}

func titleSegments(s string) string {
	parts := strings.Split(s, "/")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "/")
}
