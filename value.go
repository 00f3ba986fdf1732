package ical

import (
	"fmt"
	"time"

	duration "github.com/ChannelMeter/iso8601duration"
	"github.com/apognu/ical/parser"
)

// Kind is a value type tag, as carried by the VALUE parameter.
type Kind string

const (
	KindText       Kind = "TEXT"
	KindInteger    Kind = "INTEGER"
	KindFloat      Kind = "FLOAT"
	KindBoolean    Kind = "BOOLEAN"
	KindDate       Kind = "DATE"
	KindDateTime   Kind = "DATE-TIME"
	KindTime       Kind = "TIME"
	KindDuration   Kind = "DURATION"
	KindPeriod     Kind = "PERIOD"
	KindRecur      Kind = "RECUR"
	KindUTCOffset  Kind = "UTC-OFFSET"
	KindBinary     Kind = "BINARY"
	KindCalAddress Kind = "CAL-ADDRESS"
	KindURI        Kind = "URI"
	KindGeo        Kind = "GEO"
	KindUnknown    Kind = "UNKNOWN"
)

// Value is a decoded property value.
type Value interface {
	Kind() Kind
}

type (
	Text       string
	Integer    int
	Float      float64
	Boolean    bool
	CalAddress string
	URI        string
	Binary     []byte
	UTCOffset  time.Duration
)

func (Text) Kind() Kind       { return KindText }
func (Integer) Kind() Kind    { return KindInteger }
func (Float) Kind() Kind      { return KindFloat }
func (Boolean) Kind() Kind    { return KindBoolean }
func (CalAddress) Kind() Kind { return KindCalAddress }
func (URI) Kind() Kind        { return KindURI }
func (Binary) Kind() Kind     { return KindBinary }
func (UTCOffset) Kind() Kind  { return KindUTCOffset }

// Opaque holds raw value text that was not interpreted, either because the
// property is unknown, the type tag is unknown or decoding failed.
type Opaque struct {
	Raw string
}

func (Opaque) Kind() Kind { return KindUnknown }

// List is a comma separated value list such as CATEGORIES or EXDATE.
type List struct {
	Of    Kind
	Items []Value
}

func (l List) Kind() Kind { return l.Of }

type Geo struct {
	Latitude  float64
	Longitude float64
}

func (Geo) Kind() Kind { return KindGeo }

type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (Date) Kind() Kind { return KindDate }

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// DateTime is a DATE-TIME value. Time holds the wall clock in time.UTC. When
// UTC is set the wall clock is the instant itself, when TZID is set it belongs
// to that zone, otherwise the value is floating.
type DateTime struct {
	Time time.Time
	TZID string
	UTC  bool
}

// utcNames are the zones that never deviate from UTC.
var utcNames = map[string]bool{
	"":              true,
	"UTC":           true,
	"Etc/UTC":       true,
	"UCT":           true,
	"Etc/UCT":       true,
	"Etc/Universal": true,
	"Universal":     true,
	"Zulu":          true,
	"Etc/Zulu":      true,
	"GMT":           true,
	"Etc/GMT":       true,
	"GMT0":          true,
	"Etc/GMT0":      true,
	"GMT+0":         true,
	"Etc/GMT+0":     true,
	"GMT-0":         true,
	"Etc/GMT-0":     true,
	"Greenwich":     true,
	"Etc/Greenwich": true,
}

func isUTC(t time.Time) bool {
	if t.Location() == time.UTC {
		return true
	}
	if _, off := t.Zone(); off != 0 {
		return false
	}
	return utcNames[t.Location().String()]
}

// NewDateTime wraps t. Any UTC-equivalent location, including an unnamed zone
// at offset zero, yields a UTC value. Other named locations yield a TZID value
// and time.Local or an unnamed zone yields a floating value.
func NewDateTime(t time.Time) DateTime {
	if isUTC(t) {
		return DateTime{Time: t.UTC().Truncate(time.Second), UTC: true}
	}

	wall := wallClock(t)
	switch name := t.Location().String(); name {
	case "", "Local":
		return DateTime{Time: wall}
	default:
		return DateTime{Time: wall, TZID: name}
	}
}

func wallClock(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, 0, time.UTC)
}

func (DateTime) Kind() Kind { return KindDateTime }

func (dt DateTime) String() string {
	if dt.UTC {
		return dt.Time.Format(parser.DateTimeLayoutUTC)
	}
	return dt.Time.Format(parser.DateTimeLayout)
}

type TimeOfDay struct {
	Hour, Minute, Second int
	UTC                  bool
}

func (TimeOfDay) Kind() Kind { return KindTime }

func (t TimeOfDay) String() string {
	s := fmt.Sprintf("%02d%02d%02d", t.Hour, t.Minute, t.Second)
	if t.UTC {
		s += "Z"
	}
	return s
}

// Duration is a nominal DURATION value. Weeks are never combined with other
// units when encoded from NewDuration.
type Duration struct {
	Negative bool
	Weeks    int
	Days     int
	Hours    int
	Minutes  int
	Seconds  int
}

func NewDuration(d time.Duration) Duration {
	out := Duration{Negative: d < 0}
	if d < 0 {
		d = -d
	}
	total := int(d / time.Second)
	if total > 0 && total%(7*86400) == 0 {
		out.Weeks = total / (7 * 86400)
		return out
	}
	out.Days, total = total/86400, total%86400
	out.Hours, total = total/3600, total%3600
	out.Minutes, out.Seconds = total/60, total%60
	return out
}

func (Duration) Kind() Kind { return KindDuration }

// Duration converts the value to an exact time.Duration, counting a day as
// 24 hours.
func (d Duration) Duration() time.Duration {
	iso := duration.Duration{
		Weeks:   d.Weeks,
		Days:    d.Days,
		Hours:   d.Hours,
		Minutes: d.Minutes,
		Seconds: d.Seconds,
	}
	out := iso.ToDuration()
	if d.Negative {
		return -out
	}
	return out
}

func (d Duration) String() string {
	s := "P"
	if d.Negative {
		s = "-P"
	}
	if d.Weeks != 0 {
		s += fmt.Sprintf("%dW", d.Weeks)
	}
	if d.Days != 0 {
		s += fmt.Sprintf("%dD", d.Days)
	}
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 {
		s += "T"
		if d.Hours != 0 {
			s += fmt.Sprintf("%dH", d.Hours)
		}
		if d.Minutes != 0 {
			s += fmt.Sprintf("%dM", d.Minutes)
		}
		if d.Seconds != 0 {
			s += fmt.Sprintf("%dS", d.Seconds)
		}
	}
	if s == "P" || s == "-P" {
		return "PT0S"
	}
	return s
}

// Period is either a start/end pair (HasEnd) or a start with a duration.
type Period struct {
	Start    DateTime
	End      DateTime
	Duration Duration
	HasEnd   bool
}

func NewPeriod(start, end time.Time) Period {
	return Period{Start: NewDateTime(start), End: NewDateTime(end), HasEnd: true}
}

func NewPeriodDuration(start time.Time, d time.Duration) Period {
	return Period{Start: NewDateTime(start), Duration: NewDuration(d)}
}

func (Period) Kind() Kind { return KindPeriod }
