package ical

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/apognu/ical/parser"
	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"
)

// RecurPart is one KEY=value pair of a recurrence rule.
type RecurPart struct {
	Key   string
	Value string
}

// Recur is a RECUR value. Parts keep the order they were given in.
type Recur struct {
	Parts []RecurPart
}

func (Recur) Kind() Kind { return KindRecur }

var recurOrder = []string{
	"RSCALE", "FREQ", "UNTIL", "COUNT", "INTERVAL", "BYSECOND", "BYMINUTE", "BYHOUR",
	"BYDAY", "BYWEEKDAY", "BYMONTHDAY", "BYYEARDAY", "BYWEEKNO", "BYMONTH", "BYSETPOS",
	"WKST", "SKIP",
}

// NewRecur builds a rule from a map, ordering the well-known keys first.
func NewRecur(parts map[string]string) (Recur, error) {
	rank := make(map[string]int, len(recurOrder))
	for i, k := range recurOrder {
		rank[k] = i
	}

	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ki, kj := strings.ToUpper(keys[i]), strings.ToUpper(keys[j])
		ri, iok := rank[ki]
		rj, jok := rank[kj]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return ki < kj
	})

	var r Recur
	for _, k := range keys {
		r.Parts = append(r.Parts, RecurPart{Key: strings.ToUpper(k), Value: parts[k]})
	}
	return r, r.validate()
}

// ParseRecur parses a recurrence rule. Empty segments, such as the one left by
// a trailing ';', are dropped.
func ParseRecur(s string) (Recur, error) {
	var r Recur
	for _, segment := range strings.Split(s, ";") {
		if segment == "" {
			continue
		}
		kv := strings.SplitN(segment, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return Recur{}, fmt.Errorf("invalid recurrence rule part: '%s'", segment)
		}
		r.Parts = append(r.Parts, RecurPart{Key: strings.ToUpper(kv[0]), Value: kv[1]})
	}
	if len(r.Parts) == 0 {
		return Recur{}, fmt.Errorf("empty recurrence rule")
	}
	return r, r.validate()
}

// Get returns the value of key, or "" when the rule does not carry it.
func (r Recur) Get(key string) string {
	for _, p := range r.Parts {
		if strings.EqualFold(p.Key, key) {
			return p.Value
		}
	}
	return ""
}

func (r Recur) String() string {
	parts := make([]string, 0, len(r.Parts))
	for _, p := range r.Parts {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return strings.Join(parts, ";")
}

var (
	frequencies = map[string]bool{
		"SECONDLY": true, "MINUTELY": true, "HOURLY": true, "DAILY": true,
		"WEEKLY": true, "MONTHLY": true, "YEARLY": true,
	}
	weekdays = map[string]time.Weekday{
		"SU": time.Sunday, "MO": time.Monday, "TU": time.Tuesday, "WE": time.Wednesday,
		"TH": time.Thursday, "FR": time.Friday, "SA": time.Saturday,
	}
	byDay = regexp.MustCompile(`^([-+]?\d{1,2})?([A-Z]{2})$`)
)

func (r Recur) validate() error {
	for _, p := range r.Parts {
		v := p.Value
		switch p.Key {
		case "FREQ":
			if !frequencies[strings.ToUpper(v)] {
				return fmt.Errorf("invalid frequency: '%s'", v)
			}
		case "UNTIL":
			if _, err := parser.ParseDate(v); err == nil {
				continue
			}
			if _, _, err := parser.ParseDateTime(v); err != nil {
				return fmt.Errorf("invalid UNTIL: '%s'", v)
			}
		case "COUNT", "INTERVAL":
			if n, err := strconv.Atoi(v); err != nil || n < 1 {
				return fmt.Errorf("invalid %s: '%s'", p.Key, v)
			}
		case "BYSECOND", "BYMINUTE", "BYHOUR", "BYMONTHDAY", "BYYEARDAY", "BYWEEKNO", "BYMONTH", "BYSETPOS":
			for _, n := range strings.Split(v, ",") {
				if _, err := strconv.Atoi(n); err != nil {
					return fmt.Errorf("invalid %s: '%s'", p.Key, v)
				}
			}
		case "BYDAY", "BYWEEKDAY":
			for _, d := range strings.Split(v, ",") {
				m := byDay.FindStringSubmatch(strings.ToUpper(d))
				if m == nil {
					return fmt.Errorf("invalid %s: '%s'", p.Key, v)
				}
				if _, ok := weekdays[m[2]]; !ok {
					return fmt.Errorf("invalid %s: '%s'", p.Key, v)
				}
			}
		case "WKST":
			if _, ok := weekdays[strings.ToUpper(v)]; !ok {
				return fmt.Errorf("invalid WKST: '%s'", v)
			}
		}
	}
	return nil
}

// Expander computes the occurrences of a recurrence rule anchored at start,
// up to and including until.
type Expander interface {
	Expand(rule Recur, start, until time.Time) ([]time.Time, error)
}

// rruleKeys lists the parts understood by rrule-go; anything else is left out
// of the expansion.
var rruleKeys = map[string]bool{
	"FREQ": true, "INTERVAL": true, "WKST": true, "COUNT": true, "UNTIL": true,
	"BYSETPOS": true, "BYMONTH": true, "BYMONTHDAY": true, "BYYEARDAY": true,
	"BYWEEKNO": true, "BYDAY": true, "BYWEEKDAY": true, "BYHOUR": true,
	"BYMINUTE": true, "BYSECOND": true, "BYEASTER": true,
}

// DefaultMaxOccurrences caps a single rule expansion.
const DefaultMaxOccurrences = 5000

// RRuleExpander expands rules with rrule-go. Expansion stops after
// MaxOccurrences iterations, whatever the rule says.
type RRuleExpander struct {
	MaxOccurrences int
	Logger         zerolog.Logger
}

func (e RRuleExpander) Expand(rule Recur, start, until time.Time) ([]time.Time, error) {
	parts := make([]string, 0, len(rule.Parts))
	for _, p := range rule.Parts {
		if rruleKeys[p.Key] {
			parts = append(parts, p.Key+"="+p.Value)
		}
	}

	opt, err := rrule.StrToROptionInLocation(strings.Join(parts, ";"), start.Location())
	if err != nil {
		return nil, err
	}
	opt.Dtstart = start

	rr, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, err
	}

	limit := e.MaxOccurrences
	if limit <= 0 {
		limit = DefaultMaxOccurrences
	}

	var out []time.Time
	next := rr.Iterator()
	for i := 0; ; i++ {
		t, ok := next()
		if !ok || t.After(until) {
			break
		}
		if i == limit {
			e.Logger.Warn().Str("rule", rule.String()).Int("limit", limit).Msg("recurrence expansion capped")
			break
		}
		out = append(out, t)
	}
	return out, nil
}
