package ical

import (
	"fmt"
	"sort"
	"time"

	"github.com/apognu/ical/parser"
	"github.com/rs/zerolog"
)

// Transition is the moment a UTC offset takes effect.
type Transition struct {
	At           time.Time
	Offset       time.Duration
	Abbreviation string
	DST          bool
}

// TransitionTable is the resolved form of a VTIMEZONE: transitions sorted by
// instant, none of them redundant. It is never modified once built.
type TransitionTable struct {
	TZID string

	transitions []Transition
	initial     *Transition
}

// Horizon bounds recurrence expansion of timezone rules.
type Horizon struct {
	Start time.Time
	End   time.Time
}

var DefaultHorizon = Horizon{
	Start: time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC),
}

type resolver struct {
	horizon        Horizon
	expander       Expander
	maxOccurrences int
	logger         zerolog.Logger
}

type ResolveOption func(*resolver)

func WithHorizon(start, end time.Time) ResolveOption {
	return func(r *resolver) {
		r.horizon = Horizon{Start: start.UTC(), End: end.UTC()}
	}
}

// WithExpander replaces the rrule-go based expansion.
func WithExpander(e Expander) ResolveOption {
	return func(r *resolver) {
		r.expander = e
	}
}

// WithMaxOccurrences caps the number of onsets expanded from a single rule.
func WithMaxOccurrences(n int) ResolveOption {
	return func(r *resolver) {
		r.maxOccurrences = n
	}
}

func WithResolveLogger(l zerolog.Logger) ResolveOption {
	return func(r *resolver) {
		r.logger = l
	}
}

type onset struct {
	at  time.Time
	utc bool
}

type timezoneRule struct {
	name  string
	from  time.Duration
	to    time.Duration
	dst   bool
	start time.Time
	rules []Recur
	dates []onset
}

type entry struct {
	Transition
	from time.Duration
}

// Resolve builds the transition table of a VTIMEZONE component.
func Resolve(tz *Component, opts ...ResolveOption) (*TransitionTable, error) {
	r := resolver{
		horizon:        DefaultHorizon,
		maxOccurrences: DefaultMaxOccurrences,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.expander == nil {
		r.expander = RRuleExpander{MaxOccurrences: r.maxOccurrences, Logger: r.logger}
	}
	if !r.horizon.End.After(r.horizon.Start) {
		return nil, fmt.Errorf("%w: empty horizon", ErrInvalidTimezone)
	}

	if tz.Kind() != KindTimezone {
		return nil, fmt.Errorf("%w: %s is not a VTIMEZONE", ErrInvalidTimezone, tz.Name)
	}

	table := &TransitionTable{}
	if p, ok := tz.Get("TZID"); ok {
		table.TZID = textOf(p.Value)
	}

	var rules []timezoneRule
	for _, sub := range tz.Components {
		if sub.Kind() != KindStandard && sub.Kind() != KindDaylight {
			continue
		}
		rule, err := readRule(table.TZID, sub)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: %s has no STANDARD or DAYLIGHT rule", ErrInvalidTimezone, table.TZID)
	}

	var entries []entry
	for _, rule := range rules {
		add := func(at time.Time) {
			entries = append(entries, entry{
				Transition: Transition{At: at, Offset: rule.to, Abbreviation: rule.name, DST: rule.dst},
				from:       rule.from,
			})
		}

		add(rule.start.Add(-rule.from))
		for _, rr := range rule.rules {
			onsets, err := r.expander.Expand(wallUntil(rr, rule.from), rule.start, r.horizon.End)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTimezone, table.TZID, err)
			}
			for _, o := range onsets {
				if o.Before(r.horizon.Start) {
					continue
				}
				add(o.Add(-rule.from))
			}
		}
		for _, d := range rule.dates {
			if d.utc {
				add(d.at)
			} else {
				add(d.at.Add(-rule.from))
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.Before(entries[j].At)
	})

	for i, e := range entries {
		if i > 0 && e.At.Equal(entries[i-1].At) {
			continue
		}
		if n := len(table.transitions); n > 0 {
			last := table.transitions[n-1]
			if last.Offset == e.Offset && last.Abbreviation == e.Abbreviation {
				continue
			}
		}
		table.transitions = append(table.transitions, e.Transition)
	}

	// The offset in force before the first onset is the one the first rule
	// moves away from; its name comes from a rule that moves to it.
	first := entries[0]
	table.initial = &Transition{Offset: first.from, Abbreviation: parser.FormatUTCOffset(first.from)}
	for _, rule := range rules {
		if rule.to == first.from {
			table.initial = &Transition{Offset: rule.to, Abbreviation: rule.name, DST: rule.dst}
			break
		}
	}

	r.logger.Debug().
		Str("tzid", table.TZID).
		Int("transitions", len(table.transitions)).
		Msg("resolved timezone")

	return table, nil
}

func readRule(tzid string, c *Component) (timezoneRule, error) {
	rule := timezoneRule{dst: c.Kind() == KindDaylight}

	invalid := func(what string) error {
		return fmt.Errorf("%w: %s: %s %s", ErrInvalidTimezone, tzid, c.Name, what)
	}

	p, ok := c.Get("DTSTART")
	if !ok {
		return rule, invalid("has no DTSTART")
	}
	switch v := p.Value.(type) {
	case DateTime:
		rule.start = v.Time
	case Date:
		rule.start = v.In(time.UTC)
	default:
		return rule, invalid("has an invalid DTSTART")
	}

	for name, dst := range map[string]*time.Duration{"TZOFFSETFROM": &rule.from, "TZOFFSETTO": &rule.to} {
		p, ok := c.Get(name)
		if !ok {
			return rule, invalid("has no " + name)
		}
		off, ok := p.Value.(UTCOffset)
		if !ok {
			return rule, invalid("has an invalid " + name)
		}
		*dst = time.Duration(off)
	}

	if p, ok := c.Get("TZNAME"); ok {
		rule.name = textOf(p.Value)
	} else {
		rule.name = fmt.Sprintf("%s_%s_%s_%s",
			tzid, rule.start.Format(parser.DateTimeLayout),
			parser.FormatUTCOffset(rule.from), parser.FormatUTCOffset(rule.to))
	}

	for _, p := range c.GetAll("RRULE") {
		if rr, ok := p.Value.(Recur); ok {
			rule.rules = append(rule.rules, rr)
		}
	}

	for _, p := range c.GetAll("RDATE") {
		items := []Value{p.Value}
		if l, ok := p.Value.(List); ok {
			items = l.Items
		}
		for _, item := range items {
			switch v := item.(type) {
			case DateTime:
				rule.dates = append(rule.dates, onset{at: v.Time, utc: v.UTC})
			case Date:
				rule.dates = append(rule.dates, onset{at: v.In(time.UTC)})
			case Period:
				rule.dates = append(rule.dates, onset{at: v.Start.Time, utc: v.Start.UTC})
			}
		}
	}

	return rule, nil
}

// wallUntil moves a UTC UNTIL into the wall clock the rule is expressed in.
func wallUntil(rr Recur, from time.Duration) Recur {
	out := Recur{Parts: make([]RecurPart, len(rr.Parts))}
	copy(out.Parts, rr.Parts)
	for i, p := range out.Parts {
		if p.Key != "UNTIL" {
			continue
		}
		if t, utc, err := parser.ParseDateTime(p.Value); err == nil && utc {
			out.Parts[i].Value = t.Add(from).Format(parser.DateTimeLayout)
		}
	}
	return out
}

func textOf(v Value) string {
	switch v := v.(type) {
	case Text:
		return string(v)
	case Opaque:
		return v.Raw
	}
	return ""
}

// Transitions returns a copy of the table entries.
func (t *TransitionTable) Transitions() []Transition {
	return append([]Transition(nil), t.transitions...)
}

func (t *TransitionTable) Len() int {
	return len(t.transitions)
}

// LookupTransition returns the transition in force at instant at.
func (t *TransitionTable) LookupTransition(at time.Time) (Transition, error) {
	i := sort.Search(len(t.transitions), func(i int) bool {
		return t.transitions[i].At.After(at)
	})
	if i > 0 {
		return t.transitions[i-1], nil
	}
	if t.initial == nil {
		return Transition{}, fmt.Errorf("%w: %s at %s", ErrBeforeFirstTransition, t.TZID, at.UTC().Format(time.RFC3339))
	}
	return *t.initial, nil
}

// Lookup returns the UTC offset and abbreviation in force at instant at.
func (t *TransitionTable) Lookup(at time.Time) (time.Duration, string, error) {
	tr, err := t.LookupTransition(at)
	return tr.Offset, tr.Abbreviation, err
}

// Instant interprets the wall clock of wall in this timezone.
func (t *TransitionTable) Instant(wall time.Time) (time.Time, error) {
	w := wallClock(wall)

	guess, err := t.LookupTransition(w)
	if err != nil {
		return time.Time{}, err
	}
	tr, err := t.LookupTransition(w.Add(-guess.Offset))
	if err != nil {
		tr = guess
	}

	loc := time.FixedZone(tr.Abbreviation, int(tr.Offset/time.Second))
	return w.Add(-tr.Offset).In(loc), nil
}

// Transitions returns the transition table of a VTIMEZONE component. It is
// built on first use and cached until the component changes.
func (c *Component) Transitions() (*TransitionTable, error) {
	if t := c.transitions.Load(); t != nil {
		return t, nil
	}

	t, err := Resolve(c, c.config().resolve...)
	if err != nil {
		return nil, err
	}
	c.transitions.Store(t)
	return t, nil
}

// Timezone returns the VTIMEZONE with the given TZID in the tree c belongs to.
func (c *Component) Timezone(tzid string) (*Component, bool) {
	for _, tz := range c.root().Walk(string(KindTimezone)) {
		if p, ok := tz.Get("TZID"); ok && textOf(p.Value) == tzid {
			return tz, true
		}
	}
	return nil, false
}

// Instant resolves a date-time to a time.Time. TZID values are looked up in
// the calendar's own VTIMEZONE definitions first, then in the host database.
func (c *Component) Instant(dt DateTime) (time.Time, error) {
	w := dt.Time
	cfg := c.config()

	switch {
	case dt.UTC:
		return w.UTC(), nil
	case dt.TZID == "":
		loc := cfg.floating
		if loc == nil {
			loc = time.Local
		}
		return inLocation(w, loc), nil
	}

	if tz, ok := c.Timezone(dt.TZID); ok {
		table, err := tz.Transitions()
		if err != nil {
			return time.Time{}, err
		}
		return table.Instant(w)
	}

	if cfg.tzMapper != nil {
		if loc, err := cfg.tzMapper(dt.TZID); err == nil && loc != nil {
			return inLocation(w, loc), nil
		}
	}
	if loc, err := parser.LoadTimezone(dt.TZID); err == nil {
		return inLocation(w, loc), nil
	}

	return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownTimezone, dt.TZID)
}

func inLocation(wall time.Time, loc *time.Location) time.Time {
	return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, loc)
}
