package ical

import (
	"fmt"
	"strings"

	"github.com/apognu/ical/parser"
)

// propertySpec describes how a known property decodes when no VALUE parameter
// is present.
type propertySpec struct {
	Kind       Kind
	List       bool
	Alternates []Kind
	// UTC properties are stored as UTC whatever the zone of the added time.
	UTC bool
	// Auto properties detect DATE, DATE-TIME, TIME, PERIOD or DURATION from
	// the shape of the raw text.
	Auto bool
}

var propertySpecs = map[string]propertySpec{
	"CALSCALE": {Kind: KindText},
	"METHOD":   {Kind: KindText},
	"PRODID":   {Kind: KindText},
	"VERSION":  {Kind: KindText},

	"ATTACH":           {Kind: KindURI, Alternates: []Kind{KindBinary}},
	"CATEGORIES":       {Kind: KindText, List: true},
	"CLASS":            {Kind: KindText},
	"COMMENT":          {Kind: KindText},
	"DESCRIPTION":      {Kind: KindText},
	"GEO":              {Kind: KindGeo},
	"LOCATION":         {Kind: KindText},
	"PERCENT-COMPLETE": {Kind: KindInteger},
	"PRIORITY":         {Kind: KindInteger},
	"RESOURCES":        {Kind: KindText, List: true},
	"STATUS":           {Kind: KindText},
	"SUMMARY":          {Kind: KindText},

	"COMPLETED":     {Kind: KindDateTime, Auto: true},
	"DTEND":         {Kind: KindDateTime, Alternates: []Kind{KindDate}, Auto: true},
	"DUE":           {Kind: KindDateTime, Alternates: []Kind{KindDate}, Auto: true},
	"DTSTART":       {Kind: KindDateTime, Alternates: []Kind{KindDate}, Auto: true},
	"DURATION":      {Kind: KindDuration},
	"FREEBUSY":      {Kind: KindPeriod, List: true},
	"TRANSP":        {Kind: KindText},
	"RECURRENCE-ID": {Kind: KindDateTime, Alternates: []Kind{KindDate}, Auto: true},

	"TZID":         {Kind: KindText},
	"TZNAME":       {Kind: KindText},
	"TZOFFSETFROM": {Kind: KindUTCOffset},
	"TZOFFSETTO":   {Kind: KindUTCOffset},
	"TZURL":        {Kind: KindURI},

	"ATTENDEE":       {Kind: KindCalAddress},
	"CONTACT":        {Kind: KindText},
	"ORGANIZER":      {Kind: KindCalAddress},
	"RELATED-TO":     {Kind: KindText},
	"URL":            {Kind: KindURI},
	"UID":            {Kind: KindText},
	"EXDATE":         {Kind: KindDateTime, List: true, Alternates: []Kind{KindDate}, Auto: true},
	"RDATE":          {Kind: KindDateTime, List: true, Alternates: []Kind{KindDate, KindPeriod}, Auto: true},
	"EXRULE":         {Kind: KindRecur},
	"RRULE":          {Kind: KindRecur},
	"ACTION":         {Kind: KindText},
	"REPEAT":         {Kind: KindInteger},
	"TRIGGER":        {Kind: KindDuration, Alternates: []Kind{KindDateTime}, Auto: true},
	"CREATED":        {Kind: KindDateTime, UTC: true, Auto: true},
	"DTSTAMP":        {Kind: KindDateTime, UTC: true, Auto: true},
	"LAST-MODIFIED":  {Kind: KindDateTime, UTC: true, Auto: true},
	"SEQUENCE":       {Kind: KindInteger},
	"REQUEST-STATUS": {Kind: KindText},

	"NAME":             {Kind: KindText},
	"REFRESH-INTERVAL": {Kind: KindDuration},
	"SOURCE":           {Kind: KindURI},
	"COLOR":            {Kind: KindText},
	"IMAGE":            {Kind: KindURI, Alternates: []Kind{KindBinary}},
	"CONFERENCE":       {Kind: KindURI},
	"BUSYTYPE":         {Kind: KindText},
}

var knownParams = map[string]bool{
	"ALTREP": true, "CN": true, "CUTYPE": true, "DELEGATED-FROM": true, "DELEGATED-TO": true,
	"DIR": true, "DISPLAY": true, "EMAIL": true, "ENCODING": true, "FEATURE": true,
	"FMTTYPE": true, "FBTYPE": true, "LABEL": true, "LANGUAGE": true, "MEMBER": true,
	"PARTSTAT": true, "RANGE": true, "RELATED": true, "RELTYPE": true, "ROLE": true,
	"RSVP": true, "SENT-BY": true, "TZID": true, "VALUE": true,
}

func lookupProperty(name string) (propertySpec, bool) {
	spec, ok := propertySpecs[strings.ToUpper(name)]
	return spec, ok
}

// allows reports whether a value of kind k may be stored on the property.
func (s propertySpec) allows(k Kind) bool {
	if k == s.Kind || k == KindUnknown {
		return true
	}
	for _, alt := range s.Alternates {
		if k == alt {
			return true
		}
	}
	if s.Auto {
		switch k {
		case KindDate, KindDateTime, KindPeriod, KindTime:
			return true
		}
	}
	return false
}

// detectKind guesses the type of a date-like raw value.
func detectKind(raw string) (Kind, error) {
	switch {
	case isDurationText(raw):
		return KindDuration, nil
	case strings.Contains(raw, "/"):
		return KindPeriod, nil
	case len(raw) == 8:
		return KindDate, nil
	case strings.Contains(raw, "T"):
		return KindDateTime, nil
	case len(raw) == 6 || len(raw) == 7:
		return KindTime, nil
	}
	return "", fmt.Errorf("Expected datetime, date, or time, got: '%s'", raw)
}

// explicitKind returns the type forced by the parameters, if any.
func explicitKind(params *parser.Parameters) (Kind, bool) {
	if v, ok := params.Get("VALUE"); ok && v != "" {
		return Kind(strings.ToUpper(v)), true
	}
	if enc, ok := params.Get("ENCODING"); ok && strings.EqualFold(enc, "BASE64") {
		return KindBinary, true
	}
	return "", false
}

// decodeProperty decodes the raw value of a property. On failure the returned
// value is an Opaque holding raw.
func decodeProperty(reg *Registry, name, raw string, params *parser.Parameters) (Value, error) {
	spec, known := lookupProperty(name)
	kind, forced := explicitKind(params)

	switch {
	case forced:
	case known && !spec.Auto:
		kind = spec.Kind
	case known:
	default:
		return Opaque{Raw: raw}, nil
	}

	if forced {
		if _, ok := reg.Lookup(kind); !ok {
			return Opaque{Raw: raw}, nil
		}
	}

	decodeOne := func(item string) (Value, error) {
		k := kind
		if k == "" {
			var err error
			if k, err = detectKind(item); err != nil {
				return nil, &ValueDecodeError{Property: strings.ToUpper(name), Kind: KindDateTime, Raw: item, Err: err}
			}
		}
		v, err := reg.Decode(k, item, params)
		if err != nil {
			return nil, &ValueDecodeError{Property: strings.ToUpper(name), Kind: k, Raw: item, Err: err}
		}
		return v, nil
	}

	if !known || !spec.List {
		v, err := decodeOne(raw)
		if err != nil {
			return Opaque{Raw: raw}, err
		}
		return v, nil
	}

	var items []string
	if kind == KindText {
		items = parser.SplitEscaped(raw, ',')
	} else {
		items = strings.Split(raw, ",")
	}

	list := List{Of: kind}
	for _, item := range items {
		v, err := decodeOne(item)
		if err != nil {
			return Opaque{Raw: raw}, err
		}
		if list.Of == "" {
			list.Of = v.Kind()
		}
		list.Items = append(list.Items, v)
	}
	return list, nil
}
