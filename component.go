package ical

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/apognu/ical/parser"
)

// ComponentKind identifies the components this package knows about. Any other
// name is generic and kept exactly as written.
type ComponentKind string

const (
	KindCalendar     ComponentKind = "VCALENDAR"
	KindEvent        ComponentKind = "VEVENT"
	KindTodo         ComponentKind = "VTODO"
	KindJournal      ComponentKind = "VJOURNAL"
	KindFreeBusy     ComponentKind = "VFREEBUSY"
	KindTimezone     ComponentKind = "VTIMEZONE"
	KindStandard     ComponentKind = "STANDARD"
	KindDaylight     ComponentKind = "DAYLIGHT"
	KindAlarm        ComponentKind = "VALARM"
	KindAvailability ComponentKind = "VAVAILABILITY"
	KindAvailable    ComponentKind = "AVAILABLE"
	KindGeneric      ComponentKind = ""
)

var componentKinds = map[string]ComponentKind{}

func init() {
	for _, k := range []ComponentKind{
		KindCalendar, KindEvent, KindTodo, KindJournal, KindFreeBusy, KindTimezone,
		KindStandard, KindDaylight, KindAlarm, KindAvailability, KindAvailable,
	} {
		componentKinds[string(k)] = k
	}
}

// Issue is a recoverable anomaly found while parsing a component. Property is
// empty when the offending line could not be attributed to a property.
type Issue struct {
	Property string
	Message  string
}

type Property struct {
	Name   string
	Params *parser.Parameters
	Value  Value
	// Err is set when the raw text could not be decoded; Value then holds it
	// as an Opaque.
	Err error
}

// emitName is the name written on encode: uppercase for known properties,
// verbatim otherwise.
func (p *Property) emitName() string {
	if _, ok := lookupProperty(p.Name); ok {
		return strings.ToUpper(p.Name)
	}
	return p.Name
}

func (p *Property) keepParamCase(key string) bool {
	if _, ok := lookupProperty(p.Name); !ok {
		return true
	}
	return !knownParams[strings.ToUpper(key)]
}

// Param returns the first value of a property parameter.
func (p *Property) Param(key string) (string, bool) {
	return p.Params.Get(key)
}

// settings are shared by every component produced by a single parse.
type settings struct {
	registry *Registry
	tzMapper parser.TZMapper
	floating *time.Location
	resolve  []ResolveOption
}

var defaultSettings = &settings{registry: DefaultRegistry, floating: time.Local}

type Component struct {
	Name       string
	Properties []*Property
	Components []*Component
	Broken     bool
	Errors     []Issue

	kind        ComponentKind
	parent      *Component
	settings    *settings
	transitions atomic.Pointer[TransitionTable]
}

// NewComponent creates an empty component. Known names are matched without
// regard to case.
func NewComponent(name string) *Component {
	return &Component{Name: name, kind: componentKinds[strings.ToUpper(name)]}
}

func (c *Component) Kind() ComponentKind {
	return c.kind
}

// IsKnown reports whether the component is one of the standard kinds.
func (c *Component) IsKnown() bool {
	return c.kind != KindGeneric
}

func (c *Component) IsBroken() bool {
	return c.Broken
}

func (c *Component) emitName() string {
	if c.kind != KindGeneric {
		return string(c.kind)
	}
	return c.Name
}

func (c *Component) is(name string) bool {
	return strings.EqualFold(c.Name, name)
}

func (c *Component) root() *Component {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (c *Component) config() *settings {
	for n := c; n != nil; n = n.parent {
		if n.settings != nil {
			return n.settings
		}
	}
	return defaultSettings
}

func (c *Component) registry() *Registry {
	if r := c.config().registry; r != nil {
		return r
	}
	return DefaultRegistry
}

// touch drops cached transition tables on c and its ancestors.
func (c *Component) touch() {
	for n := c; n != nil; n = n.parent {
		n.transitions.Store(nil)
	}
}

// AddComponent appends a child component.
func (c *Component) AddComponent(sub *Component) {
	sub.parent = c
	c.Components = append(c.Components, sub)
	c.touch()
}

// Get returns the first property called name.
func (c *Component) Get(name string) (*Property, bool) {
	for _, p := range c.Properties {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return nil, false
}

// GetAll returns every property called name, in order.
func (c *Component) GetAll(name string) []*Property {
	var out []*Property
	for _, p := range c.Properties {
		if strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out
}

// Remove deletes every property called name.
func (c *Component) Remove(name string) {
	kept := c.Properties[:0]
	for _, p := range c.Properties {
		if !strings.EqualFold(p.Name, name) {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(c.Properties); i++ {
		c.Properties[i] = nil
	}
	c.Properties = kept
	c.touch()
}

// Walk returns c and all of its descendants, depth first, restricted to the
// given names when any are passed.
func (c *Component) Walk(names ...string) []*Component {
	var out []*Component
	var walk func(n *Component)
	walk = func(n *Component) {
		if len(names) == 0 {
			out = append(out, n)
		} else {
			for _, name := range names {
				if n.is(name) {
					out = append(out, n)
					break
				}
			}
		}
		for _, sub := range n.Components {
			walk(sub)
		}
	}
	walk(c)
	return out
}

// Subcomponents returns the direct children of c.
func (c *Component) Subcomponents() []*Component {
	return c.Components
}

func (c *Component) addIssue(property, message string) {
	c.Broken = true
	c.Errors = append(c.Errors, Issue{Property: property, Message: message})
}
