package ical

import (
	"fmt"
	"strings"
	"time"

	"github.com/apognu/ical/parser"
)

// Add appends a property built from a native Go value or a Value. The value is
// checked against the property type right away: an incompatible value returns
// an *EncodeError and leaves the component untouched.
//
// Accepted natives are string, []string, int, float64, bool, []byte,
// time.Time, []time.Time and time.Duration.
func (c *Component) Add(name string, value any, params ...parser.Param) error {
	p := parser.NewParameters()
	for _, param := range params {
		p.Set(param.Key, param.Values...)
	}

	prop, err := c.newProperty(name, value, p)
	if err != nil {
		return err
	}

	c.Properties = append(c.Properties, prop)
	c.touch()
	return nil
}

// Set replaces every property called name with a single new one.
func (c *Component) Set(name string, value any, params ...parser.Param) error {
	p := parser.NewParameters()
	for _, param := range params {
		p.Set(param.Key, param.Values...)
	}

	prop, err := c.newProperty(name, value, p)
	if err != nil {
		return err
	}

	c.Remove(name)
	c.Properties = append(c.Properties, prop)
	return nil
}

func (c *Component) newProperty(name string, native any, params *parser.Parameters) (*Property, error) {
	if !parser.IsToken(name) {
		return nil, &EncodeError{Property: name, Message: "invalid property name"}
	}

	spec, known := lookupProperty(name)
	if !known {
		spec = propertySpec{Kind: KindText}
	}

	value, err := resolve(spec, native)
	if err != nil {
		return nil, &EncodeError{Property: name, Message: err.Error()}
	}
	if known && !spec.allows(value.Kind()) {
		return nil, &EncodeError{
			Property: name,
			Message:  fmt.Sprintf("value of type %s is not allowed", value.Kind()),
		}
	}

	switch kind := value.Kind(); {
	case kind == KindUnknown:
	case isTemporal(native):
		params.SetDefault("VALUE", string(kind))
	case kind != spec.Kind:
		params.SetDefault("VALUE", string(kind))
	}

	// Encode on a copy so that a value the codec rejects fails here and not
	// when the component is written out.
	if _, err := c.registry().Encode(value, params.Clone()); err != nil {
		return nil, &EncodeError{Property: name, Message: "value cannot be encoded", Err: err}
	}

	return &Property{Name: name, Params: params, Value: value}, nil
}

func isTemporal(native any) bool {
	switch native.(type) {
	case time.Time, []time.Time, Date, DateTime, Period:
		return true
	}
	return false
}

// resolve turns a native Go value into a Value suitable for spec.
func resolve(spec propertySpec, native any) (Value, error) {
	wrap := func(v Value) Value {
		if spec.List {
			if _, ok := v.(List); !ok {
				return List{Of: v.Kind(), Items: []Value{v}}
			}
		}
		return v
	}

	switch v := native.(type) {
	case nil:
		return nil, fmt.Errorf("value is nil")
	case List:
		return v, nil
	case Value:
		return wrap(v), nil
	case string:
		return resolveString(spec, v)
	case []string:
		if !spec.List || spec.Kind != KindText {
			return nil, fmt.Errorf("a list of strings is not allowed")
		}
		l := List{Of: KindText}
		for _, s := range v {
			l.Items = append(l.Items, Text(s))
		}
		return l, nil
	case int:
		if spec.Kind == KindFloat {
			return Float(v), nil
		}
		return Integer(v), nil
	case float64:
		return Float(v), nil
	case bool:
		return Boolean(v), nil
	case []byte:
		return Binary(v), nil
	case time.Time:
		return wrap(resolveTime(spec, v)), nil
	case []time.Time:
		if !spec.List {
			return nil, fmt.Errorf("a list of times is not allowed")
		}
		l := List{Of: KindDateTime}
		for _, t := range v {
			l.Items = append(l.Items, resolveTime(spec, t))
		}
		return l, nil
	case time.Duration:
		if spec.Kind == KindUTCOffset {
			return UTCOffset(v), nil
		}
		return NewDuration(v), nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", native)
}

func resolveString(spec propertySpec, s string) (Value, error) {
	switch spec.Kind {
	case KindText:
		if spec.List {
			return List{Of: KindText, Items: []Value{Text(s)}}, nil
		}
		return Text(s), nil
	case KindCalAddress:
		return CalAddress(s), nil
	case KindURI:
		return URI(s), nil
	case KindRecur:
		return ParseRecur(s)
	}
	return nil, fmt.Errorf("a string is not allowed for a %s value", spec.Kind)
}

func resolveTime(spec propertySpec, t time.Time) DateTime {
	if spec.UTC {
		t = t.UTC()
	}
	return NewDateTime(t)
}

// Decoded returns the value of the first property called name as a native Go
// value: time.Time for dates and date-times, time.Duration for durations and
// UTC offsets, string for text, []byte for binary values, []any for lists.
// Values without a natural Go counterpart are returned as is.
func (c *Component) Decoded(name string) (any, error) {
	p, ok := c.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, strings.ToUpper(name))
	}
	return c.native(p.Value)
}

// DecodedAs is Decoded with a type assertion.
func DecodedAs[T any](c *Component, name string) (T, error) {
	var zero T

	v, err := c.Decoded(name)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s is a %T, not a %T", strings.ToUpper(name), v, zero)
	}
	return out, nil
}

func (c *Component) native(v Value) (any, error) {
	switch v := v.(type) {
	case Text:
		return string(v), nil
	case Integer:
		return int(v), nil
	case Float:
		return float64(v), nil
	case Boolean:
		return bool(v), nil
	case CalAddress:
		return string(v), nil
	case URI:
		return string(v), nil
	case Binary:
		return []byte(v), nil
	case UTCOffset:
		return time.Duration(v), nil
	case Duration:
		return v.Duration(), nil
	case Date:
		return v.In(time.UTC), nil
	case DateTime:
		return c.Instant(v)
	case Opaque:
		return parser.UnescapeText(v.Raw), nil
	case List:
		out := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			n, err := c.native(item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	}
	return v, nil
}
