package parser

import (
	"fmt"
	"sort"
	"strings"
)

// Param is a single property parameter. A parameter carries one value in the
// common case and several for multivalued parameters such as TYPE=HOME,VOICE.
type Param struct {
	Key    string
	Values []string

	quoted []bool
}

// Parameters is an ordered, case-insensitive parameter set.
//
// A set produced by the lexer remembers the order, key spelling and quoting of
// the source text and is re-emitted that way. As soon as it is changed through
// Set, SetDefault or Del it becomes canonical: keys are uppercased and sorted,
// and values are quoted only when they need to be.
type Parameters struct {
	items     []Param
	canonical bool
}

func NewParam(key string, values ...string) Param {
	return Param{Key: key, Values: values}
}

// NewParameters returns an empty, canonical parameter set.
func NewParameters() *Parameters {
	return &Parameters{canonical: true}
}

func (p *Parameters) index(key string) int {
	if p == nil {
		return -1
	}
	for i, it := range p.items {
		if strings.EqualFold(it.Key, key) {
			return i
		}
	}
	return -1
}

func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Keys returns parameter keys in emission order of the source text.
func (p *Parameters) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, len(p.items))
	for _, it := range p.items {
		keys = append(keys, it.Key)
	}
	return keys
}

func (p *Parameters) Has(key string) bool {
	return p.index(key) >= 0
}

// Get returns the first value of the parameter.
func (p *Parameters) Get(key string) (string, bool) {
	i := p.index(key)
	if i < 0 || len(p.items[i].Values) == 0 {
		return "", i >= 0
	}
	return p.items[i].Values[0], true
}

// Values returns every value of a (possibly multivalued) parameter.
func (p *Parameters) Values(key string) []string {
	i := p.index(key)
	if i < 0 {
		return nil
	}
	return append([]string(nil), p.items[i].Values...)
}

// Set replaces the values of key, appending the parameter when absent.
// Setting identical values is a no-op and keeps source formatting.
func (p *Parameters) Set(key string, values ...string) {
	if i := p.index(key); i >= 0 {
		if equalValues(p.items[i].Values, values) {
			return
		}
		p.items[i] = Param{Key: strings.ToUpper(key), Values: append([]string(nil), values...)}
	} else {
		p.items = append(p.items, Param{Key: strings.ToUpper(key), Values: append([]string(nil), values...)})
	}
	p.canonical = true
}

// SetDefault sets key only when it is not present yet.
func (p *Parameters) SetDefault(key string, values ...string) {
	if !p.Has(key) {
		p.Set(key, values...)
	}
}

func (p *Parameters) Del(key string) {
	i := p.index(key)
	if i < 0 {
		return
	}
	p.items = append(p.items[:i], p.items[i+1:]...)
	p.canonical = true
}

// Canonical reports whether the set has been built or changed through the API.
func (p *Parameters) Canonical() bool {
	return p == nil || p.canonical
}

func (p *Parameters) Clone() *Parameters {
	if p == nil {
		return NewParameters()
	}
	out := &Parameters{canonical: p.canonical, items: make([]Param, len(p.items))}
	for i, it := range p.items {
		out.items[i] = Param{
			Key:    it.Key,
			Values: append([]string(nil), it.Values...),
			quoted: append([]bool(nil), it.quoted...),
		}
	}
	return out
}

// Encode renders the parameter set without the leading ';'. Keys for which
// keepCase returns true are written verbatim, every other key is uppercased.
func (p *Parameters) Encode(keepCase func(key string) bool) string {
	if p.Len() == 0 {
		return ""
	}
	items := p.items
	if p.canonical {
		items = append([]Param(nil), p.items...)
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToUpper(items[i].Key) < strings.ToUpper(items[j].Key)
		})
	}

	parts := make([]string, 0, len(items))
	for _, it := range items {
		key := it.Key
		if keepCase == nil || !keepCase(key) {
			key = strings.ToUpper(key)
		}
		values := make([]string, len(it.Values))
		for i, v := range it.Values {
			switch {
			case p.canonical:
				values[i] = QuoteParamValue(v)
			case i < len(it.quoted) && it.quoted[i]:
				values[i] = `"` + v + `"`
			default:
				values[i] = v
			}
		}
		parts = append(parts, key+"="+strings.Join(values, ","))
	}
	return strings.Join(parts, ";")
}

// QuoteParamValue double-quotes a parameter value when it contains characters
// that cannot appear bare. DQUOTE itself is not allowed and becomes a single quote.
func QuoteParamValue(v string) string {
	v = strings.ReplaceAll(v, `"`, "'")
	if strings.ContainsAny(v, ",;: '’") {
		return `"` + v + `"`
	}
	return v
}

// ParseParameters splits a content line head into its name and parameters.
func ParseParameters(head string) (string, *Parameters, error) {
	tokens := splitQuoted(head, ';', -1)

	params := &Parameters{}
	for _, token := range tokens[1:] {
		kv := splitQuoted(token, '=', 2)
		if len(kv) != 2 {
			return "", nil, fmt.Errorf("%q is not a valid parameter string", token)
		}
		if !IsToken(kv[0]) {
			return "", nil, fmt.Errorf("%q is not a valid parameter string: %s", token, kv[0])
		}

		param := Param{Key: kv[0]}
		for _, v := range splitQuoted(kv[1], ',', -1) {
			quoted := len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`)
			if quoted {
				v = v[1 : len(v)-1]
			}
			if strings.Contains(v, `"`) {
				return "", nil, fmt.Errorf("%q is not a valid parameter string: unbalanced quotes", token)
			}
			param.Values = append(param.Values, v)
			param.quoted = append(param.quoted, quoted)
		}
		params.items = append(params.items, param)
	}

	return tokens[0], params, nil
}

// splitQuoted splits s on sep, ignoring separators inside double quotes.
// A negative max splits on every separator.
func splitQuoted(s string, sep byte, max int) []string {
	var out []string
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			quoted = !quoted
		case s[i] == sep && !quoted:
			if max > 0 && len(out) == max-1 {
				continue
			}
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func equalValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
