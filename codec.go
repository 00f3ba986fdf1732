package ical

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apognu/ical/parser"
)

// Codec converts between raw value text and a Value. Encode may add or remove
// parameters on params, which is always a working copy.
type Codec interface {
	Decode(raw string, params *parser.Parameters) (Value, error)
	Encode(v Value, params *parser.Parameters) (string, error)
}

// CodecFuncs adapts a pair of functions to Codec.
type CodecFuncs struct {
	DecodeFunc func(raw string, params *parser.Parameters) (Value, error)
	EncodeFunc func(v Value, params *parser.Parameters) (string, error)
}

func (c CodecFuncs) Decode(raw string, params *parser.Parameters) (Value, error) {
	return c.DecodeFunc(raw, params)
}

func (c CodecFuncs) Encode(v Value, params *parser.Parameters) (string, error) {
	return c.EncodeFunc(v, params)
}

// Registry maps value type tags to codecs. It is never modified once built
// and can be shared between goroutines.
type Registry struct {
	codecs map[Kind]Codec
}

// DefaultRegistry holds the codecs for every RFC 5545 value type.
var DefaultRegistry = NewRegistryBuilder().Build()

func (r *Registry) Lookup(kind Kind) (Codec, bool) {
	c, ok := r.codecs[kind]
	return c, ok
}

// Decode decodes a single value. Unknown tags yield an Opaque value.
func (r *Registry) Decode(kind Kind, raw string, params *parser.Parameters) (Value, error) {
	c, ok := r.codecs[kind]
	if !ok {
		return Opaque{Raw: raw}, nil
	}
	return c.Decode(raw, params)
}

// Encode renders v. Opaque values are written verbatim and list items are
// joined with commas.
func (r *Registry) Encode(v Value, params *parser.Parameters) (string, error) {
	switch v := v.(type) {
	case Opaque:
		return v.Raw, nil
	case List:
		items := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			s, err := r.Encode(item, params)
			if err != nil {
				return "", err
			}
			items = append(items, s)
		}
		return strings.Join(items, ","), nil
	}

	c, ok := r.codecs[v.Kind()]
	if !ok {
		return "", fmt.Errorf("no codec for value type %s", v.Kind())
	}
	return c.Encode(v, params)
}

type RegistryBuilder struct {
	codecs map[Kind]Codec
}

// NewRegistryBuilder returns a builder preloaded with the standard codecs.
func NewRegistryBuilder() *RegistryBuilder {
	b := &RegistryBuilder{codecs: make(map[Kind]Codec, len(builtinCodecs))}
	for k, c := range builtinCodecs {
		b.codecs[k] = c
	}
	return b
}

// Register adds or replaces the codec for kind.
func (b *RegistryBuilder) Register(kind Kind, c Codec) *RegistryBuilder {
	b.codecs[Kind(strings.ToUpper(string(kind)))] = c
	return b
}

func (b *RegistryBuilder) Build() *Registry {
	r := &Registry{codecs: make(map[Kind]Codec, len(b.codecs))}
	for k, c := range b.codecs {
		r.codecs[k] = c
	}
	return r
}

func mismatch(v Value, want Kind) error {
	return fmt.Errorf("expected a %s value, got %s", want, v.Kind())
}

var builtinCodecs = map[Kind]Codec{
	KindText: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			return Text(parser.UnescapeText(raw)), nil
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			t, ok := v.(Text)
			if !ok {
				return "", mismatch(v, KindText)
			}
			return parser.EscapeText(string(t)), nil
		},
	},

	KindInteger: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			n, err := strconv.Atoi(raw)
			return Integer(n), err
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			n, ok := v.(Integer)
			if !ok {
				return "", mismatch(v, KindInteger)
			}
			return strconv.Itoa(int(n)), nil
		},
	},

	KindFloat: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			f, err := strconv.ParseFloat(raw, 64)
			return Float(f), err
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			f, ok := v.(Float)
			if !ok {
				return "", mismatch(v, KindFloat)
			}
			return parser.FormatFloat(float64(f)), nil
		},
	},

	KindBoolean: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			switch strings.ToUpper(raw) {
			case "TRUE":
				return Boolean(true), nil
			case "FALSE":
				return Boolean(false), nil
			}
			return nil, fmt.Errorf("expected TRUE or FALSE, got: '%s'", raw)
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			b, ok := v.(Boolean)
			if !ok {
				return "", mismatch(v, KindBoolean)
			}
			if b {
				return "TRUE", nil
			}
			return "FALSE", nil
		},
	},

	KindDate: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			t, err := parser.ParseDate(raw)
			if err != nil {
				return nil, err
			}
			return NewDate(t), nil
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			d, ok := v.(Date)
			if !ok {
				return "", mismatch(v, KindDate)
			}
			return d.String(), nil
		},
	},

	KindDateTime: CodecFuncs{
		DecodeFunc: decodeDateTime,
		EncodeFunc: func(v Value, params *parser.Parameters) (string, error) {
			dt, ok := v.(DateTime)
			if !ok {
				return "", mismatch(v, KindDateTime)
			}
			return encodeDateTime(dt, params), nil
		},
	},

	KindTime: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			t, utc, err := parser.ParseTimeOfDay(raw)
			if err != nil {
				return nil, err
			}
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), UTC: utc}, nil
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			t, ok := v.(TimeOfDay)
			if !ok {
				return "", mismatch(v, KindTime)
			}
			return t.String(), nil
		},
	},

	KindDuration: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			return decodeDuration(raw)
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			d, ok := v.(Duration)
			if !ok {
				return "", mismatch(v, KindDuration)
			}
			return d.String(), nil
		},
	},

	KindPeriod: CodecFuncs{
		DecodeFunc: func(raw string, params *parser.Parameters) (Value, error) {
			parts := strings.SplitN(raw, "/", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("expected period, got: '%s'", raw)
			}
			start, err := decodeDateTime(parts[0], params)
			if err != nil {
				return nil, err
			}
			p := Period{Start: start.(DateTime)}
			if isDurationText(parts[1]) {
				d, err := decodeDuration(parts[1])
				if err != nil {
					return nil, err
				}
				p.Duration = d
				return p, nil
			}
			end, err := decodeDateTime(parts[1], params)
			if err != nil {
				return nil, err
			}
			p.End, p.HasEnd = end.(DateTime), true
			return p, nil
		},
		EncodeFunc: func(v Value, params *parser.Parameters) (string, error) {
			p, ok := v.(Period)
			if !ok {
				return "", mismatch(v, KindPeriod)
			}
			start := encodeDateTime(p.Start, params)
			if p.HasEnd {
				return start + "/" + encodeDateTime(p.End, params), nil
			}
			return start + "/" + p.Duration.String(), nil
		},
	},

	KindRecur: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			return ParseRecur(raw)
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			r, ok := v.(Recur)
			if !ok {
				return "", mismatch(v, KindRecur)
			}
			if err := r.validate(); err != nil {
				return "", err
			}
			return r.String(), nil
		},
	},

	KindUTCOffset: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			off, err := parser.ParseUTCOffset(raw)
			return UTCOffset(off), err
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			off, ok := v.(UTCOffset)
			if !ok {
				return "", mismatch(v, KindUTCOffset)
			}
			return parser.FormatUTCOffset(time.Duration(off)), nil
		},
	},

	KindBinary: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			b, err := base64.StdEncoding.DecodeString(raw)
			if err != nil {
				return nil, err
			}
			return Binary(b), nil
		},
		EncodeFunc: func(v Value, params *parser.Parameters) (string, error) {
			b, ok := v.(Binary)
			if !ok {
				return "", mismatch(v, KindBinary)
			}
			if params.Canonical() {
				params.SetDefault("ENCODING", "BASE64")
				params.SetDefault("VALUE", string(KindBinary))
			}
			return base64.StdEncoding.EncodeToString(b), nil
		},
	},

	KindCalAddress: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			return CalAddress(raw), nil
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			a, ok := v.(CalAddress)
			if !ok {
				return "", mismatch(v, KindCalAddress)
			}
			return string(a), nil
		},
	},

	KindURI: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			return URI(raw), nil
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			u, ok := v.(URI)
			if !ok {
				return "", mismatch(v, KindURI)
			}
			return string(u), nil
		},
	},

	KindGeo: CodecFuncs{
		DecodeFunc: func(raw string, _ *parser.Parameters) (Value, error) {
			lat, long, err := parser.ParseGeo(raw)
			if err != nil {
				return nil, err
			}
			return Geo{Latitude: lat, Longitude: long}, nil
		},
		EncodeFunc: func(v Value, _ *parser.Parameters) (string, error) {
			g, ok := v.(Geo)
			if !ok {
				return "", mismatch(v, KindGeo)
			}
			return parser.FormatGeo(g.Latitude, g.Longitude), nil
		},
	},
}

func decodeDateTime(raw string, params *parser.Parameters) (Value, error) {
	t, utc, err := parser.ParseDateTime(raw)
	if err != nil {
		return nil, err
	}
	if utc {
		return DateTime{Time: t, UTC: true}, nil
	}
	tzid, _ := params.Get("TZID")
	return DateTime{Time: t, TZID: tzid}, nil
}

// encodeDateTime keeps the TZID parameter in line with the value: UTC and
// floating values drop it.
func encodeDateTime(dt DateTime, params *parser.Parameters) string {
	if dt.TZID != "" && !dt.UTC {
		params.Set("TZID", dt.TZID)
	} else {
		params.Del("TZID")
	}
	return dt.String()
}

func decodeDuration(raw string) (Duration, error) {
	negative, d, err := parser.ParseDuration(raw)
	if err != nil {
		return Duration{}, err
	}
	return Duration{
		Negative: negative,
		Weeks:    d.Weeks,
		Days:     d.Days,
		Hours:    d.Hours,
		Minutes:  d.Minutes,
		Seconds:  d.Seconds,
	}, nil
}

func isDurationText(s string) bool {
	return strings.HasPrefix(s, "P") || strings.HasPrefix(s, "+P") || strings.HasPrefix(s, "-P")
}
