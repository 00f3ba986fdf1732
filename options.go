package ical

import (
	"time"

	"github.com/apognu/ical/parser"
	"github.com/rs/zerolog"
)

type Option func(*Parser)

// WithRegistry makes the parser, and the components it builds, use r instead
// of DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(p *Parser) {
		p.settings.registry = r
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Parser) {
		p.logger = l
	}
}

// WithTZMapper resolves TZID values that the calendar does not define before
// the host timezone database is consulted.
func WithTZMapper(m parser.TZMapper) Option {
	return func(p *Parser) {
		p.settings.tzMapper = m
	}
}

// WithFloatingLocation sets the location floating date-times are decoded in.
// It defaults to time.Local.
func WithFloatingLocation(loc *time.Location) Option {
	return func(p *Parser) {
		p.settings.floating = loc
	}
}

// WithResolveOptions sets the options used when the parsed timezone
// definitions are resolved into transition tables.
func WithResolveOptions(opts ...ResolveOption) Option {
	return func(p *Parser) {
		p.settings.resolve = append(p.settings.resolve, opts...)
	}
}
