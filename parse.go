package ical

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/apognu/ical/parser"
	"github.com/rs/zerolog"
)

type Parser struct {
	Components []*Component

	r        io.Reader
	logger   zerolog.Logger
	settings *settings
}

func NewParser(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		r:      r,
		logger: zerolog.Nop(),
		settings: &settings{
			registry: DefaultRegistry,
			floating: defaultSettings.floating,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromBytes parses a document holding exactly one top-level component.
func FromBytes(data []byte, opts ...Option) (*Component, error) {
	components, err := FromBytesAll(data, opts...)
	if err != nil {
		return nil, err
	}

	switch len(components) {
	case 0:
		return nil, ErrNoComponent
	case 1:
		return components[0], nil
	}
	return nil, fmt.Errorf("%w: got %d", ErrMultipleComponents, len(components))
}

// FromBytesAll parses a document holding any number of top-level components.
func FromBytesAll(data []byte, opts ...Option) ([]*Component, error) {
	p := NewParser(bytes.NewReader(data), opts...)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p.Components, nil
}

// Parse reads the whole input and fills p.Components. Structural errors abort
// the parse and nothing is kept; malformed lines and values inside a component
// mark it broken and parsing goes on.
func (p *Parser) Parse() error {
	data, err := io.ReadAll(p.r)
	if err != nil {
		return err
	}

	lexer := parser.NewLexer(data)
	stack := make([]*Component, 0, 4)
	result := make([]*Component, 0, 1)

	for {
		line, number, ok := lexer.Next()
		if !ok {
			break
		}

		l, err := parser.ParseContentLine(line)
		if err != nil {
			if len(stack) == 0 {
				return &StructuralError{Line: number, Message: err.Error()}
			}

			current := stack[len(stack)-1]
			current.addIssue("", err.Error())
			p.logger.Warn().
				Int("line", number).
				Str("component", current.Name).
				Err(err).
				Msg("skipping malformed content line")
			continue
		}

		switch strings.ToUpper(l.Name) {
		case "BEGIN":
			if l.Value == "" {
				return newStructuralError(number, "BEGIN requires a component name")
			}
			c := NewComponent(l.Value)
			c.settings = p.settings
			stack = append(stack, c)

		case "END":
			if len(stack) == 0 {
				return newStructuralError(number, "END encountered without an accompanying BEGIN")
			}

			current := stack[len(stack)-1]
			if !current.is(l.Value) {
				return newStructuralError(number, "END:%s does not match BEGIN:%s", l.Value, current.Name)
			}
			stack = stack[:len(stack)-1]

			if len(stack) > 0 {
				stack[len(stack)-1].AddComponent(current)
			} else {
				result = append(result, current)
			}

		default:
			if len(stack) == 0 {
				return newStructuralError(number, "Property \"%s\" does not have a parent component", l.Name)
			}
			p.parseProperty(stack[len(stack)-1], l, number)
		}
	}

	if len(stack) > 0 {
		return newStructuralError(0, "component %s was never closed", stack[len(stack)-1].Name)
	}

	p.Components = result
	return nil
}

func (p *Parser) parseProperty(c *Component, l *parser.ContentLine, number int) {
	value, err := decodeProperty(p.settings.registry, l.Name, l.Value, l.Params)

	prop := &Property{Name: l.Name, Params: l.Params, Value: value, Err: err}
	c.Properties = append(c.Properties, prop)

	if err != nil {
		c.addIssue(strings.ToUpper(l.Name), err.Error())
		p.logger.Warn().
			Int("line", number).
			Str("component", c.Name).
			Str("property", l.Name).
			Err(err).
			Msg("keeping undecodable value as raw text")
	}
}
