package ical

import (
	"bytes"
	"io"
	"strings"

	"github.com/apognu/ical/parser"
)

const lineEnding = "\r\n"

// Encode writes the component and its children to w, folded and with CRLF
// line endings.
func (c *Component) Encode(w io.Writer) error {
	return c.encode(w, c.registry())
}

func (c *Component) ToBytes() ([]byte, error) {
	var b bytes.Buffer
	if err := c.Encode(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (c *Component) encode(w io.Writer, reg *Registry) error {
	if _, err := io.WriteString(w, "BEGIN:"+c.emitName()+lineEnding); err != nil {
		return err
	}

	for _, p := range c.Properties {
		line, err := p.encode(reg)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, parser.Fold(line)+lineEnding); err != nil {
			return err
		}
	}

	for _, sub := range c.Components {
		if err := sub.encode(w, reg); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "END:"+c.emitName()+lineEnding)
	return err
}

// encode renders the unfolded content line of the property.
func (p *Property) encode(reg *Registry) (string, error) {
	if p.Value == nil {
		return "", &EncodeError{Property: p.Name, Message: "property has no value"}
	}
	params := p.Params.Clone()

	value, err := reg.Encode(p.Value, params)
	if err != nil {
		return "", &EncodeError{Property: p.Name, Message: "value cannot be encoded", Err: err}
	}

	var b strings.Builder
	b.WriteString(p.emitName())
	if params.Len() > 0 {
		b.WriteByte(';')
		b.WriteString(params.Encode(p.keepParamCase))
	}
	b.WriteByte(':')
	b.WriteString(value)
	return b.String(), nil
}
