package ical

import (
	"errors"
	"fmt"

	"github.com/apognu/ical/parser"
)

var (
	ErrStructural            = errors.New("structural error")
	ErrInvalidContentLine    = parser.ErrInvalidContentLine
	ErrDecode                = errors.New("value could not be decoded")
	ErrEncode                = errors.New("value could not be encoded")
	ErrUnknownTimezone       = errors.New("unknown timezone")
	ErrBeforeFirstTransition = errors.New("instant precedes the first known transition")
	ErrInvalidTimezone       = errors.New("invalid timezone definition")
	ErrNoComponent           = errors.New("no component found")
	ErrMultipleComponents    = errors.New("found multiple components where only one is allowed")
	ErrPropertyNotFound      = errors.New("property not found")
)

// StructuralError aborts a parse: unbalanced BEGIN/END markers or content
// found outside of any component.
type StructuralError struct {
	Line    int
	Message string
}

func (e *StructuralError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

// ContentLineError is recorded on a component when one of its lines cannot be
// split into name, parameters and value.
type ContentLineError = parser.ContentLineError

// ValueDecodeError is recorded when a property value does not match its
// declared or implied type. The raw text is kept as an Opaque value.
type ValueDecodeError struct {
	Property string
	Kind     Kind
	Raw      string
	Err      error
}

func (e *ValueDecodeError) Error() string {
	return fmt.Sprintf("could not decode %s as %s: '%s': %v", e.Property, e.Kind, e.Raw, e.Err)
}

func (e *ValueDecodeError) Unwrap() error {
	return e.Err
}

func (e *ValueDecodeError) Is(target error) bool {
	return target == ErrDecode
}

// EncodeError is returned right away when a value cannot be stored on, or
// rendered for, a property.
type EncodeError struct {
	Property string
	Message  string
	Err      error
}

func (e *EncodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not encode %s: %s: %v", e.Property, e.Message, e.Err)
	}
	return fmt.Sprintf("could not encode %s: %s", e.Property, e.Message)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

func (e *EncodeError) Is(target error) bool {
	return target == ErrEncode
}

func newStructuralError(line int, format string, args ...any) *StructuralError {
	return &StructuralError{Line: line, Message: fmt.Sprintf(format, args...)}
}
