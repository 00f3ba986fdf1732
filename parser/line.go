package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// FoldWidth is the maximum number of octets on an emitted physical line,
// continuation prefix included.
const FoldWidth = 75

var ErrInvalidContentLine = errors.New("invalid content line")

// ContentLineError reports a logical line that cannot be split into name,
// parameters and value.
type ContentLineError struct {
	Line   string
	Reason string
}

func (e *ContentLineError) Error() string {
	return fmt.Sprintf("Content line could not be parsed into parts: '%s': %s", e.Line, e.Reason)
}

func (e *ContentLineError) Unwrap() error {
	return ErrInvalidContentLine
}

// ContentLine is one unfolded NAME;PARAMS:VALUE record. Value is the raw,
// still escaped, value text.
type ContentLine struct {
	Name   string
	Params *Parameters
	Value  string
}

// ParseContentLine splits a logical line at the first ':' that is not inside
// a quoted parameter value.
func ParseContentLine(line string) (*ContentLine, error) {
	nameSplit, valueSplit := -1, -1
	quoted := false
	for i := 0; i < len(line) && valueSplit < 0; i++ {
		c := line[i]
		if !quoted {
			if (c == ':' || c == ';') && nameSplit < 0 {
				nameSplit = i
			}
			if c == ':' {
				valueSplit = i
			}
		}
		if c == '"' {
			quoted = !quoted
		}
	}

	name := line
	if nameSplit >= 0 {
		name = line[:nameSplit]
	}
	if name == "" {
		return nil, &ContentLineError{Line: line, Reason: "Key name is required"}
	}
	if !IsToken(name) {
		return nil, &ContentLineError{Line: line, Reason: name}
	}
	if nameSplit < 0 || valueSplit < 0 || nameSplit+1 == valueSplit {
		return nil, &ContentLineError{Line: line, Reason: "Invalid content line"}
	}

	_, params, err := ParseParameters(line[:valueSplit])
	if err != nil {
		return nil, &ContentLineError{Line: line, Reason: err.Error()}
	}

	return &ContentLine{Name: name, Params: params, Value: line[valueSplit+1:]}, nil
}

// IsToken reports whether s is a valid property or parameter name: letters,
// digits, '-', '_' and '.'.
func IsToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// Lexer yields logical lines from a buffer. It can be restarted from the
// beginning with Reset.
type Lexer struct {
	data    []byte
	scanner *bufio.Scanner
	primed  bool
	line    int
}

var bom = []byte("\xef\xbb\xbf")

func NewLexer(data []byte) *Lexer {
	l := &Lexer{data: bytes.TrimPrefix(data, bom)}
	l.Reset()
	return l
}

func (l *Lexer) Reset() {
	l.scanner = bufio.NewScanner(bytes.NewReader(l.data))
	l.scanner.Buffer(make([]byte, 0, 4096), len(l.data)+1)
	l.line = 0
	l.advance()
}

func (l *Lexer) advance() {
	l.primed = l.scanner.Scan()
	if l.primed {
		l.line++
	}
}

// Next returns the next non-empty logical line and the number of the physical
// line it starts on. ok is false once the input is exhausted.
func (l *Lexer) Next() (line string, number int, ok bool) {
	for l.primed {
		var b strings.Builder
		b.WriteString(l.scanner.Text())
		number = l.line
		l.advance()

		// A physical line starting with one space or tab continues the previous one.
		for l.primed && isContinuation(l.scanner.Text()) {
			b.WriteString(l.scanner.Text()[1:])
			l.advance()
		}

		if b.Len() == 0 {
			continue
		}
		return b.String(), number, true
	}
	return "", 0, false
}

func isContinuation(s string) bool {
	return len(s) > 0 && (s[0] == ' ' || s[0] == '\t')
}

// Fold wraps a logical line so that no physical line exceeds FoldWidth octets.
// Multi-byte characters are never split. The result has no trailing CRLF.
func Fold(line string) string {
	if len(line) < FoldWidth {
		return line
	}

	var b strings.Builder
	n := 0
	for i := 0; i < len(line); {
		_, size := utf8.DecodeRuneInString(line[i:])
		if n+size > FoldWidth-1 {
			b.WriteString("\r\n ")
			n = 0
		}
		b.WriteString(line[i : i+size])
		n += size
		i += size
	}
	return b.String()
}

// EscapeText escapes a TEXT value according to section 3.3.11 of RFC 5545.
func EscapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case ';':
			b.WriteString(`\;`)
		case ',':
			b.WriteString(`\,`)
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			b.WriteString(`\n`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// UnescapeText reverses EscapeText. Unknown escape sequences are kept as is.
func UnescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch n := s[i+1]; n {
		case '\\', ';', ',', ':':
			b.WriteByte(n)
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte('\\')
			b.WriteByte(n)
		}
		i++
	}
	return b.String()
}

// SplitEscaped splits an escaped TEXT list on separators that are not
// preceded by a backslash escape. The items are still escaped.
func SplitEscaped(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
