package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseContentLine(t *testing.T) {
	l, err := ParseContentLine("HELLO;KEY1=value1;KEY2=value2:world")

	require.NoError(t, err)
	assert.Equal(t, "HELLO", l.Name)
	assert.Equal(t, "world", l.Value)
	assert.Equal(t, []string{"KEY1", "KEY2"}, l.Params.Keys())
	v, ok := l.Params.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "value1", v)
}

func Test_ParseContentLineMultivaluedParameter(t *testing.T) {
	l, err := ParseContentLine("TEL;TYPE=HOME,VOICE:000000000")

	require.NoError(t, err)
	assert.Equal(t, "TEL", l.Name)
	assert.Equal(t, []string{"HOME", "VOICE"}, l.Params.Values("TYPE"))
	assert.Equal(t, "000000000", l.Value)
}

func Test_ParseContentLineDottedName(t *testing.T) {
	l, err := ParseContentLine("ITEMADRNULLTHISISTHEADRESS08158SOMECITY12345.ADR:;;This is the Adress 08; Some City;;12345;Germany")

	require.NoError(t, err)
	assert.Equal(t, "ITEMADRNULLTHISISTHEADRESS08158SOMECITY12345.ADR", l.Name)
	assert.Equal(t, 0, l.Params.Len())
	assert.Equal(t, ";;This is the Adress 08; Some City;;12345;Germany", l.Value)
}

func Test_ParseContentLineQuotedColon(t *testing.T) {
	l, err := ParseContentLine(`ATTENDEE;CN="Doe: John";DELEGATED-TO="mailto:a@example.com","mailto:b@example.com":mailto:john@example.com`)

	require.NoError(t, err)
	assert.Equal(t, "mailto:john@example.com", l.Value)
	cn, _ := l.Params.Get("CN")
	assert.Equal(t, "Doe: John", cn)
	assert.Equal(t, []string{"mailto:a@example.com", "mailto:b@example.com"}, l.Params.Values("DELEGATED-TO"))
	assert.Equal(t, `CN="Doe: John";DELEGATED-TO="mailto:a@example.com","mailto:b@example.com"`, l.Params.Encode(nil))
}

func Test_ParseContentLineErrors(t *testing.T) {
	_, err := ParseContentLine("X")
	require.Error(t, err)
	assert.Equal(t, "Content line could not be parsed into parts: 'X': Invalid content line", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidContentLine))

	_, err = ParseContentLine("DTSTART;:20200101")
	assert.Error(t, err)

	_, err = ParseContentLine(":value")
	assert.EqualError(t, err, "Content line could not be parsed into parts: ':value': Key name is required")

	_, err = ParseContentLine("BAD NAME:value")
	assert.EqualError(t, err, "Content line could not be parsed into parts: 'BAD NAME:value': BAD NAME")

	_, err = ParseContentLine("DTSTART;TZID:20200101")
	assert.Error(t, err)
}

func Test_LexerUnfolds(t *testing.T) {
	in := "BEGIN:VEVENT\r\nDESCRIPTION:Amazing description on t\r\n wo lines\nATTENDEE;CN=John\n\t Connor:mailto:john@example.net\r\n\r\nEND:VEVENT"
	l := NewLexer([]byte(in))

	var lines []string
	var numbers []int
	for {
		line, n, ok := l.Next()
		if !ok {
			break
		}
		lines = append(lines, line)
		numbers = append(numbers, n)
	}

	assert.Equal(t, []string{
		"BEGIN:VEVENT",
		"DESCRIPTION:Amazing description on two lines",
		"ATTENDEE;CN=John Connor:mailto:john@example.net",
		"END:VEVENT",
	}, lines)
	assert.Equal(t, []int{1, 2, 4, 7}, numbers)

	l.Reset()
	first, _, ok := l.Next()
	assert.True(t, ok)
	assert.Equal(t, "BEGIN:VEVENT", first)
}

func Test_LexerStripsBOM(t *testing.T) {
	l := NewLexer([]byte("\xef\xbb\xbfBEGIN:VCALENDAR\r\n"))
	line, _, ok := l.Next()

	assert.True(t, ok)
	assert.Equal(t, "BEGIN:VCALENDAR", line)
}

func Test_Fold(t *testing.T) {
	short := strings.Repeat("a", 74)
	assert.Equal(t, short, Fold(short))

	long := strings.Repeat("a", 160)
	folded := Fold(long)
	for _, physical := range strings.Split(folded, "\r\n") {
		assert.LessOrEqual(t, len(physical), FoldWidth)
	}
	assert.Equal(t, strings.Repeat("a", 74)+"\r\n "+strings.Repeat("a", 74)+"\r\n "+strings.Repeat("a", 12), folded)

	l := NewLexer([]byte(folded))
	unfolded, _, _ := l.Next()
	assert.Equal(t, long, unfolded)
}

func Test_FoldKeepsRunes(t *testing.T) {
	long := "SUMMARY:" + strings.Repeat("ä", 60)
	folded := Fold(long)

	for _, physical := range strings.Split(folded, "\r\n") {
		assert.LessOrEqual(t, len(physical), FoldWidth)
		assert.True(t, strings.HasPrefix(physical, " ") || strings.HasPrefix(physical, "SUMMARY"))
	}
	assert.Equal(t, long, strings.ReplaceAll(folded, "\r\n ", ""))
}

func Test_UnescapeText(t *testing.T) {
	assert.Equal(t, `Hello, world; lorem \ipsum.`, UnescapeText(`Hello\, world\; lorem \\ipsum.`))
	assert.Equal(t, "line1\nline2\nline3", UnescapeText(`line1\nline2\Nline3`))
	assert.Equal(t, `a\nb`, UnescapeText(`a\\nb`))
}

func Test_EscapeText(t *testing.T) {
	assert.Equal(t, `Hello\, world\; lorem \\ipsum.\nnext`, EscapeText("Hello, world; lorem \\ipsum.\r\nnext"))
	assert.Equal(t, "a\\\\nb", EscapeText(UnescapeText(`a\\nb`)))
}

func Test_SplitEscaped(t *testing.T) {
	assert.Equal(t, []string{`first\, subject`, "second"}, SplitEscaped(`first\, subject,second`, ','))
	assert.Equal(t, []string{"one"}, SplitEscaped("one", ','))
}
