package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseParameters(t *testing.T) {
	name, p, err := ParseParameters("HELLO;KEY1=value1;key2=value2")

	require.NoError(t, err)
	assert.Equal(t, "HELLO", name)
	assert.Equal(t, []string{"KEY1", "key2"}, p.Keys())
	assert.False(t, p.Canonical())
	assert.Equal(t, "KEY1=value1;key2=value2", p.Encode(func(string) bool { return true }))
	assert.Equal(t, "KEY1=value1;KEY2=value2", p.Encode(nil))
}

func Test_ParametersKeepSourceOrder(t *testing.T) {
	_, p, err := ParseParameters(`X;VALUE=DATE-TIME;CN="Quoted";TZID=Europe/Vienna`)
	require.NoError(t, err)

	assert.Equal(t, `VALUE=DATE-TIME;CN="Quoted";TZID=Europe/Vienna`, p.Encode(nil))

	p.Set("TZID", "Europe/Vienna")
	assert.False(t, p.Canonical(), "setting an identical value keeps source formatting")

	p.Set("TZID", "Europe/Paris")
	assert.True(t, p.Canonical())
	assert.Equal(t, "CN=Quoted;TZID=Europe/Paris;VALUE=DATE-TIME", p.Encode(nil))
}

func Test_ParametersCanonicalSortAndQuote(t *testing.T) {
	p := NewParameters()
	p.Set("fmttype", "text/plain")
	p.SetDefault("ENCODING", "BASE64")
	p.SetDefault("VALUE", "BINARY")
	p.SetDefault("FMTTYPE", "ignored")
	p.Set("CN", "John Connor")

	assert.Equal(t, `CN="John Connor";ENCODING=BASE64;FMTTYPE=text/plain;VALUE=BINARY`, p.Encode(nil))

	p.Del("cn")
	assert.False(t, p.Has("CN"))
	v, ok := p.Get("Value")
	assert.True(t, ok)
	assert.Equal(t, "BINARY", v)
}

func Test_ParametersClone(t *testing.T) {
	_, p, err := ParseParameters(`X;CN="A"`)
	require.NoError(t, err)

	c := p.Clone()
	c.Set("CN", "B")

	assert.Equal(t, `CN="A"`, p.Encode(nil))
	assert.Equal(t, "CN=B", c.Encode(nil))
}

func Test_ParseParametersErrors(t *testing.T) {
	_, _, err := ParseParameters("X;NOEQUALS")
	assert.Error(t, err)

	_, _, err = ParseParameters(`X;CN=a"b`)
	assert.Error(t, err)
}

func Test_QuoteParamValue(t *testing.T) {
	assert.Equal(t, "plain", QuoteParamValue("plain"))
	assert.Equal(t, `"a:b"`, QuoteParamValue("a:b"))
	assert.Equal(t, `"say 'hi'"`, QuoteParamValue(`say "hi"`))
}

func Test_ParametersKeepUnquotedValues(t *testing.T) {
	_, p, err := ParseParameters(`ORGANIZER;CN=Jane Doe;ROLE=CHAIR`)
	require.NoError(t, err)
	assert.Equal(t, "CN=Jane Doe;ROLE=CHAIR", p.Encode(nil))

	p.Set("ROLE", "REQ-PARTICIPANT")
	assert.Equal(t, `CN="Jane Doe";ROLE=REQ-PARTICIPANT`, p.Encode(nil))
}
