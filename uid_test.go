package ical

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewUID(t *testing.T) {
	uid := NewUID("", "")
	assert.Regexp(t, regexp.MustCompile(`^\d{8}T\d{6}-[0-9a-f]{32}@example\.com$`), uid)
	assert.NotEqual(t, uid, NewUID("", ""))

	assert.Regexp(t, `^\d{8}T\d{6}-42@calendar\.example\.net$`, NewUID("calendar.example.net", "42"))
}
