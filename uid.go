package ical

import (
	"fmt"
	"strings"
	"time"

	"github.com/apognu/ical/parser"
	"github.com/google/uuid"
)

// NewUID returns a globally unique identifier suitable for the UID property:
// <UTC timestamp>-<unique>@<host>. unique defaults to a random UUID.
func NewUID(host, unique string) string {
	if unique == "" {
		unique = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	if host == "" {
		host = "example.com"
	}
	return fmt.Sprintf("%s-%s@%s", time.Now().UTC().Format(parser.DateTimeLayout), unique, host)
}
