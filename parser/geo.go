package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseGeo parses a GEO value: latitude and longitude separated by ';'.
func ParseGeo(l string) (float64, float64, error) {
	token := strings.SplitN(l, ";", 2)
	if len(token) != 2 {
		return 0.0, 0.0, fmt.Errorf("expected 'float;float', got: '%s'", l)
	}
	lat, err := strconv.ParseFloat(token[0], 64)
	if err != nil {
		return 0.0, 0.0, fmt.Errorf("expected 'float;float', got: '%s'", l)
	}
	long, err := strconv.ParseFloat(token[1], 64)
	if err != nil {
		return 0.0, 0.0, fmt.Errorf("expected 'float;float', got: '%s'", l)
	}

	return lat, long, nil
}

func FormatGeo(lat, long float64) string {
	return FormatFloat(lat) + ";" + FormatFloat(long)
}

// FormatFloat renders f with the fewest digits that round-trip.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
