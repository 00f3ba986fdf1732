package ical

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config holds the tunables of the parser and the timezone resolver. It is
// usually embedded in the configuration file of the calling application.
type Config struct {
	LogLevel         string         `toml:"log_level"`
	FloatingLocation string         `toml:"floating_location"`
	Timezone         TimezoneConfig `toml:"timezone"`
}

type TimezoneConfig struct {
	HorizonStartYear int `toml:"horizon_start_year"`
	HorizonEndYear   int `toml:"horizon_end_year"`
	MaxOccurrences   int `toml:"max_occurrences"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:         "warn",
		FloatingLocation: "Local",
		Timezone: TimezoneConfig{
			HorizonStartYear: DefaultHorizon.Start.Year(),
			HorizonEndYear:   DefaultHorizon.End.Year(),
			MaxOccurrences:   DefaultMaxOccurrences,
		},
	}
}

// LoadConfig decodes TOML data over the defaults. Keys absent from data keep
// their default value.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var raw Config
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load ical config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load ical config: unknown key %s", undecoded[0])
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("floating_location") {
		cfg.FloatingLocation = strings.TrimSpace(raw.FloatingLocation)
	}
	if meta.IsDefined("timezone", "horizon_start_year") {
		cfg.Timezone.HorizonStartYear = raw.Timezone.HorizonStartYear
	}
	if meta.IsDefined("timezone", "horizon_end_year") {
		cfg.Timezone.HorizonEndYear = raw.Timezone.HorizonEndYear
	}
	if meta.IsDefined("timezone", "max_occurrences") {
		cfg.Timezone.MaxOccurrences = raw.Timezone.MaxOccurrences
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	if _, err := c.location(); err != nil {
		return fmt.Errorf("invalid floating_location %q: %w", c.FloatingLocation, err)
	}
	if c.Timezone.HorizonEndYear <= c.Timezone.HorizonStartYear {
		return fmt.Errorf("timezone horizon_end_year (%d) must be after horizon_start_year (%d)",
			c.Timezone.HorizonEndYear, c.Timezone.HorizonStartYear)
	}
	if c.Timezone.MaxOccurrences <= 0 {
		return fmt.Errorf("timezone max_occurrences must be positive, got %d", c.Timezone.MaxOccurrences)
	}
	return nil
}

func (c Config) location() (*time.Location, error) {
	switch c.FloatingLocation {
	case "", "Local":
		return time.Local, nil
	}
	return time.LoadLocation(c.FloatingLocation)
}

// Logger returns a logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("module", "ical").Logger(), nil
}

// ResolveOptions turns the configuration into timezone resolver options,
// logging to w.
func (c Config) ResolveOptions(w io.Writer) ([]ResolveOption, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logger, err := c.Logger(w)
	if err != nil {
		return nil, err
	}

	return []ResolveOption{
		WithHorizon(
			time.Date(c.Timezone.HorizonStartYear, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(c.Timezone.HorizonEndYear, 1, 1, 0, 0, 0, 0, time.UTC),
		),
		WithMaxOccurrences(c.Timezone.MaxOccurrences),
		WithResolveLogger(logger),
	}, nil
}

// ParserOptions turns the configuration into parser options, logging to w.
func (c Config) ParserOptions(w io.Writer) ([]Option, error) {
	resolve, err := c.ResolveOptions(w)
	if err != nil {
		return nil, err
	}
	logger, err := c.Logger(w)
	if err != nil {
		return nil, err
	}
	loc, err := c.location()
	if err != nil {
		return nil, err
	}

	return []Option{
		WithLogger(logger),
		WithFloatingLocation(loc),
		WithResolveOptions(resolve...),
	}, nil
}
