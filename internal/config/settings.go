package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/baaaaaaaka/jdeps/internal/deps"
	"github.com/baaaaaaaka/jdeps/internal/lookup"
)

const (
	EnvEndpoint = "JDEPS_ENDPOINT"
	EnvProxy    = "JDEPS_PROXY"
	EnvLog      = "JDEPS_LOG"

	DefaultDebounce = 500 * time.Millisecond
)

// Settings are the effective values after defaults and env overrides.
type Settings struct {
	Debounce time.Duration
	Lookup   lookup.Options
	Format   deps.Format
	LogFile  string
}

func Default() Config {
	retries := lookup.DefaultRetries
	return Config{
		Version:       CurrentVersion,
		DebounceMs:    int(DefaultDebounce / time.Millisecond),
		Endpoint:      lookup.DefaultEndpoint,
		Rows:          lookup.DefaultRows,
		TimeoutMs:     int(lookup.DefaultTimeout / time.Millisecond),
		Retries:       &retries,
		MinIntervalMs: int(lookup.DefaultMinInterval / time.Millisecond),
		Format:        string(deps.FormatCoords),
	}
}

// Resolve fills defaults, applies env overrides and validates the result.
func (c Config) Resolve(getenv func(string) string) (Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	s := Settings{
		Debounce: millis(c.DebounceMs, DefaultDebounce),
		Lookup: lookup.Options{
			Endpoint:    firstNonEmpty(getenv(EnvEndpoint), c.Endpoint, lookup.DefaultEndpoint),
			Rows:        c.Rows,
			Timeout:     millis(c.TimeoutMs, lookup.DefaultTimeout),
			Retries:     lookup.DefaultRetries,
			MinInterval: millis(c.MinIntervalMs, lookup.DefaultMinInterval),
			Proxy:       firstNonEmpty(getenv(EnvProxy), c.Proxy),
		},
		LogFile: firstNonEmpty(getenv(EnvLog), c.LogFile),
	}

	for _, f := range []struct {
		name  string
		value int
	}{
		{"debounceMs", c.DebounceMs},
		{"rows", c.Rows},
		{"timeoutMs", c.TimeoutMs},
		{"minIntervalMs", c.MinIntervalMs},
	} {
		if f.value < 0 {
			return Settings{}, fmt.Errorf("%s must not be negative (got %d)", f.name, f.value)
		}
	}
	if s.Lookup.Rows == 0 {
		s.Lookup.Rows = lookup.DefaultRows
	}
	if c.Retries != nil {
		if *c.Retries < 0 {
			return Settings{}, fmt.Errorf("retries must not be negative (got %d)", *c.Retries)
		}
		s.Lookup.Retries = *c.Retries
	}

	format, err := deps.ParseFormat(c.Format)
	if err != nil {
		return Settings{}, err
	}
	s.Format = format

	if s.LogFile == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			s.LogFile = filepath.Join(dir, "jdeps", "jdeps.log")
		}
	}
	return s, nil
}

func millis(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Millisecond
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
