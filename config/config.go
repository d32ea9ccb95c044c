// Package config reads the small set of tunables a provider or consumer
// needs at startup from a simple key=value text source, applying the same
// clamping rules the reference registry-backed configuration used.
package config

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

const (
	minTickIntervalMillis     = 10
	defaultTickIntervalMillis = 1250

	minInstances = 1
	maxInstances = 1024

	// NoInstances marks a singleton (non-multi-instance) object.
	NoInstances = -1
)

// Config is the provider/consumer tunable set: which counter name_index a
// service's counters start at, how often a provider worker ticks, how many
// per-instance encoder workers to run (NoInstances for a singleton object),
// and the free-text message a provider encodes.
type Config struct {
	FirstCounter       uint32
	TickIntervalMillis uint32
	NumInstances       int32
	CustomMessage      string
}

// Default returns the configuration used when no source is available or a
// key is absent: a singleton object ticking every 1250ms.
func Default() Config {
	return Config{
		TickIntervalMillis: defaultTickIntervalMillis,
		NumInstances:       NoInstances,
	}
}

// Read parses key=value lines (one per line, '#'-prefixed lines and blank
// lines ignored) from r, starting from Default and overriding whatever
// keys are present. Recognized keys: FirstCounter, TickIntervalMillis,
// NumInstances, CustomMessage. Unrecognized keys are ignored.
func Read(r io.Reader) (Config, error) {
	cfg := Default()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "FirstCounter":
			if n, err := strconv.ParseUint(value, 10, 32); err == nil {
				cfg.FirstCounter = uint32(n)
			}
		case "TickIntervalMillis":
			if n, err := strconv.ParseUint(value, 10, 32); err == nil {
				cfg.TickIntervalMillis = clampTickInterval(uint32(n))
			}
		case "NumInstances":
			if n, err := strconv.ParseInt(value, 10, 32); err == nil {
				cfg.NumInstances = clampNumInstances(int32(n))
			}
		case "CustomMessage":
			cfg.CustomMessage = value
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// clampTickInterval enforces at least 10ms, matching the reference
// registry reader's "at most 100 updates per second" comment.
func clampTickInterval(millis uint32) uint32 {
	if millis < minTickIntervalMillis {
		return minTickIntervalMillis
	}
	return millis
}

// clampNumInstances enforces NoInstances unchanged, else clamps into
// [1, 1024].
func clampNumInstances(n int32) int32 {
	if n == NoInstances {
		return NoInstances
	}
	if n < minInstances {
		return minInstances
	}
	if n > maxInstances {
		return maxInstances
	}
	return n
}
