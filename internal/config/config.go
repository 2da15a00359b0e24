// Package config holds the small, comparable build-time configuration
// consulted by the engine and used as a cache-key component (spec §6.3).
package config

import "exprc/internal/status"

// OptimisationLevel selects how aggressively the back-end optimises the
// emitted module (spec §4.6).
type OptimisationLevel int

const (
	OptimiseNone OptimisationLevel = iota
	OptimiseDefault
	OptimiseAggressive
)

// Configuration is immutable and comparable (==), so it can be used directly
// as a map key and folded into the cache key (spec §6.3, §4.10).
type Configuration struct {
	// BytecodePath overrides the precompiled intrinsic library location.
	BytecodePath string
	Optimise     OptimisationLevel
	DumpIR       bool
}

// Default returns the default configuration: default optimisation level,
// empty bytecode path, no IR dump.
func Default() Configuration {
	return Configuration{Optimise: OptimiseDefault}
}

// Validate rejects an optimisation level other than the three defined
// above. BytecodePath and DumpIR are not checked.
func (c Configuration) Validate() *status.Status {
	switch c.Optimise {
	case OptimiseNone, OptimiseDefault, OptimiseAggressive:
	default:
		return status.Invalidf("configuration: unrecognised optimisation level %d", c.Optimise)
	}
	return nil
}

// CacheKey renders the configuration as a string suitable for folding into a
// cache key; two configurations are equal iff all options match.
func (c Configuration) CacheKey() string {
	dump := "0"
	if c.DumpIR {
		dump = "1"
	}
	return c.BytecodePath + "|" + itoa(int(c.Optimise)) + "|" + dump
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
