// Package params implements the Parameter Decoder: it turns the
// flat string-keyed, string-valued site configuration bag (MAF parameters)
// into typed Go values using key-suffix and value-shape heuristics, never
// raising on a bad individual value.
package params

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/fleetgrid/evsched/core/logger"
)

var sentinelNulls = map[string]struct{}{
	"":         {},
	"NONE":     {},
	"None":     {},
	"NO_VALUE": {},
}

var boolValues = map[string]bool{
	"true": true, "yes": true, "1": true,
	"false": false, "no": false, "0": false,
}

var numericSuffixes = []string{
	"_minutes", "_hours", "_seconds", "_kwh", "_penalty",
	"_weight", "_bonus", "_threshold", "_count", "_margin",
}

func hasAnySuffix(key string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(key, s) {
			return true
		}
	}
	return false
}

// Decode applies the §4.1 rules in order and returns the typed value, or nil
// if the value is a sentinel null or a typed rule failed to parse it. log
// may be nil, in which case parse failures are silently dropped (matching
// the "never raise to caller" contract — logging is diagnostic only).
func Decode(log logger.Logger, key, value string) any {
	if _, ok := sentinelNulls[value]; ok {
		return nil
	}

	if strings.HasSuffix(key, "_enabled") || strings.HasSuffix(key, "_flag") {
		if b, ok := boolValues[strings.ToLower(value)]; ok {
			return b
		}
		// A boolean-suffixed key with an unrecognized value still isn't a
		// parse we should silently mistype as a string; treat it as absent.
		if log != nil {
			log.Warnf("params: %s expects a boolean value, got %q", key, value)
		}
		return nil
	}
	if b, ok := boolValues[strings.ToLower(value)]; ok {
		return b
	}

	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "[") {
		var arr []any
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			if log != nil {
				log.Errorf("params: failed to parse JSON array for %s: %v", key, err)
			}
			return nil
		}
		return arr
	}
	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			if log != nil {
				log.Errorf("params: failed to parse JSON object for %s: %v", key, err)
			}
			return nil
		}
		return obj
	}

	if hasAnySuffix(key, numericSuffixes) {
		if !strings.Contains(value, ".") {
			n, err := strconv.Atoi(value)
			if err != nil {
				if log != nil {
					log.Errorf("params: failed to parse integer for %s: %v", key, err)
				}
				return nil
			}
			return n
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			if log != nil {
				log.Errorf("params: failed to parse float for %s: %v", key, err)
			}
			return nil
		}
		return f
	}

	if strings.HasSuffix(key, "_period") && strings.Contains(value, ":") {
		t, err := time.Parse("15:04:05", value)
		if err != nil {
			if log != nil {
				log.Errorf("params: failed to parse time-of-day for %s: %v", key, err)
			}
			return nil
		}
		return t
	}

	return value
}
