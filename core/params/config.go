package params

import (
	"strconv"
	"strings"

	"github.com/fleetgrid/evsched/core/logger"
)

// ConstraintConfig is the decoded, per-constraint configuration bundle a
// caller pulls out of the flat site parameter bag.
type ConstraintConfig struct {
	Enabled bool
	Penalty float64
	Params  map[string]any
}

// Decoder returns a function that collects every raw key beginning with
// "constraint_{name}_", decodes each value with Decode, and folds the
// results into enabled/penalty/params. Site configuration is silent about
// most constraints most of the time, so defaults (DefaultConstraintEnabled,
// DefaultPenalties) backfill anything the raw bag never mentions.
// route_overlap is always reported enabled regardless of raw input
//.
func Decoder(log logger.Logger, raw map[string]string) func(name string) ConstraintConfig {
	return func(name string) ConstraintConfig {
		prefix := "constraint_" + name + "_"
		cfg := ConstraintConfig{
			Enabled: DefaultConstraintEnabled[name],
			Penalty: DefaultPenalties[name],
			Params:  map[string]any{},
		}

		for key, value := range raw {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			suffix := strings.TrimPrefix(key, prefix)
			decoded := Decode(log, key, value)
			switch suffix {
			case "enabled":
				if b, ok := decoded.(bool); ok {
					cfg.Enabled = b
				}
			case "penalty":
				switch v := decoded.(type) {
				case int:
					cfg.Penalty = float64(v)
				case float64:
					cfg.Penalty = v
				}
			default:
				if decoded != nil {
					cfg.Params[suffix] = decoded
				}
			}
		}

		if MandatoryConstraints[name] {
			cfg.Enabled = true
		}
		return cfg
	}
}

// ParamFloat reads a decoded float/int parameter with a fallback default.
func ParamFloat(params map[string]any, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

// ParamInt reads a decoded int/float parameter with a fallback default.
func ParamInt(params map[string]any, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return def
}

// ParamBool reads a decoded boolean parameter with a fallback default.
func ParamBool(params map[string]any, key string, def bool) bool {
	if b, ok := params[key].(bool); ok {
		return b
	}
	return def
}
