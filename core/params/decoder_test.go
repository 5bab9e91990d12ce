package params

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecode_SentinelNull(t *testing.T) {
	for _, v := range []string{"", "NONE", "None", "NO_VALUE"} {
		if got := Decode(nil, "min_stops_count", v); got != nil {
			t.Fatalf("expected nil for sentinel %q, got %#v", v, got)
		}
	}
}

func TestDecode_BooleanSuffix(t *testing.T) {
	assert.Equal(t, true, Decode(nil, "swap_minimization_enabled", "true"))
	assert.Equal(t, false, Decode(nil, "charger_preference_flag", "no"))
	assert.Nil(t, Decode(nil, "swap_minimization_enabled", "maybe"))
}

func TestDecode_BooleanValueWithoutSuffix(t *testing.T) {
	// Rule 2 also fires on a bare boolean-shaped value, even for a key that
	// would otherwise look numeric.
	assert.Equal(t, false, Decode(nil, "route_overlap_penalty", "0"))
	assert.Equal(t, true, Decode(nil, "route_overlap_penalty", "1"))
}

func TestDecode_JSONArrayAndObject(t *testing.T) {
	got := Decode(nil, "allowed_chargers_list", `["dc1", "dc2"]`)
	arr, ok := got.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("expected 2-element array, got %#v", got)
	}

	got = Decode(nil, "site_meta_config", `{"zone": "a"}`)
	obj, ok := got.(map[string]any)
	if !ok || obj["zone"] != "a" {
		t.Fatalf("expected object with zone=a, got %#v", got)
	}
}

func TestDecode_NumericSuffixes(t *testing.T) {
	assert.Equal(t, 45, Decode(nil, "turnaround_minutes", "45"))
	assert.Equal(t, 2.5, Decode(nil, "energy_margin_kwh", "2.5"))

	got := Decode(nil, "shift_hours_penalty", "not-a-number")
	assert.Nil(t, got)
}

func TestDecode_TimeOfDayPeriod(t *testing.T) {
	got := Decode(nil, "peak_start_period", "17:30:00")
	tv, ok := got.(time.Time)
	if !ok {
		t.Fatalf("expected time.Time, got %#v", got)
	}
	assert.Equal(t, 17, tv.Hour())
	assert.Equal(t, 30, tv.Minute())
}

func TestDecode_StringFallback(t *testing.T) {
	assert.Equal(t, "hydra-dc-1", Decode(nil, "preferred_charger", "hydra-dc-1"))
}

func TestDecoder_ConstraintConfig(t *testing.T) {
	raw := map[string]string{
		"constraint_charger_preference_enabled":  "true",
		"constraint_charger_preference_penalty":  "-3",
		"constraint_charger_preference_dc_bonus": "1.5",
	}
	get := Decoder(nil, raw)

	cc := get("charger_preference")
	assert.True(t, cc.Enabled)
	assert.Equal(t, -3.0, cc.Penalty)
	assert.Equal(t, 1.5, ParamFloat(cc.Params, "dc_bonus", 0))
}

func TestDecoder_MandatoryConstraintAlwaysEnabled(t *testing.T) {
	raw := map[string]string{"constraint_route_overlap_enabled": "false"}
	get := Decoder(nil, raw)
	assert.True(t, get("route_overlap").Enabled)
}

func TestDecoder_DefaultsWhenSilent(t *testing.T) {
	get := Decoder(nil, map[string]string{})
	cc := get("energy_feasibility")
	assert.True(t, cc.Enabled)
	assert.Equal(t, DefaultPenalties["energy_feasibility"], cc.Penalty)

	optional := get("swap_minimization")
	assert.False(t, optional.Enabled)
}
