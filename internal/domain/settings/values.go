package settings

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Values is a read-only snapshot of all settings keyed by name.
type Values map[string]Setting

// NewValues indexes a list of settings.
func NewValues(list []Setting) Values {
	v := make(Values, len(list))
	for _, s := range list {
		v[s.Key] = s
	}
	return v
}

// String returns the raw value or def when the key is missing.
func (v Values) String(key, def string) string {
	if s, ok := v[key]; ok {
		return s.Value
	}
	return def
}

// Decimal parses a number setting, falling back to def.
func (v Values) Decimal(key string, def decimal.Decimal) decimal.Decimal {
	if s, ok := v[key]; ok {
		if d, err := decimal.NewFromString(s.Value); err == nil {
			return d
		}
	}
	return def
}

// Int parses an integral number setting, falling back to def.
func (v Values) Int(key string, def int) int {
	if s, ok := v[key]; ok {
		if d, err := decimal.NewFromString(s.Value); err == nil {
			return int(d.IntPart())
		}
	}
	return def
}

// Bool parses a boolean setting, falling back to def.
func (v Values) Bool(key string, def bool) bool {
	if s, ok := v[key]; ok {
		if b, err := strconv.ParseBool(s.Value); err == nil {
			return b
		}
	}
	return def
}

// Public returns the typed values flagged public.
func (v Values) Public() map[string]any {
	out := make(map[string]any)
	for k, s := range v {
		if s.IsPublic {
			out[k] = s.Typed()
		}
	}
	return out
}
