package catalog

import "time"

// String returns the string setting key, or def when unset or empty.
func (o Options) String(key, def string) string {
	if v, ok := o.Settings[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int returns the positive int setting key, or def.
func (o Options) Int(key string, def int) int {
	if v, ok := o.Settings[key].(int); ok && v > 0 {
		return v
	}
	return def
}

// Float returns the positive float setting key, or def.
func (o Options) Float(key string, def float64) float64 {
	switch v := o.Settings[key].(type) {
	case float64:
		if v > 0 {
			return v
		}
	case int:
		if v > 0 {
			return float64(v)
		}
	}
	return def
}

// Duration returns the positive duration setting key, or def.
func (o Options) Duration(key string, def time.Duration) time.Duration {
	if v, ok := o.Settings[key].(time.Duration); ok && v > 0 {
		return v
	}
	return def
}
