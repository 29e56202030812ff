package domain

// SettingsID is the singleton record id in the settings collection.
const SettingsID = "system"

// Settings is the flat key/value configuration record.
type Settings map[string]any

// DefaultSettings returns a fresh copy of the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		"language":       "ar",
		"theme":          "light",
		"notifications":  true,
		"sounds":         false,
		"twoFactor":      false,
		"auditLog":       true,
		"sessionTimeout": float64(60),
		"caching":        true,
		"compression":    true,
		"autoRefresh":    true,
		"autoBackup":     true,
		"dataSync":       false,
		"dataCleanup":    float64(90),
	}
}

// Bool reads a boolean setting, falling back to def.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// Number reads a numeric setting, falling back to def.
func (s Settings) Number(key string, def float64) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}
