package actions

import (
	"fmt"
	"time"
)

// stringField returns config[key] as a string, or empty.
func stringField(config map[string]any, key string) string {
	value, _ := config[key].(string)

	return value
}

// requiredString returns config[key] as a non-empty string or an
// ErrInvalidActionConfig error naming the field.
func requiredString(config map[string]any, key string) (string, error) {
	value := stringField(config, key)
	if value == "" {
		return "", fmt.Errorf("missing or invalid %q in configuration: %w", key, ErrInvalidActionConfig)
	}

	return value, nil
}

// mapField returns config[key] as a map, or nil.
func mapField(config map[string]any, key string) map[string]any {
	value, _ := config[key].(map[string]any)

	return value
}

// stringMapField flattens config[key] into string-to-string pairs, for
// header-style maps. Non-string values stringify with %v.
func stringMapField(config map[string]any, key string) map[string]string {
	raw := mapField(config, key)
	if raw == nil {
		return nil
	}

	flattened := make(map[string]string, len(raw))

	for k, v := range raw {
		if s, ok := v.(string); ok {
			flattened[k] = s
		} else {
			flattened[k] = fmt.Sprintf("%v", v)
		}
	}

	return flattened
}

// numberValue coerces JSON and Go numeric forms to float64.
func numberValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// durationField reads a millisecond count from config[key].
func durationField(config map[string]any, key string) time.Duration {
	value, ok := numberValue(config[key])
	if !ok || value <= 0 {
		return 0
	}

	return time.Duration(value) * time.Millisecond
}
