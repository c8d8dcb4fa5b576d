// Package interpolate renders {{path.to.value}} placeholders in action and
// node configuration against an execution's context and variables.
package interpolate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Scope builds the lookup scope for one node execution. Context and variable
// keys resolve bare; the aliases keep prefixed paths like
// {{variables.count}} and {{context.message.text}} working, and
// {{nodes.<id>.<field>}} reaches upstream node results.
func Scope(context, variables, nodes map[string]any) map[string]any {
	scope := make(map[string]any, len(context)+len(variables)+3)

	for k, v := range context {
		scope[k] = v
	}

	for k, v := range variables {
		scope[k] = v
	}

	scope["context"] = context
	scope["variables"] = variables
	scope["nodes"] = nodes

	return scope
}

// Lookup resolves a dotted path inside scope. Path segments traverse string
// maps; a numeric segment indexes a slice.
func Lookup(scope map[string]any, path string) (any, bool) {
	var current any = scope

	for _, segment := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[segment]
			if !ok {
				return nil, false
			}

			current = next
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(v) {
				return nil, false
			}

			current = v[index]
		default:
			return nil, false
		}
	}

	return current, true
}

// Render interpolates s against scope. A string that is exactly one
// placeholder resolves to the referenced value with its type intact; mixed
// strings stringify each resolved value in place. Unresolved placeholders are
// left verbatim.
func Render(s string, scope map[string]any) any {
	match := placeholderPattern.FindStringSubmatch(s)
	if match != nil && match[0] == strings.TrimSpace(s) {
		if value, ok := Lookup(scope, match[1]); ok {
			return value
		}

		return s
	}

	return RenderString(s, scope)
}

// RenderString interpolates s and always returns a string.
func RenderString(s string, scope map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(placeholder string) string {
		path := placeholderPattern.FindStringSubmatch(placeholder)[1]

		value, ok := Lookup(scope, path)
		if !ok {
			return placeholder
		}

		return stringify(value)
	})
}

// RenderConfig deep-renders every string inside a configuration map,
// returning a new map. Non-string leaves pass through untouched.
func RenderConfig(config map[string]any, scope map[string]any) map[string]any {
	rendered := make(map[string]any, len(config))

	for key, value := range config {
		rendered[key] = renderValue(value, scope)
	}

	return rendered
}

func renderValue(value any, scope map[string]any) any {
	switch v := value.(type) {
	case string:
		return Render(v, scope)
	case map[string]any:
		return RenderConfig(v, scope)
	case []any:
		rendered := make([]any, len(v))
		for i, item := range v {
			rendered[i] = renderValue(item, scope)
		}

		return rendered
	default:
		return value
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
