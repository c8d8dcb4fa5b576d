package models

// Variable is a named, typed workflow value. Global variables are shared with
// the surrounding platform; secret values must never be echoed into logs.
type Variable struct {
	Name   string `json:"name" validate:"required"`
	Value  any    `json:"value"`
	Type   string `json:"type,omitempty"`
	Global bool   `json:"global,omitempty"`
	Secret bool   `json:"secret,omitempty"`
}

// SeedVariables builds the initial execution variable map from workflow
// variable declarations.
func SeedVariables(vars []*Variable) map[string]any {
	seeded := make(map[string]any, len(vars))

	for _, v := range vars {
		if v == nil {
			continue
		}

		seeded[v.Name] = v.Value
	}

	return seeded
}
