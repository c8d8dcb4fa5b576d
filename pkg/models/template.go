package models

// WorkflowTemplate is a reusable workflow definition stripped of identity,
// timestamps and analytics. Instantiation deep-copies the definition into a
// brand-new workflow; the template itself is only ever mutated by its usage
// counter.
type WorkflowTemplate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"     validate:"required,min=3"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category" validate:"required"`
	Tags        []string `json:"tags,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"` // beginner, intermediate, advanced
	Author      string   `json:"author,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	UsageCount  int      `json:"usage_count"`
	Definition  Workflow `json:"definition"`
}
