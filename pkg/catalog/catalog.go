// Package catalog manages the reusable workflow template library and stamps
// out new workflows from it.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
)

// Overrides adjust the instantiated workflow. The template itself is never
// touched by an override.
type Overrides struct {
	Name        string
	Description string
	Category    string
	Variables   map[string]any
}

// Catalog serves workflow templates from the store and seeds the builtin
// library on first use.
type Catalog struct {
	store  store.Store
	logger *slog.Logger

	mu     sync.Mutex
	seeded bool
}

// NewCatalog creates a catalog backed by st.
func NewCatalog(st store.Store, logger *slog.Logger) *Catalog {
	return &Catalog{
		store:  st,
		logger: logger.With("module", "catalog"),
	}
}

// Templates lists every template, builtins included.
func (c *Catalog) Templates(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	if err := c.ensureBuiltins(ctx); err != nil {
		return nil, err
	}

	return c.store.Templates(ctx)
}

// TemplateByID returns one template.
func (c *Catalog) TemplateByID(ctx context.Context, templateID string) (*models.WorkflowTemplate, error) {
	if err := c.ensureBuiltins(ctx); err != nil {
		return nil, err
	}

	return c.store.TemplateByID(ctx, templateID)
}

// SaveTemplate stores a template, assigning an id when absent.
func (c *Catalog) SaveTemplate(ctx context.Context, template *models.WorkflowTemplate) error {
	if template.ID == "" {
		template.ID = uuid.New().String()
	}

	return c.store.SaveTemplate(ctx, template)
}

// Instantiate stamps a new draft workflow out of a template: a deep copy of
// the embedded definition under a fresh identity, with analytics and node
// metadata zeroed and overrides applied. The template's usage counter is the
// only template state that changes.
func (c *Catalog) Instantiate(ctx context.Context, templateID, userID string, overrides Overrides) (*models.Workflow, error) {
	if err := c.ensureBuiltins(ctx); err != nil {
		return nil, err
	}

	template, err := c.store.TemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	workflow := template.Definition.Clone()
	workflow.ID = uuid.New().String()
	workflow.Version = 1
	workflow.Status = models.WorkflowStatusDraft
	workflow.Owner = userID
	workflow.Analytics = nil

	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	for _, node := range workflow.Nodes {
		node.Metadata = models.NodeMetadata{}
	}

	if workflow.Name == "" {
		workflow.Name = template.Name
	}

	if workflow.Category == "" {
		workflow.Category = template.Category
	}

	applyOverrides(workflow, overrides)

	template.UsageCount++
	if err := c.store.SaveTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("update template usage: %w", err)
	}

	if err := c.store.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("save instantiated workflow: %w", err)
	}

	c.logger.InfoContext(ctx, "Template instantiated",
		"template_id", template.ID,
		"workflow_id", workflow.ID,
		"user_id", userID)

	return workflow, nil
}

func applyOverrides(workflow *models.Workflow, overrides Overrides) {
	if overrides.Name != "" {
		workflow.Name = overrides.Name
	}

	if overrides.Description != "" {
		workflow.Description = overrides.Description
	}

	if overrides.Category != "" {
		workflow.Category = overrides.Category
	}

	for name, value := range overrides.Variables {
		setVariable(workflow, name, value)
	}
}

func setVariable(workflow *models.Workflow, name string, value any) {
	for _, variable := range workflow.Variables {
		if variable.Name == name {
			variable.Value = value

			return
		}
	}

	workflow.Variables = append(workflow.Variables, &models.Variable{Name: name, Value: value})
}

// ensureBuiltins seeds the builtin templates the first time the catalog is
// used, retrying on the next call if the store was unavailable. Builtins
// never overwrite a stored template with the same id.
func (c *Catalog) ensureBuiltins(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seeded {
		return nil
	}

	for _, template := range BuiltinTemplates() {
		_, err := c.store.TemplateByID(ctx, template.ID)
		if err == nil {
			continue
		}

		if !store.IsTemplateNotFound(err) {
			return err
		}

		if err := c.store.SaveTemplate(ctx, template); err != nil {
			return fmt.Errorf("seed template %s: %w", template.ID, err)
		}

		c.logger.InfoContext(ctx, "Builtin template seeded", "template_id", template.ID)
	}

	c.seeded = true

	return nil
}
