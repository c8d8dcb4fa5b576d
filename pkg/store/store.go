// Package store provides the data storage abstraction for workflow
// definitions, executions and templates.
package store

import (
	"context"

	"github.com/weftlabs/weft/pkg/models"
)

// Store is a key/value document store keyed by record id. Implementations do
// not provide cross-record transactions; callers that need read-modify-write
// consistency serialize at a higher level.
type Store interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error

	Executions(ctx context.Context) ([]*models.Execution, error)
	ExecutionByID(ctx context.Context, id string) (*models.Execution, error)
	ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error)
	SaveExecution(ctx context.Context, execution *models.Execution) error

	Templates(ctx context.Context) ([]*models.WorkflowTemplate, error)
	TemplateByID(ctx context.Context, id string) (*models.WorkflowTemplate, error)
	SaveTemplate(ctx context.Context, template *models.WorkflowTemplate) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
