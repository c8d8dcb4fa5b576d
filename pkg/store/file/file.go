// Package file provides a file-system store implementation. Each record is
// one JSON document under <root>/<kind>/<id>.json.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
)

const (
	kindWorkflows  = "workflows"
	kindExecutions = "executions"
	kindTemplates  = "templates"
)

// Store persists records as JSON files. Writes are whole-file replacements
// with no fsync, so the backend is best effort under crash.
type Store struct {
	root string
}

// NewStore creates a file store rooted at the given directory. A "file://"
// prefix on the root is stripped.
func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

func (s *Store) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return listRecords[models.Workflow](s, ctx, kindWorkflows)
}

func (s *Store) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	workflow, err := readRecord[models.Workflow](s, kindWorkflows, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, store.NewError("WorkflowByID", "workflow", id, store.ErrWorkflowNotFound)
	}

	return workflow, nil
}

func (s *Store) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	return s.writeRecord(kindWorkflows, workflow.ID, workflow)
}

func (s *Store) DeleteWorkflow(_ context.Context, id string) error {
	filePath := path.Join(s.root, kindWorkflows, id+".json")

	err := os.Remove(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return store.NewError("DeleteWorkflow", "workflow", id, store.ErrWorkflowNotFound)
		}

		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}

func (s *Store) Executions(ctx context.Context) ([]*models.Execution, error) {
	return listRecords[models.Execution](s, ctx, kindExecutions)
}

func (s *Store) ExecutionByID(_ context.Context, id string) (*models.Execution, error) {
	execution, err := readRecord[models.Execution](s, kindExecutions, id)
	if err != nil {
		return nil, err
	}

	if execution == nil {
		return nil, store.NewError("ExecutionByID", "execution", id, store.ErrExecutionNotFound)
	}

	return execution, nil
}

func (s *Store) ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	all, err := listRecords[models.Execution](s, ctx, kindExecutions)
	if err != nil {
		return nil, err
	}

	var executions []*models.Execution

	for _, execution := range all {
		if execution.WorkflowID == workflowID {
			executions = append(executions, execution)
		}
	}

	return executions, nil
}

func (s *Store) SaveExecution(_ context.Context, execution *models.Execution) error {
	return s.writeRecord(kindExecutions, execution.ID, execution.Clone())
}

func (s *Store) Templates(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	return listRecords[models.WorkflowTemplate](s, ctx, kindTemplates)
}

func (s *Store) TemplateByID(_ context.Context, id string) (*models.WorkflowTemplate, error) {
	template, err := readRecord[models.WorkflowTemplate](s, kindTemplates, id)
	if err != nil {
		return nil, err
	}

	if template == nil {
		return nil, store.NewError("TemplateByID", "template", id, store.ErrTemplateNotFound)
	}

	return template, nil
}

func (s *Store) SaveTemplate(_ context.Context, template *models.WorkflowTemplate) error {
	return s.writeRecord(kindTemplates, template.ID, template)
}

// HealthCheck verifies the root directory exists.
func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

// readRecord returns the decoded record, or nil when the file does not exist.
func readRecord[T any](s *Store, kind, id string) (*T, error) {
	filePath := filepath.Clean(path.Join(s.root, kind, id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read %s %s: %w", kind, id, err)
	}

	var record T

	err = json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", kind, id, err)
	}

	return &record, nil
}

func (s *Store) writeRecord(kind, id string, record any) error {
	dir := path.Join(s.root, kind)

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}

	return os.WriteFile(path.Join(dir, id+".json"), data, 0600)
}

func listRecords[T any](s *Store, _ context.Context, kind string) ([]*T, error) {
	root := os.DirFS(path.Join(s.root, kind))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", kind, err)
	}

	records := make([]*T, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := strings.TrimSuffix(file, ".json")

		record, err := readRecord[T](s, kind, id)
		if err != nil {
			return nil, err
		}

		if record != nil {
			records = append(records, record)
		}
	}

	return records, nil
}
