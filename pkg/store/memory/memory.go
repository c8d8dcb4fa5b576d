// Package memory provides an in-memory store implementation, used as the
// default backend for tests and single-process deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
)

// Store keeps all records in process memory. Records are deep-copied on every
// read and write so callers can never mutate stored state through a shared
// pointer.
type Store struct {
	mu         sync.RWMutex
	workflows  map[string]*models.Workflow
	executions map[string]*models.Execution
	templates  map[string]*models.WorkflowTemplate
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		workflows:  make(map[string]*models.Workflow),
		executions: make(map[string]*models.Execution),
		templates:  make(map[string]*models.WorkflowTemplate),
	}
}

func (s *Store) Workflows(_ context.Context) ([]*models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workflows := make([]*models.Workflow, 0, len(s.workflows))
	for _, workflow := range s.workflows {
		workflows = append(workflows, workflow.Clone())
	}

	sort.Slice(workflows, func(i, j int) bool { return workflows[i].ID < workflows[j].ID })

	return workflows, nil
}

func (s *Store) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workflow, ok := s.workflows[id]
	if !ok {
		return nil, store.NewError("WorkflowByID", "workflow", id, store.ErrWorkflowNotFound)
	}

	return workflow.Clone(), nil
}

func (s *Store) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflows[workflow.ID] = workflow.Clone()

	return nil
}

func (s *Store) DeleteWorkflow(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[id]; !ok {
		return store.NewError("DeleteWorkflow", "workflow", id, store.ErrWorkflowNotFound)
	}

	delete(s.workflows, id)

	return nil
}

func (s *Store) Executions(_ context.Context) ([]*models.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	executions := make([]*models.Execution, 0, len(s.executions))
	for _, execution := range s.executions {
		executions = append(executions, execution.Clone())
	}

	sortExecutions(executions)

	return executions, nil
}

func (s *Store) ExecutionByID(_ context.Context, id string) (*models.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	execution, ok := s.executions[id]
	if !ok {
		return nil, store.NewError("ExecutionByID", "execution", id, store.ErrExecutionNotFound)
	}

	return execution.Clone(), nil
}

func (s *Store) ExecutionsByWorkflow(_ context.Context, workflowID string) ([]*models.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var executions []*models.Execution

	for _, execution := range s.executions {
		if execution.WorkflowID == workflowID {
			executions = append(executions, execution.Clone())
		}
	}

	sortExecutions(executions)

	return executions, nil
}

func (s *Store) SaveExecution(_ context.Context, execution *models.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.executions[execution.ID] = execution.Clone()

	return nil
}

func (s *Store) Templates(_ context.Context) ([]*models.WorkflowTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	templates := make([]*models.WorkflowTemplate, 0, len(s.templates))
	for _, template := range s.templates {
		templates = append(templates, template.Clone())
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })

	return templates, nil
}

func (s *Store) TemplateByID(_ context.Context, id string) (*models.WorkflowTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	template, ok := s.templates[id]
	if !ok {
		return nil, store.NewError("TemplateByID", "template", id, store.ErrTemplateNotFound)
	}

	return template.Clone(), nil
}

func (s *Store) SaveTemplate(_ context.Context, template *models.WorkflowTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates[template.ID] = template.Clone()

	return nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

// sortExecutions orders newest first so recent runs lead listings.
func sortExecutions(executions []*models.Execution) {
	sort.Slice(executions, func(i, j int) bool {
		if executions[i].StartTime.Equal(executions[j].StartTime) {
			return executions[i].ID < executions[j].ID
		}

		return executions[i].StartTime.After(executions[j].StartTime)
	})
}
