package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weftlabs/weft/pkg/store"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		workflowErr := store.NewError("WorkflowByID", "workflow", "workflow-123", store.ErrWorkflowNotFound)
		executionErr := store.NewError("ExecutionByID", "execution", "exec-456", store.ErrExecutionNotFound)
		templateErr := store.NewError("TemplateByID", "template", "tpl-789", store.ErrTemplateNotFound)

		assert.True(t, store.IsWorkflowNotFound(workflowErr))
		assert.True(t, store.IsExecutionNotFound(executionErr))
		assert.True(t, store.IsTemplateNotFound(templateErr))

		assert.True(t, errors.Is(workflowErr, store.ErrWorkflowNotFound))
		assert.True(t, errors.Is(executionErr, store.ErrExecutionNotFound))
		assert.False(t, errors.Is(workflowErr, store.ErrExecutionNotFound))
	})

	t.Run("IsNotFound covers every record kind", func(t *testing.T) {
		assert.True(t, store.IsNotFound(store.NewError("WorkflowByID", "workflow", "a", store.ErrWorkflowNotFound)))
		assert.True(t, store.IsNotFound(store.NewError("ExecutionByID", "execution", "b", store.ErrExecutionNotFound)))
		assert.True(t, store.IsNotFound(store.NewError("TemplateByID", "template", "c", store.ErrTemplateNotFound)))
		assert.False(t, store.IsNotFound(errors.New("connection refused")))
	})

	t.Run("error contains context", func(t *testing.T) {
		err := store.NewError("DeleteWorkflow", "workflow", "workflow-123", store.ErrWorkflowNotFound)

		assert.Contains(t, err.Error(), "DeleteWorkflow")
		assert.Contains(t, err.Error(), "workflow-123")
		assert.Contains(t, err.Error(), "workflow not found")
	})

	t.Run("error without id formats cleanly", func(t *testing.T) {
		err := store.NewError("Workflows", "workflow", "", errors.New("connection refused"))

		assert.Contains(t, err.Error(), "Workflows failed for workflow")
		assert.Contains(t, err.Error(), "connection refused")
	})
}
