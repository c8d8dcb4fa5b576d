// Package postgres provides PostgreSQL store implementation backed by a
// single JSONB documents table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // database/sql driver

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
	"github.com/weftlabs/weft/pkg/store/sqlbase"
)

const (
	kindWorkflows  = "workflows"
	kindExecutions = "executions"
	kindTemplates  = "templates"
)

// Store keeps records as JSONB documents in a PostgreSQL table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore connects to PostgreSQL and runs pending schema migrations.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: database, logger: logger}, nil
}

func (s *Store) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return listRecords[models.Workflow](ctx, s, kindWorkflows, "")
}

func (s *Store) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := readRecord[models.Workflow](ctx, s, kindWorkflows, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, store.NewError("WorkflowByID", "workflow", id, store.ErrWorkflowNotFound)
	}

	return workflow, nil
}

func (s *Store) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return s.writeRecord(ctx, kindWorkflows, workflow.ID, workflow)
}

func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE kind = $1 AND id = $2", kindWorkflows, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result for workflow %s: %w", id, err)
	}

	if deleted == 0 {
		return store.NewError("DeleteWorkflow", "workflow", id, store.ErrWorkflowNotFound)
	}

	return nil
}

func (s *Store) Executions(ctx context.Context) ([]*models.Execution, error) {
	return listRecords[models.Execution](ctx, s, kindExecutions, "")
}

func (s *Store) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	execution, err := readRecord[models.Execution](ctx, s, kindExecutions, id)
	if err != nil {
		return nil, err
	}

	if execution == nil {
		return nil, store.NewError("ExecutionByID", "execution", id, store.ErrExecutionNotFound)
	}

	return execution, nil
}

func (s *Store) ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	return listRecords[models.Execution](ctx, s, kindExecutions, workflowID)
}

func (s *Store) SaveExecution(ctx context.Context, execution *models.Execution) error {
	return s.writeRecord(ctx, kindExecutions, execution.ID, execution.Clone())
}

func (s *Store) Templates(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	return listRecords[models.WorkflowTemplate](ctx, s, kindTemplates, "")
}

func (s *Store) TemplateByID(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	template, err := readRecord[models.WorkflowTemplate](ctx, s, kindTemplates, id)
	if err != nil {
		return nil, err
	}

	if template == nil {
		return nil, store.NewError("TemplateByID", "template", id, store.ErrTemplateNotFound)
	}

	return template, nil
}

func (s *Store) SaveTemplate(ctx context.Context, template *models.WorkflowTemplate) error {
	return s.writeRecord(ctx, kindTemplates, template.ID, template)
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// readRecord returns the decoded record, or nil when no row exists.
func readRecord[T any](ctx context.Context, s *Store, kind, id string) (*T, error) {
	var body []byte

	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE kind = $1 AND id = $2", kind, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch %s %s: %w", kind, id, err)
	}

	var record T

	err = json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", kind, id, err)
	}

	return &record, nil
}

func (s *Store) writeRecord(ctx context.Context, kind, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}

	query := `
		INSERT INTO documents (kind, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	_, err = s.db.ExecContext(ctx, query, kind, id, data)
	if err != nil {
		return fmt.Errorf("failed to store %s %s: %w", kind, id, err)
	}

	return nil
}

// listRecords returns all documents of a kind. A non-empty workflowID narrows
// execution documents to one workflow.
func listRecords[T any](ctx context.Context, s *Store, kind, workflowID string) ([]*T, error) {
	query := "SELECT data FROM documents WHERE kind = $1 ORDER BY updated_at DESC"
	args := []any{kind}

	if workflowID != "" {
		query = "SELECT data FROM documents WHERE kind = $1 AND data->>'workflow_id' = $2 ORDER BY updated_at DESC"
		args = append(args, workflowID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind, err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*T, 0)

	for rows.Next() {
		var body []byte

		err = rows.Scan(&body)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", kind, err)
		}

		var record T

		err = json.Unmarshal(body, &record)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", kind, err)
		}

		records = append(records, &record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", kind, err)
	}

	return records, nil
}
