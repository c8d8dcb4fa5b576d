// Package redis provides a Redis store implementation. Each record is one
// JSON document at weft:<kind>:<id>, listed via SCAN.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
)

const (
	kindWorkflows  = "workflows"
	kindExecutions = "executions"
	kindTemplates  = "templates"
)

// Store keeps records as JSON documents in Redis.
type Store struct {
	client *redis.Client
}

// NewStore connects to Redis using a redis:// URL and verifies the
// connection with a ping.
func NewStore(ctx context.Context, redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewStoreWithClient wraps an existing client, used by tests.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func recordKey(kind, id string) string {
	return fmt.Sprintf("weft:%s:%s", kind, id)
}

func (s *Store) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return listRecords[models.Workflow](ctx, s, kindWorkflows)
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
	deleted, err := s.client.Del(ctx, recordKey(kindWorkflows, id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	if deleted == 0 {
		return store.NewError("DeleteWorkflow", "workflow", id, store.ErrWorkflowNotFound)
	}

	return nil
}

func (s *Store) Executions(ctx context.Context) ([]*models.Execution, error) {
	return listRecords[models.Execution](ctx, s, kindExecutions)
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
	all, err := listRecords[models.Execution](ctx, s, kindExecutions)
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

func (s *Store) SaveExecution(ctx context.Context, execution *models.Execution) error {
	return s.writeRecord(ctx, kindExecutions, execution.ID, execution.Clone())
}

func (s *Store) Templates(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	return listRecords[models.WorkflowTemplate](ctx, s, kindTemplates)
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

// HealthCheck pings the Redis server.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}

// readRecord returns the decoded record, or nil when the key does not exist.
func readRecord[T any](ctx context.Context, s *Store, kind, id string) (*T, error) {
	body, err := s.client.Get(ctx, recordKey(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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

	err = s.client.Set(ctx, recordKey(kind, id), data, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to store %s %s: %w", kind, id, err)
	}

	return nil
}

func listRecords[T any](ctx context.Context, s *Store, kind string) ([]*T, error) {
	var records []*T

	iter := s.client.Scan(ctx, 0, recordKey(kind, "*"), 100).Iterator()
	for iter.Next(ctx) {
		body, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}

			return nil, fmt.Errorf("failed to fetch %s: %w", iter.Val(), err)
		}

		var record T

		err = json.Unmarshal(body, &record)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", iter.Val(), err)
		}

		records = append(records, &record)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s keys: %w", kind, err)
	}

	return records, nil
}
