package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const workflowKeyPrefix = "agentflow:workflow:"

// RedisWorkflowStore persists workflows as JSON values keyed by workflow id.
type RedisWorkflowStore struct {
	client *redis.Client
}

func NewRedisWorkflowStore(client *redis.Client) *RedisWorkflowStore {
	return &RedisWorkflowStore{
		client: client,
	}
}

func workflowKey(workflowID string) string {
	return workflowKeyPrefix + workflowID
}

func (s *RedisWorkflowStore) GetWorkflow(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	raw, err := s.client.Get(ctx, workflowKey(workflowID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, workflowID)
		}

		return nil, fmt.Errorf("failed to read workflow %s from redis: %w", workflowID, err)
	}

	workflow := &domain.Workflow{}

	if err := json.Unmarshal(raw, workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", workflowID, err)
	}

	return workflow, nil
}

func (s *RedisWorkflowStore) SaveWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	raw, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", workflow.ID, err)
	}

	if err := s.client.Set(ctx, workflowKey(workflow.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write workflow %s to redis: %w", workflow.ID, err)
	}

	return nil
}

func (s *RedisWorkflowStore) DeleteWorkflow(ctx context.Context, workflowID string) error {
	deleted, err := s.client.Del(ctx, workflowKey(workflowID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s from redis: %w", workflowID, err)
	}

	if deleted == 0 {
		return fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, workflowID)
	}

	return nil
}

func (s *RedisWorkflowStore) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	workflows := []*domain.Workflow{}

	iter := s.client.Scan(ctx, 0, workflowKeyPrefix+"*", 0).Iterator()

	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}

			return nil, fmt.Errorf("failed to read %s from redis: %w", iter.Val(), err)
		}

		workflow := &domain.Workflow{}

		if err := json.Unmarshal(raw, workflow); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", iter.Val(), err)
		}

		workflows = append(workflows, workflow)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan workflows in redis: %w", err)
	}

	return workflows, nil
}
