package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowbaker/agentflow/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workflowsCollection = "workflows"

// MongoWorkflowStore persists one document per workflow, keyed by the
// workflow id.
type MongoWorkflowStore struct {
	database *mongo.Database
}

func NewMongoWorkflowStore(database *mongo.Database) *MongoWorkflowStore {
	return &MongoWorkflowStore{
		database: database,
	}
}

func (s *MongoWorkflowStore) collection() *mongo.Collection {
	return s.database.Collection(workflowsCollection)
}

func (s *MongoWorkflowStore) GetWorkflow(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	workflow := &domain.Workflow{}

	err := s.collection().FindOne(ctx, bson.M{"id": workflowID}).Decode(workflow)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, workflowID)
		}

		return nil, fmt.Errorf("failed to read workflow %s from mongo: %w", workflowID, err)
	}

	return workflow, nil
}

func (s *MongoWorkflowStore) SaveWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	opts := options.Replace().SetUpsert(true)

	_, err := s.collection().ReplaceOne(ctx, bson.M{"id": workflow.ID}, workflow, opts)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s to mongo: %w", workflow.ID, err)
	}

	return nil
}

func (s *MongoWorkflowStore) DeleteWorkflow(ctx context.Context, workflowID string) error {
	result, err := s.collection().DeleteOne(ctx, bson.M{"id": workflowID})
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s from mongo: %w", workflowID, err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, workflowID)
	}

	return nil
}

func (s *MongoWorkflowStore) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	cursor, err := s.collection().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows in mongo: %w", err)
	}
	defer cursor.Close(ctx)

	workflows := []*domain.Workflow{}

	if err := cursor.All(ctx, &workflows); err != nil {
		return nil, fmt.Errorf("failed to decode workflows from mongo: %w", err)
	}

	return workflows, nil
}
