package initialization

import (
	"context"
	"fmt"

	"github.com/flowbaker/agentflow/internal/metrics"
	"github.com/flowbaker/agentflow/internal/planner"
	"github.com/flowbaker/agentflow/internal/storage"
	"github.com/flowbaker/agentflow/pkg/ai"
	anthropicprovider "github.com/flowbaker/agentflow/pkg/ai/provider/anthropic"
	openaiprovider "github.com/flowbaker/agentflow/pkg/ai/provider/openai"
	"github.com/flowbaker/agentflow/pkg/domain"
	"github.com/flowbaker/agentflow/pkg/domain/executor"
	"github.com/flowbaker/agentflow/pkg/integrations"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Container wires the orchestrator and its collaborators from configuration.
type Container struct {
	Config *Config

	Store        domain.WorkflowStore
	Registry     domain.AdapterRegistry
	Completion   domain.CompletionService
	Orchestrator *executor.Orchestrator
	Metrics      *metrics.Recorder
	Planner      domain.PlanProvider
}

func NewContainer(ctx context.Context) (*Container, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, config)
	if err != nil {
		return nil, err
	}

	completion := ai.NewService(ai.ServiceDeps{
		Provider:  newProvider(config),
		MaxTokens: config.AIMaxTokens,
	})

	registry := domain.NewAdapterRegistry()

	builtins := integrations.NewBuiltinRegistry(integrations.BuiltinDeps{
		EmailAPIKey:    config.ResendAPIKey,
		EmailFrom:      config.EmailFrom,
		SearchEndpoint: config.SearchEndpoint,
	})

	nodeExecutor := executor.NewNodeExecutor(executor.NodeExecutorDeps{
		Registry:   registry,
		Builtins:   builtins,
		Completion: completion,
	})

	metricsRecorder := metrics.NewRecorder()

	orchestrator := executor.NewOrchestrator(executor.OrchestratorDeps{
		Store:                store,
		NodeExecutor:         nodeExecutor,
		SummarySinks:         []domain.RunSummarySink{metricsRecorder},
		MarkSkippedOnFailure: config.MarkSkippedOnFailure,
	})

	aiPlanner := planner.NewAIPlanner(planner.AIPlannerDeps{
		Completion: completion,
	})

	return &Container{
		Config:       config,
		Store:        store,
		Registry:     registry,
		Completion:   completion,
		Orchestrator: orchestrator,
		Metrics:      metricsRecorder,
		Planner:      aiPlanner,
	}, nil
}

func newStore(ctx context.Context, config *Config) (domain.WorkflowStore, error) {
	switch config.Storage {
	case "", "memory":
		return storage.NewInMemoryWorkflowStore(), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.RedisAddress, err)
		}

		return storage.NewRedisWorkflowStore(client), nil

	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}

		return storage.NewMongoWorkflowStore(client.Database(config.MongoDatabase)), nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", config.Storage)
}

func newProvider(config *Config) ai.Provider {
	switch config.AIProvider {
	case "openai":
		return openaiprovider.New(config.OpenAIAPIKey, config.OpenAIModel)
	case "anthropic":
		return anthropicprovider.New(config.AnthropicAPIKey, config.AnthropicModel)
	case "simulated":
		return ai.NewSimulatedProvider()
	case "":
		// Auto-pick from whichever key is configured.
		if config.AnthropicAPIKey != "" {
			return anthropicprovider.New(config.AnthropicAPIKey, config.AnthropicModel)
		}

		if config.OpenAIAPIKey != "" {
			return openaiprovider.New(config.OpenAIAPIKey, config.OpenAIModel)
		}

		log.Warn().Msg("No model API key configured, completions will be simulated")
	default:
		log.Warn().Msgf("Unknown AI provider %q, using simulated completions", config.AIProvider)
	}

	return ai.NewSimulatedProvider()
}
