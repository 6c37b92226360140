package integrations

import (
	"github.com/flowbaker/agentflow/pkg/domain"
	"github.com/flowbaker/agentflow/pkg/integrations/email"
	"github.com/flowbaker/agentflow/pkg/integrations/websearch"
)

type BuiltinDeps struct {
	EmailAPIKey    string
	EmailFrom      string
	SearchEndpoint string
}

// NewBuiltinRegistry returns the stub adapters the node executor falls back
// to when no live adapter is registered for an integration id.
func NewBuiltinRegistry(deps BuiltinDeps) domain.AdapterRegistry {
	registry := domain.NewAdapterRegistry()

	registry.Register(websearch.IntegrationID, websearch.NewAdapter(websearch.AdapterDeps{
		Endpoint: deps.SearchEndpoint,
	}))

	registry.Register(email.IntegrationID, email.NewAdapter(email.AdapterDeps{
		APIKey: deps.EmailAPIKey,
		From:   deps.EmailFrom,
	}))

	return registry
}
