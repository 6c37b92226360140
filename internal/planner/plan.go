package planner

import (
	"fmt"
	"time"

	"github.com/flowbaker/agentflow/pkg/domain"
	"github.com/flowbaker/agentflow/pkg/domain/executor"

	"github.com/google/uuid"
)

// PlanDocument is the declarative plan format shared by the file planner, the
// AI planner, and the HTTP plan endpoint. Dependencies may reference nodes by
// id or by name.
type PlanDocument struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Goal        string     `json:"goal" yaml:"goal"`
	Nodes       []PlanNode `json:"nodes" yaml:"nodes"`
	Edges       []PlanEdge `json:"edges" yaml:"edges"`
}

type PlanNode struct {
	ID          string         `json:"id" yaml:"id"`
	Agent       string         `json:"agent" yaml:"agent"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Icon        string         `json:"icon" yaml:"icon"`
	Instruction string         `json:"instruction" yaml:"instruction"`
	Mode        string         `json:"mode" yaml:"mode"`
	Integration string         `json:"integration" yaml:"integration"`
	Settings    map[string]any `json:"settings" yaml:"settings"`
	DependsOn   []string       `json:"depends_on" yaml:"depends_on"`
}

type PlanEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Label  string `json:"label" yaml:"label"`
}

// BuildWorkflow resolves a plan document into a workflow: missing ids are
// generated, dependencies become edges, the DAG shape is verified, and the
// layered layout assigns initial positions.
func BuildWorkflow(doc PlanDocument) (*domain.Workflow, error) {
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("plan %q has no nodes", doc.Title)
	}

	now := time.Now()

	workflow := &domain.Workflow{
		ID:          uuid.NewString(),
		Title:       doc.Title,
		Description: doc.Description,
		Goal:        doc.Goal,
		Nodes:       []domain.WorkflowNode{},
		Edges:       []domain.Edge{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	idsByRef := map[string]string{}

	for _, planNode := range doc.Nodes {
		if planNode.Name == "" {
			return nil, fmt.Errorf("plan %q contains a node without a name", doc.Title)
		}

		nodeID := planNode.ID
		if nodeID == "" {
			nodeID = uuid.NewString()
		}

		if _, taken := idsByRef[planNode.Name]; taken {
			return nil, fmt.Errorf("plan %q has duplicate node reference %q", doc.Title, planNode.Name)
		}

		idsByRef[planNode.Name] = nodeID

		// A node's id may equal its own name; only a collision with another
		// node's reference is a defect.
		if planNode.ID != "" && planNode.ID != planNode.Name {
			if _, taken := idsByRef[planNode.ID]; taken {
				return nil, fmt.Errorf("plan %q has duplicate node reference %q", doc.Title, planNode.ID)
			}

			idsByRef[planNode.ID] = nodeID
		}

		mode := domain.ExecutionMode(planNode.Mode)
		if mode == "" {
			mode = domain.ExecutionModeAI
		}

		switch mode {
		case domain.ExecutionModeAI, domain.ExecutionModeIntegration, domain.ExecutionModeHybrid:
		default:
			return nil, fmt.Errorf("node %q has unknown execution mode %q", planNode.Name, planNode.Mode)
		}

		err := workflow.AddNode(domain.WorkflowNode{
			ID:            nodeID,
			AgentID:       planNode.Agent,
			Name:          planNode.Name,
			Description:   planNode.Description,
			Icon:          planNode.Icon,
			Instruction:   planNode.Instruction,
			ExecutionMode: mode,
			IntegrationID: planNode.Integration,
			Settings:      planNode.Settings,
			Status:        domain.NodeStatusIdle,
		})
		if err != nil {
			return nil, err
		}
	}

	for _, planNode := range doc.Nodes {
		targetID := idsByRef[planNode.Name]

		for _, ref := range planNode.DependsOn {
			sourceID, ok := idsByRef[ref]
			if !ok {
				return nil, fmt.Errorf("node %q depends on unknown node %q", planNode.Name, ref)
			}

			err := workflow.AddEdge(domain.Edge{
				ID:     uuid.NewString(),
				Source: sourceID,
				Target: targetID,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	for _, planEdge := range doc.Edges {
		sourceID, ok := idsByRef[planEdge.Source]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node %q", planEdge.Source)
		}

		targetID, ok := idsByRef[planEdge.Target]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node %q", planEdge.Target)
		}

		err := workflow.AddEdge(domain.Edge{
			ID:     uuid.NewString(),
			Source: sourceID,
			Target: targetID,
			Label:  planEdge.Label,
		})
		if err != nil {
			return nil, err
		}
	}

	if _, err := executor.OrderComplete(workflow.Nodes, workflow.Edges); err != nil {
		return nil, fmt.Errorf("plan %q is not executable: %w", doc.Title, err)
	}

	executor.ApplyLayout(workflow)

	return workflow, nil
}
