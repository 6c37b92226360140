package planner

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// FilePlanner builds workflows from declarative plan files (YAML or JSON).
type FilePlanner struct {
	path string
}

func NewFilePlanner(path string) *FilePlanner {
	return &FilePlanner{
		path: path,
	}
}

// PlanWorkflow loads the plan file; the goal argument overrides the
// document's goal when non-empty.
func (p *FilePlanner) PlanWorkflow(ctx context.Context, goal string) (*domain.Workflow, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", p.path, err)
	}

	doc, err := ParsePlanDocument(raw, strings.HasSuffix(p.path, ".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", p.path, err)
	}

	if goal != "" {
		doc.Goal = goal
	}

	return BuildWorkflow(doc)
}

// ParsePlanDocument decodes a plan document from raw bytes.
func ParsePlanDocument(raw []byte, isJSON bool) (PlanDocument, error) {
	doc := PlanDocument{}

	if isJSON {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return PlanDocument{}, err
		}

		return doc, nil
	}

	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return PlanDocument{}, err
	}

	return doc, nil
}
