package executor

import (
	"github.com/flowbaker/agentflow/pkg/domain"
)

// Layout geometry. Positions are cosmetic; nothing in execution reads them.
const (
	LayoutNodeWidth     = 220.0
	LayoutNodeHeight    = 110.0
	LayoutHorizontalGap = 80.0
	LayoutVerticalGap   = 120.0
)

// ComputeLayout assigns each node a layered position: a node's layer is one
// past its deepest parent, nodes sharing a layer are laid out left to right
// and centered as a group, layers stack top to bottom.
//
// Pure function of (nodes, edges); nodes outside the topological order (cyclic
// remainder) keep their existing position and are absent from the result.
func ComputeLayout(nodes []domain.WorkflowNode, edges []domain.Edge) map[string]domain.NodePosition {
	order := Order(nodes, edges)

	parents := make(map[string][]string, len(nodes))

	for _, edge := range edges {
		parents[edge.Target] = append(parents[edge.Target], edge.Source)
	}

	layers := make(map[string]int, len(nodes))

	for _, nodeID := range order {
		layer := 0

		for _, parent := range parents[nodeID] {
			parentLayer, ok := layers[parent]
			if !ok {
				continue
			}

			if parentLayer+1 > layer {
				layer = parentLayer + 1
			}
		}

		layers[nodeID] = layer
	}

	nodesByLayer := map[int][]string{}
	maxLayer := 0

	for _, nodeID := range order {
		layer := layers[nodeID]
		nodesByLayer[layer] = append(nodesByLayer[layer], nodeID)

		if layer > maxLayer {
			maxLayer = layer
		}
	}

	positions := make(map[string]domain.NodePosition, len(order))

	for layer := 0; layer <= maxLayer; layer++ {
		row := nodesByLayer[layer]
		rowWidth := float64(len(row))*LayoutNodeWidth + float64(len(row)-1)*LayoutHorizontalGap
		startX := -rowWidth / 2

		for i, nodeID := range row {
			positions[nodeID] = domain.NodePosition{
				X: startX + float64(i)*(LayoutNodeWidth+LayoutHorizontalGap),
				Y: float64(layer) * (LayoutNodeHeight + LayoutVerticalGap),
			}
		}
	}

	return positions
}

// ApplyLayout recomputes positions and writes them onto the workflow's nodes.
func ApplyLayout(workflow *domain.Workflow) {
	positions := ComputeLayout(workflow.Nodes, workflow.Edges)

	for i := range workflow.Nodes {
		if position, ok := positions[workflow.Nodes[i].ID]; ok {
			workflow.Nodes[i].Position = position
		}
	}
}
