package executor

import (
	"errors"

	"github.com/flowbaker/agentflow/pkg/domain"
)

// ErrGraphCyclic reports that a workflow's edges do not form a DAG over its
// nodes, so no complete execution order exists.
var ErrGraphCyclic = errors.New("workflow graph contains a cycle or unreachable nodes")

// Order computes a topological order of the given nodes using Kahn's
// algorithm. Nodes that become eligible together are processed in discovery
// (FIFO) order, so the result is deterministic for a given insertion order.
//
// If the edge set contains a cycle, the returned sequence holds only the
// acyclic prefix and is shorter than len(nodes). Callers that execute the
// order must treat that as a structural defect; see OrderComplete.
func Order(nodes []domain.WorkflowNode, edges []domain.Edge) []string {
	inDegree := make(map[string]int, len(nodes))
	successors := make(map[string][]string, len(nodes))

	for _, node := range nodes {
		inDegree[node.ID] = 0
	}

	for _, edge := range edges {
		if _, ok := inDegree[edge.Source]; !ok {
			continue
		}

		if _, ok := inDegree[edge.Target]; !ok {
			continue
		}

		successors[edge.Source] = append(successors[edge.Source], edge.Target)
		inDegree[edge.Target]++
	}

	queue := []string{}

	for _, node := range nodes {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	order := make([]string, 0, len(nodes))

	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]

		order = append(order, nodeID)

		for _, successor := range successors[nodeID] {
			inDegree[successor]--

			if inDegree[successor] == 0 {
				queue = append(queue, successor)
			}
		}
	}

	return order
}

// OrderComplete is Order plus the cycle check: it fails with ErrGraphCyclic
// instead of silently truncating the schedule.
func OrderComplete(nodes []domain.WorkflowNode, edges []domain.Edge) ([]string, error) {
	order := Order(nodes, edges)

	if len(order) < len(nodes) {
		return nil, ErrGraphCyclic
	}

	return order, nil
}
