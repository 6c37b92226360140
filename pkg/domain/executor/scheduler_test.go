package executor

import (
	"testing"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodesFromIDs(ids ...string) []domain.WorkflowNode {
	nodes := make([]domain.WorkflowNode, 0, len(ids))

	for _, id := range ids {
		nodes = append(nodes, domain.WorkflowNode{ID: id, Name: id})
	}

	return nodes
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}

	return -1
}

func TestOrder(t *testing.T) {
	tests := []struct {
		name  string
		nodes []domain.WorkflowNode
		edges []domain.Edge
		// every [source, target] pair that must be ordered source-first
		ordered [][2]string
		length  int
	}{
		{
			name:    "linear chain",
			nodes:   nodesFromIDs("a", "b", "c"),
			edges:   []domain.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}},
			ordered: [][2]string{{"a", "b"}, {"b", "c"}},
			length:  3,
		},
		{
			name:  "diamond",
			nodes: nodesFromIDs("a", "b", "c", "d"),
			edges: []domain.Edge{
				{Source: "a", Target: "b"},
				{Source: "a", Target: "c"},
				{Source: "b", Target: "d"},
				{Source: "c", Target: "d"},
			},
			ordered: [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
			length:  4,
		},
		{
			name:   "no edges keeps insertion order",
			nodes:  nodesFromIDs("x", "y", "z"),
			edges:  nil,
			length: 3,
		},
		{
			name:  "edges to unknown nodes are ignored",
			nodes: nodesFromIDs("a", "b"),
			edges: []domain.Edge{
				{Source: "a", Target: "b"},
				{Source: "ghost", Target: "b"},
				{Source: "a", Target: "ghost"},
			},
			ordered: [][2]string{{"a", "b"}},
			length:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := Order(tt.nodes, tt.edges)

			assert.Len(t, order, tt.length)

			for _, pair := range tt.ordered {
				sourceIndex := indexOf(order, pair[0])
				targetIndex := indexOf(order, pair[1])

				require.GreaterOrEqual(t, sourceIndex, 0)
				require.GreaterOrEqual(t, targetIndex, 0)
				assert.Less(t, sourceIndex, targetIndex, "%s must run before %s", pair[0], pair[1])
			}
		})
	}
}

func TestOrder_Deterministic(t *testing.T) {
	nodes := nodesFromIDs("a", "b", "c", "d", "e")
	edges := []domain.Edge{
		{Source: "a", Target: "d"},
		{Source: "b", Target: "d"},
		{Source: "c", Target: "e"},
	}

	first := Order(nodes, edges)

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Order(nodes, edges))
	}

	// Roots come out in insertion order.
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, first)
}

func TestOrder_CycleYieldsAcyclicPrefix(t *testing.T) {
	nodes := nodesFromIDs("a", "b", "c")
	edges := []domain.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "b"},
	}

	order := Order(nodes, edges)

	assert.Equal(t, []string{"a"}, order)
}

func TestOrderComplete(t *testing.T) {
	nodes := nodesFromIDs("a", "b")

	order, err := OrderComplete(nodes, []domain.Edge{{Source: "a", Target: "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)

	_, err = OrderComplete(nodes, []domain.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
	})
	assert.ErrorIs(t, err, ErrGraphCyclic)
}

func TestComputeLayout(t *testing.T) {
	nodes := nodesFromIDs("a", "b", "c", "d")
	edges := []domain.Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "c"},
		{Source: "b", Target: "d"},
		{Source: "c", Target: "d"},
	}

	positions := ComputeLayout(nodes, edges)
	require.Len(t, positions, 4)

	rowHeight := LayoutNodeHeight + LayoutVerticalGap

	// Layer 0: root alone, centered.
	assert.Equal(t, -LayoutNodeWidth/2, positions["a"].X)
	assert.Zero(t, positions["a"].Y)

	// Layer 1: b and c side by side on the same row.
	assert.Equal(t, rowHeight, positions["b"].Y)
	assert.Equal(t, rowHeight, positions["c"].Y)
	assert.Equal(t, LayoutNodeWidth+LayoutHorizontalGap, positions["c"].X-positions["b"].X)

	// The two-node row is centered around zero.
	assert.Equal(t, -(positions["c"].X + LayoutNodeWidth), positions["b"].X)

	// Layer 2: join node one past its deepest parent.
	assert.Equal(t, 2*rowHeight, positions["d"].Y)
}

func TestComputeLayout_SkipsCyclicRemainder(t *testing.T) {
	nodes := nodesFromIDs("a", "b", "c")
	edges := []domain.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "b"},
	}

	positions := ComputeLayout(nodes, edges)

	assert.Len(t, positions, 1)
	assert.Contains(t, positions, "a")
}

func TestApplyLayout(t *testing.T) {
	workflow := &domain.Workflow{
		ID:    "wf-layout",
		Nodes: nodesFromIDs("a", "b"),
		Edges: []domain.Edge{{Source: "a", Target: "b"}},
	}

	ApplyLayout(workflow)

	a, ok := workflow.GetNodeByID("a")
	require.True(t, ok)
	b, ok := workflow.GetNodeByID("b")
	require.True(t, ok)

	assert.Equal(t, -LayoutNodeWidth/2, a.Position.X)
	assert.Zero(t, a.Position.Y)
	assert.Equal(t, LayoutNodeHeight+LayoutVerticalGap, b.Position.Y)
}
