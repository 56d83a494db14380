package graph

import (
	"fmt"
	"sort"
)

// topoSort emits every node of the graph in post-order from the registered
// node list, children before consumers. A traversal that reaches a node
// outside the registered set reports the graph as not a DAG.
func (g *Graph) topoSort() ([]*Node, error) {
	known := make(map[int64]*Node, len(g.nodes))
	for _, n := range g.nodes {
		known[n.id] = n
	}

	sorted := make([]*Node, 0, len(g.nodes))
	visited := make(map[int64]bool, len(g.nodes))
	onStack := make(map[int64]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if onStack[n.id] {
			return fmt.Errorf("graph: cycle through node %d: %w", n.id, ErrNotDAG)
		}
		if visited[n.id] {
			return nil
		}
		if _, ok := known[n.id]; !ok {
			return fmt.Errorf("graph: node %d not registered with this graph: %w", n.id, ErrNotDAG)
		}
		visited[n.id] = true
		onStack[n.id] = true
		for _, child := range n.children {
			if err := visit(child); err != nil {
				return err
			}
		}
		delete(onStack, n.id)
		sorted = append(sorted, n)
		return nil
	}

	for _, n := range g.nodes {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

// distances assigns each node the ordering key d(n) = min over consumers c
// of d(c)-1, seeding consumers without a distance yet at 1 so that output
// nodes land at 0 and upstream nodes at progressively more negative
// values. The topologically sorted list is walked from the outputs
// backwards, so every consumer is resolved before the nodes feeding it.
func distances(sorted []*Node) map[int64]int {
	d := make(map[int64]int, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		n := sorted[i]
		dist := 0
		for _, consumer := range n.consumers {
			cd, ok := d[consumer.id]
			if !ok {
				cd = 1
			}
			if cd-1 < dist {
				dist = cd - 1
			}
		}
		d[n.id] = dist
	}
	return d
}

// executionOrder produces the final plan basis: the topological order
// re-sorted ascending by distance, so the nodes furthest from any output
// are dispatched first and independent branches interleave.
func (g *Graph) executionOrder() ([]*Node, error) {
	sorted, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	d := distances(sorted)
	sort.SliceStable(sorted, func(i, j int) bool {
		return d[sorted[i].id] < d[sorted[j].id]
	})
	return sorted, nil
}

// reachable collects the upstream cone of the requested outputs by
// depth-first traversal over children.
func reachable(outputs []*Node) map[int64]bool {
	cone := make(map[int64]bool)
	var visit func(n *Node)
	visit = func(n *Node) {
		if cone[n.id] {
			return
		}
		cone[n.id] = true
		for _, child := range n.children {
			visit(child)
		}
	}
	for _, out := range outputs {
		visit(out)
	}
	return cone
}
