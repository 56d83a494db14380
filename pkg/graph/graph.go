// Package graph implements a reverse-mode automatic-differentiation engine
// over a computational graph of float32 tensors. Nodes register themselves
// with the current graph as they are constructed; Compute evaluates the
// cone of the requested outputs over a worker pool, and Gradient walks the
// computed plan in reverse, accumulating adjoint contributions per node.
package graph

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/itohio/tensorgraph/internal/concurrency"
	"github.com/itohio/tensorgraph/pkg/blas"
	. "github.com/itohio/tensorgraph/pkg/logger"
	"github.com/itohio/tensorgraph/pkg/tensor"
)

type state int

const (
	stateUnsorted state = iota
	stateSorted
	stateComputed
	stateDifferentiated
)

// Graph is a registry of nodes plus the scheduler state of the last
// compute pass.
type Graph struct {
	nodes       []*Node
	order       []*Node
	plan        []*Node
	outputCount int
	state       state
	results     *Results
}

var (
	nextID  atomic.Int64
	graphMu sync.Mutex
	graphs  []*Graph
	current *Graph
	deflt   *Graph

	poolMu sync.Mutex
	pool   *concurrency.Pool
	config = DefaultConfig()
)

func init() {
	deflt = newGraph()
	current = deflt
}

func newGraph() *Graph {
	g := &Graph{results: newResults()}
	graphMu.Lock()
	graphs = append(graphs, g)
	graphMu.Unlock()
	return g
}

// New creates an empty graph and registers it with the process-wide set.
// The new graph does not become current until SetCurrent is called.
func New() *Graph {
	return newGraph()
}

// Current returns the graph new nodes register with.
func Current() *Graph {
	graphMu.Lock()
	defer graphMu.Unlock()
	return current
}

// Default returns the process-wide default graph.
func Default() *Graph {
	graphMu.Lock()
	defer graphMu.Unlock()
	return deflt
}

// SetCurrent makes g the graph new nodes register with.
func (g *Graph) SetCurrent() {
	graphMu.Lock()
	current = g
	graphMu.Unlock()
}

// ClearAll drops every graph and starts over with a fresh default graph.
// All device buffers are released.
func ClearAll() {
	graphMu.Lock()
	graphs = nil
	graphMu.Unlock()
	blas.ReleaseAll()
	g := newGraph()
	graphMu.Lock()
	deflt = g
	current = g
	graphMu.Unlock()
}

// Shutdown drains the worker pool and releases all device buffers.
func Shutdown() {
	poolMu.Lock()
	if pool != nil {
		pool.Close()
		pool = nil
	}
	poolMu.Unlock()
	blas.ReleaseAll()
}

func ensurePool() (*concurrency.Pool, error) {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		return pool, nil
	}
	p := &concurrency.Pool{Size: config.Workers, QueueDepth: config.QueueDepth}
	if err := p.Init(); err != nil {
		return nil, fmt.Errorf("graph: initializing pool: %w", err)
	}
	pool = p
	return pool, nil
}

// register appends a freshly constructed node to the current graph and to
// the consumer lists of its children, invalidating the sorted order.
func register(n *Node) {
	n.id = nextID.Add(1)
	g := Current()
	n.graph = g
	g.nodes = append(g.nodes, n)
	g.state = stateUnsorted
	for _, child := range n.children {
		// A node listed twice among the children still registers as a
		// consumer once; its backward map accumulates both contributions
		// under the single child-id key.
		duplicate := false
		for _, c := range child.consumers {
			if c == n {
				duplicate = true
				break
			}
		}
		if !duplicate {
			child.consumers = append(child.consumers, n)
		}
	}
}

// Nodes returns the registered nodes in registration order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Results exposes the per-node outcomes of the last compute/gradient pass.
func (g *Graph) Results() *Results {
	return g.results
}

// Compute runs the forward pass for the requested outputs. Placeholder
// bindings supply values for placeholder nodes of this graph; every node
// of the outputs' upstream cone is evaluated in distance order over the
// worker pool, and the call blocks until all dispatched work completes.
func (g *Graph) Compute(bindings map[*Node]*tensor.Tensor, outputs ...*Node) error {
	if len(outputs) == 0 {
		return fmt.Errorf("graph: compute with no outputs: %w", ErrArgument)
	}
	p, err := ensurePool()
	if err != nil {
		return err
	}

	if g.state == stateUnsorted || g.order == nil {
		order, err := g.executionOrder()
		if err != nil {
			return err
		}
		g.order = order
		g.state = stateSorted
	}

	// A failed pass must not leave the graph looking computed.
	g.state = stateSorted
	g.results = newResults()
	res := g.results
	for node, t := range bindings {
		if node.graph == g && node.op == OpPlaceholder {
			res.setOutput(node.id, concurrency.Resolved(t))
		}
	}

	cone := reachable(outputs)
	plan := make([]*Node, 0, len(cone))
	for _, n := range g.order {
		if cone[n.id] {
			plan = append(plan, n)
		}
	}
	Log.Debug().Int("nodes", len(g.order)).Int("plan", len(plan)).Int("outputs", len(outputs)).Msg("forward")

	for _, n := range plan {
		n := n
		switch n.op {
		case OpConstant:
			res.setOutput(n.id, concurrency.Resolved(n.value))
		case OpPlaceholder:
			if res.output(n.id) == nil {
				return fmt.Errorf("graph: placeholder %d not bound: %w", n.id, ErrArgument)
			}
		default:
			res.setOutput(n.id, concurrency.Go(p, func() (*tensor.Tensor, error) {
				return n.forward(res)
			}))
		}
	}

	for _, n := range plan {
		if _, err := res.output(n.id).Get(); err != nil {
			return fmt.Errorf("graph: forward of %s node %d: %w: %w", n.op, n.id, ErrExecution, err)
		}
	}

	g.plan = plan
	g.outputCount = len(outputs)
	g.state = stateComputed
	return nil
}

// Gradient runs the reverse pass over the last computed plan. The trailing
// end nodes are seeded with ones; every other node receives the sum of its
// consumers' contributions. Gradients accumulate per node and are exposed
// through Results.GetGradient.
func (g *Graph) Gradient() error {
	if g.state != stateComputed && g.state != stateDifferentiated {
		return fmt.Errorf("graph: gradient before compute: %w", ErrState)
	}
	p, err := ensurePool()
	if err != nil {
		return err
	}
	res := g.results
	Log.Debug().Int("plan", len(g.plan)).Int("end_nodes", g.outputCount).Msg("gradient")

	for i := len(g.plan) - 1; i >= 0; i-- {
		n := g.plan[i]
		isEnd := i >= len(g.plan)-g.outputCount
		res.setAdjoint(n.id, concurrency.Go(p, func() (map[int64]*tensor.Tensor, error) {
			return n.backward(res, isEnd)
		}))
	}

	for i := len(g.plan) - 1; i >= 0; i-- {
		n := g.plan[i]
		if _, err := res.adjoint(n.id).Get(); err != nil {
			return fmt.Errorf("graph: backward of %s node %d: %w: %w", n.op, n.id, ErrExecution, err)
		}
	}

	for _, n := range g.plan {
		m, _ := res.adjoint(n.id).Get()
		res.setGradient(n.id, m[n.id])
	}

	g.state = stateDifferentiated
	return nil
}
