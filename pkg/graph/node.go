package graph

import (
	"fmt"

	"github.com/itohio/tensorgraph/pkg/tensor"
)

// Op tags the node variants of the computation graph.
type Op int

const (
	OpConstant Op = iota
	OpPlaceholder
	OpAdd
	OpMul
	OpMatMul
)

func (op Op) String() string {
	switch op {
	case OpConstant:
		return "constant"
	case OpPlaceholder:
		return "placeholder"
	case OpAdd:
		return "add"
	case OpMul:
		return "mul"
	case OpMatMul:
		return "matmul"
	}
	return "unknown"
}

// Node is one vertex of a computation graph. Children are fixed at
// construction in definition order; consumers are appended when another
// node registers this one as a child. The graph is therefore acyclic by
// construction.
type Node struct {
	id         int64
	op         Op
	value      *tensor.Tensor
	aTranspose bool
	bTranspose bool
	children   []*Node
	consumers  []*Node
	graph      *Graph
}

// NewConstant wraps an immutable tensor payload as a graph node.
func NewConstant(t *tensor.Tensor) *Node {
	n := &Node{op: OpConstant, value: t}
	register(n)
	return n
}

// NewScalar wraps a single value as a constant node.
func NewScalar(v float32) *Node {
	return NewConstant(tensor.FromScalar(v))
}

// NewPlaceholder creates a node whose value is supplied per Compute call.
func NewPlaceholder() *Node {
	n := &Node{op: OpPlaceholder}
	register(n)
	return n
}

// NewAdd creates an n-ary element-wise addition node.
func NewAdd(children ...*Node) (*Node, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("graph: add with no inputs: %w", ErrArgument)
	}
	n := &Node{op: OpAdd, children: children}
	register(n)
	return n, nil
}

// NewMul creates an n-ary element-wise multiplication node.
func NewMul(children ...*Node) (*Node, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("graph: mul with no inputs: %w", ErrArgument)
	}
	n := &Node{op: OpMul, children: children}
	register(n)
	return n, nil
}

// NewMatMul creates a matrix-multiplication node with per-operand
// transpose flags.
func NewMatMul(aTranspose, bTranspose bool, a, b *Node) *Node {
	n := &Node{op: OpMatMul, aTranspose: aTranspose, bTranspose: bTranspose, children: []*Node{a, b}}
	register(n)
	return n
}

// ID returns the node's stable identifier.
func (n *Node) ID() int64 {
	return n.id
}

// Op returns the node's variant tag.
func (n *Node) Op() Op {
	return n.op
}

// Children returns the node's inputs in definition order.
func (n *Node) Children() []*Node {
	return n.children
}

// Consumers returns the nodes that consume this node's output.
func (n *Node) Consumers() []*Node {
	return n.consumers
}

// childOutputs reads the forward values of every child from the results
// store, blocking on pending futures.
func (n *Node) childOutputs(res *Results) ([]*tensor.Tensor, error) {
	outs := make([]*tensor.Tensor, len(n.children))
	for i, child := range n.children {
		fut := res.output(child.id)
		if fut == nil {
			return nil, fmt.Errorf("graph: %s node %d has no output for child %d: %w", n.op, n.id, child.id, ErrExecution)
		}
		out, err := fut.Get()
		if err != nil {
			return nil, err
		}
		outs[i] = out
	}
	return outs, nil
}

// forward produces this node's output from its children's outputs.
func (n *Node) forward(res *Results) (*tensor.Tensor, error) {
	switch n.op {
	case OpConstant:
		return n.value, nil
	case OpPlaceholder:
		return nil, fmt.Errorf("graph: unbound placeholder %d: %w", n.id, ErrArgument)
	case OpAdd:
		outs, err := n.childOutputs(res)
		if err != nil {
			return nil, err
		}
		return tensor.Add(outs...)
	case OpMul:
		outs, err := n.childOutputs(res)
		if err != nil {
			return nil, err
		}
		return tensor.Mul(outs...)
	case OpMatMul:
		outs, err := n.childOutputs(res)
		if err != nil {
			return nil, err
		}
		return n.matmulForward(outs[0], outs[1])
	}
	return nil, fmt.Errorf("graph: forward of unknown op %d: %w", n.op, ErrExecution)
}

// delta resolves the upstream gradient flowing into this node: ones over
// the output shape for end nodes, otherwise the element-wise sum of the
// contributions recorded by this node's consumers. Consumers outside the
// computed cone have no recorded contributions and are skipped.
func (n *Node) delta(res *Results, isEndNode bool) (*tensor.Tensor, error) {
	if isEndNode {
		fut := res.output(n.id)
		if fut == nil {
			return nil, fmt.Errorf("graph: end node %d has no output: %w", n.id, ErrExecution)
		}
		out, err := fut.Get()
		if err != nil {
			return nil, err
		}
		return tensor.Ones(out.Shape()...), nil
	}

	var contribs []*tensor.Tensor
	for _, consumer := range n.consumers {
		fut := res.adjoint(consumer.id)
		if fut == nil {
			continue
		}
		m, err := fut.Get()
		if err != nil {
			return nil, err
		}
		if contrib, ok := m[n.id]; ok {
			contribs = append(contribs, contrib)
		}
	}
	if len(contribs) == 0 {
		return nil, fmt.Errorf("graph: node %d received no gradient contributions: %w", n.id, ErrExecution)
	}
	return tensor.Add(contribs...)
}

// backward computes the contributions this node makes to each child's
// gradient, keyed by child id, plus an entry keyed by this node's own id
// holding the incoming delta.
func (n *Node) backward(res *Results, isEndNode bool) (map[int64]*tensor.Tensor, error) {
	delta, err := n.delta(res, isEndNode)
	if err != nil {
		return nil, err
	}

	grads := map[int64]*tensor.Tensor{n.id: delta}
	switch n.op {
	case OpConstant, OpPlaceholder:
		return grads, nil
	case OpAdd:
		outs, err := n.childOutputs(res)
		if err != nil {
			return nil, err
		}
		for i, child := range n.children {
			contrib, err := tensor.Unbroadcast(delta, outs[i].Shape())
			if err != nil {
				return nil, err
			}
			if err := accumulate(grads, child.id, contrib); err != nil {
				return nil, err
			}
		}
		return grads, nil
	case OpMul:
		outs, err := n.childOutputs(res)
		if err != nil {
			return nil, err
		}
		selfFut := res.output(n.id)
		if selfFut == nil {
			return nil, fmt.Errorf("graph: mul node %d has no output: %w", n.id, ErrExecution)
		}
		selfOut, err := selfFut.Get()
		if err != nil {
			return nil, err
		}
		for i, child := range n.children {
			// The division runs over operands broadcast to the output
			// shape, so the quotient is the product of the remaining
			// factors wherever the child is non-zero.
			quotient, err := tensor.Div(selfOut, outs[i])
			if err != nil {
				return nil, err
			}
			scaled, err := tensor.Mul(delta, quotient)
			if err != nil {
				return nil, err
			}
			contrib, err := tensor.Unbroadcast(scaled, outs[i].Shape())
			if err != nil {
				return nil, err
			}
			if err := accumulate(grads, child.id, contrib); err != nil {
				return nil, err
			}
		}
		return grads, nil
	case OpMatMul:
		outs, err := n.childOutputs(res)
		if err != nil {
			return nil, err
		}
		dA, dB, err := n.matmulBackward(delta, outs[0], outs[1])
		if err != nil {
			return nil, err
		}
		if err := accumulate(grads, n.children[0].id, dA); err != nil {
			return nil, err
		}
		if err := accumulate(grads, n.children[1].id, dB); err != nil {
			return nil, err
		}
		return grads, nil
	}
	return nil, fmt.Errorf("graph: backward of unknown op %d: %w", n.op, ErrExecution)
}

// accumulate adds a contribution into the per-child map, summing when the
// same node appears more than once among the children.
func accumulate(grads map[int64]*tensor.Tensor, id int64, contrib *tensor.Tensor) error {
	if existing, ok := grads[id]; ok {
		sum, err := tensor.Add(existing, contrib)
		if err != nil {
			return err
		}
		grads[id] = sum
		return nil
	}
	grads[id] = contrib
	return nil
}
