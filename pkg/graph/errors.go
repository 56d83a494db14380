package graph

import "errors"

var (
	// ErrNotDAG is returned when a traversal discovers the graph is not a
	// directed acyclic graph.
	ErrNotDAG = errors.New("graph: not a DAG")
	// ErrState is returned when Gradient is called before a forward pass.
	ErrState = errors.New("graph: invalid state")
	// ErrArgument is returned for empty inputs, wrong arity and unbound
	// placeholders.
	ErrArgument = errors.New("graph: argument error")
	// ErrExecution wraps a task failure surfacing during a drain.
	ErrExecution = errors.New("graph: execution error")
	// ErrShape is returned for operand shapes an operation cannot accept.
	ErrShape = errors.New("graph: shape error")
)
