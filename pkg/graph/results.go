package graph

import (
	"sync"

	"github.com/itohio/tensorgraph/internal/concurrency"
	"github.com/itohio/tensorgraph/pkg/tensor"
)

// Results holds the per-node outcomes of the last compute and gradient
// passes, keyed by node id: futures for forward outputs, futures for
// per-child adjoint contributions, and the accumulated gradients.
type Results struct {
	mu        sync.RWMutex
	outputs   map[int64]*concurrency.Future[*tensor.Tensor]
	adjoints  map[int64]*concurrency.Future[map[int64]*tensor.Tensor]
	gradients map[int64]*tensor.Tensor
}

func newResults() *Results {
	return &Results{
		outputs:   make(map[int64]*concurrency.Future[*tensor.Tensor]),
		adjoints:  make(map[int64]*concurrency.Future[map[int64]*tensor.Tensor]),
		gradients: make(map[int64]*tensor.Tensor),
	}
}

func (r *Results) setOutput(id int64, fut *concurrency.Future[*tensor.Tensor]) {
	r.mu.Lock()
	r.outputs[id] = fut
	r.mu.Unlock()
}

func (r *Results) output(id int64) *concurrency.Future[*tensor.Tensor] {
	r.mu.RLock()
	fut := r.outputs[id]
	r.mu.RUnlock()
	return fut
}

func (r *Results) setAdjoint(id int64, fut *concurrency.Future[map[int64]*tensor.Tensor]) {
	r.mu.Lock()
	r.adjoints[id] = fut
	r.mu.Unlock()
}

func (r *Results) adjoint(id int64) *concurrency.Future[map[int64]*tensor.Tensor] {
	r.mu.RLock()
	fut := r.adjoints[id]
	r.mu.RUnlock()
	return fut
}

func (r *Results) setGradient(id int64, t *tensor.Tensor) {
	r.mu.Lock()
	r.gradients[id] = t
	r.mu.Unlock()
}

// GetOutput returns the forward value of a node from the last compute
// pass. ok is false for nodes outside the computed cone.
func (r *Results) GetOutput(n *Node) (*tensor.Tensor, bool) {
	fut := r.output(n.id)
	if fut == nil {
		return nil, false
	}
	out, err := fut.Get()
	if err != nil {
		return nil, false
	}
	return out, true
}

// GetGradient returns the accumulated gradient of a node from the last
// gradient pass. ok is false for nodes outside the computed cone.
func (r *Results) GetGradient(n *Node) (*tensor.Tensor, bool) {
	r.mu.RLock()
	grad, ok := r.gradients[n.id]
	r.mu.RUnlock()
	return grad, ok
}

// Clear drops all recorded outputs, adjoints and gradients.
func (r *Results) Clear() {
	r.mu.Lock()
	r.outputs = make(map[int64]*concurrency.Future[*tensor.Tensor])
	r.adjoints = make(map[int64]*concurrency.Future[map[int64]*tensor.Tensor])
	r.gradients = make(map[int64]*tensor.Tensor)
	r.mu.Unlock()
}
