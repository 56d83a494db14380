package graph

import (
	"fmt"

	"github.com/itohio/tensorgraph/pkg/blas"
	"github.com/itohio/tensorgraph/pkg/tensor"
)

// matmulDims resolves the output rows m, output columns n and inner
// dimension k of op(A)·op(B) under the node's transpose flags.
func (n *Node) matmulDims(a, b *tensor.Tensor) (m, nn, k int, err error) {
	if a.Rank() != 2 || b.Rank() != 2 {
		return 0, 0, 0, fmt.Errorf("graph: matmul needs 2-D operands, got ranks %d and %d: %w",
			a.Rank(), b.Rank(), ErrShape)
	}
	aShape := a.Shape()
	bShape := b.Shape()
	m, ka := aShape[0], aShape[1]
	if n.aTranspose {
		m, ka = ka, m
	}
	kb, cols := bShape[0], bShape[1]
	if n.bTranspose {
		kb, cols = cols, kb
	}
	if ka != kb {
		return 0, 0, 0, fmt.Errorf("graph: matmul inner dimensions %d and %d differ: %w", ka, kb, ErrShape)
	}
	return m, cols, ka, nil
}

// sgemm runs one product into a fresh zero tensor of shape rows×cols,
// reading the result back from the device buffer.
func sgemm(a, b *tensor.Tensor, aT, bT bool, rows, cols, inner, lda, ldb int) (*tensor.Tensor, error) {
	ha, err := a.EnsureDevice()
	if err != nil {
		return nil, err
	}
	hb, err := b.EnsureDevice()
	if err != nil {
		return nil, err
	}
	out := tensor.Zeros(rows, cols)
	hc, err := out.EnsureDevice()
	if err != nil {
		return nil, err
	}
	if err := blas.Sgemm(ha, hb, hc, aT, bT, rows, cols, inner, lda, ldb, cols); err != nil {
		return nil, err
	}
	if err := out.ReadDevice(); err != nil {
		return nil, err
	}
	// The product lives on the host now; nothing else holds this handle.
	out.ReleaseDevice()
	return out, nil
}

// matmulForward computes op(A)·op(B).
func (n *Node) matmulForward(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	m, cols, k, err := n.matmulDims(a, b)
	if err != nil {
		return nil, err
	}
	return sgemm(a, b, n.aTranspose, n.bTranspose, m, cols, k, a.Shape()[1], b.Shape()[1])
}

// matmulBackward computes the gradients of both stored operands. With
// C = op(A)·op(B), dA = δ·op(B)ᵀ and dB = op(A)ᵀ·δ; when an operand is
// stored transposed, its gradient is produced directly in storage layout
// by swapping the product order and transposing δ instead.
func (n *Node) matmulBackward(delta, a, b *tensor.Tensor) (dA, dB *tensor.Tensor, err error) {
	m, cols, k, err := n.matmulDims(a, b)
	if err != nil {
		return nil, nil, err
	}
	ldA := a.Shape()[1]
	ldB := b.Shape()[1]

	if n.aTranspose {
		// dA = op(B)·δᵀ, already k×m in storage layout.
		dA, err = sgemm(b, delta, n.bTranspose, true, k, m, cols, ldB, cols)
	} else {
		// dA = δ·op(B)ᵀ, m×k.
		dA, err = sgemm(delta, b, false, !n.bTranspose, m, k, cols, cols, ldB)
	}
	if err != nil {
		return nil, nil, err
	}

	if n.bTranspose {
		// dB = δᵀ·op(A), already n×k in storage layout.
		dB, err = sgemm(delta, a, true, n.aTranspose, cols, k, m, cols, ldA)
	} else {
		// dB = op(A)ᵀ·δ, k×n.
		dB, err = sgemm(a, delta, !n.aTranspose, false, k, cols, m, ldA, cols)
	}
	if err != nil {
		return nil, nil, err
	}
	// delta is private to this task; the operand buffers stay live because
	// other pending backward tasks may still read them.
	delta.ReleaseDevice()
	return dA, dB, nil
}
