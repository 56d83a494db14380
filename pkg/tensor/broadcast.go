package tensor

import "fmt"

// IsDimensionsMismatch reports whether any operand's shape differs from the
// first operand's shape.
func IsDimensionsMismatch(ts ...*Tensor) bool {
	if len(ts) < 2 {
		return false
	}
	first := ts[0].shape
	for _, t := range ts[1:] {
		if !t.shape.Equal(first) {
			return true
		}
	}
	return false
}

// padShape left-pads s with 1-extents to the given rank.
func padShape(s Shape, rank int) Shape {
	if len(s) == rank {
		return s
	}
	padded := make(Shape, rank)
	for i := 0; i < rank-len(s); i++ {
		padded[i] = 1
	}
	copy(padded[rank-len(s):], s)
	return padded
}

// broadcastShape resolves the common shape of the operands. For each axis,
// counting from the right, the extent is the first non-1 value across the
// operands; every other operand must carry 1 or that extent.
func broadcastShape(ts []*Tensor) (Shape, error) {
	rank := 0
	for _, t := range ts {
		if t.Rank() > rank {
			rank = t.Rank()
		}
	}
	padded := make([]Shape, len(ts))
	for i, t := range ts {
		padded[i] = padShape(t.shape, rank)
	}
	out := make(Shape, rank)
	for axis := rank - 1; axis >= 0; axis-- {
		extent := 1
		for _, p := range padded {
			if p[axis] != 1 {
				extent = p[axis]
				break
			}
		}
		for i, p := range padded {
			if p[axis] != 1 && p[axis] != extent {
				return nil, fmt.Errorf("tensor: cannot broadcast extent %d of operand %d to %d at axis %d: %w",
					p[axis], i, extent, axis, ErrShape)
			}
		}
		out[axis] = extent
	}
	return out, nil
}

// Broadcast replicates every operand to their common broadcast shape,
// returning freshly allocated tensors. Axes of extent 1 wrap to index 0.
func Broadcast(ts ...*Tensor) ([]*Tensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("tensor: broadcast of no tensors: %w", ErrArgument)
	}
	target, err := broadcastShape(ts)
	if err != nil {
		return nil, err
	}
	out := make([]*Tensor, len(ts))
	for i, t := range ts {
		bt, err := NewBuilder(target...).Build()
		if err != nil {
			return nil, err
		}
		fillBroadcast(bt.values, t, target)
		out[i] = bt
	}
	return out, nil
}

// fillBroadcast writes src replicated to the target shape into dst.
func fillBroadcast(dst []float32, src *Tensor, target Shape) {
	rank := target.Rank()
	padded := padShape(src.shape, rank)
	indices := make([]int, rank)
	for flat := range dst {
		srcFlat := 0
		for axis := 0; axis < rank; axis++ {
			srcFlat = srcFlat*padded[axis] + indices[axis]%padded[axis]
		}
		dst[flat] = src.values[srcFlat]
		for axis := rank - 1; axis >= 0; axis-- {
			indices[axis]++
			if indices[axis] < target[axis] {
				break
			}
			indices[axis] = 0
		}
	}
}

// Unbroadcast sums t along the axes replicated by a broadcast to the given
// target shape, returning t unchanged when no axis was replicated. Axes are
// matched from the right; axes of t beyond the target's rank are summed.
func Unbroadcast(t *Tensor, target Shape) (*Tensor, error) {
	rank := t.Rank()
	var axes []int
	for axis := 0; axis < rank; axis++ {
		j := axis - (rank - target.Rank())
		if j < 0 {
			axes = append(axes, axis)
			continue
		}
		if t.shape[axis] != target[j] {
			axes = append(axes, axis)
		}
	}
	if len(axes) == 0 {
		return t, nil
	}
	return SumAxes(t, axes...)
}
