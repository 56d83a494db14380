package tensor

import "fmt"

// broadcastOperands resolves the operands of an element-wise operation to a
// common shape. Operands that already agree are used as-is.
func broadcastOperands(ts []*Tensor) ([]*Tensor, Shape, error) {
	if len(ts) == 0 {
		return nil, nil, fmt.Errorf("tensor: element-wise op with no operands: %w", ErrArgument)
	}
	if !IsDimensionsMismatch(ts...) {
		return ts, ts[0].shape, nil
	}
	bts, err := Broadcast(ts...)
	if err != nil {
		return nil, nil, err
	}
	return bts, bts[0].shape, nil
}

// Add returns the element-wise sum of the operands after broadcasting.
func Add(ts ...*Tensor) (*Tensor, error) {
	ops, shape, err := broadcastOperands(ts)
	if err != nil {
		return nil, err
	}
	out, err := NewBuilder(shape...).Build()
	if err != nil {
		return nil, err
	}
	for i := range out.values {
		sum := float32(0)
		for _, op := range ops {
			sum += op.values[i]
		}
		out.values[i] = sum
	}
	return out, nil
}

// Mul returns the element-wise product of the operands after broadcasting.
func Mul(ts ...*Tensor) (*Tensor, error) {
	ops, shape, err := broadcastOperands(ts)
	if err != nil {
		return nil, err
	}
	out, err := NewBuilder(shape...).Build()
	if err != nil {
		return nil, err
	}
	for i := range out.values {
		prod := float32(1)
		for _, op := range ops {
			prod *= op.values[i]
		}
		out.values[i] = prod
	}
	return out, nil
}

// Sub folds element-wise subtraction left to right from the first operand.
func Sub(ts ...*Tensor) (*Tensor, error) {
	ops, shape, err := broadcastOperands(ts)
	if err != nil {
		return nil, err
	}
	out, err := NewBuilder(shape...).Build()
	if err != nil {
		return nil, err
	}
	for i := range out.values {
		acc := ops[0].values[i]
		for _, op := range ops[1:] {
			acc -= op.values[i]
		}
		out.values[i] = acc
	}
	return out, nil
}

// Div folds element-wise division left to right from the first operand.
// Division by zero follows IEEE float32 semantics.
func Div(ts ...*Tensor) (*Tensor, error) {
	ops, shape, err := broadcastOperands(ts)
	if err != nil {
		return nil, err
	}
	out, err := NewBuilder(shape...).Build()
	if err != nil {
		return nil, err
	}
	for i := range out.values {
		acc := ops[0].values[i]
		for _, op := range ops[1:] {
			acc /= op.values[i]
		}
		out.values[i] = acc
	}
	return out, nil
}
