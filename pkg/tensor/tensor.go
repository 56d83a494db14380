package tensor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chewxy/math32"

	"github.com/itohio/tensorgraph/pkg/blas"
)

var (
	// ErrShape is returned when shapes are incompatible or indices fall out of range.
	ErrShape = errors.New("tensor: shape error")
	// ErrArgument is returned when an operation receives invalid arguments.
	ErrArgument = errors.New("tensor: argument error")
)

// Tensor is a dense row-major n-dimensional array of float32 values.
// The shape is fixed at construction; leading 1-extents are trimmed while
// the rank stays above 2, so Zeros(1, 1, 3) yields a rank-2 tensor.
type Tensor struct {
	shape  Shape
	length int
	values []float32

	deviceMu sync.Mutex
	device   blas.Handle
}

// Builder constructs tensors with an optional initial value slice.
type Builder struct {
	shape  Shape
	values []float32
}

// NewBuilder starts building a tensor with the given shape.
func NewBuilder(dims ...int) *Builder {
	return &Builder{shape: NewShape(dims...)}
}

// WithValues sets the initial values. At least Size() values must be
// provided by Build time; extra values are ignored.
func (b *Builder) WithValues(values ...float32) *Builder {
	b.values = values
	return b
}

// Build validates the shape and materializes the tensor.
func (b *Builder) Build() (*Tensor, error) {
	if err := b.shape.validate(); err != nil {
		return nil, err
	}
	shape := b.shape.trimLeading().Clone()
	length := shape.Size()
	values := make([]float32, length)
	if b.values != nil {
		if len(b.values) < length {
			return nil, fmt.Errorf("tensor: %d values for length %d: %w", len(b.values), length, ErrArgument)
		}
		copy(values, b.values[:length])
	}
	return &Tensor{shape: shape, length: length, values: values}, nil
}

// Zeros returns a zero-filled tensor. Panics on an invalid shape.
func Zeros(dims ...int) *Tensor {
	t, err := NewBuilder(dims...).Build()
	if err != nil {
		panic(err)
	}
	return t
}

// Ones returns a tensor filled with ones. Panics on an invalid shape.
func Ones(dims ...int) *Tensor {
	t := Zeros(dims...)
	t.Fill(1)
	return t
}

// FromScalar wraps a single value as a rank-1 tensor.
func FromScalar(v float32) *Tensor {
	t := Zeros(1)
	t.values[0] = v
	return t
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape.Clone()
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return t.shape.Rank()
}

// Len returns the total number of elements.
func (t *Tensor) Len() int {
	return t.length
}

// Values returns the backing storage. Callers must not resize it.
func (t *Tensor) Values() []float32 {
	return t.values
}

// SetValues overwrites the backing storage with the first Len() entries of values.
func (t *Tensor) SetValues(values []float32) error {
	if len(values) < t.length {
		return fmt.Errorf("tensor: %d values for length %d: %w", len(values), t.length, ErrArgument)
	}
	copy(t.values, values[:t.length])
	return nil
}

// Fill sets every element to v.
func (t *Tensor) Fill(v float32) {
	for i := range t.values {
		t.values[i] = v
	}
}

// flatIndex translates multi-dimensional indices into a row-major flat index.
// Indices may carry extra leading entries, all of which must be zero.
func (t *Tensor) flatIndex(indices []int) (int, error) {
	extra := len(indices) - t.shape.Rank()
	if extra < 0 {
		return 0, fmt.Errorf("tensor: %d indices for rank %d: %w", len(indices), t.shape.Rank(), ErrShape)
	}
	for i := 0; i < extra; i++ {
		if indices[i] != 0 {
			return 0, fmt.Errorf("tensor: leading index %d must be zero: %w", indices[i], ErrShape)
		}
	}
	flat := 0
	for axis, d := range t.shape {
		idx := indices[extra+axis]
		if idx < 0 || idx >= d {
			return 0, fmt.Errorf("tensor: index %d out of range for axis %d (extent %d): %w", idx, axis, d, ErrShape)
		}
		flat = flat*d + idx
	}
	return flat, nil
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) (float32, error) {
	flat, err := t.flatIndex(indices)
	if err != nil {
		return 0, err
	}
	return t.values[flat], nil
}

// SetAt sets the element at the given indices.
func (t *Tensor) SetAt(v float32, indices ...int) error {
	flat, err := t.flatIndex(indices)
	if err != nil {
		return err
	}
	t.values[flat] = v
	return nil
}

// AddAt increments the element at the given indices by delta.
func (t *Tensor) AddAt(delta float32, indices ...int) error {
	flat, err := t.flatIndex(indices)
	if err != nil {
		return err
	}
	t.values[flat] += delta
	return nil
}

// Clone returns a deep copy sharing no storage. The device buffer is not cloned.
func (t *Tensor) Clone() *Tensor {
	values := make([]float32, t.length)
	copy(values, t.values)
	return &Tensor{shape: t.shape.Clone(), length: t.length, values: values}
}

// Equal reports structural equality on shape and values.
func (t *Tensor) Equal(other *Tensor) bool {
	if other == nil {
		return false
	}
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i, v := range t.values {
		if v != other.values[i] {
			return false
		}
	}
	return true
}

// AllClose reports whether both tensors have the same shape and every
// element pair differs by at most tol.
func (t *Tensor) AllClose(other *Tensor, tol float32) bool {
	if other == nil || !t.shape.Equal(other.shape) {
		return false
	}
	for i, v := range t.values {
		d := math32.Abs(v - other.values[i])
		if math32.IsNaN(d) || d > tol {
			return false
		}
	}
	return true
}

// EnsureDevice lazily allocates a device buffer holding the tensor's values.
// Safe for concurrent use; at most one buffer is allocated per tensor.
func (t *Tensor) EnsureDevice() (blas.Handle, error) {
	t.deviceMu.Lock()
	defer t.deviceMu.Unlock()
	if t.device != blas.InvalidHandle {
		return t.device, nil
	}
	h, err := blas.Allocate(blas.MemReadWrite|blas.MemCopyHostPtr, t.values)
	if err != nil {
		return blas.InvalidHandle, err
	}
	t.device = h
	return h, nil
}

// ReadDevice copies the device buffer back into host storage.
func (t *Tensor) ReadDevice() error {
	t.deviceMu.Lock()
	defer t.deviceMu.Unlock()
	if t.device == blas.InvalidHandle {
		return fmt.Errorf("tensor: no device buffer: %w", ErrArgument)
	}
	values, err := blas.ReadBuffer(t.device, t.length)
	if err != nil {
		return err
	}
	copy(t.values, values)
	return nil
}

// ReleaseDevice frees the device buffer, if any.
func (t *Tensor) ReleaseDevice() {
	t.deviceMu.Lock()
	defer t.deviceMu.Unlock()
	if t.device != blas.InvalidHandle {
		blas.Release(t.device)
		t.device = blas.InvalidHandle
	}
}
