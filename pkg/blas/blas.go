// Package blas is the boundary to the linear-algebra backend. Buffers are
// allocated from host data, read back explicitly, and released by their
// owners; Sgemm operates on buffers in row-major layout with per-operand
// transpose flags. The in-process backend keeps buffers in a registry so a
// shutdown hook can release everything that is still live.
package blas

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBackend is returned for allocation and kernel failures.
var ErrBackend = errors.New("blas: backend error")

// Handle identifies a device buffer. InvalidHandle means not allocated.
type Handle int64

const InvalidHandle Handle = 0

// MemFlag mirrors the allocation flags of the device API.
type MemFlag int

const (
	MemReadWrite MemFlag = 1 << iota
	MemReadOnly
	MemCopyHostPtr
)

var registry = struct {
	sync.Mutex
	buffers map[Handle][]float32
	next    Handle
}{buffers: make(map[Handle][]float32), next: 1}

// Allocate creates a device buffer of len(values) elements. With
// MemCopyHostPtr in flags it is initialized with a copy of values;
// otherwise it is zero-filled.
func Allocate(flags MemFlag, values []float32) (Handle, error) {
	if values == nil {
		return InvalidHandle, fmt.Errorf("blas: allocate with nil host data: %w", ErrBackend)
	}
	buf := make([]float32, len(values))
	if flags&MemCopyHostPtr != 0 {
		copy(buf, values)
	}
	registry.Lock()
	h := registry.next
	registry.next++
	registry.buffers[h] = buf
	registry.Unlock()
	return h, nil
}

// ReadBuffer copies length elements from the device buffer to the host.
func ReadBuffer(h Handle, length int) ([]float32, error) {
	registry.Lock()
	buf, ok := registry.buffers[h]
	registry.Unlock()
	if !ok {
		return nil, fmt.Errorf("blas: read of unknown buffer %d: %w", h, ErrBackend)
	}
	if length > len(buf) {
		return nil, fmt.Errorf("blas: read %d elements from buffer of %d: %w", length, len(buf), ErrBackend)
	}
	out := make([]float32, length)
	copy(out, buf[:length])
	return out, nil
}

// Release frees a device buffer. Releasing an unknown handle is a no-op.
func Release(h Handle) {
	registry.Lock()
	delete(registry.buffers, h)
	registry.Unlock()
}

// ReleaseAll frees every live buffer. Called from the engine shutdown hook.
func ReleaseAll() {
	registry.Lock()
	registry.buffers = make(map[Handle][]float32)
	registry.Unlock()
}

func buffer(h Handle) ([]float32, bool) {
	registry.Lock()
	buf, ok := registry.buffers[h]
	registry.Unlock()
	return buf, ok
}

// Sgemm computes C := op(A)*op(B) + C over device buffers in row-major
// layout, where op transposes its operand when the matching flag is set.
// A fresh product requires the caller to zero-initialize C.
func Sgemm(a, b, c Handle, aT, bT bool, m, n, k, lda, ldb, ldc int) error {
	av, ok := buffer(a)
	if !ok {
		return fmt.Errorf("blas: sgemm operand A buffer %d unknown: %w", a, ErrBackend)
	}
	bv, ok := buffer(b)
	if !ok {
		return fmt.Errorf("blas: sgemm operand B buffer %d unknown: %w", b, ErrBackend)
	}
	cv, ok := buffer(c)
	if !ok {
		return fmt.Errorf("blas: sgemm output buffer %d unknown: %w", c, ErrBackend)
	}
	if m <= 0 || n <= 0 || k <= 0 {
		return fmt.Errorf("blas: sgemm dimensions %dx%dx%d: %w", m, n, k, ErrBackend)
	}
	switch {
	case !aT && !bT:
		gemmNN(cv, av, bv, ldc, lda, ldb, m, n, k)
	case !aT && bT:
		gemmNT(cv, av, bv, ldc, lda, ldb, m, n, k)
	case aT && !bT:
		gemmTN(cv, av, bv, ldc, lda, ldb, m, n, k)
	default:
		gemmTT(cv, av, bv, ldc, lda, ldb, m, n, k)
	}
	return nil
}
