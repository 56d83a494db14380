package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	tests := []struct {
		name      string
		dims      []int
		values    []float32
		wantShape Shape
		wantVals  []float32
		wantErr   bool
	}{
		{
			name:      "zero filled",
			dims:      []int{2, 2},
			wantShape: Shape{2, 2},
			wantVals:  []float32{0, 0, 0, 0},
		},
		{
			name:      "with values",
			dims:      []int{2, 3},
			values:    []float32{1, 2, 3, 4, 5, 6},
			wantShape: Shape{2, 3},
			wantVals:  []float32{1, 2, 3, 4, 5, 6},
		},
		{
			name:      "extra values ignored",
			dims:      []int{2},
			values:    []float32{1, 2, 3},
			wantShape: Shape{2},
			wantVals:  []float32{1, 2},
		},
		{
			name:      "leading ones trimmed to rank 2",
			dims:      []int{1, 1, 3},
			values:    []float32{1, 2, 3},
			wantShape: Shape{1, 3},
			wantVals:  []float32{1, 2, 3},
		},
		{
			name:      "rank 2 not trimmed",
			dims:      []int{1, 3},
			wantShape: Shape{1, 3},
			wantVals:  []float32{0, 0, 0},
		},
		{
			name:    "too few values",
			dims:    []int{2, 2},
			values:  []float32{1},
			wantErr: true,
		},
		{
			name:    "empty shape",
			dims:    nil,
			wantErr: true,
		},
		{
			name:    "non-positive dimension",
			dims:    []int{2, 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.dims...)
			if tt.values != nil {
				b = b.WithValues(tt.values...)
			}
			got, err := b.Build()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Shape().Equal(tt.wantShape), "shape %v", got.Shape())
			assert.Equal(t, tt.wantVals, got.Values())
		})
	}
}

func TestZerosTrimsLeadingOnes(t *testing.T) {
	z := Zeros(1, 1, 3)
	assert.Equal(t, 2, z.Rank())
	assert.True(t, z.Shape().Equal(Shape{1, 3}))
	assert.Equal(t, 3, z.Len())
}

func TestOnes(t *testing.T) {
	o := Ones(2, 2)
	assert.Equal(t, []float32{1, 1, 1, 1}, o.Values())
}

func TestAt(t *testing.T) {
	m, err := NewBuilder(2, 3).WithValues(1, 2, 3, 4, 5, 6).Build()
	require.NoError(t, err)

	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, float32(6), v)

	// Extra leading indices must be zero.
	v, err = m.At(0, 0, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(4), v)

	_, err = m.At(1, 1, 0)
	assert.ErrorIs(t, err, ErrShape)

	_, err = m.At(-1, 0)
	assert.ErrorIs(t, err, ErrShape)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, ErrShape)

	_, err = m.At(0)
	assert.ErrorIs(t, err, ErrShape)
}

func TestSetAddAt(t *testing.T) {
	m := Zeros(2, 2)
	require.NoError(t, m.SetAt(3, 1, 0))
	require.NoError(t, m.AddAt(2, 1, 0))
	v, err := m.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(5), v)
}

func TestSetValues(t *testing.T) {
	m := Zeros(2)
	require.NoError(t, m.SetValues([]float32{7, 8, 9}))
	assert.Equal(t, []float32{7, 8}, m.Values())
	assert.ErrorIs(t, m.SetValues([]float32{1}), ErrArgument)
}

func TestEqual(t *testing.T) {
	a, _ := NewBuilder(2, 2).WithValues(1, 2, 3, 4).Build()
	b, _ := NewBuilder(2, 2).WithValues(1, 2, 3, 4).Build()
	c, _ := NewBuilder(4).WithValues(1, 2, 3, 4).Build()
	d, _ := NewBuilder(2, 2).WithValues(1, 2, 3, 5).Build()

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "shape differs")
	assert.False(t, a.Equal(d), "values differ")
	assert.False(t, a.Equal(nil))

	// Construction trims e to f's shape.
	e, _ := NewBuilder(1, 1, 3).WithValues(1, 2, 3).Build()
	f, _ := NewBuilder(1, 3).WithValues(1, 2, 3).Build()
	assert.True(t, e.Equal(f))
}

func TestAllClose(t *testing.T) {
	a, _ := NewBuilder(2).WithValues(1, 2).Build()
	b, _ := NewBuilder(2).WithValues(1.0005, 2).Build()
	assert.True(t, a.AllClose(b, 1e-3))
	assert.False(t, a.AllClose(b, 1e-6))
}

func TestClone(t *testing.T) {
	a, _ := NewBuilder(2).WithValues(1, 2).Build()
	b := a.Clone()
	require.NoError(t, b.SetAt(9, 0))
	assert.Equal(t, float32(1), a.Values()[0])
	assert.Equal(t, float32(9), b.Values()[0])
}

func TestFromScalar(t *testing.T) {
	s := FromScalar(4)
	assert.Equal(t, 1, s.Rank())
	assert.Equal(t, []float32{4}, s.Values())
}
