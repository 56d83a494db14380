package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumAxes(t *testing.T) {
	tests := []struct {
		name      string
		dims      []int
		values    []float32
		axes      []int
		wantShape Shape
		wantVals  []float32
	}{
		{
			name:      "rows",
			dims:      []int{2, 3},
			values:    []float32{1, 2, 3, 4, 5, 6},
			axes:      []int{0},
			wantShape: Shape{1, 3},
			wantVals:  []float32{5, 7, 9},
		},
		{
			name:      "columns",
			dims:      []int{2, 3},
			values:    []float32{1, 2, 3, 4, 5, 6},
			axes:      []int{1},
			wantShape: Shape{2, 1},
			wantVals:  []float32{6, 15},
		},
		{
			name:      "all axes",
			dims:      []int{2, 3},
			values:    []float32{1, 2, 3, 4, 5, 6},
			axes:      []int{0, 1},
			wantShape: Shape{1, 1},
			wantVals:  []float32{21},
		},
		{
			name:      "middle axis of rank 3",
			dims:      []int{2, 2, 2},
			values:    []float32{1, 2, 3, 4, 5, 6, 7, 8},
			axes:      []int{1},
			wantShape: Shape{2, 1, 2},
			wantVals:  []float32{4, 6, 12, 14},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewBuilder(tt.dims...).WithValues(tt.values...).Build()
			require.NoError(t, err)
			got, err := SumAxes(src, tt.axes...)
			require.NoError(t, err)
			assert.True(t, got.Shape().Equal(tt.wantShape), "shape %v", got.Shape())
			assert.Equal(t, tt.wantVals, got.Values())
		})
	}
}

func TestSumAxesErrors(t *testing.T) {
	src := Zeros(2, 3)
	_, err := SumAxes(src, 2)
	assert.ErrorIs(t, err, ErrShape)
	_, err = SumAxes(src, -1)
	assert.ErrorIs(t, err, ErrShape)
	_, err = SumAxes(src, 0, 0)
	assert.ErrorIs(t, err, ErrShape)
}
