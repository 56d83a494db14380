package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeSize(t *testing.T) {
	assert.Equal(t, 6, NewShape(2, 3).Size())
	assert.Equal(t, 1, NewShape(1).Size())
	assert.Equal(t, 24, NewShape(2, 3, 4).Size())
}

func TestShapeEqual(t *testing.T) {
	assert.True(t, NewShape(2, 3).Equal(NewShape(2, 3)))
	assert.False(t, NewShape(2, 3).Equal(NewShape(3, 2)))
	assert.False(t, NewShape(2, 3).Equal(NewShape(2, 3, 1)))
}

func TestShapeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, NewShape(2, 3, 4).Strides())
	assert.Equal(t, []int{1}, NewShape(5).Strides())
}

func TestShapeTrimLeading(t *testing.T) {
	tests := []struct {
		in   Shape
		want Shape
	}{
		{Shape{1, 1, 3}, Shape{1, 3}},
		{Shape{1, 1, 1, 3}, Shape{1, 3}},
		{Shape{1, 3}, Shape{1, 3}},
		{Shape{3}, Shape{3}},
		{Shape{1, 2, 3}, Shape{2, 3}},
		{Shape{2, 1, 3}, Shape{2, 1, 3}},
		{Shape{1, 1, 1}, Shape{1, 1}},
	}
	for _, tt := range tests {
		assert.True(t, tt.in.trimLeading().Equal(tt.want), "%v -> %v", tt.in, tt.in.trimLeading())
	}
}

func TestShapeClone(t *testing.T) {
	s := NewShape(2, 3)
	c := s.Clone()
	c[0] = 9
	assert.Equal(t, 2, s[0])
}
