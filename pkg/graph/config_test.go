package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("workers: 3\nqueue_depth: 16\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 16, cfg.QueueDepth)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("queue_depth: 8\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Workers, cfg.Workers)
	assert.Equal(t, 8, cfg.QueueDepth)
}

func TestParseConfigInvalid(t *testing.T) {
	_, err := ParseConfig([]byte("workers: [not a number\n"))
	assert.Error(t, err)
}

func TestConfigureRestartsPool(t *testing.T) {
	g := resetGraph(t)

	Configure(Config{Workers: 2, QueueDepth: 4})
	defer Configure(DefaultConfig())

	a := NewScalar(2)
	b := NewScalar(5)
	c, err := NewMul(a, b)
	require.NoError(t, err)
	require.NoError(t, g.Compute(nil, c))
	assert.Equal(t, []float32{10}, output(t, g, c).Values())
}
