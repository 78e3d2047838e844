package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZero(t *testing.T) {
	s, err := New(Zero, 0)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0.0, s.Get())
	}
}

func TestConstant(t *testing.T) {
	s, err := New(Constant, 3.5)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 3.5, s.Get())
	}
}

func TestUniformBounds(t *testing.T) {
	s, err := New(Uniform, 2.0)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		v := s.Get()
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestNormalIsNotConstant(t *testing.T) {
	s, err := New(Normal, 4.0)
	require.NoError(t, err)
	seen := map[float64]bool{}
	for i := 0; i < 50; i++ {
		seen[s.Get()] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestUnknownKind(t *testing.T) {
	_, err := New(Kind(99), 0)
	assert.Error(t, err)
}
