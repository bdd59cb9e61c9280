package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTemperatureKeepsZero(t *testing.T) {
	assert.Nil(t, NewOptions().Temperature)

	options := NewOptions(WithTemperature(0))
	require.NotNil(t, options.Temperature)
	assert.Equal(t, float64(0), *options.Temperature)
}
