package getsafe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	payload := map[string]any{"title": "Cien años de soledad", "n": 3}

	assert.Equal(t, "Cien años de soledad", String(payload, "title"))
	assert.Equal(t, "", String(payload, "n"))
	assert.Equal(t, "", String(payload, "missing"))
	assert.Equal(t, "", String(nil, "title"))
}

func TestInt(t *testing.T) {
	payload := map[string]any{
		"float":  float64(4),
		"int":    2,
		"string": " 5 ",
		"bad":    "cinco",
	}

	assert.Equal(t, 4, Int(payload, "float", 3))
	assert.Equal(t, 2, Int(payload, "int", 3))
	assert.Equal(t, 5, Int(payload, "string", 3))
	assert.Equal(t, 3, Int(payload, "bad", 3))
	assert.Equal(t, 3, Int(payload, "missing", 3))
}

func TestMetadata(t *testing.T) {
	payload := map[string]any{"metadata": map[string]any{"a": "b"}, "other": "x"}

	assert.Equal(t, map[string]any{"a": "b"}, Metadata(payload, "metadata"))
	assert.Nil(t, Metadata(payload, "other"))
}
