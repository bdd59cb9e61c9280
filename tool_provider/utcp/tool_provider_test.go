package utcp

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalName(t *testing.T) {
	assert.Equal(t, "sucursal_search_book_by_title", localName("sucursal.search_book_by_title"))
	assert.Equal(t, "horario-tienda", localName("horario-tienda"))
	assert.Equal(t, "a_b", localName("a: b"))
}

func TestProvidersNamesByHostAndPort(t *testing.T) {
	list, err := providers([]string{
		"http://centro:8765/v1/tools",
		"http://centro:9000/v1/tools",
		"http://centro:8765/v2/tools",
	})
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "centro_8765", list[0].Name)
	assert.Equal(t, "centro_9000", list[1].Name)
	assert.Equal(t, "centro_8765_2", list[2].Name)

	for _, p := range list {
		assert.Equal(t, "http", p.Type)
		assert.Equal(t, "POST", p.Method)
	}
}

func TestProvidersRejectsHostlessAddress(t *testing.T) {
	_, err := providers([]string{"/v1/tools"})
	assert.Error(t, err)
}

func TestWriteProvidersFile(t *testing.T) {
	path, err := writeProvidersFile([]string{"http://centro:8765/v1/tools"})
	require.NoError(t, err)
	defer os.Remove(path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg struct {
		Providers []httpProvider `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(raw, &cfg))
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "http://centro:8765/v1/tools", cfg.Providers[0].URL)
}
