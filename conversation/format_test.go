package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	turns := []Turn{
		{Role: RoleHuman, Text: "¿tienes Cien años de soledad?"},
		{Role: RoleAgent, Text: "Sí, está disponible"},
	}

	assert.Equal(t, "Usuario: ¿tienes Cien años de soledad?\nAgente: Sí, está disponible", Format(turns))
	assert.Equal(t, "", Format(nil))
}
