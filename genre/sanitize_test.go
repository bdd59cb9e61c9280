package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "plain list",
			reply: "Fantasía juvenil, Aventura",
			want:  []string{"Fantasía juvenil", "Aventura"},
		},
		{
			name:  "label prefix and trailing period",
			reply: "Géneros: Realismo mágico, Novela.",
			want:  []string{"Realismo mágico", "Novela"},
		},
		{
			name:  "first non-empty line only",
			reply: "\n\n  Ciencia ficción, Distopía\nEspero que te sirva",
			want:  []string{"Ciencia ficción", "Distopía"},
		},
		{
			name:  "quotes and bullets",
			reply: `- "Terror", «Suspenso»`,
			want:  []string{"Terror", "Suspenso"},
		},
		{
			name:  "drops short, numeric and overlong tokens",
			reply: "Xy, 1984, Drama, " + "Una descripción demasiado larga para ser un género literario real",
			want:  []string{"Drama"},
		},
		{
			name:  "case-insensitive dedupe",
			reply: "Novela, NOVELA, novela histórica",
			want:  []string{"Novela", "novela histórica"},
		},
		{
			name:  "caps at five",
			reply: "Uno, Dos, Tres, Cuatro, Cinco, Seis",
			want:  []string{"Uno", "Dos", "Tres", "Cuatro", "Cinco"},
		},
		{
			name:  "empty",
			reply: "   ",
			want:  []string{},
		},
		{
			name:  "nothing survives",
			reply: "?, ..., 42",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.reply))
		})
	}
}
