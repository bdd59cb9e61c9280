package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/w-h-a/librarian/speech"
)

const expressionPrompt = `Genera expresiones faciales para esta respuesta del agente: "%s"

Duración aproximada: %d segundos
Expresiones disponibles: %s

Reglas:
- Comenzar con 'neutral' en tiempo 0
- Elegir 1 o 2 expresiones apropiadas durante la respuesta
- Terminar con 'neutral'
- Tiempo en segundos, intensidad siempre 1

MANDATORIO: Responde únicamente el JSON en este formato:
{"expresiones": [
  {"expresion": "neutral", "tiempo": 0, "intensidad": 1},
  {"expresion": "happy", "tiempo": 1, "intensidad": 1},
  {"expresion": "blink", "tiempo": 2.5, "intensidad": 1},
  {"expresion": "neutral", "tiempo": 3, "intensidad": 1}
]}`

var Expressions = []string{
	"neutral", "blink", "happy", "angry", "sad", "relaxed",
	"lookUp", "lookDown", "lookLeft", "lookRight", "blinkLeft",
	"blinkRight", "blush", "surprised",
}

type expressionReply struct {
	Expresiones []speech.Expression `json:"expresiones"`
}

type llmExpressor struct {
	options speech.Options
	known   map[string]bool
}

// Expressions asks the model for a timeline. Without a model the avatar stays
// neutral; an unusable reply falls back to a blink.
func (e *llmExpressor) Expressions(ctx context.Context, text string) ([]speech.Expression, error) {
	if e.options.Generator == nil {
		return speech.NeutralExpressions(), nil
	}

	// roughly 20 characters a second
	duration := max(2, utf8.RuneCountInString(text)/20)

	reply, err := e.options.Generator.Generate(ctx, fmt.Sprintf(expressionPrompt, text, duration, strings.Join(Expressions, ", ")))
	if err != nil {
		slog.WarnContext(ctx, "failed to generate expressions", "error", err)
		return speech.BlinkExpressions(), nil
	}

	parsed, err := parseExpressions(reply)
	if err != nil {
		slog.WarnContext(ctx, "unusable expression reply", "error", err)
		return speech.BlinkExpressions(), nil
	}

	out := make([]speech.Expression, 0, len(parsed))
	for _, exp := range parsed {
		if !e.known[exp.Expresion] || exp.Tiempo < 0 {
			continue
		}
		if exp.Intensidad <= 0 {
			exp.Intensidad = 1
		}
		out = append(out, exp)
	}

	if len(out) == 0 {
		return speech.BlinkExpressions(), nil
	}

	return out, nil
}

// parseExpressions accepts the JSON object alone or wrapped in a code fence.
func parseExpressions(reply string) ([]speech.Expression, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no json object in reply")
	}

	var parsed expressionReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &parsed); err != nil {
		return nil, err
	}

	return parsed.Expresiones, nil
}

func NewExpressor(opts ...speech.Option) speech.Expressor {
	options := speech.NewOptions(opts...)

	known := make(map[string]bool, len(Expressions))
	for _, name := range Expressions {
		known[name] = true
	}

	return &llmExpressor{
		options: options,
		known:   known,
	}
}
