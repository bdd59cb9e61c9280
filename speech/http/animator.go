package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/w-h-a/librarian/conversation"
	"github.com/w-h-a/librarian/speech"
)

const animationPrompt = `Dado la siguiente respuesta de nuestro Agente y el contexto de conversación, selecciona la animación más apropiada.

Conversación:
%s
Respuesta actual del agente: "%s"

Animaciones disponibles:
%s

Mandatorio: Responde únicamente con el nombre de la animación (ejemplo: "hello", "idle", "v", etc.). Mandatorio: responder solo con el nombre exacto de la animación.
Si no hay una animación clara para el contexto, usa "idle".`

// historyTail is how many recent turns the animation prompt sees.
const historyTail = 3

type sequencesResponse struct {
	Sequences []speech.Sequence `json:"sequences"`
}

type httpAnimator struct {
	options speech.Options
	client  *client
}

// Animate never fails: every problem degrades to the idle sequence.
func (a *httpAnimator) Animate(ctx context.Context, text string, history []conversation.Turn) (speech.Animation, error) {
	name := a.choose(ctx, text, history)
	return a.retrieve(ctx, name), nil
}

func (a *httpAnimator) choose(ctx context.Context, text string, history []conversation.Turn) string {
	if a.options.Generator == nil {
		return speech.IdleSequence
	}

	var list sequencesResponse
	if _, err := a.client.getJSON(ctx, "/sequences", &list); err != nil {
		slog.WarnContext(ctx, "failed to list animation sequences", "error", err)
		return speech.IdleSequence
	}

	var menu strings.Builder
	available := map[string]bool{}
	for _, seq := range list.Sequences {
		available[seq.Name] = true
		menu.WriteString(fmt.Sprintf("- %s: %s\n", seq.Name, seq.Description))
	}

	var recent strings.Builder
	if len(history) > 0 {
		if len(history) > historyTail {
			history = history[len(history)-historyTail:]
		}
		recent.WriteString("Contexto de conversación reciente:\n")
		for _, t := range history {
			role := "Usuario"
			if t.Role == conversation.RoleAgent {
				role = "Agente"
			}
			recent.WriteString(fmt.Sprintf("- %s: %s\n", role, t.Text))
		}
	}

	reply, err := a.options.Generator.Generate(ctx, fmt.Sprintf(animationPrompt, recent.String(), text, menu.String()))
	if err != nil {
		slog.WarnContext(ctx, "failed to choose animation", "error", err)
		return speech.IdleSequence
	}

	chosen := strings.ToLower(strings.Trim(strings.TrimSpace(reply), `"'.`))
	if !available[chosen] {
		slog.DebugContext(ctx, "model chose an unknown animation", "animation", chosen)
		return speech.IdleSequence
	}

	return chosen
}

func (a *httpAnimator) retrieve(ctx context.Context, name string) speech.Animation {
	var anim speech.Animation

	_, err := a.client.getJSON(ctx, "/sequence/"+url.PathEscape(name), &anim)
	if err == nil {
		return anim
	}

	slog.WarnContext(ctx, "failed to retrieve animation", "animation", name, "error", err)

	if name != speech.IdleSequence {
		anim = nil
		if _, err := a.client.getJSON(ctx, "/sequence/"+speech.IdleSequence, &anim); err == nil {
			return anim
		}
	}

	return speech.IdleAnimation(a.client.baseURL)
}

func NewAnimator(opts ...speech.Option) speech.Animator {
	options := speech.NewOptions(opts...)

	if len(options.BaseURL) == 0 {
		detail := "animation service url is required"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	return &httpAnimator{
		options: options,
		client:  newClient(options.BaseURL, options.Timeout),
	}
}
