package openai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/librarian/generator"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	fullPrompt := prompt
	if len(g.options.PromptPrefix) > 0 {
		fullPrompt = g.options.PromptPrefix + "\n" + prompt
	}

	reply, err := g.Call(ctx, "", []generator.Message{generator.UserMessage(fullPrompt)}, nil)
	if err != nil {
		return "", err
	}

	if len(reply.Text) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return reply.Text, nil
}

func (g *openAIGenerator) Call(ctx context.Context, system string, messages []generator.Message, tools []generator.Tool) (generator.Reply, error) {
	req := openai.ChatCompletionRequest{
		Model:     g.options.Model,
		MaxTokens: g.options.MaxTokens,
		Messages:  convertMessages(system, messages),
	}

	if len(tools) > 0 {
		req.Tools = convertTools(tools)
	}

	if t := g.options.Temperature; t != nil {
		req.Temperature = temperature(*t)
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return generator.Reply{}, err
	}

	if len(rsp.Choices) == 0 {
		return generator.Reply{}, errors.New("no response from OpenAI")
	}

	msg := rsp.Choices[0].Message

	reply := generator.Reply{
		Text: msg.Content,
	}

	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if len(tc.Function.Arguments) > 0 {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				args = map[string]any{}
			}
		}
		reply.ToolCalls = append(reply.ToolCalls, generator.ToolCall{
			Id:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	return reply, nil
}

func convertMessages(system string, messages []generator.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages)+1)

	if len(system) > 0 {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, msg := range messages {
		switch msg.Role {
		case generator.RoleUser:
			result = append(result, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Content,
			})
		case generator.RoleTool:
			result = append(result, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    msg.Content,
				ToolCallID: msg.ToolCallId,
			})
		case generator.RoleAssistant:
			out := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Content,
			}
			for _, tc := range msg.ToolCalls {
				args, err := json.Marshal(tc.Arguments)
				if err != nil {
					args = []byte("{}")
				}
				out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
					ID:   tc.Id,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			result = append(result, out)
		}
	}

	return result
}

// temperature maps t onto the request field. The field is omitempty, so an
// explicit zero is sent as the smallest positive float32.
func temperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func convertTools(tools []generator.Tool) []openai.Tool {
	result := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		result = append(result, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return result
}

func NewGenerator(opts ...generator.Option) *openAIGenerator {
	options := generator.NewOptions(opts...)

	g := &openAIGenerator{
		options: options,
	}

	config := openai.DefaultConfig(options.ApiKey)
	config.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	if len(options.BaseURL) > 0 {
		config.BaseURL = options.BaseURL
	}

	g.client = openai.NewClientWithConfig(config)

	return g
}
