package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/librarian/generator"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	fullPrompt := prompt
	if len(g.options.PromptPrefix) > 0 {
		fullPrompt = g.options.PromptPrefix + "\n" + prompt
	}

	reply, err := g.Call(ctx, "", []generator.Message{generator.UserMessage(fullPrompt)}, nil)
	if err != nil {
		return "", err
	}

	if len(reply.Text) == 0 {
		return "", errors.New("no response from Anthropic")
	}

	return reply.Text, nil
}

func (g *anthropicGenerator) Call(ctx context.Context, system string, messages []generator.Message, tools []generator.Tool) (generator.Reply, error) {
	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.options.Model),
		MaxTokens: int64(g.options.MaxTokens),
		Messages:  convertMessages(messages),
	}

	if len(system) > 0 {
		req.System = []anthropic.TextBlockParam{{Text: system}}
	}

	if len(tools) > 0 {
		req.Tools = convertTools(tools)
	}

	if t := g.options.Temperature; t != nil {
		req.Temperature = anthropic.Float(*t)
	}

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return generator.Reply{}, err
	}

	var reply generator.Reply
	var b strings.Builder

	for _, block := range rsp.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			b.WriteString(content.Text)
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			if raw, err := content.Input.MarshalJSON(); err == nil && len(raw) > 0 {
				if err := json.Unmarshal(raw, &args); err != nil {
					args = map[string]any{}
				}
			}
			reply.ToolCalls = append(reply.ToolCalls, generator.ToolCall{
				Id:        content.ID,
				Name:      content.Name,
				Arguments: args,
			})
		}
	}

	reply.Text = b.String()

	return reply, nil
}

// convertMessages folds tool results into user turns. Consecutive user-side
// blocks share one message so every tool_result directly follows its tool_use.
func convertMessages(messages []generator.Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(messages))

	appendUser := func(block anthropic.ContentBlockParamUnion) {
		if n := len(result); n > 0 && result[n-1].Role == anthropic.MessageParamRoleUser {
			result[n-1].Content = append(result[n-1].Content, block)
			return
		}
		result = append(result, anthropic.NewUserMessage(block))
	}

	for _, msg := range messages {
		switch msg.Role {
		case generator.RoleUser:
			appendUser(anthropic.NewTextBlock(msg.Content))
		case generator.RoleTool:
			appendUser(anthropic.NewToolResultBlock(msg.ToolCallId, msg.Content, false))
		case generator.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolCalls)+1)
			if len(msg.Content) > 0 {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				args := tc.Arguments
				if args == nil {
					args = map[string]any{}
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    tc.Id,
						Name:  tc.Name,
						Input: args,
					},
				})
			}
			if len(blocks) == 0 {
				continue
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))
		}
	}

	return result
}

func convertTools(tools []generator.Tool) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		result = append(result, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Type:       "object",
					Properties: tool.Parameters["properties"],
					Required:   requiredFields(tool.Parameters),
				},
			},
		})
	}
	return result
}

func requiredFields(params map[string]any) []string {
	switch req := params["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func NewGenerator(opts ...generator.Option) *anthropicGenerator {
	options := generator.NewOptions(opts...)

	g := &anthropicGenerator{
		options: options,
	}

	clientOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(options.ApiKey),
		anthropicopt.WithHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
	}

	if len(options.BaseURL) > 0 {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(options.BaseURL))
	}

	client := anthropic.NewClient(clientOpts...)

	g.client = &client

	return g
}
