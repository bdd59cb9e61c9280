package generator

import "context"

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ToolCaller is a chat model that may answer with tool calls instead of, or
// alongside, text.
type ToolCaller interface {
	Call(ctx context.Context, system string, messages []Message, tools []Tool) (Reply, error)
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallId string
}

type ToolCall struct {
	Id        string
	Name      string
	Arguments map[string]any
}

type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type Reply struct {
	Text      string
	ToolCalls []ToolCall
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(reply Reply) Message {
	return Message{Role: RoleAssistant, Content: reply.Text, ToolCalls: reply.ToolCalls}
}

func ToolMessage(callId string, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallId: callId}
}
