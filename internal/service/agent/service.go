package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/w-h-a/librarian/conversation"
	"github.com/w-h-a/librarian/generator"
	toolhandler "github.com/w-h-a/librarian/tool_handler"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrUnknownTool       = errors.New("unknown tool")
	ErrIllegalTransition = errors.New("illegal stage transition")
)

const (
	defaultHistoryWindow = 3 * time.Minute
)

type toolResult struct {
	name        string
	content     string
	unavailable bool
	unknown     bool
}

func (r toolResult) empty() bool {
	if r.unavailable || r.unknown {
		return true
	}
	content := strings.TrimSpace(r.content)
	return len(content) == 0 || content == "null" || content == "[]"
}

// turn is the state threaded through the stages of one user message.
type turn struct {
	sessionId string
	input     string
	stage     Stage
	system    string
	messages  []generator.Message
	results   []toolResult
	answer    string
}

type Service struct {
	caller    generator.ToolCaller
	formatter generator.Generator
	history   conversation.History
	catalog   *ToolCatalog
	window    time.Duration
	tracer    trace.Tracer
}

func (s *Service) Catalog() *ToolCatalog {
	return s.catalog
}

// Respond runs one user message through the control loop and returns the
// text to speak.
func (s *Service) Respond(ctx context.Context, sessionId string, userInput string) (string, error) {
	userInput = strings.TrimSpace(userInput)
	if len(userInput) == 0 {
		return "", errors.New("user input is required")
	}

	ctx, span := s.tracer.Start(ctx, "agent.Respond", trace.WithAttributes(
		attribute.String("session.id", sessionId),
	))
	defer span.End()

	if strings.HasPrefix(strings.ToLower(userInput), commandPrefix) {
		return s.handleCommand(ctx, sessionId, userInput)
	}

	t := &turn{
		sessionId: sessionId,
		input:     userInput,
		stage:     StageStart,
	}

	for t.stage != StageEnd {
		next, err := s.step(ctx, t)
		if err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("%s: %w", t.stage, err)
		}

		if !t.stage.CanTransition(next) {
			return "", fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, t.stage, next)
		}

		slog.DebugContext(ctx, "agent stage", "session", sessionId, "from", t.stage, "to", next)

		t.stage = next
	}

	s.remember(ctx, t)

	return t.answer, nil
}

func (s *Service) step(ctx context.Context, t *turn) (Stage, error) {
	ctx, span := s.tracer.Start(ctx, "agent."+string(t.stage))
	defer span.End()

	switch t.stage {
	case StageStart:
		return s.start(ctx, t)
	case StagePlanAndSearch:
		return s.planAndSearch(ctx, t)
	case StageExecuteSearch:
		if err := s.executeTools(ctx, t); err != nil {
			return "", err
		}
		return StageCheckResults, nil
	case StageCheckResults:
		return s.checkResults(ctx, t)
	case StageExecuteRecommend:
		if err := s.executeTools(ctx, t); err != nil {
			return "", err
		}
		return StageFormat, nil
	case StageFormat:
		return s.format(ctx, t)
	}

	return "", fmt.Errorf("%w: no handler for stage %s", ErrIllegalTransition, t.stage)
}

func (s *Service) start(ctx context.Context, t *turn) (Stage, error) {
	history := noHistory

	if s.history != nil {
		turns, err := s.history.Recent(ctx, t.sessionId, s.window)
		if err != nil {
			slog.WarnContext(ctx, "failed to load conversation history", "session", t.sessionId, "error", err)
		} else if len(turns) > 0 {
			history = historyHeader + conversation.Format(turns)
		}
	}

	t.system = fmt.Sprintf(systemPrompt, history, s.catalog.Menu())
	t.messages = []generator.Message{generator.UserMessage(t.input)}

	return StagePlanAndSearch, nil
}

func (s *Service) planAndSearch(ctx context.Context, t *turn) (Stage, error) {
	reply, err := s.call(ctx, t, fmt.Sprintf(planPrompt, t.input))
	if err != nil {
		return "", err
	}

	if len(reply.ToolCalls) > 0 {
		return StageExecuteSearch, nil
	}

	return StageCheckResults, nil
}

// checkResults re-prompts for a recommendation when the latest search came
// back empty. An unreachable catalog is not worth a second search.
func (s *Service) checkResults(ctx context.Context, t *turn) (Stage, error) {
	if len(t.results) == 0 {
		return StageFormat, nil
	}

	last := t.results[len(t.results)-1]
	if !last.empty() || last.unavailable {
		return StageFormat, nil
	}

	prompt := fmt.Sprintf(recommendBookPrompt, t.input)
	if isAuthorQuery(t.input) {
		prompt = fmt.Sprintf(recommendAuthorPrompt, t.input)
	}

	slog.InfoContext(ctx, "search came back empty, asking for a recommendation", "session", t.sessionId, "tool", last.name)

	reply, err := s.call(ctx, t, prompt)
	if err != nil {
		return "", err
	}

	if len(reply.ToolCalls) > 0 {
		return StageExecuteRecommend, nil
	}

	return StageFormat, nil
}

func (s *Service) format(ctx context.Context, t *turn) (Stage, error) {
	if len(t.results) == 0 {
		t.answer = notFoundReply
		return StageEnd, nil
	}

	allUnavailable := true
	for _, r := range t.results {
		if !r.unavailable {
			allUnavailable = false
			break
		}
	}

	if allUnavailable {
		t.answer = unavailableReply
		return StageEnd, nil
	}

	var summary strings.Builder
	for i, r := range t.results {
		if i > 0 {
			summary.WriteString("\n")
		}
		summary.WriteString("Resultado: ")
		summary.WriteString(r.content)
	}

	answer, err := s.formatter.Generate(ctx, fmt.Sprintf(formatPrompt, humanizePrompt, summary.String(), t.input))
	if err != nil {
		return "", err
	}

	t.answer = strings.TrimSpace(answer)

	return StageEnd, nil
}

// call sends the conversation plus a one-off instruction and keeps only the
// model's reply in the running conversation.
func (s *Service) call(ctx context.Context, t *turn, instruction string) (generator.Reply, error) {
	messages := make([]generator.Message, 0, len(t.messages)+1)
	messages = append(messages, t.messages...)
	messages = append(messages, generator.UserMessage(instruction))

	reply, err := s.caller.Call(ctx, t.system, messages, s.catalog.Tools())
	if err != nil {
		return generator.Reply{}, err
	}

	for i := range reply.ToolCalls {
		if len(reply.ToolCalls[i].Id) == 0 {
			reply.ToolCalls[i].Id = fmt.Sprintf("call_%d_%d", len(t.messages), i)
		}
	}

	t.messages = append(t.messages, generator.AssistantMessage(reply))

	return reply, nil
}

// executeTools runs every tool call of the latest assistant message. Names
// outside the catalog are answered with an "unknown tool" result.
func (s *Service) executeTools(ctx context.Context, t *turn) error {
	last := t.messages[len(t.messages)-1]

	for _, tc := range last.ToolCalls {
		th, spec, ok := s.catalog.Get(tc.Name)
		if !ok {
			slog.WarnContext(ctx, "model called unknown tool", "session", t.sessionId, "tool", tc.Name, "error", ErrUnknownTool)
			t.messages = append(t.messages, generator.ToolMessage(tc.Id, unknownToolReply))
			t.results = append(t.results, toolResult{name: tc.Name, content: unknownToolReply, unknown: true})
			continue
		}

		slog.InfoContext(ctx, "invoking tool", "session", t.sessionId, "tool", spec.Name, "arguments", tc.Arguments)

		args := tc.Arguments
		if args == nil {
			args = map[string]any{}
		}

		rsp, err := th.Invoke(ctx, toolhandler.ToolRequest{
			SessionId: t.sessionId,
			Arguments: args,
		})
		if err != nil {
			return fmt.Errorf("tool %s: %w", spec.Name, err)
		}

		t.messages = append(t.messages, generator.ToolMessage(tc.Id, rsp.Content))
		t.results = append(t.results, toolResult{
			name:        spec.Name,
			content:     rsp.Content,
			unavailable: rsp.Unavailable(),
		})
	}

	return nil
}

func (s *Service) remember(ctx context.Context, t *turn) {
	if s.history == nil {
		return
	}

	if err := s.history.Append(ctx, t.sessionId, conversation.RoleHuman, t.input); err != nil {
		slog.WarnContext(ctx, "failed to store human turn", "session", t.sessionId, "error", err)
		return
	}

	if err := s.history.Append(ctx, t.sessionId, conversation.RoleAgent, t.answer); err != nil {
		slog.WarnContext(ctx, "failed to store agent turn", "session", t.sessionId, "error", err)
	}
}

// handleCommand runs "tool:<name> <json arguments>" directly, bypassing the
// model. Useful for checking the catalog from a shell.
func (s *Service) handleCommand(ctx context.Context, sessionId string, input string) (string, error) {
	payload := strings.TrimSpace(input[len(commandPrefix):])
	if len(payload) == 0 {
		return "", errors.New("tool name is missing")
	}

	name, args := splitCommand(payload)

	th, _, ok := s.catalog.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	rsp, err := th.Invoke(ctx, toolhandler.ToolRequest{
		SessionId: sessionId,
		Arguments: parseToolArguments(args),
	})
	if err != nil {
		return "", err
	}

	return rsp.Content, nil
}

func isAuthorQuery(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range authorKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func New(
	caller generator.ToolCaller,
	formatter generator.Generator,
	history conversation.History,
	toolHandlers []toolhandler.ToolHandler,
	window time.Duration,
) *Service {
	catalog := NewToolCatalog()

	for _, th := range toolHandlers {
		if th == nil {
			continue
		}
		if err := catalog.Register(th); err != nil {
			slog.WarnContext(context.Background(), "skipping tool", "error", err)
			continue
		}
	}

	if window <= 0 {
		window = defaultHistoryWindow
	}

	return &Service{
		caller:    caller,
		formatter: formatter,
		history:   history,
		catalog:   catalog,
		window:    window,
		tracer:    otel.Tracer("github.com/w-h-a/librarian/internal/service/agent"),
	}
}
