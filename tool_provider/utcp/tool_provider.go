package utcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"

	goutcp "github.com/universal-tool-calling-protocol/go-utcp"
	toolhandler "github.com/w-h-a/librarian/tool_handler"
	"github.com/w-h-a/librarian/tool_handler/utcp"
	toolprovider "github.com/w-h-a/librarian/tool_provider"
)

// model tool names allow letters, digits, '_' and '-' only
var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

type httpProvider struct {
	Type    string            `json:"provider_type"`
	Name    string            `json:"name"`
	URL     string            `json:"url"`
	Method  string            `json:"http_method"`
	Headers map[string]string `json:"headers"`
}

type utcpToolProvider struct {
	options toolprovider.Options
	client  goutcp.UtcpClientInterface
}

// Load discovers the remote tools matching query and wraps each one as a
// local tool handler under a model-safe name.
func (tp *utcpToolProvider) Load(ctx context.Context, query string, limit int) ([]toolhandler.ToolHandler, error) {
	remote, err := tp.client.SearchTools(query, limit)
	if err != nil {
		return nil, fmt.Errorf("utcp discovery failed: %w", err)
	}

	handlers := make([]toolhandler.ToolHandler, 0, len(remote))
	seen := map[string]bool{}

	for _, tool := range remote {
		name := localName(tool.Name)
		if len(name) == 0 || seen[name] {
			slog.WarnContext(ctx, "skipping remote tool", "tool", tool.Name)
			continue
		}
		seen[name] = true

		handlers = append(handlers, utcp.NewToolHandler(
			utcp.WithCaller(tp.client),
			utcp.WithRemoteName(tool.Name),
			utcp.WithToolSpec(toolhandler.ToolSpec{
				Name:        name,
				Description: tool.Description,
				InputSchema: map[string]any{
					"type":       "object",
					"properties": tool.Inputs.Properties,
				},
			}),
		))
	}

	return handlers, nil
}

func localName(remote string) string {
	return unsafeName.ReplaceAllString(remote, "_")
}

// providers describes every address as a POST endpoint. Providers are named
// after host and port, so two services on one host stay apart.
func providers(addrs []string) ([]httpProvider, error) {
	out := make([]httpProvider, 0, len(addrs))
	names := map[string]int{}

	for _, addr := range addrs {
		parsed, err := url.Parse(addr)
		if err != nil {
			return nil, err
		}
		if len(parsed.Host) == 0 {
			return nil, fmt.Errorf("tool address %q has no host", addr)
		}

		name := localName(parsed.Host)
		names[name]++
		if n := names[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}

		out = append(out, httpProvider{
			Type:   "http",
			Name:   name,
			URL:    addr,
			Method: "POST",
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
		})
	}

	return out, nil
}

func writeProvidersFile(addrs []string) (string, error) {
	list, err := providers(addrs)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "librarian_utcp_*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(map[string]any{"providers": list}); err != nil {
		return "", err
	}

	return f.Name(), nil
}

func NewToolProvider(opts ...toolprovider.Option) toolprovider.ToolProvider {
	options := toolprovider.NewOptions(opts...)

	tp := &utcpToolProvider{
		options: options,
	}

	var configPath string

	if len(options.Addrs) > 0 {
		path, err := writeProvidersFile(options.Addrs)
		if err != nil {
			detail := "failed to write utcp provider config"
			slog.ErrorContext(context.Background(), detail, "error", err)
			panic(detail)
		}
		configPath = path
		defer os.Remove(path)
	}

	client, err := goutcp.NewUTCPClient(
		options.Context,
		&goutcp.UtcpClientConfig{
			ProvidersFilePath: configPath,
		},
		nil,
		nil,
	)
	if err != nil {
		detail := "failed to create utcp client"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	tp.client = client

	return tp
}
