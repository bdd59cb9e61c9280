package agent

import (
	"fmt"
	"strings"
	"sync"

	"github.com/w-h-a/librarian/generator"
	toolhandler "github.com/w-h-a/librarian/tool_handler"
)

type ToolCatalog struct {
	tools map[string]toolhandler.ToolHandler
	specs map[string]toolhandler.ToolSpec
	order []string
	mtx   sync.RWMutex
}

func (c *ToolCatalog) Register(th toolhandler.ToolHandler) error {
	if th == nil {
		return fmt.Errorf("tool is nil")
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	spec := th.Spec()
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if len(key) == 0 {
		return fmt.Errorf("tool name is required")
	}

	if _, ok := c.tools[key]; ok {
		return fmt.Errorf("tool %s already registered", key)
	}

	c.tools[key] = th
	c.specs[key] = spec
	c.order = append(c.order, key)

	return nil
}

func (c *ToolCatalog) ListSpecs() []toolhandler.ToolSpec {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	specs := make([]toolhandler.ToolSpec, 0, len(c.specs))
	for _, key := range c.order {
		specs = append(specs, c.specs[key])
	}

	return specs
}

func (c *ToolCatalog) Get(name string) (toolhandler.ToolHandler, toolhandler.ToolSpec, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	th, ok := c.tools[key]

	return th, c.specs[key], ok
}

// Tools is the menu offered to a tool-calling model.
func (c *ToolCatalog) Tools() []generator.Tool {
	specs := c.ListSpecs()

	tools := make([]generator.Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, generator.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.InputSchema,
		})
	}

	return tools
}

// Menu renders "- name: description" lines for the system prompt.
func (c *ToolCatalog) Menu() string {
	var sb strings.Builder
	for _, spec := range c.ListSpecs() {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", spec.Name, spec.Description))
	}
	return sb.String()
}

func NewToolCatalog() *ToolCatalog {
	return &ToolCatalog{
		tools: map[string]toolhandler.ToolHandler{},
		specs: map[string]toolhandler.ToolSpec{},
		order: []string{},
		mtx:   sync.RWMutex{},
	}
}
