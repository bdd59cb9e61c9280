package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

type toolsCmd struct {
	JSON bool `help:"Print full specs as JSON"`

	StoreFlags     `embed:""`
	EmbedderFlags  `embed:""`
	GeneratorFlags `embed:""`
	RetrievalFlags `embed:""`
	AgentFlags     `embed:""`
}

func (c *toolsCmd) Run() error {
	ctx := context.Background()

	l, cleanup, err := newLibrarian(ctx, c.StoreFlags, c.EmbedderFlags, c.GeneratorFlags, c.RetrievalFlags, c.AgentFlags)
	if err != nil {
		return err
	}
	defer cleanup()

	specs := l.Tools().ListSpecs()

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(specs)
	}

	for _, spec := range specs {
		fmt.Printf("%-28s %s\n", spec.Name, spec.Description)
	}

	return nil
}
