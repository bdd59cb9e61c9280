package main

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type askCmd struct {
	Question []string `arg:"" help:"The question, as you would say it."`
	Session  string   `help:"Optional fixed session identifier" default:""`

	StoreFlags     `embed:""`
	EmbedderFlags  `embed:""`
	GeneratorFlags `embed:""`
	RetrievalFlags `embed:""`
	AgentFlags     `embed:""`
}

func (c *askCmd) Run() error {
	ctx := context.Background()

	l, cleanup, err := newLibrarian(ctx, c.StoreFlags, c.EmbedderFlags, c.GeneratorFlags, c.RetrievalFlags, c.AgentFlags)
	if err != nil {
		return err
	}
	defer cleanup()

	start := time.Now()

	sessionId, answer, err := l.Ask(ctx, c.Session, strings.Join(c.Question, " "))
	if err != nil {
		return err
	}

	fmt.Printf("%s\n(session %s, %.2fs)\n", answer, sessionId, time.Since(start).Seconds())

	return nil
}
