package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	handlerhttp "github.com/w-h-a/librarian/internal/handler/http"
	"github.com/w-h-a/librarian/internal/handler/ws"
	"github.com/w-h-a/librarian/server"
	serverhttp "github.com/w-h-a/librarian/server/http"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type serveCmd struct {
	Address string `help:"Listen address" default:":8765" env:"LIBRARIAN_ADDRESS"`

	StoreFlags     `embed:""`
	EmbedderFlags  `embed:""`
	GeneratorFlags `embed:""`
	RetrievalFlags `embed:""`
	AgentFlags     `embed:""`
	SpeechFlags    `embed:""`
}

func (c *serveCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, cleanup, err := newLibrarian(ctx, c.StoreFlags, c.EmbedderFlags, c.GeneratorFlags, c.RetrievalFlags, c.AgentFlags)
	if err != nil {
		return err
	}
	defer cleanup()

	performer := newPerformer(c.SpeechFlags)

	srv := serverhttp.NewServer(
		server.WithAddress(c.Address),
		serverhttp.WithMiddleware(func(h http.Handler) http.Handler {
			return otelhttp.NewHandler(h, "librarian")
		}),
	)

	srv.Handle("/ws", http.HandlerFunc(ws.NewHandler(l, l, performer, c.Acknowledge).Handle), http.MethodGet)
	srv.Handle("/v1/ask", http.HandlerFunc(handlerhttp.NewAskHandler(l).Handle), http.MethodPost)
	srv.Handle("/v1/tools", http.HandlerFunc(handlerhttp.NewToolsHandler(l.Tools()).Handle), http.MethodPost)
	srv.Handle("/health", http.HandlerFunc(handlerhttp.NewHealthHandler("librarian").Handle), http.MethodGet)

	return srv.Run(ctx)
}
