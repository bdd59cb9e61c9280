package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

var (
	cli struct {
		LogLevel  string `help:"Log level" default:"info" enum:"debug,info,warn,error" env:"LIBRARIAN_LOG_LEVEL"`
		LogFormat string `help:"Log format" default:"text" enum:"text,json" env:"LIBRARIAN_LOG_FORMAT"`

		Serve  serveCmd  `cmd:"" help:"Serve the websocket, ask and tool endpoints."`
		Import importCmd `cmd:"" help:"Import the catalog CSV into the store."`
		Ask    askCmd    `cmd:"" help:"Ask the librarian one question from the shell."`
		Tools  toolsCmd  `cmd:"" help:"List the tools the agent can call."`
	}
)

func main() {
	// Parse inputs
	ctx := kong.Parse(
		&cli,
		kong.Name("librarian"),
		kong.Description("Voice librarian backend: catalog search, recommendations and avatar cues."),
		kong.UsageOnError(),
	)

	setupLogging(cli.LogLevel, cli.LogFormat)

	ctx.FatalIfErrorf(ctx.Run())
}

func setupLogging(level string, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
