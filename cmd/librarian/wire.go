package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/w-h-a/librarian"
	"github.com/w-h-a/librarian/catalog"
	catalogmemory "github.com/w-h-a/librarian/catalog/memory"
	catalogpostgres "github.com/w-h-a/librarian/catalog/postgres"
	catalogsqlite "github.com/w-h-a/librarian/catalog/sqlite"
	"github.com/w-h-a/librarian/conversation"
	historymemory "github.com/w-h-a/librarian/conversation/memory"
	historypostgres "github.com/w-h-a/librarian/conversation/postgres"
	historysqlite "github.com/w-h-a/librarian/conversation/sqlite"
	"github.com/w-h-a/librarian/embedder"
	embeddercache "github.com/w-h-a/librarian/embedder/cache"
	embeddergoogle "github.com/w-h-a/librarian/embedder/google"
	"github.com/w-h-a/librarian/embedder/hash"
	"github.com/w-h-a/librarian/embedder/hugot"
	embedderopenai "github.com/w-h-a/librarian/embedder/openai"
	"github.com/w-h-a/librarian/generator"
	"github.com/w-h-a/librarian/generator/anthropic"
	generatorgoogle "github.com/w-h-a/librarian/generator/google"
	generatoropenai "github.com/w-h-a/librarian/generator/openai"
	"github.com/w-h-a/librarian/genre"
	genrecache "github.com/w-h-a/librarian/genre/cache"
	"github.com/w-h-a/librarian/genre/llm"
	speechsvc "github.com/w-h-a/librarian/internal/service/speech"
	"github.com/w-h-a/librarian/retrieval"
	"github.com/w-h-a/librarian/speech"
	speechhttp "github.com/w-h-a/librarian/speech/http"
	speechllm "github.com/w-h-a/librarian/speech/llm"
	toolhandler "github.com/w-h-a/librarian/tool_handler"
	"github.com/w-h-a/librarian/tool_handler/books"
	toolprovider "github.com/w-h-a/librarian/tool_provider"
	"github.com/w-h-a/librarian/tool_provider/utcp"
)

// remoteToolLimit caps how many tools are pulled from UTCP servers.
const remoteToolLimit = 16

func newCatalog(f StoreFlags) catalog.Catalog {
	opts := []catalog.Option{
		catalog.WithLocation(f.CatalogLocation),
		catalog.WithMaxConns(f.MaxConns),
	}

	switch f.CatalogDriver {
	case "postgres":
		return catalogpostgres.NewCatalog(opts...)
	case "memory":
		return catalogmemory.NewCatalog(opts...)
	default:
		return catalogsqlite.NewCatalog(opts...)
	}
}

func newHistory(f StoreFlags) conversation.History {
	opts := []conversation.Option{
		conversation.WithLocation(f.CatalogLocation),
		conversation.WithMaxConns(f.MaxConns),
	}

	switch f.CatalogDriver {
	case "postgres":
		return historypostgres.NewHistory(opts...)
	case "memory":
		return historymemory.NewHistory(opts...)
	default:
		return historysqlite.NewHistory(opts...)
	}
}

// newEmbedder builds the configured provider behind a query cache and forces
// the model load so a broken install fails at startup.
func newEmbedder(ctx context.Context, f EmbedderFlags) (embedder.Embedder, error) {
	opts := []embedder.Option{
		embedder.WithApiKey(f.EmbedderApiKey),
		embedder.WithDimension(f.EmbedderDimension),
	}
	if len(f.EmbedderModel) > 0 {
		opts = append(opts, embedder.WithModel(f.EmbedderModel))
	}

	var base embedder.Embedder

	switch f.Embedder {
	case "openai":
		if len(f.EmbedderModel) == 0 {
			opts = append(opts, embedder.WithModel("text-embedding-3-small"))
		}
		base = embedderopenai.NewEmbedder(opts...)
	case "google":
		if len(f.EmbedderModel) == 0 {
			opts = append(opts, embedder.WithModel("text-embedding-004"))
		}
		base = embeddergoogle.NewEmbedder(opts...)
	case "hash":
		base = hash.NewEmbedder(opts...)
	default:
		if len(f.ModelDir) > 0 {
			opts = append(opts, hugot.WithCacheDir(f.ModelDir))
		}
		if len(f.OrtLibrary) > 0 {
			opts = append(opts, hugot.WithOrtLibraryPath(f.OrtLibrary))
		}
		base = hugot.NewEmbedder(opts...)
	}

	emb := embeddercache.NewEmbedder(
		embeddercache.WithEmbedder(base),
		embeddercache.WithSize(f.EmbedderCacheSize),
	)

	if loader, ok := emb.(embedder.Loader); ok {
		start := time.Now()
		if err := loader.EnsureModel(ctx); err != nil {
			return nil, fmt.Errorf("load embedding model: %w", err)
		}
		slog.InfoContext(ctx, "embedding model ready", "provider", f.Embedder, "elapsed", time.Since(start))
	}

	return emb, nil
}

func newCaller(f GeneratorFlags) (generator.ToolCaller, generator.Generator) {
	opts := []generator.Option{
		generator.WithApiKey(f.APIKey),
		generator.WithModel(f.Model),
		generator.WithMaxTokens(f.MaxTokens),
	}
	if len(f.BaseURL) > 0 {
		opts = append(opts, generator.WithBaseURL(f.BaseURL))
	}

	switch f.Provider {
	case "openai":
		g := generatoropenai.NewGenerator(opts...)
		return g, g
	default:
		g := anthropic.NewGenerator(opts...)
		return g, g
	}
}

func newInferrer(f GeneratorFlags) genre.Inferrer {
	if f.GenreProvider == "none" {
		return nil
	}

	apiKey := f.GenreAPIKey
	if len(apiKey) == 0 {
		apiKey = f.APIKey
	}

	model := f.GenreModel
	if len(model) == 0 {
		model = f.Model
	}

	opts := []generator.Option{
		generator.WithApiKey(apiKey),
		generator.WithModel(model),
		generator.WithMaxTokens(64),
		generator.WithTemperature(0),
	}

	var g generator.Generator
	switch f.GenreProvider {
	case "openai":
		g = generatoropenai.NewGenerator(opts...)
	case "google":
		g = generatorgoogle.NewGenerator(opts...)
	default:
		g = anthropic.NewGenerator(opts...)
	}

	return genrecache.NewInferrer(
		genrecache.WithInferrer(llm.NewInferrer(llm.WithGenerator(g))),
		genrecache.WithTTL(f.GenreTTL),
	)
}

func newEngine(cat catalog.Catalog, emb embedder.Embedder, gf GeneratorFlags, rf RetrievalFlags) *retrieval.Engine {
	opts := []retrieval.Option{
		retrieval.WithOverFetch(rf.OverFetch),
		retrieval.WithTimeout(rf.SearchTimeout),
		retrieval.WithReferenceDistance(rf.ReferenceDistance),
	}

	if inf := newInferrer(gf); inf != nil {
		opts = append(opts, retrieval.WithInferrer(inf))
	}

	return retrieval.NewEngine(cat, emb, opts...)
}

// newToolHandlers returns the catalog tools followed by any remote UTCP tools.
func newToolHandlers(ctx context.Context, engine *retrieval.Engine, rf RetrievalFlags, af AgentFlags) []toolhandler.ToolHandler {
	handlers := books.NewToolHandlers(
		books.WithEngine(engine),
		books.WithLimit(rf.Limit),
	)

	if len(af.ToolAddrs) == 0 {
		return handlers
	}

	provider := utcp.NewToolProvider(
		toolprovider.WithAddrs(af.ToolAddrs...),
	)

	remote, err := provider.Load(ctx, "", remoteToolLimit)
	if err != nil {
		slog.WarnContext(ctx, "failed to load remote tools", "error", err)
		return handlers
	}

	slog.InfoContext(ctx, "loaded remote tools", "count", len(remote))

	return append(handlers, remote...)
}

func newLibrarian(ctx context.Context, sf StoreFlags, ef EmbedderFlags, gf GeneratorFlags, rf RetrievalFlags, af AgentFlags) (*librarian.Librarian, func(), error) {
	cat := newCatalog(sf)

	emb, err := newEmbedder(ctx, ef)
	if err != nil {
		cat.Close()
		return nil, nil, err
	}

	history := newHistory(sf)

	caller, formatter := newCaller(gf)

	l := librarian.New(
		caller,
		formatter,
		history,
		newToolHandlers(ctx, newEngine(cat, emb, gf, rf), rf, af),
		af.HistoryWindow,
	)

	cleanup := func() {
		if err := l.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close history", "error", err)
		}
		if err := cat.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close catalog", "error", err)
		}
	}

	return l, cleanup, nil
}

// newPerformer wires whichever speech collaborators are configured.
func newPerformer(f SpeechFlags) *speechsvc.Service {
	var (
		speaker  speech.Speaker
		visemer  speech.Visemer
		animator speech.Animator
		cueModel generator.Generator
	)

	if len(f.CueAPIKey) > 0 {
		cueModel = generatoropenai.NewGenerator(
			generator.WithApiKey(f.CueAPIKey),
			generator.WithModel(f.CueModel),
			generator.WithMaxTokens(200),
			generator.WithTemperature(0.4),
		)
	}

	if len(f.TTSURL) > 0 {
		speaker = speechhttp.NewSpeaker(speech.WithBaseURL(f.TTSURL), speech.WithTimeout(f.SpeechTimeout))
	}

	if len(f.VisemesURL) > 0 {
		visemer = speechhttp.NewVisemer(speech.WithBaseURL(f.VisemesURL), speech.WithTimeout(f.SpeechTimeout))
	}

	if len(f.AnimationURL) > 0 {
		animator = speechhttp.NewAnimator(
			speech.WithBaseURL(f.AnimationURL),
			speech.WithTimeout(f.SpeechTimeout),
			speech.WithGenerator(cueModel),
		)
	}

	expressor := speechllm.NewExpressor(speech.WithGenerator(cueModel))

	return speechsvc.New(speaker, visemer, expressor, animator)
}
