package hugot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/w-h-a/librarian/embedder"
)

const (
	DefaultModel = "sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2"
)

// hugotEmbedder runs a sentence-transformers model locally through onnxruntime.
// The model is downloaded and loaded at most once per process.
type hugotEmbedder struct {
	options        embedder.Options
	cacheDir       string
	ortLibraryPath string
	modelPath      string
	session        *hugot.Session
	pipeline       *pipelines.FeatureExtractionPipeline
	loaded         bool
	mtx            sync.RWMutex
}

func (e *hugotEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.EnsureModel(ctx); err != nil {
		return nil, err
	}

	e.mtx.RLock()
	defer e.mtx.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output, err := e.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	if len(output.Embeddings) == 0 || len(output.Embeddings[0]) == 0 {
		return nil, errors.New("no embedding returned")
	}

	return output.Embeddings[0], nil
}

func (e *hugotEmbedder) EnsureModel(ctx context.Context) error {
	e.mtx.RLock()
	loaded := e.loaded
	e.mtx.RUnlock()

	if loaded {
		return nil
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.loaded {
		return nil
	}

	if _, err := os.Stat(e.modelPath); os.IsNotExist(err) {
		slog.InfoContext(ctx, "downloading embedding model", "model", e.options.Model, "dir", e.cacheDir)
		modelPath, err := hugot.DownloadModel(e.options.Model, e.cacheDir, hugot.NewDownloadOptions())
		if err != nil {
			return fmt.Errorf("download model: %w", err)
		}
		e.modelPath = modelPath
	}

	sessionOpts := []options.WithOption{
		options.WithIntraOpNumThreads(runtime.NumCPU()),
	}

	if len(e.ortLibraryPath) > 0 {
		sessionOpts = append(sessionOpts, options.WithOnnxLibraryPath(e.ortLibraryPath))
	}

	session, err := hugot.NewORTSession(sessionOpts...)
	if err != nil {
		return fmt.Errorf("create ORT session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: e.modelPath,
		Name:      filepath.Base(e.modelPath),
	})
	if err != nil {
		session.Destroy()
		return fmt.Errorf("create pipeline: %w", err)
	}

	e.session = session
	e.pipeline = pipeline
	e.loaded = true

	slog.InfoContext(ctx, "embedding model loaded", "path", e.modelPath)

	return nil
}

func (e *hugotEmbedder) Close() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	e.pipeline = nil
	e.loaded = false

	return nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = DefaultModel
	}

	e := &hugotEmbedder{
		options: options,
	}

	if dir, ok := CacheDirFrom(options.Context); ok && len(dir) > 0 {
		e.cacheDir = dir
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			detail := "failed to resolve home dir for hugot embedder"
			slog.ErrorContext(context.Background(), detail, "error", err)
			panic(detail)
		}
		e.cacheDir = filepath.Join(home, ".librarian", "models")
	}

	if err := os.MkdirAll(e.cacheDir, 0755); err != nil {
		detail := "failed to create model cache dir for hugot embedder"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	if path, ok := OrtLibraryPathFrom(options.Context); ok {
		e.ortLibraryPath = path
	}

	// hugot stores "org/name" as "org_name" under the cache dir
	e.modelPath = filepath.Join(e.cacheDir, strings.ReplaceAll(options.Model, "/", "_"))

	return e
}
