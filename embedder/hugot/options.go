package hugot

import (
	"context"

	"github.com/w-h-a/librarian/embedder"
)

type cacheDirKey struct{}

// WithCacheDir sets where downloaded models are kept.
func WithCacheDir(dir string) embedder.Option {
	return func(o *embedder.Options) {
		o.Context = context.WithValue(o.Context, cacheDirKey{}, dir)
	}
}

func CacheDirFrom(ctx context.Context) (string, bool) {
	dir, ok := ctx.Value(cacheDirKey{}).(string)
	return dir, ok
}

type ortLibraryKey struct{}

// WithOrtLibraryPath points at the onnxruntime shared library.
func WithOrtLibraryPath(path string) embedder.Option {
	return func(o *embedder.Options) {
		o.Context = context.WithValue(o.Context, ortLibraryKey{}, path)
	}
}

func OrtLibraryPathFrom(ctx context.Context) (string, bool) {
	path, ok := ctx.Value(ortLibraryKey{}).(string)
	return path, ok
}
