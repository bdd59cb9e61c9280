package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/librarian/embedder"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.options.Model),
		Dimensions: e.options.Dimension,
	})
	if err != nil {
		return nil, err
	}

	if len(rsp.Data) == 0 || len(rsp.Data[0].Embedding) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	return rsp.Data[0].Embedding, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	e := &openAIEmbedder{
		options: options,
	}

	config := openai.DefaultConfig(options.ApiKey)
	config.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	if url, ok := BaseURLFrom(options.Context); ok && len(url) > 0 {
		config.BaseURL = url
	}

	e.client = openai.NewClientWithConfig(config)

	return e
}
