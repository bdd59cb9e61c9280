package http

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/w-h-a/librarian/speech"
)

type visemeRequest struct {
	Text     string `json:"text"`
	AudioURL string `json:"audio_url"`
}

type visemeResponse struct {
	Visemas []speech.Viseme `json:"visemas"`
}

type httpVisemer struct {
	options speech.Options
	client  *client
}

func (v *httpVisemer) Visemes(ctx context.Context, text string, audioURL string) ([]speech.Viseme, error) {
	var rsp visemeResponse
	if _, err := v.client.postJSON(ctx, "/generate", visemeRequest{Text: text, AudioURL: audioURL}, &rsp); err != nil {
		return nil, fmt.Errorf("visemes: %w", err)
	}

	if rsp.Visemas == nil {
		return []speech.Viseme{}, nil
	}

	return rsp.Visemas, nil
}

func NewVisemer(opts ...speech.Option) speech.Visemer {
	options := speech.NewOptions(opts...)

	if len(options.BaseURL) == 0 {
		detail := "visemes service url is required"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	return &httpVisemer{
		options: options,
		client:  newClient(options.BaseURL, options.Timeout),
	}
}
