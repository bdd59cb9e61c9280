package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/w-h-a/librarian/speech"
)

type speakRequest struct {
	Text       string `json:"text"`
	Entonacion string `json:"entonacion"`
}

type speakResponse struct {
	AudioURL string `json:"audio_url"`
}

type httpSpeaker struct {
	options speech.Options
	client  *client
}

func (s *httpSpeaker) Speak(ctx context.Context, text string, intonation string) (string, error) {
	if len(intonation) == 0 {
		intonation = speech.DefaultIntonation
	}

	var rsp speakResponse
	if _, err := s.client.postJSON(ctx, "/generate", speakRequest{Text: text, Entonacion: intonation}, &rsp); err != nil {
		return "", fmt.Errorf("tts: %w", err)
	}

	if len(rsp.AudioURL) == 0 {
		return "", errors.New("tts: no audio_url in response")
	}

	return rsp.AudioURL, nil
}

func NewSpeaker(opts ...speech.Option) speech.Speaker {
	options := speech.NewOptions(opts...)

	if len(options.BaseURL) == 0 {
		detail := "tts service url is required"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	return &httpSpeaker{
		options: options,
		client:  newClient(options.BaseURL, options.Timeout),
	}
}
