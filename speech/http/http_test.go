package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/librarian/conversation"
	"github.com/w-h-a/librarian/speech"
)

type cannedGenerator struct {
	reply  string
	err    error
	prompt string
}

func (g *cannedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func TestSpeak(t *testing.T) {
	var got speakRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"audio_url":"http://tts/out.wav"}`))
	}))
	defer srv.Close()

	s := NewSpeaker(speech.WithBaseURL(srv.URL + "/"))

	url, err := s.Speak(context.Background(), "hola", "")
	require.NoError(t, err)
	assert.Equal(t, "http://tts/out.wav", url)
	assert.Equal(t, speakRequest{Text: "hola", Entonacion: "neutral"}, got)
}

func TestSpeakServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"modelo no cargado"}`))
	}))
	defer srv.Close()

	s := NewSpeaker(speech.WithBaseURL(srv.URL))

	_, err := s.Speak(context.Background(), "hola", "neutral")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modelo no cargado")
}

func TestNewSpeakerRequiresURL(t *testing.T) {
	assert.Panics(t, func() { NewSpeaker() })
}

func TestVisemes(t *testing.T) {
	var got visemeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"visemas":[{"visema":"aa","tiempo":0},{"visema":"neutral","tiempo":0.5}]}`))
	}))
	defer srv.Close()

	v := NewVisemer(speech.WithBaseURL(srv.URL))

	visemes, err := v.Visemes(context.Background(), "hola", "http://tts/out.wav")
	require.NoError(t, err)
	assert.Equal(t, []speech.Viseme{{Visema: "aa", Tiempo: 0}, {Visema: "neutral", Tiempo: 0.5}}, visemes)
	assert.Equal(t, "http://tts/out.wav", got.AudioURL)
}

func animationServer(t *testing.T, missing ...string) *httptest.Server {
	gone := map[string]bool{}
	for _, name := range missing {
		gone[name] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sequences", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sequences":[{"sequence":"idle","description":"quieta"},{"sequence":"hello","description":"saluda"}],"count":2}`))
	})
	mux.HandleFunc("/sequence/", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/sequence/"):]
		if gone[name] {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Secuencia no encontrada"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"sequence": name, "breathing": true})
	})

	return httptest.NewServer(mux)
}

func TestAnimateChosenSequence(t *testing.T) {
	srv := animationServer(t)
	defer srv.Close()

	g := &cannedGenerator{reply: " \"Hello\" "}
	a := NewAnimator(speech.WithBaseURL(srv.URL), speech.WithGenerator(g))

	history := []conversation.Turn{
		{Role: conversation.RoleHuman, Text: "uno"},
		{Role: conversation.RoleAgent, Text: "dos"},
		{Role: conversation.RoleHuman, Text: "tres"},
		{Role: conversation.RoleAgent, Text: "cuatro"},
	}

	anim, err := a.Animate(context.Background(), "¡Hola!", history)
	require.NoError(t, err)
	assert.Equal(t, "hello", anim["sequence"])
	assert.Contains(t, g.prompt, "- hello: saluda")
	assert.Contains(t, g.prompt, "- Agente: cuatro")
	assert.NotContains(t, g.prompt, "- Usuario: uno")
}

func TestAnimateFallbacks(t *testing.T) {
	t.Run("no model", func(t *testing.T) {
		srv := animationServer(t)
		defer srv.Close()

		anim, err := NewAnimator(speech.WithBaseURL(srv.URL)).Animate(context.Background(), "hola", nil)
		require.NoError(t, err)
		assert.Equal(t, "idle", anim["sequence"])
	})

	t.Run("unknown choice", func(t *testing.T) {
		srv := animationServer(t)
		defer srv.Close()

		a := NewAnimator(speech.WithBaseURL(srv.URL), speech.WithGenerator(&cannedGenerator{reply: "backflip"}))
		anim, err := a.Animate(context.Background(), "hola", nil)
		require.NoError(t, err)
		assert.Equal(t, "idle", anim["sequence"])
	})

	t.Run("model error", func(t *testing.T) {
		srv := animationServer(t)
		defer srv.Close()

		a := NewAnimator(speech.WithBaseURL(srv.URL), speech.WithGenerator(&cannedGenerator{err: errors.New("boom")}))
		anim, err := a.Animate(context.Background(), "hola", nil)
		require.NoError(t, err)
		assert.Equal(t, "idle", anim["sequence"])
	})

	t.Run("chosen sequence missing", func(t *testing.T) {
		srv := animationServer(t, "hello")
		defer srv.Close()

		a := NewAnimator(speech.WithBaseURL(srv.URL), speech.WithGenerator(&cannedGenerator{reply: "hello"}))
		anim, err := a.Animate(context.Background(), "hola", nil)
		require.NoError(t, err)
		assert.Equal(t, "idle", anim["sequence"])
		assert.Equal(t, true, anim["breathing"])
	})

	t.Run("idle missing too", func(t *testing.T) {
		srv := animationServer(t, "idle")
		defer srv.Close()

		anim, err := NewAnimator(speech.WithBaseURL(srv.URL)).Animate(context.Background(), "hola", nil)
		require.NoError(t, err)
		assert.Equal(t, speech.IdleAnimation(srv.URL), anim)
	})
}
