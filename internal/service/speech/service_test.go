package speech

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/librarian/conversation"
	"github.com/w-h-a/librarian/speech"
)

type fakeSpeaker struct {
	err   error
	texts []string
	mtx   sync.Mutex
}

func (f *fakeSpeaker) Speak(ctx context.Context, text string, intonation string) (string, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return "", f.err
	}
	return "http://tts/out.wav", nil
}

type fakeVisemer struct{}

func (fakeVisemer) Visemes(ctx context.Context, text string, audioURL string) ([]speech.Viseme, error) {
	return []speech.Viseme{{Visema: "aa", Tiempo: 0}}, nil
}

type fakeExpressor struct{}

func (fakeExpressor) Expressions(ctx context.Context, text string) ([]speech.Expression, error) {
	return speech.NeutralExpressions(), nil
}

type fakeAnimator struct {
	history []conversation.Turn
}

func (f *fakeAnimator) Animate(ctx context.Context, text string, history []conversation.Turn) (speech.Animation, error) {
	f.history = history
	return speech.Animation{"sequence": "hello"}, nil
}

type collector struct {
	payloads []any
	mtx      sync.Mutex
}

func (c *collector) emit(ctx context.Context, payload any) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

func TestCleanForVoice(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "Sí, está en Ficción.", want: "Sí, está en Ficción"},
		{in: "[pensando] Prueba\nRayuela.", want: "Prueba Rayuela"},
		{in: "  [a] Hola [b]  ", want: "Hola"},
		{in: "Cien años de soledad de G. García Márquez.", want: "Cien años de soledad de G García Márquez"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CleanForVoice(tc.in), tc.in)
	}
}

func TestPerformEmitsAllBranches(t *testing.T) {
	animator := &fakeAnimator{}
	svc := New(&fakeSpeaker{}, fakeVisemer{}, fakeExpressor{}, animator)
	c := &collector{}
	history := []conversation.Turn{{Role: conversation.RoleHuman, Text: "hola"}}

	err := svc.Perform(context.Background(), "Prueba Rayuela", "m1", history, c.emit)
	require.NoError(t, err)

	require.Len(t, c.payloads, 3)
	assert.Contains(t, c.payloads, Voice{
		AudioURL:  "http://tts/out.wav",
		Visemas:   []speech.Viseme{{Visema: "aa", Tiempo: 0}},
		MessageId: "m1",
	})
	assert.Contains(t, c.payloads, Expressions{Expresiones: speech.NeutralExpressions(), MessageId: "m1"})
	assert.Contains(t, c.payloads, map[string]any{"sequence": "hello", "message_id": "m1"})
	assert.Equal(t, history, animator.history)
}

func TestPerformSkipsMissingCollaborators(t *testing.T) {
	svc := New(nil, nil, fakeExpressor{}, nil)
	c := &collector{}

	require.NoError(t, svc.Perform(context.Background(), "hola", "m1", nil, c.emit))
	assert.Len(t, c.payloads, 1)
}

func TestPerformReturnsBranchError(t *testing.T) {
	boom := errors.New("tts down")
	svc := New(&fakeSpeaker{err: boom}, fakeVisemer{}, fakeExpressor{}, &fakeAnimator{})
	c := &collector{}

	err := svc.Perform(context.Background(), "hola", "m1", nil, c.emit)
	assert.ErrorIs(t, err, boom)
}

func TestAcknowledge(t *testing.T) {
	speaker := &fakeSpeaker{}
	svc := New(speaker, fakeVisemer{}, nil, nil)

	ack := svc.Acknowledge(context.Background())
	assert.Contains(t, acknowledgements, ack.Text)
	assert.Equal(t, "http://tts/out.wav", ack.AudioURL)
	assert.Len(t, ack.Visemas, 1)
	assert.Equal(t, []string{ack.Text}, speaker.texts)

	textOnly := New(&fakeSpeaker{err: errors.New("down")}, fakeVisemer{}, nil, nil).Acknowledge(context.Background())
	assert.Contains(t, acknowledgements, textOnly.Text)
	assert.Empty(t, textOnly.AudioURL)

	silent := New(nil, nil, nil, nil).Acknowledge(context.Background())
	assert.Contains(t, acknowledgements, silent.Text)
	assert.Empty(t, silent.Visemas)
}
