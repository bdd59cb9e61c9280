package speech

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/w-h-a/librarian/conversation"
	"github.com/w-h-a/librarian/speech"
	"golang.org/x/sync/errgroup"
)

var bracketed = regexp.MustCompile(`\[.*?\]`)

var acknowledgements = []string{
	"dame un momento mientras lo checo",
	"ok, espera, lo reviso",
	"agh, espera que lo busco",
	"vale, déjame revisar",
	"mmm, dame un segundo",
	"espera, voy a ver",
	"oki, un momentito",
	"ah, espérame tantito",
	"sure, lo busco ahora",
	"perfecto, checando...",
}

// Voice is the audio branch of a turn.
type Voice struct {
	AudioURL  string          `json:"audio_url"`
	Visemas   []speech.Viseme `json:"visemas"`
	MessageId string          `json:"message_id"`
}

type Expressions struct {
	Expresiones []speech.Expression `json:"expresiones"`
	MessageId   string              `json:"message_id"`
}

// Acknowledgement is sent while the agent is still thinking.
type Acknowledgement struct {
	Text     string          `json:"text"`
	AudioURL string          `json:"audio_url,omitempty"`
	Visemas  []speech.Viseme `json:"visemas,omitempty"`
}

// Emit delivers one payload to the client. It is called from several
// goroutines at once.
type Emit func(ctx context.Context, payload any) error

type Service struct {
	speaker   speech.Speaker
	visemer   speech.Visemer
	expressor speech.Expressor
	animator  speech.Animator
}

// CleanForVoice strips bracketed asides, line breaks and periods so the
// synthesizer reads the answer as one phrase.
func CleanForVoice(text string) string {
	text = bracketed.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, ".", "")
	return strings.TrimSpace(text)
}

// Acknowledge picks a filler phrase and voices it when both the speaker and
// the visemer are configured. Synthesis failures leave a text-only phrase.
func (s *Service) Acknowledge(ctx context.Context) Acknowledgement {
	ack := Acknowledgement{Text: acknowledgements[rand.IntN(len(acknowledgements))]}

	if s.speaker == nil || s.visemer == nil {
		return ack
	}

	audioURL, err := s.speaker.Speak(ctx, ack.Text, speech.DefaultIntonation)
	if err != nil {
		slog.WarnContext(ctx, "failed to voice acknowledgement", "error", err)
		return ack
	}

	visemes, err := s.visemer.Visemes(ctx, ack.Text, audioURL)
	if err != nil {
		slog.WarnContext(ctx, "failed to align acknowledgement", "error", err)
		return ack
	}

	ack.AudioURL = audioURL
	ack.Visemas = visemes

	return ack
}

// Perform fans the cleaned answer out to the voice, expression and animation
// branches and emits each result as soon as it is ready. Branches without a
// collaborator are skipped.
func (s *Service) Perform(ctx context.Context, text string, messageId string, history []conversation.Turn, emit Emit) error {
	g, gctx := errgroup.WithContext(ctx)

	if s.speaker != nil && s.visemer != nil {
		g.Go(func() error {
			audioURL, err := s.speaker.Speak(gctx, text, speech.DefaultIntonation)
			if err != nil {
				return err
			}

			visemes, err := s.visemer.Visemes(gctx, text, audioURL)
			if err != nil {
				return err
			}

			return emit(gctx, Voice{AudioURL: audioURL, Visemas: visemes, MessageId: messageId})
		})
	}

	if s.expressor != nil {
		g.Go(func() error {
			exps, err := s.expressor.Expressions(gctx, text)
			if err != nil {
				return err
			}

			return emit(gctx, Expressions{Expresiones: exps, MessageId: messageId})
		})
	}

	if s.animator != nil {
		g.Go(func() error {
			anim, err := s.animator.Animate(gctx, text, history)
			if err != nil {
				return err
			}

			payload := make(map[string]any, len(anim)+1)
			for k, v := range anim {
				payload[k] = v
			}
			payload["message_id"] = messageId

			return emit(gctx, payload)
		})
	}

	return g.Wait()
}

func New(
	speaker speech.Speaker,
	visemer speech.Visemer,
	expressor speech.Expressor,
	animator speech.Animator,
) *Service {
	return &Service{
		speaker:   speaker,
		visemer:   visemer,
		expressor: expressor,
		animator:  animator,
	}
}
