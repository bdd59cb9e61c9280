package memory

import (
	"testing"

	"github.com/w-h-a/librarian/conversation"
	"github.com/w-h-a/librarian/conversation/conversationtest"
)

func TestMemoryHistory(t *testing.T) {
	conversationtest.Run(t, func(t *testing.T, clock *conversationtest.Clock) conversation.History {
		return NewHistory(conversation.WithClock(clock.Now))
	})
}
