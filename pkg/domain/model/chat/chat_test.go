package chat_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestNewSession(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	msgs := []chat.Message{{Role: chat.RoleAssistant, Content: "Hi"}}
	s := chat.NewSession("0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", "agent-1", msgs, now)

	gt.Equal(t, s.Name, chat.PlaceholderName)
	gt.Equal(t, s.ExpiresAt, now.Add(12*time.Hour))
	gt.False(t, s.IsCompletionProcessed())

	msgs[0].Content = "mutated"
	gt.Equal(t, s.Messages[0].Content, "Hi")
}

func TestDerivedName(t *testing.T) {
	name := chat.DerivedName(types.SessionID("0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"))
	gt.Equal(t, name, "chat-0190a1b2")
	gt.True(t, regexp.MustCompile(`^chat-[a-f0-9]{8}$`).MatchString(name))
}

func TestSessionCopy(t *testing.T) {
	now := time.Now()
	s := &chat.Session{
		Messages:              []chat.Message{{Role: chat.RoleUser, Content: "x"}},
		CompletionProcessedAt: &now,
	}
	c := s.Copy()
	c.Messages[0].Content = "y"
	*c.CompletionProcessedAt = now.Add(time.Hour)

	gt.Equal(t, s.Messages[0].Content, "x")
	gt.Equal(t, *s.CompletionProcessedAt, now)
}
