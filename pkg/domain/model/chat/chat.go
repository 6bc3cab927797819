package chat

import (
	"time"

	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

const (
	// PlaceholderName is the name a session carries between creation and the
	// rename to its derived name.
	PlaceholderName = "New Chat"

	// FallbackTitle is used when title generation fails or returns nothing.
	FallbackTitle = "Untitled Conversation"

	// ErrorMessage replaces the assistant reply of a failed turn.
	ErrorMessage = "Sorry, there was an error."

	// TTL is how long a session is retained after creation.
	TTL = 12 * time.Hour
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is a persisted conversation between an end user and an agent.
type Session struct {
	ID        types.SessionID `json:"id"`
	AgentID   types.AgentID   `json:"agent_id"`
	Name      string          `json:"name"`
	Messages  []Message       `json:"messages"`
	ExpiresAt time.Time       `json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// CompletionProcessedAt is set together with the generated title by
	// whichever pipeline run claims the session.
	CompletionProcessedAt *time.Time `json:"completion_processed_at,omitempty"`
}

// NewSession returns a session named PlaceholderName expiring TTL after now.
func NewSession(id types.SessionID, agentID types.AgentID, messages []Message, now time.Time) *Session {
	return &Session{
		ID:        id,
		AgentID:   agentID,
		Name:      PlaceholderName,
		Messages:  CopyMessages(messages),
		ExpiresAt: now.Add(TTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DerivedName is the permanent name given right after creation.
func DerivedName(id types.SessionID) string {
	return "chat-" + id.Short()
}

// IsCompletionProcessed reports whether the completion pipeline already ran.
func (s *Session) IsCompletionProcessed() bool {
	return s.CompletionProcessedAt != nil
}

// Copy returns a deep copy.
func (s *Session) Copy() *Session {
	c := *s
	c.Messages = CopyMessages(s.Messages)
	if s.CompletionProcessedAt != nil {
		t := *s.CompletionProcessedAt
		c.CompletionProcessedAt = &t
	}
	return &c
}

func CopyMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
