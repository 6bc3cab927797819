package interfaces

import (
	"context"
	"time"

	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/model/mail"
)

// LLMClient is the language model gateway.
type LLMClient interface {
	// ChatComplete returns the assistant reply for messages, or "" if the
	// model produced no choice.
	ChatComplete(ctx context.Context, messages []chat.Message, systemPrompt string) (string, error)
	GenerateTitle(ctx context.Context, messages []chat.Message) (string, error)
}

type EmailClient interface {
	Send(ctx context.Context, msg *mail.Message) (*mail.Result, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channelID, text string) error
}

type Clock interface {
	Now() time.Time
}
