package mail

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

// Message is an outgoing HTML email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Result reports a delivered message.
type Result struct {
	MessageID string
}

// Validate requires at least one recipient, a subject and a body.
func (m *Message) Validate() error {
	if len(m.To) == 0 {
		return goerr.New("no recipient", goerr.T(apperr.ErrTagValidation))
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" {
			return goerr.New("empty recipient address", goerr.T(apperr.ErrTagValidation))
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return goerr.New("subject is required", goerr.T(apperr.ErrTagValidation))
	}
	if strings.TrimSpace(m.HTML) == "" {
		return goerr.New("body is required", goerr.T(apperr.ErrTagValidation))
	}
	return nil
}
