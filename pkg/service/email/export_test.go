package email

import (
	"github.com/m-mizutani/gatherly/pkg/domain/model/mail"
	gomail "github.com/wneessen/go-mail"
)

func BuildMessage(c *SMTPClient, msg *mail.Message) (*gomail.Msg, error) {
	return c.buildMessage(msg)
}
