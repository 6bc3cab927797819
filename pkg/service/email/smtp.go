package email

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/mail"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// TLS selects implicit TLS (SMTPS) instead of STARTTLS.
	TLS bool
}

// SMTPClient sends mail through an SMTP relay.
type SMTPClient struct {
	cfg SMTPConfig
}

var _ interfaces.EmailClient = (*SMTPClient)(nil)

func NewSMTPClient(cfg SMTPConfig) (*SMTPClient, error) {
	if cfg.Host == "" {
		return nil, goerr.New("SMTP host is required", goerr.T(apperr.ErrTagValidation))
	}
	if cfg.From == "" {
		return nil, goerr.New("SMTP sender address is required", goerr.T(apperr.ErrTagValidation))
	}
	if cfg.Port == 0 {
		cfg.Port = 587
		if cfg.TLS {
			cfg.Port = 465
		}
	}
	return &SMTPClient{cfg: cfg}, nil
}

// Send validates msg and delivers it in a single SMTP session.
func (c *SMTPClient) Send(ctx context.Context, msg *mail.Message) (*mail.Result, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerr.Wrap(apperr.ErrMailSend, "invalid mail message", goerr.V("cause", err.Error()), goerr.T(apperr.ErrTagValidation))
	}

	m, err := c.buildMessage(msg)
	if err != nil {
		return nil, err
	}

	client, err := gomail.NewClient(c.cfg.Host, c.clientOptions()...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create SMTP client", goerr.T(apperr.ErrTagMail), goerr.V("host", c.cfg.Host))
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return nil, goerr.Wrap(err, "failed to send mail",
			goerr.T(apperr.ErrTagMail),
			goerr.V("host", c.cfg.Host),
			goerr.V("recipients", len(msg.To)))
	}

	result := &mail.Result{}
	if ids := m.GetGenHeader(gomail.HeaderMessageID); len(ids) > 0 {
		result.MessageID = ids[0]
	}

	ctxlog.From(ctx).Info("mail sent",
		"message_id", result.MessageID,
		"recipients", len(msg.To),
	)
	return result, nil
}

func (c *SMTPClient) buildMessage(msg *mail.Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()

	var err error
	if c.cfg.FromName != "" {
		err = m.FromFormat(c.cfg.FromName, c.cfg.From)
	} else {
		err = m.From(c.cfg.From)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "invalid sender address", goerr.T(apperr.ErrTagValidation), goerr.V("from", c.cfg.From))
	}

	if err := m.To(msg.To...); err != nil {
		return nil, goerr.Wrap(err, "invalid recipient address", goerr.T(apperr.ErrTagValidation))
	}

	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	m.SetMessageID()
	m.SetDate()

	return m, nil
}

func (c *SMTPClient) clientOptions() []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(c.cfg.Port)}

	if c.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(c.cfg.Username),
			gomail.WithPassword(c.cfg.Password),
		)
	}

	if c.cfg.TLS {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	return opts
}
