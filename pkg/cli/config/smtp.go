package config

import (
	"log/slog"

	"github.com/m-mizutani/gatherly/pkg/service/email"
	"github.com/urfave/cli/v3"
)

// SMTP holds the relay used for completion notifications
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string `masq:"secret"`
	From     string
	FromName string
	TLS      bool
}

func (x *SMTP) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "smtp-host",
			Category:    "smtp",
			Usage:       "SMTP relay host, empty disables completion mail",
			Sources:     cli.EnvVars("GATHERLY_SMTP_HOST"),
			Destination: &x.Host,
		},
		&cli.IntFlag{
			Name:        "smtp-port",
			Category:    "smtp",
			Usage:       "SMTP relay port (default: 587, or 465 with --smtp-tls)",
			Sources:     cli.EnvVars("GATHERLY_SMTP_PORT"),
			Destination: &x.Port,
		},
		&cli.StringFlag{
			Name:        "smtp-username",
			Category:    "smtp",
			Usage:       "SMTP user name",
			Sources:     cli.EnvVars("GATHERLY_SMTP_USERNAME"),
			Destination: &x.Username,
		},
		&cli.StringFlag{
			Name:        "smtp-password",
			Category:    "smtp",
			Usage:       "SMTP password",
			Sources:     cli.EnvVars("GATHERLY_SMTP_PASSWORD"),
			Destination: &x.Password,
		},
		&cli.StringFlag{
			Name:        "smtp-from",
			Category:    "smtp",
			Usage:       "Sender address of notifications",
			Sources:     cli.EnvVars("GATHERLY_SMTP_FROM"),
			Destination: &x.From,
		},
		&cli.StringFlag{
			Name:        "smtp-from-name",
			Category:    "smtp",
			Usage:       "Sender display name of notifications",
			Sources:     cli.EnvVars("GATHERLY_SMTP_FROM_NAME"),
			Value:       "Gatherly",
			Destination: &x.FromName,
		},
		&cli.BoolFlag{
			Name:        "smtp-tls",
			Category:    "smtp",
			Usage:       "Use implicit TLS instead of STARTTLS",
			Sources:     cli.EnvVars("GATHERLY_SMTP_TLS"),
			Destination: &x.TLS,
		},
	}
}

// Enabled reports whether a relay is configured
func (x *SMTP) Enabled() bool {
	return x.Host != ""
}

func (x SMTP) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", x.Host),
		slog.Int("port", x.Port),
		slog.String("from", x.From),
		slog.Bool("tls", x.TLS),
	)
}

// Configure creates the SMTP client. It returns nil when no relay is set.
func (x *SMTP) Configure() (*email.SMTPClient, error) {
	if !x.Enabled() {
		return nil, nil
	}

	return email.NewSMTPClient(email.SMTPConfig{
		Host:     x.Host,
		Port:     x.Port,
		Username: x.Username,
		Password: x.Password,
		From:     x.From,
		FromName: x.FromName,
		TLS:      x.TLS,
	})
}
