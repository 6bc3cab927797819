package config

import (
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

// App contains general application configuration settings that are used across multiple components
type App struct {
	BaseURL           string // Public URL of the conversation frontend, used for session links
	ReconcileSchedule string // Cron spec for draft reconciliation; empty disables it
}

// Flags returns CLI flags for general application configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "base-url",
			Sources:     cli.EnvVars("GATHERLY_BASE_URL"),
			Usage:       "Public frontend URL (e.g., https://app.example.com)",
			Value:       "http://localhost:8080",
			Destination: &a.BaseURL,
		},
		&cli.StringFlag{
			Name:        "reconcile-schedule",
			Sources:     cli.EnvVars("GATHERLY_RECONCILE_SCHEDULE"),
			Usage:       "Cron schedule for draft reconciliation, empty to disable",
			Value:       "@hourly",
			Destination: &a.ReconcileSchedule,
		},
	}
}

// Validate validates the application configuration
func (a *App) Validate() error {
	if a.BaseURL == "" {
		return goerr.New("base URL is required")
	}

	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return goerr.Wrap(err, "invalid base URL format", goerr.V("base_url", a.BaseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return goerr.New("base URL must be http or https", goerr.V("base_url", a.BaseURL))
	}

	if _, err := a.Schedule(); err != nil {
		return err
	}

	return nil
}

// Schedule parses ReconcileSchedule. It returns nil when reconciliation is
// disabled.
func (a *App) Schedule() (cron.Schedule, error) {
	spec := strings.TrimSpace(a.ReconcileSchedule)
	if spec == "" {
		return nil, nil
	}

	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid reconcile schedule", goerr.V("schedule", spec))
	}
	return sched, nil
}
