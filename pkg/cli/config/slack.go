package config

import (
	"github.com/m-mizutani/goerr/v2"
	slackSvc "github.com/m-mizutani/gatherly/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack configures the optional completion notice channel
type Slack struct {
	OAuthToken string `masq:"secret"`
	ChannelID  string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack OAuth token",
			Sources:     cli.EnvVars("GATHERLY_SLACK_OAUTH_TOKEN"),
			Destination: &x.OAuthToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel receiving completion notices",
			Sources:     cli.EnvVars("GATHERLY_SLACK_CHANNEL_ID"),
			Destination: &x.ChannelID,
		},
	}
}

// Enabled reports whether completion notices are configured
func (x *Slack) Enabled() bool {
	return x.OAuthToken != "" || x.ChannelID != ""
}

// Configure creates the Slack service. It returns nil when notices are
// disabled.
func (x *Slack) Configure() (*slackSvc.Service, error) {
	if !x.Enabled() {
		return nil, nil
	}
	if x.OAuthToken == "" {
		return nil, goerr.New("slack oauth token is required", goerr.V("channel_id", x.ChannelID))
	}
	if x.ChannelID == "" {
		return nil, goerr.New("slack channel id is required")
	}

	return slackSvc.New(x.OAuthToken)
}
