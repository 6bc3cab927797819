package slack

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
	api "github.com/slack-go/slack"
)

// Service posts completion notices to Slack
type Service struct {
	client *api.Client
}

type Option func(*options)

type options struct {
	apiURL string
}

// WithAPIURL overrides the Slack Web API endpoint, mainly for tests
func WithAPIURL(url string) Option {
	return func(o *options) { o.apiURL = url }
}

// New creates a new Slack service
func New(token string, opts ...Option) (*Service, error) {
	if token == "" {
		return nil, goerr.New("slack token is required", goerr.T(apperr.ErrTagValidation))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var clientOpts []api.Option
	if o.apiURL != "" {
		clientOpts = append(clientOpts, api.OptionAPIURL(o.apiURL))
	}

	return &Service{client: api.New(token, clientOpts...)}, nil
}

// Ensure Service implements SlackClient interface
var _ interfaces.SlackClient = (*Service)(nil)

// PostMessage posts a plain text message to a channel
func (s *Service) PostMessage(ctx context.Context, channelID, text string) error {
	channel, timestamp, err := s.client.PostMessageContext(
		ctx,
		channelID,
		api.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post message to slack",
			goerr.T(apperr.ErrTagSlackAPI),
			goerr.V("channel", channelID))
	}

	ctxlog.From(ctx).Debug("posted message to slack",
		"channel", channel,
		"timestamp", timestamp,
	)

	return nil
}
