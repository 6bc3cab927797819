package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel      = "gpt-3.5-turbo"
	DefaultTitleModel = "gpt-3.5-turbo"

	// MaxTitleLength bounds generated titles, counted in runes.
	MaxTitleLength = 50

	titleMaxTokens = 24
)

const titleSystemPrompt = "You name conversations. Reply with a short descriptive title for the conversation below, " +
	"at most 50 characters. Reply with the title only, without quotes or trailing punctuation."

// Gateway calls an OpenAI compatible chat completions endpoint.
// Requests are never streamed or retried.
type Gateway struct {
	client     *openai.Client
	model      string
	titleModel string
}

var _ interfaces.LLMClient = (*Gateway)(nil)

type Option func(*gatewayConfig)

type gatewayConfig struct {
	baseURL    string
	httpClient *http.Client
	model      string
	titleModel string
}

// WithBaseURL points the gateway at another OpenAI compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *gatewayConfig) { c.baseURL = url }
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *gatewayConfig) { c.httpClient = client }
}

func WithModel(model string) Option {
	return func(c *gatewayConfig) { c.model = model }
}

func WithTitleModel(model string) Option {
	return func(c *gatewayConfig) { c.titleModel = model }
}

func New(apiKey string, opts ...Option) (*Gateway, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required", goerr.T(apperr.ErrTagValidation))
	}

	cfg := gatewayConfig{model: DefaultModel, titleModel: DefaultTitleModel}
	for _, opt := range opts {
		opt(&cfg)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		clientCfg.BaseURL = cfg.baseURL
	}
	if cfg.httpClient != nil {
		clientCfg.HTTPClient = cfg.httpClient
	}

	return &Gateway{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.model,
		titleModel: cfg.titleModel,
	}, nil
}

// ChatComplete sends systemPrompt (if any) followed by messages and returns
// the first choice's content, or "" when there is no choice.
func (g *Gateway) ChatComplete(ctx context.Context, messages []chat.Message, systemPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: toOpenAIMessages(messages, systemPrompt),
		Stream:   false,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrapGatewayError(err, g.model)
	}

	ctxlog.From(ctx).Debug("chat completion done",
		"model", g.model,
		"choices", len(resp.Choices),
		"total_tokens", resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateTitle asks the model for a short title. The sentinel is removed
// from every message before it is sent.
func (g *Gateway) GenerateTitle(ctx context.Context, messages []chat.Message) (string, error) {
	cleaned := make([]chat.Message, len(messages))
	for i, m := range messages {
		cleaned[i] = chat.Message{Role: m.Role, Content: chat.StripSentinel(m.Content)}
	}

	req := openai.ChatCompletionRequest{
		Model:     g.titleModel,
		Messages:  toOpenAIMessages(cleaned, titleSystemPrompt),
		MaxTokens: titleMaxTokens,
		Stream:    false,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrapGatewayError(err, g.titleModel)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return NormalizeTitle(resp.Choices[0].Message.Content), nil
}

// NormalizeTitle trims whitespace and surrounding quotes and bounds the
// length to MaxTitleLength runes.
func NormalizeTitle(s string) string {
	s = strings.TrimSpace(chat.StripSentinel(s))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.Trim(s, "\"'`")
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > MaxTitleLength {
		s = strings.TrimSpace(string([]rune(s)[:MaxTitleLength]))
	}
	return s
}

func toOpenAIMessages(messages []chat.Message, systemPrompt string) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == chat.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func wrapGatewayError(err error, model string) error {
	opts := []goerr.Option{goerr.T(apperr.ErrTagGateway), goerr.TV(apperr.ModelKey, model)}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		opts = append(opts, goerr.TV(apperr.HTTPStatusKey, apiErr.HTTPStatusCode))
	case errors.As(err, &reqErr):
		opts = append(opts, goerr.TV(apperr.HTTPStatusKey, reqErr.HTTPStatusCode))
	}

	return goerr.Wrap(errors.Join(apperr.ErrGateway, err), "chat completion request failed", opts...)
}
