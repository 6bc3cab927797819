package usecase

import (
	"strings"
	"sync"

	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/utils/clock"
)

// Collaborators are the external dependencies shared by conversations and
// the completion pipeline.
type Collaborators struct {
	Repo  interfaces.Repository
	LLM   interfaces.LLMClient
	Email interfaces.EmailClient
	Clock interfaces.Clock
}

// UseCases implements the agent, chat and maintenance use cases.
type UseCases struct {
	collab   Collaborators
	versions *VersionStore
	pipeline *CompletionPipeline

	slackClient  interfaces.SlackClient
	slackChannel string
	archive      interfaces.TranscriptArchive
	baseURL      string

	// turns holds session ids with a turn in flight on this process.
	turns sync.Map
}

// Option is a functional option for UseCases
type Option func(*UseCases)

// WithRepository sets the repository
func WithRepository(repo interfaces.Repository) Option {
	return func(uc *UseCases) {
		uc.collab.Repo = repo
	}
}

// WithLLMClient sets the language model gateway
func WithLLMClient(client interfaces.LLMClient) Option {
	return func(uc *UseCases) {
		uc.collab.LLM = client
	}
}

// WithEmailClient sets the mailer used for completion notifications
func WithEmailClient(client interfaces.EmailClient) Option {
	return func(uc *UseCases) {
		uc.collab.Email = client
	}
}

func WithClock(c interfaces.Clock) Option {
	return func(uc *UseCases) {
		uc.collab.Clock = c
	}
}

// WithSlackNotice posts a notice to channelID whenever a submission completes
func WithSlackNotice(client interfaces.SlackClient, channelID string) Option {
	return func(uc *UseCases) {
		uc.slackClient = client
		uc.slackChannel = channelID
	}
}

// WithTranscriptArchive keeps a copy of every completed conversation
func WithTranscriptArchive(archive interfaces.TranscriptArchive) Option {
	return func(uc *UseCases) {
		uc.archive = archive
	}
}

// WithBaseURL sets the public URL used for deep links in notifications
func WithBaseURL(baseURL string) Option {
	return func(uc *UseCases) {
		uc.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// New creates a new UseCases instance
func New(opts ...Option) *UseCases {
	uc := &UseCases{}
	for _, opt := range opts {
		opt(uc)
	}

	if uc.collab.Clock == nil {
		uc.collab.Clock = clock.Real{}
	}

	uc.versions = NewVersionStore(uc.collab.Repo, uc.collab.Clock)
	uc.pipeline = NewCompletionPipeline(uc.collab,
		WithPipelineBaseURL(uc.baseURL),
		WithPipelineArchive(uc.archive),
		WithPipelineSlack(uc.slackClient, uc.slackChannel),
	)

	return uc
}

// Versions exposes the version store
func (uc *UseCases) Versions() *VersionStore {
	return uc.versions
}

// Pipeline exposes the completion pipeline
func (uc *UseCases) Pipeline() *CompletionPipeline {
	return uc.pipeline
}

var (
	_ interfaces.AgentUseCases       = (*UseCases)(nil)
	_ interfaces.ChatUseCases        = (*UseCases)(nil)
	_ interfaces.MaintenanceUseCases = (*UseCases)(nil)
)
