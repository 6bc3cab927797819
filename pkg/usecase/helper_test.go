package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/model/mail"
	"github.com/m-mizutani/gatherly/pkg/domain/model/user"
	"github.com/m-mizutani/gatherly/pkg/domain/model/workspace"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/repository/database/memory"
	"github.com/m-mizutani/gatherly/pkg/usecase"
	"github.com/m-mizutani/gatherly/pkg/utils/async"
	"github.com/m-mizutani/gatherly/pkg/utils/clock"
	"github.com/m-mizutani/gt"
)

// LLMMock is a hand written mock for interfaces.LLMClient
type LLMMock struct {
	ChatCompleteFunc  func(ctx context.Context, messages []chat.Message, systemPrompt string) (string, error)
	GenerateTitleFunc func(ctx context.Context, messages []chat.Message) (string, error)

	mu           sync.Mutex
	chatCalls    int
	titleCalls   int
	lastPrompt   string
	lastMessages []chat.Message
}

func (m *LLMMock) ChatComplete(ctx context.Context, messages []chat.Message, systemPrompt string) (string, error) {
	m.mu.Lock()
	m.chatCalls++
	m.lastPrompt = systemPrompt
	m.lastMessages = chat.CopyMessages(messages)
	m.mu.Unlock()

	if m.ChatCompleteFunc != nil {
		return m.ChatCompleteFunc(ctx, messages, systemPrompt)
	}
	return "Tell me more.", nil
}

func (m *LLMMock) GenerateTitle(ctx context.Context, messages []chat.Message) (string, error) {
	m.mu.Lock()
	m.titleCalls++
	m.mu.Unlock()

	if m.GenerateTitleFunc != nil {
		return m.GenerateTitleFunc(ctx, messages)
	}
	return "Generated Title", nil
}

func (m *LLMMock) ChatCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatCalls
}

func (m *LLMMock) TitleCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.titleCalls
}

// EmailClientMock records sent messages
type EmailClientMock struct {
	SendFunc func(ctx context.Context, msg *mail.Message) (*mail.Result, error)

	mu   sync.Mutex
	sent []*mail.Message
}

func (m *EmailClientMock) Send(ctx context.Context, msg *mail.Message) (*mail.Result, error) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	return &mail.Result{MessageID: "<test@gatherly>"}, nil
}

func (m *EmailClientMock) Sent() []*mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mail.Message(nil), m.sent...)
}

type SlackClientMock struct {
	PostMessageFunc func(ctx context.Context, channelID, text string) error

	mu    sync.Mutex
	posts []string
}

func (m *SlackClientMock) PostMessage(ctx context.Context, channelID, text string) error {
	m.mu.Lock()
	m.posts = append(m.posts, channelID+":"+text)
	m.mu.Unlock()

	if m.PostMessageFunc != nil {
		return m.PostMessageFunc(ctx, channelID, text)
	}
	return nil
}

// recordingRepo wraps the memory repository, records every write and can
// fail a named operation.
type recordingRepo struct {
	*memory.Client

	mu     sync.Mutex
	calls  []string
	failOn map[string]error
}

func newRecordingRepo() *recordingRepo {
	return &recordingRepo{Client: memory.New(), failOn: map[string]error{}}
}

func (r *recordingRepo) record(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	return r.failOn[name]
}

func (r *recordingRepo) Fail(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[name] = err
}

func (r *recordingRepo) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingRepo) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *recordingRepo) CountCalls(names ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		for _, name := range names {
			if c == name {
				n++
			}
		}
	}
	return n
}

func (r *recordingRepo) CreateAgent(ctx context.Context, a *agent.Agent) error {
	if err := r.record("CreateAgent"); err != nil {
		return err
	}
	return r.Client.CreateAgent(ctx, a)
}

func (r *recordingRepo) UpdateAgent(ctx context.Context, a *agent.Agent) error {
	if err := r.record("UpdateAgent"); err != nil {
		return err
	}
	return r.Client.UpdateAgent(ctx, a)
}

func (r *recordingRepo) DeleteAgent(ctx context.Context, id types.AgentID) error {
	if err := r.record("DeleteAgent"); err != nil {
		return err
	}
	return r.Client.DeleteAgent(ctx, id)
}

func (r *recordingRepo) CreateVersion(ctx context.Context, v *agent.Version) error {
	if err := r.record("CreateVersion"); err != nil {
		return err
	}
	return r.Client.CreateVersion(ctx, v)
}

func (r *recordingRepo) UpdateVersion(ctx context.Context, v *agent.Version) error {
	if err := r.record("UpdateVersion"); err != nil {
		return err
	}
	return r.Client.UpdateVersion(ctx, v)
}

func (r *recordingRepo) DeleteVersion(ctx context.Context, agentID types.AgentID, id types.VersionID) error {
	if err := r.record("DeleteVersion"); err != nil {
		return err
	}
	return r.Client.DeleteVersion(ctx, agentID, id)
}

func (r *recordingRepo) CreateSession(ctx context.Context, s *chat.Session) error {
	if err := r.record("CreateSession"); err != nil {
		return err
	}
	return r.Client.CreateSession(ctx, s)
}

func (r *recordingRepo) PutSession(ctx context.Context, s *chat.Session) error {
	if err := r.record("PutSession"); err != nil {
		return err
	}
	return r.Client.PutSession(ctx, s)
}

func (r *recordingRepo) RenameSession(ctx context.Context, id types.SessionID, name string, updatedAt time.Time) error {
	if err := r.record("RenameSession"); err != nil {
		return err
	}
	return r.Client.RenameSession(ctx, id, name, updatedAt)
}

func (r *recordingRepo) DeleteSession(ctx context.Context, id types.SessionID) error {
	if err := r.record("DeleteSession"); err != nil {
		return err
	}
	return r.Client.DeleteSession(ctx, id)
}

func (r *recordingRepo) ClaimCompletion(ctx context.Context, id types.SessionID, title string, at time.Time) (bool, error) {
	if err := r.record("ClaimCompletion"); err != nil {
		return false, err
	}
	return r.Client.ClaimCompletion(ctx, id, title, at)
}

var _ interfaces.Repository = (*recordingRepo)(nil)

// sessionWrites are the operations that touch the session table.
var sessionWrites = []string{"CreateSession", "PutSession", "RenameSession", "DeleteSession", "ClaimCompletion"}

type fixture struct {
	repo   *recordingRepo
	llm    *LLMMock
	mailer *EmailClientMock
	clock  *clock.Fixed
	uc     *usecase.UseCases

	workspace *workspace.Workspace
	author    types.UserID
}

var baseTime = time.Date(2025, 3, 7, 15, 4, 0, 0, time.UTC)

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()

	f := &fixture{
		repo:      newRecordingRepo(),
		llm:       &LLMMock{},
		mailer:    &EmailClientMock{},
		clock:     clock.NewFixed(baseTime),
		workspace: &workspace.Workspace{ID: "ws-1", Name: "Acme"},
		author:    "user-owner",
	}

	ctx := context.Background()
	gt.NoError(t, f.repo.PutWorkspace(ctx, f.workspace)).Required()
	gt.NoError(t, f.repo.PutUser(ctx, &user.User{ID: "user-owner", DisplayName: "Owner", Email: "owner@example.com"})).Required()
	gt.NoError(t, f.repo.PutUser(ctx, &user.User{ID: "user-noemail", DisplayName: "No Email"})).Required()
	gt.NoError(t, f.repo.PutMember(ctx, &workspace.Member{ID: "m-1", WorkspaceID: "ws-1", UserID: "user-owner", Role: "owner"})).Required()
	gt.NoError(t, f.repo.PutMember(ctx, &workspace.Member{ID: "m-2", WorkspaceID: "ws-1", UserID: "user-noemail", Role: "member"})).Required()

	base := []usecase.Option{
		usecase.WithRepository(f.repo),
		usecase.WithLLMClient(f.llm),
		usecase.WithEmailClient(f.mailer),
		usecase.WithClock(f.clock),
		usecase.WithBaseURL("https://gatherly.example.com/"),
	}
	f.uc = usecase.New(append(base, opts...)...)
	return f
}

// ctx runs dispatched work inline so pipeline effects are visible on return.
func (f *fixture) ctx() context.Context {
	return async.WithSyncMode(context.Background())
}

func (f *fixture) createAgent(t *testing.T, settings agent.Settings) *agent.Agent {
	t.Helper()
	created, err := f.uc.CreateAgent(f.ctx(), &interfaces.CreateAgentRequest{
		WorkspaceID: f.workspace.ID,
		Name:        "Intake Bot",
		Settings:    settings,
		AuthorID:    f.author,
	})
	gt.NoError(t, err).Required()
	f.clock.Advance(time.Second)
	f.repo.Reset()
	return created.Agent
}

// seedSession stores a session with msgs directly.
func (f *fixture) seedSession(t *testing.T, agentID types.AgentID, msgs []chat.Message) *chat.Session {
	t.Helper()
	ctx := context.Background()
	s := chat.NewSession(types.NewSessionID(ctx), agentID, msgs, f.clock.Now())
	s.Name = chat.DerivedName(s.ID)
	gt.NoError(t, f.repo.Client.CreateSession(ctx, s)).Required()
	return s
}

func defaultSettings() agent.Settings {
	return agent.Settings{SystemPrompt: "Collect the user's new address.", InitialMessage: "Hi"}
}

func transcript(n int) []chat.Message {
	msgs := make([]chat.Message, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			msgs = append(msgs, chat.Message{Role: chat.RoleUser, Content: "user message"})
		} else {
			msgs = append(msgs, chat.Message{Role: chat.RoleAssistant, Content: "assistant message"})
		}
	}
	return msgs
}
