package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

// ConversationConfig fixes the mode and target of a conversation.
type ConversationConfig struct {
	Mode      chat.Mode
	AgentID   types.AgentID
	SessionID types.SessionID

	// UsePublished runs the conversation with the published version when
	// there is one. Playground always uses the current version.
	UsePublished bool

	// Messages seeds the log of a playground conversation.
	Messages []chat.Message

	// OnSessionCreated is called once a new mode conversation has created
	// its session.
	OnSessionCreated func(ctx context.Context, id types.SessionID)
}

// TurnResult is the outcome of an accepted turn. A turn whose model call
// or persistence failed has OK=false and Err set, and the log ends with
// chat.ErrorMessage.
type TurnResult struct {
	OK        bool
	Reply     string
	Completed bool
	Err       error
}

// Conversation drives the turns of one chat session.
type Conversation struct {
	collab   Collaborators
	pipeline *CompletionPipeline
	cfg      ConversationConfig

	mu           sync.Mutex
	state        chat.State
	messages     []chat.Message
	session      *chat.Session
	systemPrompt string
	loaded       bool
}

// NewConversation creates a conversation bound to the use case collaborators.
func (uc *UseCases) NewConversation(cfg ConversationConfig) (*Conversation, error) {
	return NewConversation(uc.collab, uc.pipeline, cfg)
}

// NewConversation validates cfg. pipeline may be nil.
func NewConversation(collab Collaborators, pipeline *CompletionPipeline, cfg ConversationConfig) (*Conversation, error) {
	if !cfg.Mode.IsValid() {
		return nil, goerr.Wrap(apperr.ErrValidation, "invalid conversation mode", goerr.TV(apperr.ModeKey, string(cfg.Mode)))
	}
	if cfg.AgentID == "" {
		return nil, goerr.Wrap(apperr.ErrValidation, "agent id is required")
	}
	if cfg.Mode == chat.ModeExisting && cfg.SessionID == "" {
		return nil, goerr.Wrap(apperr.ErrValidation, "session id is required for an existing conversation")
	}

	c := &Conversation{
		collab:   collab,
		pipeline: pipeline,
		cfg:      cfg,
		state:    chat.StateIdle,
	}
	if cfg.Mode == chat.ModePlayground {
		c.messages = chat.CopyMessages(cfg.Messages)
	}
	return c, nil
}

// Load resolves the effective settings and, for an existing conversation,
// the persisted log. A log whose last message carries the sentinel leaves
// the conversation completed.
func (c *Conversation) Load(ctx context.Context) error {
	prompt, err := c.resolvePrompt(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.systemPrompt = prompt

	if c.cfg.Mode == chat.ModeExisting {
		s, err := c.collab.Repo.GetSession(ctx, c.cfg.SessionID)
		if err != nil {
			return goerr.Wrap(err, "failed to load session", goerr.TV(apperr.SessionIDKey, c.cfg.SessionID))
		}
		if s.AgentID != c.cfg.AgentID {
			return goerr.Wrap(apperr.ErrSessionNotFound, "session belongs to another agent",
				goerr.TV(apperr.SessionIDKey, s.ID),
				goerr.TV(apperr.AgentIDKey, c.cfg.AgentID))
		}
		c.session = s
		c.messages = chat.CopyMessages(s.Messages)
	}

	if chat.LastMessageCompletes(c.messages) {
		c.state = chat.StateCompleted
	} else {
		c.state = chat.StateIdle
	}
	c.loaded = true
	return nil
}

func (c *Conversation) resolvePrompt(ctx context.Context) (string, error) {
	versions := NewVersionStore(c.collab.Repo, c.collab.Clock)
	usePublished := c.cfg.UsePublished && c.cfg.Mode != chat.ModePlayground

	eff, err := versions.ResolveEffective(ctx, c.cfg.AgentID, usePublished)
	if usePublished && errors.Is(err, apperr.ErrNotPublished) {
		ctxlog.From(ctx).Debug("agent not published, using current version", "agent_id", c.cfg.AgentID)
		eff, err = versions.ResolveEffective(ctx, c.cfg.AgentID, false)
	}
	if err != nil {
		return "", err
	}
	return eff.Settings.SystemPrompt, nil
}

// SendTurn appends input to the log, asks the model for a reply and
// persists the result according to the mode.
//
// Blank input, a turn already awaiting its reply and a completed
// conversation are rejected with an error and change nothing.
func (c *Conversation) SendTurn(ctx context.Context, input string) (*TurnResult, error) {
	c.mu.Lock()
	switch {
	case !c.loaded:
		c.mu.Unlock()
		return nil, goerr.Wrap(apperr.ErrInvalidState, "conversation is not loaded")
	case c.state == chat.StateAwaitingResponse:
		c.mu.Unlock()
		return nil, goerr.Wrap(apperr.ErrTurnInFlight, "turn rejected", goerr.TV(apperr.SessionIDKey, c.sessionIDLocked()))
	case c.state == chat.StateCompleted:
		c.mu.Unlock()
		return nil, goerr.Wrap(apperr.ErrSessionCompleted, "turn rejected", goerr.TV(apperr.SessionIDKey, c.sessionIDLocked()))
	case strings.TrimSpace(input) == "":
		c.mu.Unlock()
		return nil, goerr.Wrap(apperr.ErrEmptyInput, "turn rejected")
	}

	prev := chat.CopyMessages(c.messages)
	userMsg := chat.Message{Role: chat.RoleUser, Content: input}
	next := append(chat.CopyMessages(prev), userMsg)

	c.messages = next
	c.state = chat.StateAwaitingResponse
	c.mu.Unlock()

	logger := ctxlog.From(ctx).With("mode", c.cfg.Mode, "agent_id", c.cfg.AgentID)

	if c.cfg.Mode == chat.ModeNew && c.session == nil {
		if err := c.createSession(ctx); err != nil {
			return c.fail(ctx, prev, userMsg, err), nil
		}
	}

	if err := c.persist(ctx, next); err != nil {
		return c.fail(ctx, prev, userMsg, err), nil
	}

	reply, err := c.collab.LLM.ChatComplete(ctx, next, chat.SystemPrompt(c.systemPrompt))
	if err != nil {
		return c.fail(ctx, prev, userMsg, err), nil
	}

	final := append(chat.CopyMessages(next), chat.Message{Role: chat.RoleAssistant, Content: reply})

	c.mu.Lock()
	c.messages = final
	c.mu.Unlock()

	if err := c.persist(ctx, final); err != nil {
		return c.fail(ctx, prev, userMsg, err), nil
	}

	completed := chat.DetectCompletion(reply)

	c.mu.Lock()
	if completed {
		c.state = chat.StateCompleted
	} else {
		c.state = chat.StateIdle
	}
	c.mu.Unlock()

	if completed {
		logger.Info("conversation completed", "session_id", c.SessionID(), "messages", len(final))
		if c.cfg.Mode != chat.ModePlayground && len(final) > 2 && c.pipeline != nil {
			c.pipeline.Trigger(ctx, c.SessionID())
		}
	}

	return &TurnResult{OK: true, Reply: reply, Completed: completed}, nil
}

// createSession persists the session under the placeholder name and renames
// it to its derived name right away.
func (c *Conversation) createSession(ctx context.Context) error {
	now := c.collab.Clock.Now()
	s := chat.NewSession(types.NewSessionID(ctx), c.cfg.AgentID, nil, now)

	if err := c.collab.Repo.CreateSession(ctx, s); err != nil {
		return goerr.Wrap(err, "failed to create session", goerr.TV(apperr.AgentIDKey, c.cfg.AgentID))
	}

	s.Name = chat.DerivedName(s.ID)
	s.UpdatedAt = c.collab.Clock.Now()
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	if err := c.collab.Repo.RenameSession(ctx, s.ID, s.Name, s.UpdatedAt); err != nil {
		return goerr.Wrap(err, "failed to name session", goerr.TV(apperr.SessionIDKey, s.ID))
	}

	ctxlog.From(ctx).Info("chat session created", "session_id", s.ID, "agent_id", c.cfg.AgentID)

	if c.cfg.OnSessionCreated != nil {
		c.cfg.OnSessionCreated(ctx, s.ID)
	}
	return nil
}

// persist overwrites the whole session document with msgs. Playground and a
// new conversation without a session yet write nothing.
func (c *Conversation) persist(ctx context.Context, msgs []chat.Message) error {
	if c.cfg.Mode == chat.ModePlayground {
		return nil
	}

	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return nil
	}
	c.session.Messages = chat.CopyMessages(msgs)
	c.session.UpdatedAt = c.collab.Clock.Now()
	s := c.session.Copy()
	c.mu.Unlock()

	if err := c.collab.Repo.PutSession(ctx, s); err != nil {
		return goerr.Wrap(err, "failed to save messages", goerr.TV(apperr.SessionIDKey, s.ID))
	}
	return nil
}

func (c *Conversation) fail(ctx context.Context, prev []chat.Message, userMsg chat.Message, cause error) *TurnResult {
	msgs := append(chat.CopyMessages(prev), userMsg, chat.Message{Role: chat.RoleAssistant, Content: chat.ErrorMessage})

	ctxlog.From(ctx).Warn("turn failed",
		"mode", c.cfg.Mode,
		"session_id", c.SessionID(),
		"error", cause)

	c.mu.Lock()
	c.messages = msgs
	c.mu.Unlock()

	if err := c.persist(ctx, msgs); err != nil {
		ctxlog.From(ctx).Error("failed to save error transcript", "session_id", c.SessionID(), "error", err)
	}

	c.mu.Lock()
	c.state = chat.StateIdle
	c.mu.Unlock()

	return &TurnResult{OK: false, Err: cause}
}

func (c *Conversation) State() chat.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns a copy of the raw log, sentinel included.
func (c *Conversation) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return chat.CopyMessages(c.messages)
}

// SessionID is empty for playground and for a new conversation before its
// first turn.
func (c *Conversation) SessionID() types.SessionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionIDLocked()
}

func (c *Conversation) sessionIDLocked() types.SessionID {
	if c.session != nil {
		return c.session.ID
	}
	return c.cfg.SessionID
}

// SessionName is the persisted name, or empty without a session.
func (c *Conversation) SessionName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.Name
}
