package usecase_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
	"github.com/m-mizutani/gatherly/pkg/usecase"
	"github.com/m-mizutani/gt"
)

var derivedName = regexp.MustCompile(`^chat-[a-f0-9]{8}$`)

func newLoadedConversation(t *testing.T, f *fixture, cfg usecase.ConversationConfig) *usecase.Conversation {
	t.Helper()
	conv, err := f.uc.NewConversation(cfg)
	gt.NoError(t, err).Required()
	gt.NoError(t, conv.Load(f.ctx())).Required()
	return conv
}

func TestConversation_NewModeCompletesOnFirstTurn(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())
	f.llm.ChatCompleteFunc = func(ctx context.Context, messages []chat.Message, systemPrompt string) (string, error) {
		return "Sure, tell me more.\n###GATHERLY_DONE###", nil
	}

	var created []types.SessionID
	conv := newLoadedConversation(t, f, usecase.ConversationConfig{
		Mode:    chat.ModeNew,
		AgentID: a.ID,
		OnSessionCreated: func(ctx context.Context, id types.SessionID) {
			created = append(created, id)
		},
	})

	result, err := conv.SendTurn(ctx, "hello")
	gt.NoError(t, err).Required()
	gt.True(t, result.OK)
	gt.True(t, result.Completed)
	gt.Equal(t, conv.State(), chat.StateCompleted)

	gt.A(t, created).Length(1)
	gt.Equal(t, conv.SessionID(), created[0])

	s, err := f.repo.GetSession(ctx, created[0])
	gt.NoError(t, err).Required()
	gt.True(t, derivedName.MatchString(s.Name))
	gt.A(t, s.Messages).Length(2)
	gt.True(t, chat.DetectCompletion(s.Messages[1].Content))
	gt.Equal(t, s.AgentID, a.ID)
	gt.Equal(t, s.ExpiresAt, s.CreatedAt.Add(chat.TTL))

	// two messages are not a submission
	gt.Equal(t, f.llm.TitleCalls(), 0)
	gt.Nil(t, s.CompletionProcessedAt)
	gt.A(t, f.mailer.Sent()).Length(0)

	_, err = conv.SendTurn(ctx, "one more thing")
	gt.True(t, errors.Is(err, apperr.ErrSessionCompleted))
}

func TestConversation_NewModeCreatesSessionOnce(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())

	conv := newLoadedConversation(t, f, usecase.ConversationConfig{Mode: chat.ModeNew, AgentID: a.ID})

	first, err := conv.SendTurn(ctx, "hello")
	gt.NoError(t, err).Required()
	gt.True(t, first.OK)
	id := conv.SessionID()

	second, err := conv.SendTurn(ctx, "my name is Alice")
	gt.NoError(t, err).Required()
	gt.True(t, second.OK)

	gt.Equal(t, f.repo.CountCalls("CreateSession"), 1)
	gt.Equal(t, f.repo.CountCalls("RenameSession"), 1)
	gt.Equal(t, conv.SessionID(), id)

	sessions, err := f.repo.ListSessionsByAgent(ctx, a.ID)
	gt.NoError(t, err).Required()
	gt.A(t, sessions).Length(1)
	gt.A(t, sessions[0].Messages).Length(4)
	gt.Equal(t, sessions[0].Messages[2].Content, "my name is Alice")
}

func TestConversation_PlaygroundNeverPersists(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())

	calls := 0
	f.llm.ChatCompleteFunc = func(ctx context.Context, messages []chat.Message, systemPrompt string) (string, error) {
		calls++
		switch calls {
		case 2:
			return "", errors.New("gateway down")
		case 3:
			return "All done.\n###GATHERLY_DONE###", nil
		}
		return "Go on.", nil
	}

	conv := newLoadedConversation(t, f, usecase.ConversationConfig{
		Mode:    chat.ModePlayground,
		AgentID: a.ID,
		Messages: []chat.Message{
			{Role: chat.RoleAssistant, Content: "Hi"},
		},
	})

	for _, input := range []string{"one", "two", "three"} {
		_, err := conv.SendTurn(ctx, input)
		gt.NoError(t, err).Required()
	}

	gt.Equal(t, conv.State(), chat.StateCompleted)
	gt.A(t, conv.Messages()).Length(7)
	gt.Equal(t, conv.SessionID(), types.SessionID(""))
	gt.Equal(t, f.repo.CountCalls(sessionWrites...), 0)
	gt.Equal(t, f.llm.TitleCalls(), 0)
	gt.A(t, f.mailer.Sent()).Length(0)
}

func TestConversation_GatewayFailureOnExistingSession(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())
	s := f.seedSession(t, a.ID, transcript(4))

	gatewayErr := errors.New("status code: 500")
	f.llm.ChatCompleteFunc = func(ctx context.Context, messages []chat.Message, systemPrompt string) (string, error) {
		return "", gatewayErr
	}

	conv := newLoadedConversation(t, f, usecase.ConversationConfig{
		Mode:         chat.ModeExisting,
		AgentID:      a.ID,
		SessionID:    s.ID,
		UsePublished: true,
	})

	result, err := conv.SendTurn(ctx, "are you there?")
	gt.NoError(t, err).Required()
	gt.False(t, result.OK)
	gt.True(t, errors.Is(result.Err, gatewayErr))
	gt.Equal(t, conv.State(), chat.StateIdle)

	stored, err := f.repo.GetSession(ctx, s.ID)
	gt.NoError(t, err).Required()
	gt.A(t, stored.Messages).Length(6)
	last := stored.Messages[len(stored.Messages)-1]
	gt.Equal(t, last, chat.Message{Role: chat.RoleAssistant, Content: "Sorry, there was an error."})
	gt.Equal(t, stored.Messages[4], chat.Message{Role: chat.RoleUser, Content: "are you there?"})

	// the next turn is accepted
	f.llm.ChatCompleteFunc = nil
	retry, err := conv.SendTurn(ctx, "are you there?")
	gt.NoError(t, err).Required()
	gt.True(t, retry.OK)
	gt.A(t, conv.Messages()).Length(8)
}

func TestConversation_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())

	t.Run("blank input", func(t *testing.T) {
		conv := newLoadedConversation(t, f, usecase.ConversationConfig{Mode: chat.ModeNew, AgentID: a.ID})
		for _, input := range []string{"", "   ", "\n\t"} {
			_, err := conv.SendTurn(ctx, input)
			gt.True(t, errors.Is(err, apperr.ErrEmptyInput))
		}
		gt.Equal(t, f.repo.CountCalls("CreateSession"), 0)
		gt.Equal(t, f.llm.ChatCalls(), 0)
		gt.Equal(t, conv.State(), chat.StateIdle)
	})

	t.Run("completed session", func(t *testing.T) {
		msgs := transcript(3)
		msgs = append(msgs, chat.Message{Role: chat.RoleAssistant, Content: "Thanks!\n" + chat.Sentinel})
		s := f.seedSession(t, a.ID, msgs)

		conv := newLoadedConversation(t, f, usecase.ConversationConfig{Mode: chat.ModeExisting, AgentID: a.ID, SessionID: s.ID})
		gt.Equal(t, conv.State(), chat.StateCompleted)

		_, err := conv.SendTurn(ctx, "hello?")
		gt.True(t, errors.Is(err, apperr.ErrSessionCompleted))
	})

	t.Run("not loaded", func(t *testing.T) {
		conv, err := f.uc.NewConversation(usecase.ConversationConfig{Mode: chat.ModeNew, AgentID: a.ID})
		gt.NoError(t, err).Required()
		_, err = conv.SendTurn(ctx, "hello")
		gt.True(t, errors.Is(err, apperr.ErrInvalidState))
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := f.uc.NewConversation(usecase.ConversationConfig{Mode: "chatty", AgentID: a.ID})
		gt.True(t, errors.Is(err, apperr.ErrValidation))

		_, err = f.uc.NewConversation(usecase.ConversationConfig{Mode: chat.ModeExisting, AgentID: a.ID})
		gt.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("session of another agent", func(t *testing.T) {
		other := f.createAgent(t, defaultSettings())
		s := f.seedSession(t, other.ID, transcript(2))

		conv, err := f.uc.NewConversation(usecase.ConversationConfig{Mode: chat.ModeExisting, AgentID: a.ID, SessionID: s.ID})
		gt.NoError(t, err).Required()
		gt.True(t, errors.Is(conv.Load(ctx), apperr.ErrSessionNotFound))
	})
}

func TestConversation_ConcurrentTurnRejected(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())

	entered := make(chan struct{})
	release := make(chan struct{})
	f.llm.ChatCompleteFunc = func(ctx context.Context, messages []chat.Message, systemPrompt string) (string, error) {
		close(entered)
		<-release
		return "ok", nil
	}

	conv := newLoadedConversation(t, f, usecase.ConversationConfig{Mode: chat.ModePlayground, AgentID: a.ID})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err := conv.SendTurn(ctx, "first")
		gt.NoError(t, err)
		gt.True(t, result.OK)
	}()

	<-entered
	gt.Equal(t, conv.State(), chat.StateAwaitingResponse)

	_, err := conv.SendTurn(ctx, "second")
	gt.True(t, errors.Is(err, apperr.ErrTurnInFlight))

	close(release)
	wg.Wait()

	gt.Equal(t, conv.State(), chat.StateIdle)
	gt.A(t, conv.Messages()).Length(2)
	gt.Equal(t, f.llm.ChatCalls(), 1)
}

func TestConversation_SystemPrompt(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, agent.Settings{SystemPrompt: "draft prompt"})

	gt.NoError(t, f.uc.Versions().Publish(ctx, a.ID, a.CurrentVersionID)).Required()
	f.clock.Advance(time.Minute)
	_, err := f.uc.UpdateSettings(ctx, a.ID, agent.Settings{SystemPrompt: "edited prompt"}, f.author)
	gt.NoError(t, err).Required()

	t.Run("published", func(t *testing.T) {
		conv := newLoadedConversation(t, f, usecase.ConversationConfig{Mode: chat.ModeNew, AgentID: a.ID, UsePublished: true})
		_, err := conv.SendTurn(ctx, "hi")
		gt.NoError(t, err).Required()

		gt.True(t, strings.HasPrefix(f.llm.lastPrompt, chat.CompletionPreamble+"\n\n"))
		gt.True(t, strings.HasSuffix(f.llm.lastPrompt, "draft prompt"))
		gt.Equal(t, f.llm.lastMessages, []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	})

	t.Run("playground uses current", func(t *testing.T) {
		conv := newLoadedConversation(t, f, usecase.ConversationConfig{Mode: chat.ModePlayground, AgentID: a.ID, UsePublished: true})
		_, err := conv.SendTurn(ctx, "hi")
		gt.NoError(t, err).Required()
		gt.Equal(t, f.llm.lastPrompt, chat.SystemPrompt("edited prompt"))
	})

	t.Run("falls back to current when unpublished", func(t *testing.T) {
		b := f.createAgent(t, agent.Settings{SystemPrompt: "only draft"})
		conv := newLoadedConversation(t, f, usecase.ConversationConfig{Mode: chat.ModeNew, AgentID: b.ID, UsePublished: true})
		_, err := conv.SendTurn(ctx, "hi")
		gt.NoError(t, err).Required()
		gt.Equal(t, f.llm.lastPrompt, chat.SystemPrompt("only draft"))
	})
}

func TestConversation_SessionCreationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())
	f.repo.Fail("CreateSession", errors.New("store down"))

	conv := newLoadedConversation(t, f, usecase.ConversationConfig{Mode: chat.ModeNew, AgentID: a.ID})
	result, err := conv.SendTurn(ctx, "hello")
	gt.NoError(t, err).Required()
	gt.False(t, result.OK)
	gt.Equal(t, conv.State(), chat.StateIdle)
	gt.Equal(t, f.llm.ChatCalls(), 0)
	gt.Equal(t, conv.SessionID(), types.SessionID(""))

	msgs := conv.Messages()
	gt.A(t, msgs).Length(2)
	gt.Equal(t, msgs[1].Content, chat.ErrorMessage)
	gt.Equal(t, f.repo.CountCalls("PutSession"), 0)
}
