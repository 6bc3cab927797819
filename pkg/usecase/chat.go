package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

// SendTurn runs one turn on a conversation built for the request. Turns on
// the same session are serialized per process; a second concurrent turn is
// rejected with ErrTurnInFlight.
func (uc *UseCases) SendTurn(ctx context.Context, req *interfaces.SendTurnRequest) (*interfaces.SendTurnResponse, error) {
	if req == nil {
		return nil, goerr.Wrap(apperr.ErrValidation, "send turn request cannot be nil")
	}

	if req.Mode == chat.ModeExisting && req.SessionID != "" {
		if _, busy := uc.turns.LoadOrStore(req.SessionID, struct{}{}); busy {
			return nil, goerr.Wrap(apperr.ErrTurnInFlight, "turn rejected", goerr.TV(apperr.SessionIDKey, req.SessionID))
		}
		defer uc.turns.Delete(req.SessionID)
	}

	conv, err := uc.NewConversation(ConversationConfig{
		Mode:         req.Mode,
		AgentID:      req.AgentID,
		SessionID:    req.SessionID,
		UsePublished: req.UsePublished,
		Messages:     req.Messages,
	})
	if err != nil {
		return nil, err
	}
	if err := conv.Load(ctx); err != nil {
		return nil, err
	}

	result, err := conv.SendTurn(ctx, req.Input)
	if err != nil {
		return nil, err
	}

	resp := &interfaces.SendTurnResponse{
		OK:        result.OK,
		SessionID: conv.SessionID(),
		Name:      conv.SessionName(),
		State:     conv.State(),
		Completed: result.Completed,
		Reply:     chat.StripSentinel(result.Reply),
		Messages:  chat.DisplayMessages(conv.Messages()),
	}
	if !result.OK {
		resp.Reply = chat.ErrorMessage
		resp.Error = string(apperr.KindOf(result.Err))
	}
	return resp, nil
}

func (uc *UseCases) GetSession(ctx context.Context, id types.SessionID) (*chat.Session, error) {
	s, err := uc.collab.Repo.GetSession(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session", goerr.TV(apperr.SessionIDKey, id))
	}
	return s, nil
}

func (uc *UseCases) ListSessions(ctx context.Context, agentID types.AgentID) ([]*chat.Session, error) {
	if _, err := uc.collab.Repo.GetAgent(ctx, agentID); err != nil {
		return nil, goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, agentID))
	}

	sessions, err := uc.collab.Repo.ListSessionsByAgent(ctx, agentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions", goerr.TV(apperr.AgentIDKey, agentID))
	}
	return sessions, nil
}

func (uc *UseCases) RenameSession(ctx context.Context, id types.SessionID, name string) (*chat.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, goerr.Wrap(apperr.ErrValidation, "session name is required", goerr.TV(apperr.SessionIDKey, id))
	}

	if err := uc.collab.Repo.RenameSession(ctx, id, name, uc.collab.Clock.Now()); err != nil {
		return nil, goerr.Wrap(err, "failed to rename session", goerr.TV(apperr.SessionIDKey, id))
	}
	return uc.GetSession(ctx, id)
}

func (uc *UseCases) DeleteSession(ctx context.Context, id types.SessionID) error {
	if _, err := uc.collab.Repo.GetSession(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to get session", goerr.TV(apperr.SessionIDKey, id))
	}
	if err := uc.collab.Repo.DeleteSession(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete session", goerr.TV(apperr.SessionIDKey, id))
	}
	return nil
}
