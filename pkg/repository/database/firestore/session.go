package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

func (c *Client) chatRef(id types.SessionID) *firestore.DocumentRef {
	return c.client.Collection(collectionChats).Doc(id.String())
}

func (c *Client) CreateSession(ctx context.Context, s *chat.Session) error {
	if s == nil {
		return goerr.New("session cannot be nil")
	}

	if _, err := c.chatRef(s.ID).Create(ctx, sessionToDoc(s)); err != nil {
		return goerr.Wrap(err, "failed to create session",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.SessionIDKey, s.ID))
	}
	return nil
}

func (c *Client) GetSession(ctx context.Context, id types.SessionID) (*chat.Session, error) {
	doc, err := c.chatRef(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(apperr.ErrSessionNotFound, "session not found", goerr.TV(apperr.SessionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get session",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.SessionIDKey, id))
	}

	var d chatDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.TV(apperr.SessionIDKey, id))
	}
	return docToSession(&d), nil
}

// PutSession overwrites the whole document. Concurrent writers are last
// write wins.
func (c *Client) PutSession(ctx context.Context, s *chat.Session) error {
	ref := c.chatRef(s.ID)
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, sessionToDoc(s))
	})
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(apperr.ErrSessionNotFound, "session not found", goerr.TV(apperr.SessionIDKey, s.ID))
		}
		return goerr.Wrap(err, "failed to put session",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.SessionIDKey, s.ID))
	}
	return nil
}

func (c *Client) RenameSession(ctx context.Context, id types.SessionID, name string, updatedAt time.Time) error {
	_, err := c.chatRef(id).Update(ctx, []firestore.Update{
		{Path: "name", Value: name},
		{Path: "updated_at", Value: updatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(apperr.ErrSessionNotFound, "session not found", goerr.TV(apperr.SessionIDKey, id))
		}
		return goerr.Wrap(err, "failed to rename session",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.SessionIDKey, id))
	}
	return nil
}

func (c *Client) DeleteSession(ctx context.Context, id types.SessionID) error {
	if _, err := c.chatRef(id).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete session",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.SessionIDKey, id))
	}
	return nil
}

func (c *Client) ListSessionsByAgent(ctx context.Context, agentID types.AgentID) ([]*chat.Session, error) {
	iter := c.client.Collection(collectionChats).
		Where("bot_id", "==", agentID.String()).
		Documents(ctx)

	sessions, err := getAll(iter, collectionChats, func(doc *firestore.DocumentSnapshot) (*chat.Session, error) {
		var d chatDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, err
		}
		return docToSession(&d), nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions", goerr.TV(apperr.AgentIDKey, agentID))
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (c *Client) ClaimCompletion(ctx context.Context, id types.SessionID, title string, at time.Time) (bool, error) {
	ref := c.chatRef(id)
	claimed := false

	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		claimed = false
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		var d chatDoc
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal session")
		}
		if d.CompletionProcessedAt != nil {
			return nil
		}

		claimed = true
		return tx.Update(ref, []firestore.Update{
			{Path: "name", Value: title},
			{Path: "updated_at", Value: at},
			{Path: "completion_processed_at", Value: at},
		})
	})
	if err != nil {
		if isNotFound(err) {
			return false, goerr.Wrap(apperr.ErrSessionNotFound, "session not found", goerr.TV(apperr.SessionIDKey, id))
		}
		return false, goerr.Wrap(err, "failed to claim completion",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.SessionIDKey, id))
	}
	return claimed, nil
}
