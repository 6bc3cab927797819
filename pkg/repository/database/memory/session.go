package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

func (c *Client) CreateSession(ctx context.Context, s *chat.Session) error {
	if s == nil {
		return goerr.New("session cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sessions[s.ID]; exists {
		return goerr.New("session already exists", goerr.T(apperr.ErrTagConflict), goerr.TV(apperr.SessionIDKey, s.ID))
	}
	c.sessions[s.ID] = s.Copy()
	return nil
}

func (c *Client) GetSession(ctx context.Context, id types.SessionID) (*chat.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, exists := c.sessions[id]
	if !exists {
		return nil, goerr.Wrap(apperr.ErrSessionNotFound, "session not found", goerr.TV(apperr.SessionIDKey, id))
	}
	return s.Copy(), nil
}

func (c *Client) PutSession(ctx context.Context, s *chat.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sessions[s.ID]; !exists {
		return goerr.Wrap(apperr.ErrSessionNotFound, "session not found", goerr.TV(apperr.SessionIDKey, s.ID))
	}
	c.sessions[s.ID] = s.Copy()
	return nil
}

func (c *Client) RenameSession(ctx context.Context, id types.SessionID, name string, updatedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, exists := c.sessions[id]
	if !exists {
		return goerr.Wrap(apperr.ErrSessionNotFound, "session not found", goerr.TV(apperr.SessionIDKey, id))
	}
	s.Name = name
	s.UpdatedAt = updatedAt
	return nil
}

func (c *Client) DeleteSession(ctx context.Context, id types.SessionID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.sessions, id)
	return nil
}

// ListSessionsByAgent returns sessions newest first.
func (c *Client) ListSessionsByAgent(ctx context.Context, agentID types.AgentID) ([]*chat.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []*chat.Session
	for _, s := range c.sessions {
		if s.AgentID == agentID {
			result = append(result, s.Copy())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (c *Client) ClaimCompletion(ctx context.Context, id types.SessionID, title string, at time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, exists := c.sessions[id]
	if !exists {
		return false, goerr.Wrap(apperr.ErrSessionNotFound, "session not found", goerr.TV(apperr.SessionIDKey, id))
	}
	if s.CompletionProcessedAt != nil {
		return false, nil
	}

	processedAt := at
	s.Name = title
	s.UpdatedAt = at
	s.CompletionProcessedAt = &processedAt
	return true, nil
}
