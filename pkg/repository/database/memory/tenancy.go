package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/model/user"
	"github.com/m-mizutani/gatherly/pkg/domain/model/workspace"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

// Tenancy records are owned by another system. The Put methods exist so
// the in-memory backend can be seeded.

func (c *Client) PutWorkspace(ctx context.Context, ws *workspace.Workspace) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *ws
	c.workspaces[ws.ID] = &copied
	return nil
}

func (c *Client) PutMember(ctx context.Context, m *workspace.Member) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *m
	c.members[m.WorkspaceID] = append(c.members[m.WorkspaceID], &copied)
	return nil
}

func (c *Client) PutUser(ctx context.Context, u *user.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *u
	c.users[u.ID] = &copied
	return nil
}

func (c *Client) GetWorkspace(ctx context.Context, id types.WorkspaceID) (*workspace.Workspace, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ws, exists := c.workspaces[id]
	if !exists {
		return nil, goerr.Wrap(apperr.ErrWorkspaceNotFound, "workspace not found", goerr.TV(apperr.WorkspaceIDKey, id))
	}
	copied := *ws
	return &copied, nil
}

func (c *Client) ListMembers(ctx context.Context, id types.WorkspaceID) ([]*workspace.Member, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*workspace.Member, 0, len(c.members[id]))
	for _, m := range c.members[id] {
		copied := *m
		result = append(result, &copied)
	}
	return result, nil
}

func (c *Client) GetUser(ctx context.Context, id types.UserID) (*user.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, exists := c.users[id]
	if !exists {
		return nil, goerr.Wrap(apperr.ErrUserNotFound, "user not found", goerr.TV(apperr.UserIDKey, id))
	}
	copied := *u
	return &copied, nil
}
