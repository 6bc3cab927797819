package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

func (c *Client) CreateAgent(ctx context.Context, a *agent.Agent) error {
	if a == nil {
		return goerr.New("agent cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.agents[a.ID]; exists {
		return goerr.New("agent already exists", goerr.T(apperr.ErrTagConflict), goerr.TV(apperr.AgentIDKey, a.ID))
	}
	c.agents[a.ID] = a.Copy()
	return nil
}

func (c *Client) GetAgent(ctx context.Context, id types.AgentID) (*agent.Agent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, exists := c.agents[id]
	if !exists {
		return nil, goerr.Wrap(apperr.ErrAgentNotFound, "agent not found", goerr.TV(apperr.AgentIDKey, id))
	}
	return a.Copy(), nil
}

func (c *Client) UpdateAgent(ctx context.Context, a *agent.Agent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.agents[a.ID]; !exists {
		return goerr.Wrap(apperr.ErrAgentNotFound, "agent not found", goerr.TV(apperr.AgentIDKey, a.ID))
	}
	c.agents[a.ID] = a.Copy()
	return nil
}

// DeleteAgent removes the agent row only. Versions are deleted separately.
func (c *Client) DeleteAgent(ctx context.Context, id types.AgentID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.agents, id)
	return nil
}

func (c *Client) ListAgents(ctx context.Context, workspaceID types.WorkspaceID) ([]*agent.Agent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []*agent.Agent
	for _, a := range c.agents {
		if a.WorkspaceID == workspaceID {
			result = append(result, a.Copy())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (c *Client) ListAllAgentIDs(ctx context.Context) ([]types.AgentID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]types.AgentID, 0, len(c.agents))
	for id := range c.agents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (c *Client) CreateVersion(ctx context.Context, v *agent.Version) error {
	if v == nil {
		return goerr.New("version cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.versions[v.AgentID]; !exists {
		c.versions[v.AgentID] = make(map[types.VersionID]*agent.Version)
	}
	if _, exists := c.versions[v.AgentID][v.ID]; exists {
		return goerr.New("version already exists", goerr.T(apperr.ErrTagConflict), goerr.TV(apperr.VersionIDKey, v.ID))
	}
	c.versions[v.AgentID][v.ID] = v.Copy()
	return nil
}

func (c *Client) GetVersion(ctx context.Context, agentID types.AgentID, id types.VersionID) (*agent.Version, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, exists := c.versions[agentID][id]
	if !exists {
		return nil, goerr.Wrap(apperr.ErrVersionNotFound, "version not found",
			goerr.TV(apperr.AgentIDKey, agentID),
			goerr.TV(apperr.VersionIDKey, id))
	}
	return v.Copy(), nil
}

func (c *Client) UpdateVersion(ctx context.Context, v *agent.Version) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.versions[v.AgentID][v.ID]; !exists {
		return goerr.Wrap(apperr.ErrVersionNotFound, "version not found",
			goerr.TV(apperr.AgentIDKey, v.AgentID),
			goerr.TV(apperr.VersionIDKey, v.ID))
	}
	c.versions[v.AgentID][v.ID] = v.Copy()
	return nil
}

func (c *Client) DeleteVersion(ctx context.Context, agentID types.AgentID, id types.VersionID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if vs, ok := c.versions[agentID]; ok {
		delete(vs, id)
		if len(vs) == 0 {
			delete(c.versions, agentID)
		}
	}
	return nil
}

// ListVersions returns versions newest first.
func (c *Client) ListVersions(ctx context.Context, agentID types.AgentID) ([]*agent.Version, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*agent.Version, 0, len(c.versions[agentID]))
	for _, v := range c.versions[agentID] {
		result = append(result, v.Copy())
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
