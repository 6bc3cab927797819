package interfaces

import (
	"context"

	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

type CreateAgentRequest struct {
	WorkspaceID types.WorkspaceID `json:"workspace_id"`
	Name        string            `json:"name"`
	Settings    agent.Settings    `json:"settings"`
	AuthorID    types.UserID      `json:"-"`
}

type AgentWithVersions struct {
	Agent     *agent.Agent   `json:"agent"`
	Current   *agent.Version `json:"current_version"`
	Published *agent.Version `json:"published_version,omitempty"`
}

// EffectiveSettings is the resolved configuration a conversation runs with.
type EffectiveSettings struct {
	AgentID   types.AgentID   `json:"agent_id"`
	AgentName string          `json:"agent_name"`
	VersionID types.VersionID `json:"version_id"`
	Settings  agent.Settings  `json:"settings"`
	Published bool            `json:"published"`
}

type AgentUseCases interface {
	CreateAgent(ctx context.Context, req *CreateAgentRequest) (*AgentWithVersions, error)
	GetAgent(ctx context.Context, id types.AgentID) (*AgentWithVersions, error)
	ListAgents(ctx context.Context, workspaceID types.WorkspaceID) ([]*agent.Agent, error)
	RenameAgent(ctx context.Context, id types.AgentID, name string) (*agent.Agent, error)
	DeleteAgent(ctx context.Context, id types.AgentID) error

	UpdateSettings(ctx context.Context, id types.AgentID, settings agent.Settings, authorID types.UserID) (*agent.Version, error)
	PublishVersion(ctx context.Context, id types.AgentID, versionID types.VersionID) (*AgentWithVersions, error)
	ListVersions(ctx context.Context, id types.AgentID) ([]*agent.Version, error)
	GetEffectiveSettings(ctx context.Context, id types.AgentID, usePublished bool) (*EffectiveSettings, error)
}

// SendTurnRequest drives one turn of a conversation without keeping a
// conversation instance between requests.
type SendTurnRequest struct {
	Mode         chat.Mode       `json:"mode"`
	AgentID      types.AgentID   `json:"agent_id"`
	SessionID    types.SessionID `json:"session_id,omitempty"`
	UsePublished bool            `json:"use_published"`
	Input        string          `json:"input"`

	// Messages carries the client side history in playground mode.
	Messages []chat.Message `json:"messages,omitempty"`
}

type SendTurnResponse struct {
	OK        bool            `json:"ok"`
	SessionID types.SessionID `json:"session_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	State     chat.State      `json:"state"`
	Completed bool            `json:"completed"`
	Reply     string          `json:"reply"`
	Messages  []chat.Message  `json:"messages"`
	Error     string          `json:"error,omitempty"`
}

type ChatUseCases interface {
	SendTurn(ctx context.Context, req *SendTurnRequest) (*SendTurnResponse, error)
	GetSession(ctx context.Context, id types.SessionID) (*chat.Session, error)
	ListSessions(ctx context.Context, agentID types.AgentID) ([]*chat.Session, error)
	RenameSession(ctx context.Context, id types.SessionID, name string) (*chat.Session, error)
	DeleteSession(ctx context.Context, id types.SessionID) error
}

type MaintenanceUseCases interface {
	ReconcileDrafts(ctx context.Context, agentID types.AgentID) (int, error)
	ReconcileAllDrafts(ctx context.Context) (int, error)
}
