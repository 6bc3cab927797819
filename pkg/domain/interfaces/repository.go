package interfaces

import (
	"context"
	"time"

	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/model/user"
	"github.com/m-mizutani/gatherly/pkg/domain/model/workspace"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

// AgentRepository manages agent and version persistence. Versions are
// stored under their agent.
type AgentRepository interface {
	CreateAgent(ctx context.Context, a *agent.Agent) error
	GetAgent(ctx context.Context, id types.AgentID) (*agent.Agent, error)
	UpdateAgent(ctx context.Context, a *agent.Agent) error
	DeleteAgent(ctx context.Context, id types.AgentID) error
	ListAgents(ctx context.Context, workspaceID types.WorkspaceID) ([]*agent.Agent, error)
	ListAllAgentIDs(ctx context.Context) ([]types.AgentID, error)

	CreateVersion(ctx context.Context, v *agent.Version) error
	GetVersion(ctx context.Context, agentID types.AgentID, id types.VersionID) (*agent.Version, error)
	UpdateVersion(ctx context.Context, v *agent.Version) error
	DeleteVersion(ctx context.Context, agentID types.AgentID, id types.VersionID) error
	ListVersions(ctx context.Context, agentID types.AgentID) ([]*agent.Version, error)
}

// ChatSessionRepository manages persisted conversations.
type ChatSessionRepository interface {
	CreateSession(ctx context.Context, s *chat.Session) error
	GetSession(ctx context.Context, id types.SessionID) (*chat.Session, error)
	// PutSession overwrites the whole session document.
	PutSession(ctx context.Context, s *chat.Session) error
	RenameSession(ctx context.Context, id types.SessionID, name string, updatedAt time.Time) error
	DeleteSession(ctx context.Context, id types.SessionID) error
	ListSessionsByAgent(ctx context.Context, agentID types.AgentID) ([]*chat.Session, error)

	// ClaimCompletion atomically sets name, updated_at and
	// completion_processed_at if completion_processed_at is unset. It
	// returns false when another run already claimed the session.
	ClaimCompletion(ctx context.Context, id types.SessionID, title string, at time.Time) (bool, error)
}

// WorkspaceRepository reads tenancy records owned by another system.
type WorkspaceRepository interface {
	GetWorkspace(ctx context.Context, id types.WorkspaceID) (*workspace.Workspace, error)
	ListMembers(ctx context.Context, id types.WorkspaceID) ([]*workspace.Member, error)
}

// UserRepository reads user records owned by another system.
type UserRepository interface {
	GetUser(ctx context.Context, id types.UserID) (*user.User, error)
}

// Repository bundles every store the use cases need.
type Repository interface {
	AgentRepository
	ChatSessionRepository
	WorkspaceRepository
	UserRepository
}
