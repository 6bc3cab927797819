package memory

import (
	"sync"

	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/model/user"
	"github.com/m-mizutani/gatherly/pkg/domain/model/workspace"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

// Client is an in-memory implementation of interfaces.Repository. Every
// read returns a copy.
type Client struct {
	mu         sync.RWMutex
	agents     map[types.AgentID]*agent.Agent
	versions   map[types.AgentID]map[types.VersionID]*agent.Version
	sessions   map[types.SessionID]*chat.Session
	workspaces map[types.WorkspaceID]*workspace.Workspace
	members    map[types.WorkspaceID][]*workspace.Member
	users      map[types.UserID]*user.User
}

var _ interfaces.Repository = (*Client)(nil)

// New creates a new in-memory client
func New() *Client {
	return &Client{
		agents:     make(map[types.AgentID]*agent.Agent),
		versions:   make(map[types.AgentID]map[types.VersionID]*agent.Version),
		sessions:   make(map[types.SessionID]*chat.Session),
		workspaces: make(map[types.WorkspaceID]*workspace.Workspace),
		members:    make(map[types.WorkspaceID][]*workspace.Member),
		users:      make(map[types.UserID]*user.User),
	}
}
