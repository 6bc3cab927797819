package chat

import (
	"time"

	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

// Transcript is the archived form of a completed session.
type Transcript struct {
	SessionID     types.SessionID   `json:"session_id"`
	AgentID       types.AgentID     `json:"agent_id"`
	AgentName     string            `json:"agent_name"`
	WorkspaceID   types.WorkspaceID `json:"workspace_id"`
	WorkspaceName string            `json:"workspace_name"`
	Title         string            `json:"title"`
	Messages      []Message         `json:"messages"`
	CompletedAt   time.Time         `json:"completed_at"`
}
