package agent

import (
	"time"

	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

// Agent is a configurable conversational flow owned by a workspace. Its
// behaviour lives in versions; the agent only points at them.
type Agent struct {
	ID          types.AgentID     `json:"id"`
	WorkspaceID types.WorkspaceID `json:"workspace_id"`
	Name        string            `json:"name"`

	// CurrentVersionID is the version being edited. Empty only while the
	// agent is being created.
	CurrentVersionID types.VersionID `json:"current_version_id"`

	// PublishedVersionID is nil until the first publish.
	PublishedVersionID *types.VersionID `json:"published_version_id,omitempty"`

	CreatedByID types.UserID `json:"created_by_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsPublished reports whether the agent has a published version.
func (a *Agent) IsPublished() bool {
	return a.PublishedVersionID != nil && *a.PublishedVersionID != ""
}

// Copy returns a deep copy.
func (a *Agent) Copy() *Agent {
	c := *a
	if a.PublishedVersionID != nil {
		id := *a.PublishedVersionID
		c.PublishedVersionID = &id
	}
	return &c
}
