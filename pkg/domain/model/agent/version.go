package agent

import (
	"time"

	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

// DefaultInitialMessage is shown when a version carries no initial message.
const DefaultInitialMessage = "Hello! How can I help you today?"

// Settings is the behaviour-defining payload of a version.
type Settings struct {
	SystemPrompt   string `json:"system_prompt"`
	InitialMessage string `json:"initial_message"`
}

// Greeting returns the initial assistant message, falling back to the default.
func (s Settings) Greeting() string {
	if s.InitialMessage == "" {
		return DefaultInitialMessage
	}
	return s.InitialMessage
}

// Version is an immutable-once-published snapshot of an agent's settings.
type Version struct {
	ID          types.VersionID `json:"id"`
	AgentID     types.AgentID   `json:"agent_id"`
	Settings    Settings        `json:"settings"`
	Status      VersionStatus   `json:"status"`
	CreatedByID types.UserID    `json:"created_by_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

// Copy returns a deep copy.
func (v *Version) Copy() *Version {
	c := *v
	if v.PublishedAt != nil {
		t := *v.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

// LatestDraft returns the draft with the greatest CreatedAt, or nil.
// Ties keep the earlier element of versions.
func LatestDraft(versions []*Version) *Version {
	var latest *Version
	for _, v := range versions {
		if v.Status != StatusDraft {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	return latest
}
