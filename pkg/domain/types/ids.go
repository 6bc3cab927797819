package types

import "context"

// AgentID identifies an agent (persisted as a "bot").
type AgentID string

func NewAgentID(ctx context.Context) AgentID { return AgentID(newUUID(ctx)) }
func (id AgentID) String() string           { return string(id) }
func (id AgentID) IsValid() bool            { return id != "" && isUUID(string(id)) }

// VersionID identifies one configuration snapshot of an agent.
type VersionID string

func NewVersionID(ctx context.Context) VersionID { return VersionID(newUUID(ctx)) }
func (id VersionID) String() string             { return string(id) }
func (id VersionID) IsValid() bool              { return id != "" && isUUID(string(id)) }

// SessionID identifies a persisted conversation (a "chat").
type SessionID string

func NewSessionID(ctx context.Context) SessionID { return SessionID(newUUID(ctx)) }
func (id SessionID) String() string             { return string(id) }
func (id SessionID) IsValid() bool              { return id != "" && isUUID(string(id)) }

// Short returns the first 8 characters of the id.
func (id SessionID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// WorkspaceID and UserID come from the tenancy system and are opaque.
type WorkspaceID string

func (id WorkspaceID) String() string { return string(id) }

type UserID string

func (id UserID) String() string { return string(id) }

type MemberID string

func (id MemberID) String() string { return string(id) }
