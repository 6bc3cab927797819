package workspace

import "github.com/m-mizutani/gatherly/pkg/domain/types"

// Workspace is a tenant that owns agents.
type Workspace struct {
	ID   types.WorkspaceID `json:"id"`
	Name string            `json:"name"`
}

// Member links a user to a workspace.
type Member struct {
	ID          types.MemberID    `json:"id"`
	WorkspaceID types.WorkspaceID `json:"workspace_id"`
	UserID      types.UserID      `json:"user_id"`
	Role        string            `json:"role"`
}
