package apperr

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

// Domain entity keys
var (
	AgentIDKey     = goerr.NewTypedKey[types.AgentID]("agent_id")
	VersionIDKey   = goerr.NewTypedKey[types.VersionID]("version_id")
	SessionIDKey   = goerr.NewTypedKey[types.SessionID]("session_id")
	WorkspaceIDKey = goerr.NewTypedKey[types.WorkspaceID]("workspace_id")
	UserIDKey      = goerr.NewTypedKey[types.UserID]("user_id")
)

// Processing keys
var (
	StepKey       = goerr.NewTypedKey[string]("step")
	StatusKey     = goerr.NewTypedKey[string]("status")
	HTTPStatusKey = goerr.NewTypedKey[int]("http_status")
	ModelKey      = goerr.NewTypedKey[string]("model")
	ModeKey       = goerr.NewTypedKey[string]("mode")
)

// Firestore keys
var (
	CollectionKey = goerr.NewTypedKey[string]("collection")
	DocumentIDKey = goerr.NewTypedKey[string]("document_id")
	ProjectIDKey  = goerr.NewTypedKey[string]("project_id")
)
