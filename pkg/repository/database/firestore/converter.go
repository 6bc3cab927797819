package firestore

import (
	"time"

	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/model/user"
	"github.com/m-mizutani/gatherly/pkg/domain/model/workspace"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

type agentDoc struct {
	ID                 string    `firestore:"id"`
	WorkspaceID        string    `firestore:"workspace_id"`
	Name               string    `firestore:"name"`
	CurrentVersionID   string    `firestore:"current_version_id"`
	PublishedVersionID *string   `firestore:"published_version_id"`
	CreatedByID        string    `firestore:"created_by_id"`
	CreatedAt          time.Time `firestore:"created_at"`
	UpdatedAt          time.Time `firestore:"updated_at"`
}

type versionDoc struct {
	ID             string     `firestore:"id"`
	BotID          string     `firestore:"bot_id"`
	SystemPrompt   string     `firestore:"system_prompt"`
	InitialMessage string     `firestore:"initial_message"`
	Status         string     `firestore:"status"`
	CreatedByID    string     `firestore:"created_by_id"`
	CreatedAt      time.Time  `firestore:"created_at"`
	UpdatedAt      time.Time  `firestore:"updated_at"`
	PublishedAt    *time.Time `firestore:"published_at"`
}

type messageDoc struct {
	Role    string `firestore:"role"`
	Content string `firestore:"content"`
}

type chatDoc struct {
	ID                    string       `firestore:"id"`
	BotID                 string       `firestore:"bot_id"`
	Name                  string       `firestore:"name"`
	Messages              []messageDoc `firestore:"messages"`
	ExpiresAt             time.Time    `firestore:"expires_at"`
	CreatedAt             time.Time    `firestore:"created_at"`
	UpdatedAt             time.Time    `firestore:"updated_at"`
	CompletionProcessedAt *time.Time   `firestore:"completion_processed_at"`
}

type workspaceDoc struct {
	Name string `firestore:"name"`
}

type memberDoc struct {
	WorkspaceID string `firestore:"workspace_id"`
	UserID      string `firestore:"user_id"`
	Role        string `firestore:"role"`
}

type userDoc struct {
	DisplayName string `firestore:"display_name"`
	Email       string `firestore:"email"`
}

func agentToDoc(a *agent.Agent) *agentDoc {
	doc := &agentDoc{
		ID:               a.ID.String(),
		WorkspaceID:      a.WorkspaceID.String(),
		Name:             a.Name,
		CurrentVersionID: a.CurrentVersionID.String(),
		CreatedByID:      a.CreatedByID.String(),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if a.PublishedVersionID != nil {
		id := a.PublishedVersionID.String()
		doc.PublishedVersionID = &id
	}
	return doc
}

func docToAgent(doc *agentDoc) *agent.Agent {
	a := &agent.Agent{
		ID:               types.AgentID(doc.ID),
		WorkspaceID:      types.WorkspaceID(doc.WorkspaceID),
		Name:             doc.Name,
		CurrentVersionID: types.VersionID(doc.CurrentVersionID),
		CreatedByID:      types.UserID(doc.CreatedByID),
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	if doc.PublishedVersionID != nil && *doc.PublishedVersionID != "" {
		id := types.VersionID(*doc.PublishedVersionID)
		a.PublishedVersionID = &id
	}
	return a
}

func versionToDoc(v *agent.Version) *versionDoc {
	return &versionDoc{
		ID:             v.ID.String(),
		BotID:          v.AgentID.String(),
		SystemPrompt:   v.Settings.SystemPrompt,
		InitialMessage: v.Settings.InitialMessage,
		Status:         v.Status.String(),
		CreatedByID:    v.CreatedByID.String(),
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
		PublishedAt:    v.PublishedAt,
	}
}

func docToVersion(doc *versionDoc) *agent.Version {
	return &agent.Version{
		ID:      types.VersionID(doc.ID),
		AgentID: types.AgentID(doc.BotID),
		Settings: agent.Settings{
			SystemPrompt:   doc.SystemPrompt,
			InitialMessage: doc.InitialMessage,
		},
		Status:      agent.VersionStatus(doc.Status),
		CreatedByID: types.UserID(doc.CreatedByID),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		PublishedAt: doc.PublishedAt,
	}
}

func sessionToDoc(s *chat.Session) *chatDoc {
	msgs := make([]messageDoc, len(s.Messages))
	for i, m := range s.Messages {
		msgs[i] = messageDoc{Role: string(m.Role), Content: m.Content}
	}
	return &chatDoc{
		ID:                    s.ID.String(),
		BotID:                 s.AgentID.String(),
		Name:                  s.Name,
		Messages:              msgs,
		ExpiresAt:             s.ExpiresAt,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
		CompletionProcessedAt: s.CompletionProcessedAt,
	}
}

func docToSession(doc *chatDoc) *chat.Session {
	msgs := make([]chat.Message, len(doc.Messages))
	for i, m := range doc.Messages {
		msgs[i] = chat.Message{Role: chat.Role(m.Role), Content: m.Content}
	}
	return &chat.Session{
		ID:                    types.SessionID(doc.ID),
		AgentID:               types.AgentID(doc.BotID),
		Name:                  doc.Name,
		Messages:              msgs,
		ExpiresAt:             doc.ExpiresAt,
		CreatedAt:             doc.CreatedAt,
		UpdatedAt:             doc.UpdatedAt,
		CompletionProcessedAt: doc.CompletionProcessedAt,
	}
}

func docToWorkspace(id string, doc *workspaceDoc) *workspace.Workspace {
	return &workspace.Workspace{ID: types.WorkspaceID(id), Name: doc.Name}
}

func docToMember(id string, doc *memberDoc) *workspace.Member {
	return &workspace.Member{
		ID:          types.MemberID(id),
		WorkspaceID: types.WorkspaceID(doc.WorkspaceID),
		UserID:      types.UserID(doc.UserID),
		Role:        doc.Role,
	}
}

func docToUser(id string, doc *userDoc) *user.User {
	return &user.User{ID: types.UserID(id), DisplayName: doc.DisplayName, Email: doc.Email}
}
