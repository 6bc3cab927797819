package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/model/user"
	"github.com/m-mizutani/gatherly/pkg/domain/model/workspace"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

func (c *Client) GetWorkspace(ctx context.Context, id types.WorkspaceID) (*workspace.Workspace, error) {
	doc, err := c.client.Collection(collectionWorkspaces).Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(apperr.ErrWorkspaceNotFound, "workspace not found", goerr.TV(apperr.WorkspaceIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get workspace",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.WorkspaceIDKey, id))
	}

	var d workspaceDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal workspace", goerr.TV(apperr.WorkspaceIDKey, id))
	}
	return docToWorkspace(doc.Ref.ID, &d), nil
}

func (c *Client) ListMembers(ctx context.Context, id types.WorkspaceID) ([]*workspace.Member, error) {
	iter := c.client.Collection(collectionMembers).
		Where("workspace_id", "==", id.String()).
		Documents(ctx)

	members, err := getAll(iter, collectionMembers, func(doc *firestore.DocumentSnapshot) (*workspace.Member, error) {
		var d memberDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, err
		}
		return docToMember(doc.Ref.ID, &d), nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list members", goerr.TV(apperr.WorkspaceIDKey, id))
	}
	return members, nil
}

func (c *Client) GetUser(ctx context.Context, id types.UserID) (*user.User, error) {
	doc, err := c.client.Collection(collectionUsers).Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(apperr.ErrUserNotFound, "user not found", goerr.TV(apperr.UserIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get user",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.UserIDKey, id))
	}

	var d userDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.TV(apperr.UserIDKey, id))
	}
	return docToUser(doc.Ref.ID, &d), nil
}

// Seed writes tenancy records. Used by tests against a real database.
func (c *Client) PutWorkspace(ctx context.Context, ws *workspace.Workspace) error {
	_, err := c.client.Collection(collectionWorkspaces).Doc(ws.ID.String()).Set(ctx, &workspaceDoc{Name: ws.Name})
	if err != nil {
		return goerr.Wrap(err, "failed to put workspace", goerr.TV(apperr.WorkspaceIDKey, ws.ID))
	}
	return nil
}

func (c *Client) PutMember(ctx context.Context, m *workspace.Member) error {
	_, err := c.client.Collection(collectionMembers).Doc(m.ID.String()).Set(ctx, &memberDoc{
		WorkspaceID: m.WorkspaceID.String(),
		UserID:      m.UserID.String(),
		Role:        m.Role,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put member", goerr.TV(apperr.WorkspaceIDKey, m.WorkspaceID))
	}
	return nil
}

func (c *Client) PutUser(ctx context.Context, u *user.User) error {
	_, err := c.client.Collection(collectionUsers).Doc(u.ID.String()).Set(ctx, &userDoc{
		DisplayName: u.DisplayName,
		Email:       u.Email,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.TV(apperr.UserIDKey, u.ID))
	}
	return nil
}
