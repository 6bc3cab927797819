package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

func (c *Client) agentRef(id types.AgentID) *firestore.DocumentRef {
	return c.client.Collection(collectionAgents).Doc(id.String())
}

func (c *Client) versionRef(agentID types.AgentID, id types.VersionID) *firestore.DocumentRef {
	return c.agentRef(agentID).Collection(subCollectionVersions).Doc(id.String())
}

func (c *Client) CreateAgent(ctx context.Context, a *agent.Agent) error {
	if a == nil {
		return goerr.New("agent cannot be nil")
	}

	if _, err := c.agentRef(a.ID).Create(ctx, agentToDoc(a)); err != nil {
		return goerr.Wrap(err, "failed to create agent",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.AgentIDKey, a.ID))
	}
	return nil
}

func (c *Client) GetAgent(ctx context.Context, id types.AgentID) (*agent.Agent, error) {
	doc, err := c.agentRef(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(apperr.ErrAgentNotFound, "agent not found", goerr.TV(apperr.AgentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get agent",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.AgentIDKey, id))
	}

	var d agentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal agent", goerr.TV(apperr.AgentIDKey, id))
	}
	return docToAgent(&d), nil
}

func (c *Client) UpdateAgent(ctx context.Context, a *agent.Agent) error {
	ref := c.agentRef(a.ID)
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, agentToDoc(a))
	})
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(apperr.ErrAgentNotFound, "agent not found", goerr.TV(apperr.AgentIDKey, a.ID))
		}
		return goerr.Wrap(err, "failed to update agent",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.AgentIDKey, a.ID))
	}
	return nil
}

// DeleteAgent removes the agent document. The versions sub-collection is
// not removed by Firestore and must be deleted beforehand.
func (c *Client) DeleteAgent(ctx context.Context, id types.AgentID) error {
	if _, err := c.agentRef(id).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete agent",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.AgentIDKey, id))
	}
	return nil
}

// ListAgents returns a workspace's agents newest first. Sorting happens
// here to avoid a composite index.
func (c *Client) ListAgents(ctx context.Context, workspaceID types.WorkspaceID) ([]*agent.Agent, error) {
	iter := c.client.Collection(collectionAgents).
		Where("workspace_id", "==", workspaceID.String()).
		Documents(ctx)

	agents, err := getAll(iter, collectionAgents, func(doc *firestore.DocumentSnapshot) (*agent.Agent, error) {
		var d agentDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, err
		}
		return docToAgent(&d), nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agents", goerr.TV(apperr.WorkspaceIDKey, workspaceID))
	}

	sort.Slice(agents, func(i, j int) bool {
		return agents[i].CreatedAt.After(agents[j].CreatedAt)
	})
	return agents, nil
}

func (c *Client) ListAllAgentIDs(ctx context.Context) ([]types.AgentID, error) {
	iter := c.client.Collection(collectionAgents).Select().Documents(ctx)
	ids, err := getAll(iter, collectionAgents, func(doc *firestore.DocumentSnapshot) (types.AgentID, error) {
		return types.AgentID(doc.Ref.ID), nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agent ids")
	}
	return ids, nil
}

func (c *Client) CreateVersion(ctx context.Context, v *agent.Version) error {
	if v == nil {
		return goerr.New("version cannot be nil")
	}

	if _, err := c.versionRef(v.AgentID, v.ID).Create(ctx, versionToDoc(v)); err != nil {
		return goerr.Wrap(err, "failed to create version",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.AgentIDKey, v.AgentID),
			goerr.TV(apperr.VersionIDKey, v.ID))
	}
	return nil
}

func (c *Client) GetVersion(ctx context.Context, agentID types.AgentID, id types.VersionID) (*agent.Version, error) {
	doc, err := c.versionRef(agentID, id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(apperr.ErrVersionNotFound, "version not found",
				goerr.TV(apperr.AgentIDKey, agentID),
				goerr.TV(apperr.VersionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get version",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.AgentIDKey, agentID),
			goerr.TV(apperr.VersionIDKey, id))
	}

	var d versionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal version", goerr.TV(apperr.VersionIDKey, id))
	}
	return docToVersion(&d), nil
}

func (c *Client) UpdateVersion(ctx context.Context, v *agent.Version) error {
	ref := c.versionRef(v.AgentID, v.ID)
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, versionToDoc(v))
	})
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(apperr.ErrVersionNotFound, "version not found",
				goerr.TV(apperr.AgentIDKey, v.AgentID),
				goerr.TV(apperr.VersionIDKey, v.ID))
		}
		return goerr.Wrap(err, "failed to update version",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.VersionIDKey, v.ID))
	}
	return nil
}

func (c *Client) DeleteVersion(ctx context.Context, agentID types.AgentID, id types.VersionID) error {
	if _, err := c.versionRef(agentID, id).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete version",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.AgentIDKey, agentID),
			goerr.TV(apperr.VersionIDKey, id))
	}
	return nil
}

// ListVersions returns the agent's versions newest first.
func (c *Client) ListVersions(ctx context.Context, agentID types.AgentID) ([]*agent.Version, error) {
	iter := c.agentRef(agentID).Collection(subCollectionVersions).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)

	versions, err := getAll(iter, subCollectionVersions, func(doc *firestore.DocumentSnapshot) (*agent.Version, error) {
		var d versionDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, err
		}
		return docToVersion(&d), nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list versions", goerr.TV(apperr.AgentIDKey, agentID))
	}
	return versions, nil
}
