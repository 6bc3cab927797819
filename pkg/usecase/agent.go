package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

// CreateAgent creates an agent with its initial draft. The store has no
// multi document transaction, so the steps run as a saga and an agent left
// without a version is deleted again.
func (uc *UseCases) CreateAgent(ctx context.Context, req *interfaces.CreateAgentRequest) (*interfaces.AgentWithVersions, error) {
	if req == nil {
		return nil, goerr.Wrap(apperr.ErrValidation, "create agent request cannot be nil")
	}
	if req.AuthorID == "" {
		return nil, goerr.Wrap(apperr.ErrValidation, "author is required")
	}
	if err := agent.ValidateSettings(req.Settings); err != nil {
		return nil, err
	}

	now := uc.collab.Clock.Now()
	a := &agent.Agent{
		ID:          types.NewAgentID(ctx),
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		CreatedByID: req.AuthorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := agent.ValidateAgent(a); err != nil {
		return nil, err
	}

	var initial *agent.Version

	saga := NewSaga("create_agent").
		Step("create_agent",
			func(ctx context.Context) error {
				return uc.collab.Repo.CreateAgent(ctx, a)
			},
			func(ctx context.Context) error {
				return uc.collab.Repo.DeleteAgent(ctx, a.ID)
			}).
		Step("create_initial_version",
			func(ctx context.Context) error {
				v, err := uc.versions.CreateInitialVersion(ctx, a.ID, req.Settings, req.AuthorID)
				if err != nil {
					return err
				}
				initial = v
				return nil
			},
			func(ctx context.Context) error {
				return uc.collab.Repo.DeleteVersion(ctx, a.ID, initial.ID)
			}).
		Step("set_current_version",
			func(ctx context.Context) error {
				a.CurrentVersionID = initial.ID
				a.UpdatedAt = uc.collab.Clock.Now()
				return uc.collab.Repo.UpdateAgent(ctx, a)
			}, nil)

	if err := saga.Run(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to create agent",
			goerr.TV(apperr.WorkspaceIDKey, req.WorkspaceID))
	}

	ctxlog.From(ctx).Info("agent created",
		"agent_id", a.ID,
		"workspace_id", a.WorkspaceID,
		"version_id", initial.ID)

	return &interfaces.AgentWithVersions{Agent: a, Current: initial}, nil
}

// GetAgent returns the agent with its current and published versions.
func (uc *UseCases) GetAgent(ctx context.Context, id types.AgentID) (*interfaces.AgentWithVersions, error) {
	a, err := uc.collab.Repo.GetAgent(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, id))
	}

	result := &interfaces.AgentWithVersions{Agent: a}

	if a.CurrentVersionID != "" {
		v, err := uc.collab.Repo.GetVersion(ctx, id, a.CurrentVersionID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get current version",
				goerr.TV(apperr.AgentIDKey, id),
				goerr.TV(apperr.VersionIDKey, a.CurrentVersionID))
		}
		result.Current = v
	}

	if a.PublishedVersionID != nil {
		if *a.PublishedVersionID == a.CurrentVersionID {
			result.Published = result.Current
		} else {
			v, err := uc.collab.Repo.GetVersion(ctx, id, *a.PublishedVersionID)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to get published version",
					goerr.TV(apperr.AgentIDKey, id),
					goerr.TV(apperr.VersionIDKey, *a.PublishedVersionID))
			}
			result.Published = v
		}
	}

	return result, nil
}

func (uc *UseCases) ListAgents(ctx context.Context, workspaceID types.WorkspaceID) ([]*agent.Agent, error) {
	if workspaceID == "" {
		return nil, goerr.Wrap(apperr.ErrValidation, "workspace id is required")
	}

	agents, err := uc.collab.Repo.ListAgents(ctx, workspaceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agents", goerr.TV(apperr.WorkspaceIDKey, workspaceID))
	}
	return agents, nil
}

func (uc *UseCases) RenameAgent(ctx context.Context, id types.AgentID, name string) (*agent.Agent, error) {
	if err := agent.ValidateName(name); err != nil {
		return nil, err
	}

	a, err := uc.collab.Repo.GetAgent(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, id))
	}

	a.Name = name
	a.UpdatedAt = uc.collab.Clock.Now()
	if err := uc.collab.Repo.UpdateAgent(ctx, a); err != nil {
		return nil, goerr.Wrap(err, "failed to rename agent", goerr.TV(apperr.AgentIDKey, id))
	}
	return a, nil
}

// DeleteAgent removes the agent's sessions, then its versions, then the
// agent. It is not atomic: a failure leaves the remaining children in place
// and reports the step that failed.
func (uc *UseCases) DeleteAgent(ctx context.Context, id types.AgentID) error {
	if _, err := uc.collab.Repo.GetAgent(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, id))
	}

	logger := ctxlog.From(ctx).With("agent_id", id)

	sessions, err := uc.collab.Repo.ListSessionsByAgent(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to list sessions",
			goerr.TV(apperr.AgentIDKey, id), goerr.TV(apperr.StepKey, "delete_sessions"))
	}
	for _, s := range sessions {
		if err := uc.collab.Repo.DeleteSession(ctx, s.ID); err != nil {
			return goerr.Wrap(err, "failed to delete session",
				goerr.TV(apperr.AgentIDKey, id),
				goerr.TV(apperr.SessionIDKey, s.ID),
				goerr.TV(apperr.StepKey, "delete_sessions"))
		}
	}

	versions, err := uc.collab.Repo.ListVersions(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to list versions",
			goerr.TV(apperr.AgentIDKey, id), goerr.TV(apperr.StepKey, "delete_versions"))
	}
	for _, v := range versions {
		if err := uc.collab.Repo.DeleteVersion(ctx, id, v.ID); err != nil {
			return goerr.Wrap(err, "failed to delete version",
				goerr.TV(apperr.AgentIDKey, id),
				goerr.TV(apperr.VersionIDKey, v.ID),
				goerr.TV(apperr.StepKey, "delete_versions"))
		}
	}

	if err := uc.collab.Repo.DeleteAgent(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete agent",
			goerr.TV(apperr.AgentIDKey, id), goerr.TV(apperr.StepKey, "delete_agent"))
	}

	logger.Info("agent deleted", "sessions", len(sessions), "versions", len(versions))
	return nil
}

// UpdateSettings saves settings into the agent's single draft.
func (uc *UseCases) UpdateSettings(ctx context.Context, id types.AgentID, settings agent.Settings, authorID types.UserID) (*agent.Version, error) {
	return uc.versions.UpsertDraft(ctx, id, settings, authorID)
}

func (uc *UseCases) PublishVersion(ctx context.Context, id types.AgentID, versionID types.VersionID) (*interfaces.AgentWithVersions, error) {
	if err := uc.versions.Publish(ctx, id, versionID); err != nil {
		return nil, err
	}
	return uc.GetAgent(ctx, id)
}

func (uc *UseCases) ListVersions(ctx context.Context, id types.AgentID) ([]*agent.Version, error) {
	if _, err := uc.collab.Repo.GetAgent(ctx, id); err != nil {
		return nil, goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, id))
	}
	return uc.versions.ListVersions(ctx, id)
}

// GetEffectiveSettings resolves the settings a conversation would use. It
// fails with ErrNotPublished when published settings are requested but the
// agent has never been published. An empty initial message is replaced by
// the default greeting.
func (uc *UseCases) GetEffectiveSettings(ctx context.Context, id types.AgentID, usePublished bool) (*interfaces.EffectiveSettings, error) {
	a, err := uc.collab.Repo.GetAgent(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, id))
	}

	eff, err := uc.versions.ResolveEffective(ctx, id, usePublished)
	if err != nil {
		return nil, err
	}

	settings := eff.Settings
	settings.InitialMessage = settings.Greeting()

	return &interfaces.EffectiveSettings{
		AgentID:   id,
		AgentName: a.Name,
		VersionID: eff.Version.ID,
		Settings:  settings,
		Published: eff.Version.Status == agent.StatusPublished,
	}, nil
}
