package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

// VersionStore owns the draft/published lifecycle of agent versions.
//
// An agent has at most one draft at a time. UpsertDraft enforces this with a
// read followed by a write and no lock, so two concurrent calls may both
// create a draft. Readers always pick the most recent draft and
// ReconcileDrafts archives the rest.
type VersionStore struct {
	repo  interfaces.AgentRepository
	clock interfaces.Clock
}

// Effective is the version a conversation runs with.
type Effective struct {
	Settings agent.Settings
	Version  *agent.Version
}

func NewVersionStore(repo interfaces.AgentRepository, clock interfaces.Clock) *VersionStore {
	return &VersionStore{repo: repo, clock: clock}
}

// CreateInitialVersion creates the first draft of an agent. It does not
// touch the agent record.
func (s *VersionStore) CreateInitialVersion(ctx context.Context, agentID types.AgentID, settings agent.Settings, authorID types.UserID) (*agent.Version, error) {
	if authorID == "" {
		return nil, goerr.Wrap(apperr.ErrValidation, "author is required", goerr.TV(apperr.AgentIDKey, agentID))
	}

	now := s.clock.Now()
	v := &agent.Version{
		ID:          types.NewVersionID(ctx),
		AgentID:     agentID,
		Settings:    settings,
		Status:      agent.StatusDraft,
		CreatedByID: authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := agent.ValidateVersion(v); err != nil {
		return nil, err
	}

	if err := s.repo.CreateVersion(ctx, v); err != nil {
		return nil, goerr.Wrap(err, "failed to create initial version", goerr.TV(apperr.AgentIDKey, agentID))
	}
	return v, nil
}

// UpsertDraft overwrites the most recent draft, or creates a new draft and
// points the agent's current version at it when there is none.
func (s *VersionStore) UpsertDraft(ctx context.Context, agentID types.AgentID, settings agent.Settings, authorID types.UserID) (*agent.Version, error) {
	if authorID == "" {
		return nil, goerr.Wrap(apperr.ErrValidation, "author is required", goerr.TV(apperr.AgentIDKey, agentID))
	}
	if err := agent.ValidateSettings(settings); err != nil {
		return nil, err
	}

	a, err := s.repo.GetAgent(ctx, agentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, agentID))
	}

	versions, err := s.repo.ListVersions(ctx, agentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list versions", goerr.TV(apperr.AgentIDKey, agentID))
	}

	now := s.clock.Now()

	if draft := agent.LatestDraft(versions); draft != nil {
		draft.Settings = settings
		draft.UpdatedAt = now
		if err := s.repo.UpdateVersion(ctx, draft); err != nil {
			return nil, goerr.Wrap(err, "failed to update draft",
				goerr.TV(apperr.AgentIDKey, agentID),
				goerr.TV(apperr.VersionIDKey, draft.ID))
		}

		if a.CurrentVersionID != draft.ID {
			if err := s.pointCurrent(ctx, a, draft.ID); err != nil {
				return nil, err
			}
		}
		return draft, nil
	}

	draft := &agent.Version{
		ID:          types.NewVersionID(ctx),
		AgentID:     agentID,
		Settings:    settings,
		Status:      agent.StatusDraft,
		CreatedByID: authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateVersion(ctx, draft); err != nil {
		return nil, goerr.Wrap(err, "failed to create draft", goerr.TV(apperr.AgentIDKey, agentID))
	}
	if err := s.pointCurrent(ctx, a, draft.ID); err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Debug("new draft created", "agent_id", agentID, "version_id", draft.ID)
	return draft, nil
}

// Publish freezes a draft. The previously published version, if any, is
// archived.
func (s *VersionStore) Publish(ctx context.Context, agentID types.AgentID, versionID types.VersionID) error {
	a, err := s.repo.GetAgent(ctx, agentID)
	if err != nil {
		return goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, agentID))
	}

	v, err := s.repo.GetVersion(ctx, agentID, versionID)
	if err != nil {
		return goerr.Wrap(err, "failed to get version",
			goerr.TV(apperr.AgentIDKey, agentID),
			goerr.TV(apperr.VersionIDKey, versionID))
	}
	if v.AgentID != agentID {
		return goerr.Wrap(apperr.ErrVersionNotFound, "version belongs to another agent",
			goerr.TV(apperr.AgentIDKey, agentID),
			goerr.TV(apperr.VersionIDKey, versionID))
	}
	if v.Status != agent.StatusDraft {
		return goerr.Wrap(apperr.ErrInvalidState, "only a draft can be published",
			goerr.TV(apperr.VersionIDKey, versionID),
			goerr.TV(apperr.StatusKey, v.Status.String()))
	}

	now := s.clock.Now()
	draft := v.Copy()
	v.Status = agent.StatusPublished
	v.PublishedAt = &now
	v.UpdatedAt = now

	previous := a.PublishedVersionID
	a.PublishedVersionID = &versionID
	a.UpdatedAt = now

	// the version returns to draft when the agent cannot point at it
	saga := NewSaga("publish_version").
		Step("publish_version",
			func(ctx context.Context) error {
				return s.repo.UpdateVersion(ctx, v)
			},
			func(ctx context.Context) error {
				return s.repo.UpdateVersion(ctx, draft)
			}).
		Step("set_published_version",
			func(ctx context.Context) error {
				return s.repo.UpdateAgent(ctx, a)
			}, nil)
	if err := saga.Run(ctx); err != nil {
		return goerr.Wrap(err, "failed to publish version",
			goerr.TV(apperr.AgentIDKey, agentID),
			goerr.TV(apperr.VersionIDKey, versionID))
	}

	if previous != nil && *previous != versionID {
		if err := s.archive(ctx, agentID, *previous); err != nil {
			return err
		}
	}

	ctxlog.From(ctx).Info("version published", "agent_id", agentID, "version_id", versionID)
	return nil
}

// ResolveEffective returns the published version when usePublished is set,
// otherwise the current one.
func (s *VersionStore) ResolveEffective(ctx context.Context, agentID types.AgentID, usePublished bool) (*Effective, error) {
	a, err := s.repo.GetAgent(ctx, agentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, agentID))
	}

	var versionID types.VersionID
	if usePublished {
		if a.PublishedVersionID == nil {
			return nil, goerr.Wrap(apperr.ErrNotPublished, "no published version", goerr.TV(apperr.AgentIDKey, agentID))
		}
		versionID = *a.PublishedVersionID
	} else {
		if a.CurrentVersionID == "" {
			return nil, goerr.Wrap(apperr.ErrVersionNotFound, "agent has no current version", goerr.TV(apperr.AgentIDKey, agentID))
		}
		versionID = a.CurrentVersionID
	}

	v, err := s.repo.GetVersion(ctx, agentID, versionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get effective version",
			goerr.TV(apperr.AgentIDKey, agentID),
			goerr.TV(apperr.VersionIDKey, versionID))
	}

	return &Effective{Settings: v.Settings, Version: v}, nil
}

// ListVersions returns the version history, newest first.
func (s *VersionStore) ListVersions(ctx context.Context, agentID types.AgentID) ([]*agent.Version, error) {
	versions, err := s.repo.ListVersions(ctx, agentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list versions", goerr.TV(apperr.AgentIDKey, agentID))
	}
	return versions, nil
}

// ReconcileDrafts archives every draft but the most recent one and returns
// how many were archived.
func (s *VersionStore) ReconcileDrafts(ctx context.Context, agentID types.AgentID) (int, error) {
	versions, err := s.repo.ListVersions(ctx, agentID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list versions", goerr.TV(apperr.AgentIDKey, agentID))
	}

	survivor := agent.LatestDraft(versions)
	if survivor == nil {
		return 0, nil
	}

	archived := 0
	for _, v := range versions {
		if v.Status != agent.StatusDraft || v.ID == survivor.ID {
			continue
		}
		if err := s.archive(ctx, agentID, v.ID); err != nil {
			return archived, err
		}
		archived++
	}
	if archived == 0 {
		return 0, nil
	}

	a, err := s.repo.GetAgent(ctx, agentID)
	if err != nil {
		return archived, goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, agentID))
	}
	if a.CurrentVersionID != survivor.ID {
		if err := s.pointCurrent(ctx, a, survivor.ID); err != nil {
			return archived, err
		}
	}

	ctxlog.From(ctx).Warn("duplicate drafts reconciled",
		"agent_id", agentID,
		"survivor", survivor.ID,
		"archived", archived)
	return archived, nil
}

func (s *VersionStore) archive(ctx context.Context, agentID types.AgentID, versionID types.VersionID) error {
	v, err := s.repo.GetVersion(ctx, agentID, versionID)
	if err != nil {
		if errors.Is(err, apperr.ErrVersionNotFound) {
			return nil
		}
		return goerr.Wrap(err, "failed to get version to archive", goerr.TV(apperr.VersionIDKey, versionID))
	}

	v.Status = agent.StatusArchived
	v.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateVersion(ctx, v); err != nil {
		return goerr.Wrap(err, "failed to archive version", goerr.TV(apperr.VersionIDKey, versionID))
	}
	return nil
}

func (s *VersionStore) pointCurrent(ctx context.Context, a *agent.Agent, versionID types.VersionID) error {
	a.CurrentVersionID = versionID
	a.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateAgent(ctx, a); err != nil {
		return goerr.Wrap(err, "failed to update current version",
			goerr.TV(apperr.AgentIDKey, a.ID),
			goerr.TV(apperr.VersionIDKey, versionID))
	}
	return nil
}
