package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
	"github.com/m-mizutani/gt"
)

func TestCreateAgent(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()

	created, err := f.uc.CreateAgent(ctx, &interfaces.CreateAgentRequest{
		WorkspaceID: f.workspace.ID,
		Name:        "Intake Bot",
		Settings:    defaultSettings(),
		AuthorID:    f.author,
	})
	gt.NoError(t, err).Required()

	gt.True(t, created.Agent.ID.IsValid())
	gt.Equal(t, created.Agent.CurrentVersionID, created.Current.ID)
	gt.Nil(t, created.Agent.PublishedVersionID)
	gt.Equal(t, created.Current.Status, agent.StatusDraft)
	gt.Equal(t, created.Current.Settings, defaultSettings())
	gt.Equal(t, f.repo.Calls(), []string{"CreateAgent", "CreateVersion", "UpdateAgent"})

	got, err := f.uc.GetAgent(ctx, created.Agent.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, got.Agent.CurrentVersionID, created.Current.ID)
	gt.Equal(t, got.Current.ID, created.Current.ID)
	gt.Nil(t, got.Published)
}

func TestCreateAgent_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()

	testCases := []struct {
		name string
		req  *interfaces.CreateAgentRequest
	}{
		{"nil request", nil},
		{"no author", &interfaces.CreateAgentRequest{WorkspaceID: "ws-1", Name: "Bot"}},
		{"no name", &interfaces.CreateAgentRequest{WorkspaceID: "ws-1", AuthorID: "u"}},
		{"no workspace", &interfaces.CreateAgentRequest{Name: "Bot", AuthorID: "u"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.CreateAgent(ctx, tc.req)
			gt.Error(t, err)
			gt.Equal(t, apperr.KindOf(err), apperr.KindValidation)
			gt.A(t, f.repo.Calls()).Length(0)
		})
	}
}

func TestCreateAgent_RollsBackWhenVersionFails(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	versionErr := errors.New("version store unavailable")
	f.repo.Fail("CreateVersion", versionErr)

	_, err := f.uc.CreateAgent(ctx, &interfaces.CreateAgentRequest{
		WorkspaceID: f.workspace.ID,
		Name:        "Intake Bot",
		Settings:    defaultSettings(),
		AuthorID:    f.author,
	})
	gt.True(t, errors.Is(err, versionErr))
	gt.Equal(t, f.repo.Calls(), []string{"CreateAgent", "CreateVersion", "DeleteAgent"})

	agents, err := f.uc.ListAgents(ctx, f.workspace.ID)
	gt.NoError(t, err)
	gt.A(t, agents).Length(0)
}

func TestCreateAgent_RollsBackWhenBackfillFails(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	f.repo.Fail("UpdateAgent", errors.New("update failed"))

	_, err := f.uc.CreateAgent(ctx, &interfaces.CreateAgentRequest{
		WorkspaceID: f.workspace.ID,
		Name:        "Intake Bot",
		Settings:    defaultSettings(),
		AuthorID:    f.author,
	})
	gt.Error(t, err)
	gt.Equal(t, f.repo.Calls(), []string{"CreateAgent", "CreateVersion", "UpdateAgent", "DeleteVersion", "DeleteAgent"})

	ids, err := f.repo.ListAllAgentIDs(ctx)
	gt.NoError(t, err)
	gt.A(t, ids).Length(0)
}

func TestCreateAgent_CompensationFailureKeepsOriginalError(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	versionErr := errors.New("version store unavailable")
	f.repo.Fail("CreateVersion", versionErr)
	f.repo.Fail("DeleteAgent", errors.New("delete failed"))

	_, err := f.uc.CreateAgent(ctx, &interfaces.CreateAgentRequest{
		WorkspaceID: f.workspace.ID,
		Name:        "Intake Bot",
		Settings:    defaultSettings(),
		AuthorID:    f.author,
	})
	gt.True(t, errors.Is(err, versionErr))

	// the orphan stays in place
	ids, err := f.repo.ListAllAgentIDs(ctx)
	gt.NoError(t, err)
	gt.A(t, ids).Length(1)
}

func TestDeleteAgent_Order(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())
	_, err := f.uc.UpdateSettings(ctx, a.ID, defaultSettings(), f.author)
	gt.NoError(t, err).Required()
	gt.NoError(t, f.uc.Versions().Publish(ctx, a.ID, a.CurrentVersionID)).Required()
	_, err = f.uc.UpdateSettings(ctx, a.ID, agent.Settings{SystemPrompt: "v2"}, f.author)
	gt.NoError(t, err).Required()
	f.seedSession(t, a.ID, transcript(2))
	f.seedSession(t, a.ID, transcript(4))
	f.repo.Reset()

	gt.NoError(t, f.uc.DeleteAgent(ctx, a.ID)).Required()
	gt.Equal(t, f.repo.Calls(), []string{
		"DeleteSession", "DeleteSession",
		"DeleteVersion", "DeleteVersion",
		"DeleteAgent",
	})

	_, err = f.uc.GetAgent(ctx, a.ID)
	gt.True(t, errors.Is(err, apperr.ErrAgentNotFound))
	sessions, err := f.repo.ListSessionsByAgent(ctx, a.ID)
	gt.NoError(t, err)
	gt.A(t, sessions).Length(0)
}

func TestDeleteAgent_PartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())
	f.seedSession(t, a.ID, transcript(2))
	f.repo.Fail("DeleteVersion", errors.New("delete failed"))

	err := f.uc.DeleteAgent(ctx, a.ID)
	gt.Error(t, err)

	// sessions are gone, the agent and its version remain
	sessions, err := f.repo.ListSessionsByAgent(ctx, a.ID)
	gt.NoError(t, err)
	gt.A(t, sessions).Length(0)

	got, err := f.uc.GetAgent(ctx, a.ID)
	gt.NoError(t, err)
	gt.NotNil(t, got.Current)
	gt.Equal(t, f.repo.CountCalls("DeleteAgent"), 0)
}

func TestDeleteAgent_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()

	err := f.uc.DeleteAgent(ctx, types.NewAgentID(ctx))
	gt.True(t, errors.Is(err, apperr.ErrAgentNotFound))
	gt.Equal(t, apperr.HTTPStatusFromError(err), 404)
}

func TestRenameAgent(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())

	renamed, err := f.uc.RenameAgent(ctx, a.ID, "Address Change")
	gt.NoError(t, err).Required()
	gt.Equal(t, renamed.Name, "Address Change")
	gt.Equal(t, renamed.UpdatedAt, f.clock.Now())

	_, err = f.uc.RenameAgent(ctx, a.ID, "")
	gt.Equal(t, apperr.KindOf(err), apperr.KindValidation)
}

func TestListAgents(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	first := f.createAgent(t, defaultSettings())
	second := f.createAgent(t, defaultSettings())

	agents, err := f.uc.ListAgents(ctx, f.workspace.ID)
	gt.NoError(t, err).Required()
	gt.A(t, agents).Length(2)
	gt.Equal(t, agents[0].ID, second.ID)
	gt.Equal(t, agents[1].ID, first.ID)

	_, err = f.uc.ListAgents(ctx, "")
	gt.Equal(t, apperr.KindOf(err), apperr.KindValidation)
}

func TestPublishVersion(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())

	got, err := f.uc.PublishVersion(ctx, a.ID, a.CurrentVersionID)
	gt.NoError(t, err).Required()
	gt.NotNil(t, got.Published)
	gt.Equal(t, got.Published.ID, a.CurrentVersionID)
	gt.Equal(t, got.Published.Status, agent.StatusPublished)
	gt.True(t, got.Agent.IsPublished())
}

func TestGetEffectiveSettings(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	settings := agent.Settings{SystemPrompt: "Be terse", InitialMessage: "Hi"}
	a := f.createAgent(t, settings)

	_, err := f.uc.GetEffectiveSettings(ctx, a.ID, true)
	gt.True(t, errors.Is(err, apperr.ErrNotPublished))
	gt.Equal(t, apperr.HTTPStatusFromError(err), 412)

	eff, err := f.uc.GetEffectiveSettings(ctx, a.ID, false)
	gt.NoError(t, err).Required()
	gt.Equal(t, eff.Settings, settings)
	gt.Equal(t, eff.AgentName, "Intake Bot")
	gt.False(t, eff.Published)
}

func TestGetEffectiveSettings_DefaultGreeting(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, agent.Settings{SystemPrompt: "Be terse"})

	eff, err := f.uc.GetEffectiveSettings(ctx, a.ID, false)
	gt.NoError(t, err).Required()
	gt.Equal(t, eff.Settings.InitialMessage, agent.DefaultInitialMessage)
	gt.Equal(t, eff.Settings.SystemPrompt, "Be terse")

	stored, err := f.repo.Client.GetVersion(ctx, a.ID, a.CurrentVersionID)
	gt.NoError(t, err).Required()
	gt.Equal(t, stored.Settings.InitialMessage, "")
}

func TestListSessionsAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	a := f.createAgent(t, defaultSettings())
	s := f.seedSession(t, a.ID, transcript(2))

	sessions, err := f.uc.ListSessions(ctx, a.ID)
	gt.NoError(t, err).Required()
	gt.A(t, sessions).Length(1)

	renamed, err := f.uc.RenameSession(ctx, s.ID, "  My chat ")
	gt.NoError(t, err).Required()
	gt.Equal(t, renamed.Name, "My chat")

	_, err = f.uc.RenameSession(ctx, s.ID, " ")
	gt.Equal(t, apperr.KindOf(err), apperr.KindValidation)

	gt.NoError(t, f.uc.DeleteSession(ctx, s.ID))
	err = f.uc.DeleteSession(ctx, s.ID)
	gt.True(t, errors.Is(err, apperr.ErrSessionNotFound))

	_, err = f.uc.GetSession(ctx, s.ID)
	gt.True(t, errors.Is(err, apperr.ErrSessionNotFound))
}
