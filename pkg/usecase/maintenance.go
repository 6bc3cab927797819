package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
	"github.com/m-mizutani/gatherly/pkg/utils/errors"
)

func (uc *UseCases) ReconcileDrafts(ctx context.Context, agentID types.AgentID) (int, error) {
	if _, err := uc.collab.Repo.GetAgent(ctx, agentID); err != nil {
		return 0, goerr.Wrap(err, "failed to get agent", goerr.TV(apperr.AgentIDKey, agentID))
	}
	return uc.versions.ReconcileDrafts(ctx, agentID)
}

// ReconcileAllDrafts reconciles every agent. A failing agent is logged and
// skipped.
func (uc *UseCases) ReconcileAllDrafts(ctx context.Context) (int, error) {
	ids, err := uc.collab.Repo.ListAllAgentIDs(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list agents")
	}

	total := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return total, goerr.Wrap(err, "reconciliation interrupted")
		}

		n, err := uc.versions.ReconcileDrafts(ctx, id)
		total += n
		if err != nil {
			errors.Handle(ctx, goerr.Wrap(err, "failed to reconcile drafts", goerr.TV(apperr.AgentIDKey, id)))
		}
	}

	ctxlog.From(ctx).Info("draft reconciliation done", "agents", len(ids), "archived", total)
	return total, nil
}
