package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/cli/config"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdReconcile() *cli.Command {
	var (
		agentID      string
		firestoreCfg config.Firestore
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "agent-id",
			Usage:       "Reconcile only this agent (default: all agents)",
			Sources:     cli.EnvVars("GATHERLY_RECONCILE_AGENT_ID"),
			Destination: &agentID,
		},
	}
	flags = append(flags, firestoreCfg.Flags()...)

	return &cli.Command{
		Name:  "reconcile",
		Usage: "Archive duplicate drafts left by concurrent edits",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !firestoreCfg.IsValid() {
				return goerr.New("firestore project is required for reconciliation")
			}

			repo, cleanup, err := firestoreCfg.NewRepository(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			uc := usecase.New(usecase.WithRepository(repo))

			var archived int
			if agentID != "" {
				archived, err = uc.ReconcileDrafts(ctx, types.AgentID(agentID))
			} else {
				archived, err = uc.ReconcileAllDrafts(ctx)
			}
			if err != nil {
				return goerr.Wrap(err, "failed to reconcile drafts", goerr.V("agent_id", agentID))
			}

			ctxlog.From(ctx).Info("reconciliation finished", "archived", archived)
			fmt.Printf("✅ archived %d duplicate draft(s)\n", archived)
			return nil
		},
	}
}
