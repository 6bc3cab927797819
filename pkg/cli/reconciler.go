package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/utils/errors"
	"github.com/robfig/cron/v3"
)

// reconcileTimeout bounds one scheduled reconciliation run
const reconcileTimeout = 10 * time.Minute

// startReconciler runs draft reconciliation of every agent on sched. The
// returned stop function waits for a running job to finish.
func startReconciler(ctx context.Context, sched cron.Schedule, uc interfaces.MaintenanceUseCases) func() {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(sched, cron.FuncJob(func() {
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
		defer cancel()

		if _, err := uc.ReconcileAllDrafts(jobCtx); err != nil {
			errors.Handle(jobCtx, goerr.Wrap(err, "scheduled draft reconciliation failed"))
		}
	}))
	c.Start()

	ctxlog.From(ctx).Info("draft reconciliation scheduled", "next", sched.Next(time.Now()))

	return func() {
		<-c.Stop().Done()
	}
}
