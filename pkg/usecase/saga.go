package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

type sagaStep struct {
	name       string
	action     func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// Saga runs an ordered list of steps. When a step fails, the compensations
// of the steps that already succeeded run in reverse order.
type Saga struct {
	name  string
	steps []sagaStep
}

func NewSaga(name string) *Saga {
	return &Saga{name: name}
}

// Step appends a step. compensate may be nil.
func (s *Saga) Step(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, sagaStep{name: name, action: action, compensate: compensate})
	return s
}

// Run executes the steps. A failed compensation is logged and does not stop
// the remaining ones; the returned error is always the step failure.
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.action(ctx); err != nil {
			s.unwind(ctx, i)
			return goerr.Wrap(err, "saga step failed",
				goerr.V("saga", s.name),
				goerr.TV(apperr.StepKey, step.name))
		}
	}
	return nil
}

func (s *Saga) unwind(ctx context.Context, failed int) {
	// compensations run even if the caller's context is already cancelled
	ctx = context.WithoutCancel(ctx)
	logger := ctxlog.From(ctx)

	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			logger.Error("saga compensation failed",
				"saga", s.name,
				"step", step.name,
				"error", err)
			continue
		}
		logger.Info("saga step compensated", "saga", s.name, "step", step.name)
	}
}
