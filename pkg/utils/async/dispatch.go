package async

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/utils/errors"
)

var inflight sync.WaitGroup

// Dispatch runs handler in a detached goroutine. The goroutine does not inherit
// cancellation from ctx, only its logger. Errors and panics are logged.
// In sync mode (see WithSyncMode) handler runs inline.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	if isSyncMode(ctx) {
		if err := handler(ctx); err != nil {
			errors.Handle(ctx, goerr.Wrap(err, "async handler failed", goerr.V("name", name)))
		}
		return
	}

	newCtx := newBackgroundContext(ctx, name)
	inflight.Add(1)

	go func() {
		defer inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				err := goerr.New("panic in async handler",
					goerr.V("name", name),
					goerr.V("recover", r),
					goerr.V("stack", string(debug.Stack())),
				)
				errors.Handle(newCtx, err)
			}
		}()

		if err := handler(newCtx); err != nil {
			errors.Handle(newCtx, goerr.Wrap(err, "async handler failed", goerr.V("name", name)))
		}
	}()
}

// Wait blocks until every dispatched handler has returned or timeout elapses.
// It returns false on timeout.
func Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func newBackgroundContext(ctx context.Context, name string) context.Context {
	logger := ctxlog.From(ctx).With("async", name)
	return ctxlog.With(context.Background(), logger)
}
