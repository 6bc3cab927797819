package async

import "context"

type contextKey string

const syncModeKey contextKey = "async-sync-mode"

// WithSyncMode makes Dispatch run handlers inline. Used by tests.
func WithSyncMode(ctx context.Context) context.Context {
	return context.WithValue(ctx, syncModeKey, true)
}

func isSyncMode(ctx context.Context) bool {
	v, ok := ctx.Value(syncModeKey).(bool)
	return ok && v
}
