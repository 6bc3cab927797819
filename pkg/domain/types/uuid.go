package types

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
)

// newUUID returns a time-ordered UUID v7, falling back to v4.
func newUUID(ctx context.Context) string {
	id, err := uuid.NewV7()
	if err != nil {
		ctxlog.From(ctx).Warn("failed to generate uuid v7, fallback to v4", "error", err)
		return uuid.New().String()
	}
	return id.String()
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
