package middleware

import (
	"context"

	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

type contextKey string

const (
	userContextKey contextKey = "user"
)

// ContextWithUser adds the authenticated author to the context
func ContextWithUser(ctx context.Context, userID types.UserID) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

// UserFromContext extracts the authenticated author from the context
func UserFromContext(ctx context.Context) (types.UserID, bool) {
	userID, ok := ctx.Value(userContextKey).(types.UserID)
	return userID, ok && userID != ""
}
