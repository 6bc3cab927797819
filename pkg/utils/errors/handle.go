package errors

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

// Handle logs an error that is not returned to any caller. Expected
// failures such as validation or missing records are logged as warnings.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	logger := ctxlog.From(ctx)
	switch kind := apperr.KindOf(err); kind {
	case apperr.KindInternal, apperr.KindGateway:
		logger.Error("unhandled error", "error", err, "kind", kind)
	default:
		logger.Warn("unhandled error", "error", err, "kind", kind)
	}
}
