package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// handleError writes err as a JSON error with the status derived from its
// tags. Internal errors are logged with their full context and reported
// without detail.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status := apperr.HTTPStatusFromError(err)
	kind := apperr.KindOf(err)
	message := err.Error()

	logger := ctxlog.From(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request error",
			"error", err,
			"path", r.URL.Path,
			"method", r.Method,
		)
		if kind == apperr.KindInternal {
			message = "internal server error"
		}
	} else {
		logger.Warn("request rejected",
			"error", err,
			"status", status,
			"path", r.URL.Path,
		)
	}

	writeError(w, status, kind, message)
}

func writeError(w http.ResponseWriter, status int, kind apperr.Kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Kind: kind, Message: message}})
}
