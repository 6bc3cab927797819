package apperr

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// Kind is a stable, client facing classification of an error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindNotPublished Kind = "not_published"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindGateway      Kind = "gateway"
	KindInternal     Kind = "internal"
)

// KindOf classifies err by its tags.
func KindOf(err error) Kind {
	switch {
	case goerr.HasTag(err, ErrTagNotFound):
		return KindNotFound
	case goerr.HasTag(err, ErrTagValidation):
		return KindValidation
	case goerr.HasTag(err, ErrTagNotPublished):
		return KindNotPublished
	case goerr.HasTag(err, ErrTagInvalidState):
		return KindInvalidState
	case goerr.HasTag(err, ErrTagConflict):
		return KindConflict
	case goerr.HasTag(err, ErrTagUnauthorized),
		goerr.HasTag(err, ErrTagForbidden):
		return KindUnauthorized
	case goerr.HasTag(err, ErrTagGateway):
		return KindGateway
	default:
		return KindInternal
	}
}

// HTTPStatusFromError returns the appropriate HTTP status code based on error tags
func HTTPStatusFromError(err error) int {
	switch {
	case goerr.HasTag(err, ErrTagNotFound):
		return http.StatusNotFound

	case goerr.HasTag(err, ErrTagValidation):
		return http.StatusBadRequest

	case goerr.HasTag(err, ErrTagUnauthorized):
		return http.StatusUnauthorized

	case goerr.HasTag(err, ErrTagForbidden):
		return http.StatusForbidden

	case goerr.HasTag(err, ErrTagInvalidState),
		goerr.HasTag(err, ErrTagConflict):
		return http.StatusConflict

	case goerr.HasTag(err, ErrTagNotPublished):
		return http.StatusPreconditionFailed

	case goerr.HasTag(err, ErrTagGateway),
		goerr.HasTag(err, ErrTagMail),
		goerr.HasTag(err, ErrTagSlackAPI),
		goerr.HasTag(err, ErrTagFirestore):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
