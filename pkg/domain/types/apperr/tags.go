package apperr

import "github.com/m-mizutani/goerr/v2"

// NotFound errors (HTTP 404)
var (
	ErrTagNotFound = goerr.NewTag("not_found")
)

// Validation errors (HTTP 400)
var (
	ErrTagValidation = goerr.NewTag("validation")
)

// Permission errors (HTTP 401/403)
var (
	ErrTagUnauthorized = goerr.NewTag("unauthorized")
	ErrTagForbidden    = goerr.NewTag("forbidden")
)

// State errors (HTTP 409/412)
var (
	ErrTagInvalidState = goerr.NewTag("invalid_state")
	ErrTagNotPublished = goerr.NewTag("not_published")
	ErrTagConflict     = goerr.NewTag("conflict")
)

// External service errors (HTTP 502)
var (
	ErrTagGateway   = goerr.NewTag("llm_error")
	ErrTagMail      = goerr.NewTag("mail")
	ErrTagSlackAPI  = goerr.NewTag("slack_api")
	ErrTagFirestore = goerr.NewTag("firestore")
)

// System errors (HTTP 500)
var (
	ErrTagInternal = goerr.NewTag("internal")
)
