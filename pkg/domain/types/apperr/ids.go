package apperr

import "github.com/m-mizutani/goerr/v2"

// Lookup errors
var (
	ErrAgentNotFound = goerr.New("agent not found",
		goerr.T(ErrTagNotFound)).ID("ERR_AGENT_NOT_FOUND")

	ErrVersionNotFound = goerr.New("version not found",
		goerr.T(ErrTagNotFound)).ID("ERR_VERSION_NOT_FOUND")

	ErrSessionNotFound = goerr.New("chat session not found",
		goerr.T(ErrTagNotFound)).ID("ERR_SESSION_NOT_FOUND")

	ErrWorkspaceNotFound = goerr.New("workspace not found",
		goerr.T(ErrTagNotFound)).ID("ERR_WORKSPACE_NOT_FOUND")

	ErrUserNotFound = goerr.New("user not found",
		goerr.T(ErrTagNotFound)).ID("ERR_USER_NOT_FOUND")
)

// Versioning errors
var (
	ErrInvalidState = goerr.New("invalid state for operation",
		goerr.T(ErrTagInvalidState)).ID("ERR_INVALID_STATE")

	ErrNotPublished = goerr.New("agent has no published version",
		goerr.T(ErrTagNotPublished)).ID("ERR_NOT_PUBLISHED")
)

// Conversation errors
var (
	ErrEmptyInput = goerr.New("input is empty",
		goerr.T(ErrTagValidation)).ID("ERR_EMPTY_INPUT")

	ErrSessionCompleted = goerr.New("conversation is already completed",
		goerr.T(ErrTagInvalidState)).ID("ERR_SESSION_COMPLETED")

	ErrTurnInFlight = goerr.New("a turn is already awaiting response",
		goerr.T(ErrTagConflict)).ID("ERR_TURN_IN_FLIGHT")
)

// External errors
var (
	ErrGateway = goerr.New("language model gateway failed",
		goerr.T(ErrTagGateway)).ID("ERR_GATEWAY")

	ErrMailSend = goerr.New("failed to send mail",
		goerr.T(ErrTagMail)).ID("ERR_MAIL_SEND")
)

// Request errors
var (
	ErrValidation = goerr.New("validation failed",
		goerr.T(ErrTagValidation)).ID("ERR_VALIDATION")

	ErrUnauthorized = goerr.New("unauthorized",
		goerr.T(ErrTagUnauthorized)).ID("ERR_UNAUTHORIZED")
)
