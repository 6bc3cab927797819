package agent

import (
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

const (
	maxNameLength           = 100
	maxSystemPromptLength   = 20000
	maxInitialMessageLength = 2000
)

// ValidateName validates an agent display name
func ValidateName(name string) error {
	if name == "" {
		return goerr.New("agent name cannot be empty", goerr.T(apperr.ErrTagValidation))
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return goerr.New("agent name is too long",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("max", maxNameLength))
	}
	return nil
}

// ValidateSettings validates version settings
func ValidateSettings(s Settings) error {
	if utf8.RuneCountInString(s.SystemPrompt) > maxSystemPromptLength {
		return goerr.New("system prompt is too long",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("max", maxSystemPromptLength))
	}
	if utf8.RuneCountInString(s.InitialMessage) > maxInitialMessageLength {
		return goerr.New("initial message is too long",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("max", maxInitialMessageLength))
	}
	return nil
}

// ValidateAgent validates the Agent struct
func ValidateAgent(a *Agent) error {
	if !a.ID.IsValid() {
		return goerr.New("invalid agent id", goerr.T(apperr.ErrTagValidation), goerr.TV(apperr.AgentIDKey, a.ID))
	}
	if a.WorkspaceID == "" {
		return goerr.New("workspace id is required", goerr.T(apperr.ErrTagValidation))
	}
	if err := ValidateName(a.Name); err != nil {
		return err
	}
	return nil
}

// ValidateVersion validates the Version struct
func ValidateVersion(v *Version) error {
	if !v.ID.IsValid() {
		return goerr.New("invalid version id", goerr.T(apperr.ErrTagValidation), goerr.TV(apperr.VersionIDKey, v.ID))
	}
	if !v.AgentID.IsValid() {
		return goerr.New("invalid agent id", goerr.T(apperr.ErrTagValidation), goerr.TV(apperr.AgentIDKey, v.AgentID))
	}
	if v.CreatedByID == "" {
		return goerr.New("author is required", goerr.T(apperr.ErrTagValidation))
	}
	if err := ValidateStatus(v.Status); err != nil {
		return goerr.Wrap(err, "invalid version", goerr.T(apperr.ErrTagValidation))
	}
	if v.Status == StatusPublished && v.PublishedAt == nil {
		return goerr.New("published version must have published_at", goerr.T(apperr.ErrTagValidation))
	}
	return ValidateSettings(v.Settings)
}
