package agent

import "github.com/m-mizutani/goerr/v2"

// VersionStatus is the lifecycle state of a version.
type VersionStatus string

const (
	StatusDraft     VersionStatus = "draft"
	StatusPublished VersionStatus = "published"
	StatusArchived  VersionStatus = "archived"
)

func (s VersionStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}

func (s VersionStatus) String() string {
	return string(s)
}

// ValidateStatus validates a version status
func ValidateStatus(status VersionStatus) error {
	if !status.IsValid() {
		return goerr.New("invalid version status", goerr.V("status", status))
	}
	return nil
}
