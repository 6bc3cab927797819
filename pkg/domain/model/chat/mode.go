package chat

// Mode fixes how a conversation instance treats persistence.
type Mode string

const (
	// ModePlayground never persists; used by authors to try a draft.
	ModePlayground Mode = "playground"
	// ModeNew creates a session on the first user turn.
	ModeNew Mode = "new"
	// ModeExisting continues a persisted session.
	ModeExisting Mode = "existing"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModePlayground, ModeNew, ModeExisting:
		return true
	}
	return false
}

// State of a conversation instance.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingResponse State = "awaiting_response"
	StateCompleted        State = "completed"
)
