package interfaces

import (
	"context"
	"errors"

	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
)

var (
	ErrStorageKeyNotFound = errors.New("storage key not found")
)

// StorageAdapter stores opaque blobs by key.
type StorageAdapter interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// TranscriptArchive keeps a copy of completed conversations.
type TranscriptArchive interface {
	PutTranscript(ctx context.Context, t *chat.Transcript) error
}
