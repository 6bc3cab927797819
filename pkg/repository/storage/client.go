package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

// Client archives transcripts as gzipped JSON through a StorageAdapter.
type Client struct {
	adapter interfaces.StorageAdapter
}

var _ interfaces.TranscriptArchive = (*Client)(nil)

func New(adapter interfaces.StorageAdapter) *Client {
	return &Client{adapter: adapter}
}

// TranscriptKey is the object key of a session's transcript.
func TranscriptKey(agentID types.AgentID, sessionID types.SessionID) string {
	return fmt.Sprintf("transcripts/%s/%s.json.gz", agentID, sessionID)
}

func (c *Client) PutTranscript(ctx context.Context, t *chat.Transcript) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal transcript", goerr.TV(apperr.SessionIDKey, t.SessionID))
	}

	compressed, err := compress(raw)
	if err != nil {
		return goerr.Wrap(err, "failed to compress transcript", goerr.TV(apperr.SessionIDKey, t.SessionID))
	}

	key := TranscriptKey(t.AgentID, t.SessionID)
	if err := c.adapter.Put(ctx, key, compressed); err != nil {
		return goerr.Wrap(err, "failed to store transcript",
			goerr.TV(apperr.SessionIDKey, t.SessionID),
			goerr.V("key", key))
	}
	return nil
}

func (c *Client) GetTranscript(ctx context.Context, agentID types.AgentID, sessionID types.SessionID) (*chat.Transcript, error) {
	key := TranscriptKey(agentID, sessionID)
	compressed, err := c.adapter.Get(ctx, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load transcript",
			goerr.TV(apperr.SessionIDKey, sessionID),
			goerr.V("key", key))
	}

	raw, err := decompress(compressed)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decompress transcript", goerr.TV(apperr.SessionIDKey, sessionID))
	}

	var t chat.Transcript
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal transcript", goerr.TV(apperr.SessionIDKey, sessionID))
	}
	return &t, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, goerr.Wrap(err, "failed to write gzip stream")
	}
	if err := w.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close gzip writer")
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gzip reader")
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read gzip stream")
	}
	return out, nil
}
