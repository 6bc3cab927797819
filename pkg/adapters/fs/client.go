package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

// ErrInvalidKey is returned for keys that could escape the base directory.
var ErrInvalidKey = goerr.New("invalid storage key", goerr.T(apperr.ErrTagValidation))

// Client stores blobs as files under a base directory.
type Client struct {
	baseDir string
	mu      sync.RWMutex
}

var _ interfaces.StorageAdapter = (*Client)(nil)

// New creates baseDir if needed and returns a client rooted there.
func New(baseDir string) (*Client, error) {
	if baseDir == "" {
		return nil, goerr.New("base directory is required", goerr.T(apperr.ErrTagValidation))
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid base directory", goerr.V("dir", baseDir))
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create base directory", goerr.V("dir", abs))
	}

	return &Client{baseDir: abs}, nil
}

func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("key", key))
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write file", goerr.V("key", key))
	}
	return nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := c.path(key)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// #nosec G304 - key is validated by path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, interfaces.ErrStorageKeyNotFound
		}
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("key", key))
	}
	return data, nil
}

func (c *Client) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", goerr.Wrap(ErrInvalidKey, "rejected key", goerr.V("key", key))
	}
	for _, r := range key {
		if r < 32 || r == 127 {
			return "", goerr.Wrap(ErrInvalidKey, "control character in key", goerr.V("key", key))
		}
	}
	return filepath.Join(c.baseDir, filepath.FromSlash(key)), nil
}
