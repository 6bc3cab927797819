package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
)

// Client keeps blobs in process memory.
type Client struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ interfaces.StorageAdapter = (*Client)(nil)

func New() *Client {
	return &Client{data: make(map[string][]byte)}
}

func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = append([]byte(nil), data...)
	return nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, exists := c.data[key]
	if !exists {
		return nil, interfaces.ErrStorageKeyNotFound
	}
	return append([]byte(nil), data...), nil
}

// Keys returns stored keys in lexical order.
func (c *Client) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
