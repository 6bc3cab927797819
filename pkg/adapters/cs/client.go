package cs

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/utils/safe"
)

// Client stores blobs in a Google Cloud Storage bucket.
type Client struct {
	client      *storage.Client
	bucket      string
	prefix      string
	contentType string
}

var _ interfaces.StorageAdapter = (*Client)(nil)

type Option func(*Client)

// WithPrefix prepends prefix to every object name.
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = prefix
	}
}

// WithContentType sets the content type of written objects.
func WithContentType(contentType string) Option {
	return func(c *Client) {
		c.contentType = contentType
	}
}

// New creates a client using Application Default Credentials.
func New(ctx context.Context, bucket string, opts ...Option) (*Client, error) {
	if bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	c := &Client{
		client:      client,
		bucket:      bucket,
		contentType: "application/octet-stream",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) object(key string) *storage.ObjectHandle {
	return c.client.Bucket(c.bucket).Object(c.prefix + key)
}

func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	w := c.object(key).NewWriter(ctx)
	w.ContentType = c.contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object",
			goerr.V("bucket", c.bucket),
			goerr.V("key", c.prefix+key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close object writer",
			goerr.V("bucket", c.bucket),
			goerr.V("key", c.prefix+key))
	}
	return nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := c.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, interfaces.ErrStorageKeyNotFound
		}
		return nil, goerr.Wrap(err, "failed to open object",
			goerr.V("bucket", c.bucket),
			goerr.V("key", c.prefix+key))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object",
			goerr.V("bucket", c.bucket),
			goerr.V("key", c.prefix+key))
	}
	return data, nil
}
