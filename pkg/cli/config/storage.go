package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/adapters/cs"
	"github.com/m-mizutani/gatherly/pkg/adapters/fs"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/repository/storage"
	"github.com/urfave/cli/v3"
)

// Storage contains configuration for the transcript archive
type Storage struct {
	// Cloud Storage configuration
	Bucket string
	Prefix string

	// File System storage configuration
	FSPath string
}

// Flags returns CLI flags for Storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cloud-storage-bucket",
			Sources:     cli.EnvVars("GATHERLY_CLOUD_STORAGE_BUCKET"),
			Usage:       "Cloud Storage bucket for transcripts",
			Destination: &s.Bucket,
		},
		&cli.StringFlag{
			Name:        "cloud-storage-prefix",
			Sources:     cli.EnvVars("GATHERLY_CLOUD_STORAGE_PREFIX"),
			Usage:       "Prefix for Cloud Storage objects",
			Destination: &s.Prefix,
		},
		&cli.StringFlag{
			Name:        "file-storage-path",
			Usage:       "Directory for transcripts on the local file system",
			Sources:     cli.EnvVars("GATHERLY_FILE_STORAGE_PATH"),
			Destination: &s.FSPath,
		},
	}
}

// Validate validates the Storage configuration
func (s *Storage) Validate() error {
	if s.Bucket != "" && s.FSPath != "" {
		return goerr.New("only one storage backend can be configured",
			goerr.V("bucket", s.Bucket),
			goerr.V("path", s.FSPath))
	}
	return nil
}

// Enabled reports whether a storage backend is configured
func (s *Storage) Enabled() bool {
	return s.Bucket != "" || s.FSPath != ""
}

// CreateAdapter creates appropriate storage adapter based on configuration
func (s *Storage) CreateAdapter(ctx context.Context) (interfaces.StorageAdapter, func(), error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	switch {
	case s.Bucket != "":
		opts := []cs.Option{}
		if s.Prefix != "" {
			opts = append(opts, cs.WithPrefix(s.Prefix))
		}

		csClient, err := cs.New(ctx, s.Bucket, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create Cloud Storage client")
		}

		cleanup := func() {
			_ = csClient.Close() // #nosec G104 - Close error handled gracefully in cleanup
		}
		return csClient, cleanup, nil

	case s.FSPath != "":
		fsClient, err := fs.New(s.FSPath)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create file system storage adapter")
		}
		return fsClient, func() {}, nil

	default:
		return nil, nil, goerr.New("no storage backend configured")
	}
}

// NewTranscriptArchive returns the archive on the configured backend, or
// nil when archiving is disabled.
func (s *Storage) NewTranscriptArchive(ctx context.Context) (interfaces.TranscriptArchive, func(), error) {
	if !s.Enabled() {
		return nil, func() {}, nil
	}

	adapter, cleanup, err := s.CreateAdapter(ctx)
	if err != nil {
		return nil, nil, err
	}
	return storage.New(adapter), cleanup, nil
}
