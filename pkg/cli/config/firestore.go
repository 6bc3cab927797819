package config

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/repository/database/firestore"
	"github.com/m-mizutani/gatherly/pkg/repository/database/memory"
	"github.com/m-mizutani/gatherly/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// Firestore contains configuration for Google Cloud Firestore
type Firestore struct {
	ProjectID  string
	DatabaseID string
}

// Flags returns CLI flags for Firestore configuration
func (f *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud Project ID for Firestore",
			Sources:     cli.EnvVars("GATHERLY_FIRESTORE_PROJECT_ID"),
			Destination: &f.ProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID (default: (default))",
			Sources:     cli.EnvVars("GATHERLY_FIRESTORE_DATABASE_ID"),
			Value:       "(default)",
			Destination: &f.DatabaseID,
		},
	}
}

// SetDefaults sets default values for Firestore configuration
func (f *Firestore) SetDefaults() {
	if f.DatabaseID == "" {
		f.DatabaseID = "(default)"
	}
}

// IsValid checks if the Firestore configuration is valid
func (f *Firestore) IsValid() bool {
	return f.ProjectID != "" && f.DatabaseID != ""
}

// NewRepository connects to Firestore, or falls back to the in-memory
// repository when no project is configured. The returned cleanup is never nil.
func (f *Firestore) NewRepository(ctx context.Context) (interfaces.Repository, func(), error) {
	f.SetDefaults()

	if !f.IsValid() {
		ctxlog.From(ctx).Warn("firestore is not configured, using in-memory repository")
		return memory.New(), func() {}, nil
	}

	client, err := firestore.New(ctx, f.ProjectID, f.DatabaseID)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", f.ProjectID),
			goerr.V("database_id", f.DatabaseID))
	}

	return client, func() { safe.Close(ctx, client) }, nil
}
