package database_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/user"
	"github.com/m-mizutani/gatherly/pkg/domain/model/workspace"
	"github.com/m-mizutani/gatherly/pkg/repository/database/firestore"
	"github.com/m-mizutani/gatherly/pkg/repository/database/memory"
	"github.com/m-mizutani/gt"
)

// seedableRepository can be populated with tenancy records.
type seedableRepository interface {
	interfaces.Repository
	PutWorkspace(ctx context.Context, ws *workspace.Workspace) error
	PutMember(ctx context.Context, m *workspace.Member) error
	PutUser(ctx context.Context, u *user.User) error
}

// forEachRepository runs fn against memory and, when configured, Firestore.
func forEachRepository(t *testing.T, fn func(t *testing.T, repo seedableRepository)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, memory.New())
	})

	t.Run("firestore", func(t *testing.T) {
		projectID := os.Getenv("TEST_FIRESTORE_PROJECT")
		databaseID := os.Getenv("TEST_FIRESTORE_DATABASE")
		if projectID == "" || databaseID == "" {
			t.Skip("TEST_FIRESTORE_PROJECT and TEST_FIRESTORE_DATABASE are not set")
		}

		client, err := firestore.New(context.Background(), projectID, databaseID)
		gt.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		fn(t, client)
	})
}
