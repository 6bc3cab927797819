package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionAgents      = "bots"
	subCollectionVersions = "versions"
	collectionChats       = "chats"
	collectionWorkspaces  = "workspaces"
	collectionMembers     = "workspace_members"
	collectionUsers       = "users"
)

// Client is a Firestore implementation of interfaces.Repository
type Client struct {
	client     *firestore.Client
	projectID  string
	databaseID string
}

var _ interfaces.Repository = (*Client)(nil)

// New creates a new Firestore client using Application Default Credentials
func New(ctx context.Context, projectID, databaseID string) (*Client, error) {
	if projectID == "" {
		return nil, goerr.New("project ID is required", goerr.T(apperr.ErrTagValidation))
	}
	if databaseID == "" {
		databaseID = "(default)"
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.ProjectIDKey, projectID),
			goerr.V("database_id", databaseID))
	}

	return &Client{
		client:     client,
		projectID:  projectID,
		databaseID: databaseID,
	}, nil
}

// Close closes the Firestore client
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// getAll drains an iterator and decodes each document with decode.
func getAll[T any](iter *firestore.DocumentIterator, collection string, decode func(*firestore.DocumentSnapshot) (T, error)) ([]T, error) {
	defer iter.Stop()

	var result []T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents",
				goerr.T(apperr.ErrTagFirestore),
				goerr.TV(apperr.CollectionKey, collection))
		}

		v, err := decode(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode document",
				goerr.TV(apperr.CollectionKey, collection),
				goerr.TV(apperr.DocumentIDKey, doc.Ref.ID))
		}
		result = append(result, v)
	}
	return result, nil
}
