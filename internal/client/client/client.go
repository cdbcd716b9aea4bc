package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// RecordClient is the per-kind CRUD surface of the remote store.
type RecordClient interface {
	List(ctx context.Context, kind models.Kind, ownerID string) ([]json.RawMessage, error)
	Insert(ctx context.Context, kind models.Kind, ownerID string, record json.RawMessage) (json.RawMessage, error)
	Update(ctx context.Context, kind models.Kind, ownerID, id string, patch json.RawMessage) error
	Delete(ctx context.Context, kind models.Kind, ownerID, id string) error
}

type Client interface {
	RecordClient
	Close() error
	Register(ctx context.Context, username string, salt []byte, key []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	// Login returns the access token of the session.
	Login(ctx context.Context, username string, key []byte) (string, error)
	Ping(ctx context.Context) error
}

// TokenSource returns the access token to attach to outgoing calls, or ""
// when there is no session.
type TokenSource func() string
