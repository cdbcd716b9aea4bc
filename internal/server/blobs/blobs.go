// Package blobs stores opaque payloads (PDF book data) outside the record
// documents, keyed by owner.
package blobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	// Get returns ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete succeeds for unknown keys.
	Delete(ctx context.Context, key string) error
}

// NewBookKey returns a fresh object key for a book payload of owner.
func NewBookKey(ownerID string) string {
	return fmt.Sprintf("books/%s/%s", ownerID, uuid.NewString())
}
