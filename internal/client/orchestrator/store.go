package orchestrator

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/notekeeper/internal/models"
)

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAlreadyAuthenticated = errors.New("already authenticated as another user")
	ErrNotInTrash           = errors.New("entity is not in trash")
	ErrEntityNotFound       = errors.New("entity not found")
)

// Store is the capability set shared by the local cache and the remote store.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	// Insert returns v as stored, with the id the store assigned.
	Insert(ctx context.Context, v T) (T, error)
	// Update merges patch into the entity; fields absent from patch are kept.
	Update(ctx context.Context, id string, patch models.Patch) error
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}

// LocalStore is the device cache of one kind.
type LocalStore[T any] interface {
	Store[T]
	Replace(ctx context.Context, items []T) error
	Clear(ctx context.Context) error
}

// RemoteFactory returns the remote store of owner.
type RemoteFactory[T any] func(owner string) Store[T]

// SessionMode selects the authoritative store.
type SessionMode int

const (
	Anonymous SessionMode = iota
	Authenticated
)

func (m SessionMode) String() string {
	switch m {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}
