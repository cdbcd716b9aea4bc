package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalIDPrefix marks identifiers minted on the device.
const LocalIDPrefix = "local-"

// Kind names a synchronizable entity type. The value doubles as the local
// cache slot name and the remote table name.
type Kind string

const (
	KindNote   Kind = "notes"
	KindBook   Kind = "books"
	KindMemory Kind = "memory_items"
)

// Kinds lists every synchronizable kind in a stable order.
var Kinds = []Kind{KindNote, KindBook, KindMemory}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindNote, KindBook, KindMemory:
		return true
	}
	return false
}

// Meta holds the lifecycle fields shared by every kind.
type Meta struct {
	// ID is unique within its store. Local ids start with LocalIDPrefix.
	ID string `json:"id"`

	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is rewritten on every mutation.
	UpdatedAt time.Time `json:"updatedAt"`

	Favorite bool `json:"favorite"`
	Archived bool `json:"archived"`

	// InTrash marks a soft-deleted entity. TrashedAt is set exactly while
	// InTrash is true.
	InTrash   bool       `json:"inTrash"`
	TrashedAt *time.Time `json:"trashedAt"`

	// Synced is true only when the current state is durably in the remote store.
	Synced bool `json:"synced"`
}

// Metadata exposes the embedded Meta to generic code.
func (m *Meta) Metadata() *Meta { return m }

// UTC converts every timestamp to UTC.
func (m *Meta) UTC() {
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	if m.TrashedAt != nil {
		at := m.TrashedAt.UTC()
		m.TrashedAt = &at
	}
}

// Entity is the constraint satisfied by pointers to Note, Book and MemoryItem.
type Entity[T any] interface {
	*T
	Metadata() *Meta
	// UTC converts every timestamp, nested ones included, to UTC.
	UTC()
	// Normalize fills defaults and canonicalizes payload fields.
	Normalize(now time.Time)
	// Validate checks required payload fields.
	Validate() error
	// SearchFields returns the textual fields matched by search.
	SearchFields() []string
}

// NewLocalID mints a device-local identifier.
func NewLocalID() string {
	return LocalIDPrefix + uuid.NewString()
}

// IsLocalID reports whether id was minted locally rather than by the remote store.
func IsLocalID(id string) bool {
	return id == "" || strings.HasPrefix(id, LocalIDPrefix)
}

func (m *Meta) reconcileTrash(now time.Time) {
	switch {
	case !m.InTrash:
		m.TrashedAt = nil
	case m.TrashedAt == nil:
		at := now.UTC()
		m.TrashedAt = &at
	}
}
