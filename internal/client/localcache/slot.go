package localcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// Slot is the local cache of one entity kind.
type Slot[T any, P models.Entity[T]] struct {
	repo kv.Repository
	kind models.Kind
	log  logging.Logger
}

func NewSlot[T any, P models.Entity[T]](repo kv.Repository, kind models.Kind, log logging.Logger) *Slot[T, P] {
	return &Slot[T, P]{repo: repo, kind: kind, log: log.With("module", "localcache", "slot", string(kind))}
}

func (s *Slot[T, P]) Kind() models.Kind { return s.kind }

// LoadAll returns the cached collection. Storage failures are returned;
// unreadable content is logged and treated as an empty collection.
func (s *Slot[T, P]) LoadAll(ctx context.Context) ([]T, error) {
	raw, err := s.repo.Get(ctx, string(s.kind))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.kind, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn(ctx, "malformed local cache slot, treating as empty", "error", err, "size", len(raw))
		return []T{}, nil
	}
	if items == nil {
		// literal null
		return []T{}, nil
	}
	return items, nil
}

// SaveAll overwrites the slot with items, timestamps in UTC.
func (s *Slot[T, P]) SaveAll(ctx context.Context, items []T) error {
	out := make([]T, len(items))
	for i, v := range items {
		P(&v).UTC()
		out[i] = v
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.kind, err)
	}
	if err := s.repo.Set(ctx, string(s.kind), raw); err != nil {
		return fmt.Errorf("save %s: %w", s.kind, err)
	}
	return nil
}

// Clear drops the slot.
func (s *Slot[T, P]) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, string(s.kind)); err != nil {
		return fmt.Errorf("clear %s: %w", s.kind, err)
	}
	return nil
}

// Empty reports whether the slot holds no entities.
func (s *Slot[T, P]) Empty(ctx context.Context) (bool, error) {
	items, err := s.LoadAll(ctx)
	if err != nil {
		return false, err
	}
	return len(items) == 0, nil
}
