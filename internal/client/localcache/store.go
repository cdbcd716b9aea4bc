package localcache

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// Store exposes a slot through the list/insert/update/delete capability set
// used by the orchestrator. Each mutation rewrites the whole slot.
type Store[T any, P models.Entity[T]] struct {
	slot *Slot[T, P]
}

func NewStore[T any, P models.Entity[T]](slot *Slot[T, P]) *Store[T, P] {
	return &Store[T, P]{slot: slot}
}

func (s *Store[T, P]) List(ctx context.Context) ([]T, error) {
	return s.slot.LoadAll(ctx)
}

// Insert appends v, minting a local id when v has none.
func (s *Store[T, P]) Insert(ctx context.Context, v T) (T, error) {
	var zero T
	items, err := s.slot.LoadAll(ctx)
	if err != nil {
		return zero, err
	}
	m := P(&v).Metadata()
	if m.ID == "" {
		m.ID = models.NewLocalID()
	}
	if err := s.slot.SaveAll(ctx, append(items, v)); err != nil {
		return zero, err
	}
	return v, nil
}

// Update merges patch into the entity with the given id.
func (s *Store[T, P]) Update(ctx context.Context, id string, patch models.Patch) error {
	items, err := s.slot.LoadAll(ctx)
	if err != nil {
		return err
	}
	i := indexOf[T, P](items, id)
	if i < 0 {
		return fmt.Errorf("%s %s: %w", s.slot.kind, id, common.ErrorNotFound)
	}
	merged, err := models.Merge[T, P](items[i], patch)
	if err != nil {
		return err
	}
	items[i] = merged
	return s.slot.SaveAll(ctx, items)
}

// Delete removes the entity with the given id. A missing id is not an error.
func (s *Store[T, P]) Delete(ctx context.Context, id string) error {
	items, err := s.slot.LoadAll(ctx)
	if err != nil {
		return err
	}
	i := indexOf[T, P](items, id)
	if i < 0 {
		return nil
	}
	return s.slot.SaveAll(ctx, append(items[:i], items[i+1:]...))
}

func indexOf[T any, P models.Entity[T]](items []T, id string) int {
	for i := range items {
		if P(&items[i]).Metadata().ID == id {
			return i
		}
	}
	return -1
}

// Replace overwrites the slot with items.
func (s *Store[T, P]) Replace(ctx context.Context, items []T) error {
	return s.slot.SaveAll(ctx, items)
}

func (s *Store[T, P]) Clear(ctx context.Context) error {
	return s.slot.Clear(ctx)
}
