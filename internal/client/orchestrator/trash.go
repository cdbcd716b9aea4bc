package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// Trash returns the soft-deleted entities.
func (o *Orchestrator[T, P]) Trash(ctx context.Context) ([]T, error) {
	return o.filter(ctx, func(m *models.Meta) bool { return m.InTrash })
}

// SoftDelete moves the entity to trash. Deleting a trashed entity again
// changes nothing.
func (o *Orchestrator[T, P]) SoftDelete(ctx context.Context, id string) (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.lookupLocked(ctx, id)
	if err != nil {
		return cur, err
	}
	if P(&cur).Metadata().InTrash {
		return cur, nil
	}
	return o.updateLocked(ctx, id, models.Patch{
		models.FieldInTrash:   true,
		models.FieldTrashedAt: o.now().UTC(),
	})
}

// Restore brings a trashed entity back.
func (o *Orchestrator[T, P]) Restore(ctx context.Context, id string) (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.lookupLocked(ctx, id)
	if err != nil {
		return cur, err
	}
	if !P(&cur).Metadata().InTrash {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", o.kind, id, ErrNotInTrash)
	}
	return o.updateLocked(ctx, id, models.Patch{
		models.FieldInTrash:   false,
		models.FieldTrashedAt: nil,
	})
}

// PurgeOne permanently deletes a trashed entity from the active store.
func (o *Orchestrator[T, P]) PurgeOne(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.lookupLocked(ctx, id)
	if err != nil {
		return err
	}
	if !P(&cur).Metadata().InTrash {
		return fmt.Errorf("%s %s: %w", o.kind, id, ErrNotInTrash)
	}
	return o.purgeLocked(ctx, id)
}

// PurgeAll empties the trash and returns the number of purged entities. It
// stops at the first failure.
func (o *Orchestrator[T, P]) PurgeAll(ctx context.Context) (int, error) {
	return o.purgeWhere(ctx, func(*models.Meta) bool { return true })
}

// PurgeExpired purges entities trashed longer than retention ago. A
// non-positive retention purges nothing.
func (o *Orchestrator[T, P]) PurgeExpired(ctx context.Context, retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := o.now().Add(-retention)
	return o.purgeWhere(ctx, func(m *models.Meta) bool {
		return m.TrashedAt != nil && !m.TrashedAt.After(cutoff)
	})
}

func (o *Orchestrator[T, P]) purgeWhere(ctx context.Context, match func(*models.Meta) bool) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	items, err := o.itemsLocked(ctx)
	if err != nil {
		return 0, err
	}
	var ids []string
	for i := range items {
		m := P(&items[i]).Metadata()
		if m.InTrash && match(m) {
			ids = append(ids, m.ID)
		}
	}

	n := 0
	for _, id := range ids {
		if err := o.purgeLocked(ctx, id); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		o.log.Info(ctx, "purged trash", "count", n)
	}
	return n, nil
}

func (o *Orchestrator[T, P]) purgeLocked(ctx context.Context, id string) error {
	o.pending = true
	if err := o.store().Delete(ctx, id); err != nil {
		o.invalidate()
		return fmt.Errorf("delete %s %s: %w", o.kind, id, err)
	}
	if i := o.indexLocked(id); i >= 0 {
		o.cache = append(o.cache[:i], o.cache[i+1:]...)
	}
	return nil
}

func (o *Orchestrator[T, P]) lookupLocked(ctx context.Context, id string) (T, error) {
	var zero T
	if _, err := o.itemsLocked(ctx); err != nil {
		return zero, err
	}
	i := o.indexLocked(id)
	if i < 0 {
		return zero, fmt.Errorf("%s %s: %w", o.kind, id, ErrEntityNotFound)
	}
	return o.cache[i], nil
}
