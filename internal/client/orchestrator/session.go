package orchestrator

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// SignIn switches to the remote store of owner and migrates the local
// collection into it. Signing in again as the same owner does nothing.
//
// The mode switches before migration starts. When an insert fails the local
// cache is left intact and the error is returned; MixedState then reports
// true and Migrate may be called again. Remote ids are minted on every
// insert, so a repeated migration can duplicate entities already copied.
func (o *Orchestrator[T, P]) SignIn(ctx context.Context, owner string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if owner == "" {
		return ErrNotAuthenticated
	}
	if o.mode == Authenticated {
		if o.owner == owner {
			return nil
		}
		return ErrAlreadyAuthenticated
	}

	o.mode, o.owner, o.active = Authenticated, owner, o.remote(owner)
	o.reset()

	return o.migrateLocked(ctx)
}

// Migrate retries the sign-in migration of the local collection.
func (o *Orchestrator[T, P]) Migrate(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.mode != Authenticated {
		return ErrNotAuthenticated
	}
	return o.migrateLocked(ctx)
}

func (o *Orchestrator[T, P]) migrateLocked(ctx context.Context) error {
	items, err := o.local.List(ctx)
	if err != nil {
		return fmt.Errorf("read local %s: %w", o.kind, err)
	}

	for i, v := range items {
		o.pending = true
		if _, err := o.active.Insert(ctx, v); err != nil {
			o.invalidate()
			o.log.Error(ctx, "sign-in migration interrupted", "migrated", i, "total", len(items), "error", err)
			return fmt.Errorf("migrate %s %s: %w", o.kind, P(&v).Metadata().ID, err)
		}
	}

	if len(items) > 0 {
		if err := o.local.Clear(ctx); err != nil {
			o.invalidate()
			return fmt.Errorf("clear local %s: %w", o.kind, err)
		}
		o.log.Info(ctx, "migrated local cache", "count", len(items), "owner", o.owner)
	}

	return o.loadLocked(ctx)
}

// LocalEmpty reports whether the local cache of this kind holds nothing.
func (o *Orchestrator[T, P]) LocalEmpty(ctx context.Context) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	items, err := o.local.List(ctx)
	if err != nil {
		return false, err
	}
	return len(items) == 0, nil
}

// SignOut snapshots the in-memory view into the local cache and switches to
// Anonymous. The remote store is untouched. A stale view is re-read first;
// when that read fails the last known view is saved instead. Only when no
// view was ever read does the local cache keep its previous content, and
// the error is returned.
func (o *Orchestrator[T, P]) SignOut(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.mode == Anonymous {
		return nil
	}

	if !o.valid {
		if err := o.loadLocked(ctx); err != nil {
			if o.cache == nil {
				o.mode, o.owner, o.active = Anonymous, "", nil
				o.reset()
				return fmt.Errorf("snapshot %s: %w", o.kind, err)
			}
			o.log.Warn(ctx, "saving last known view", "count", len(o.cache), "error", err)
		}
	}

	snapshot := o.cache
	o.mode, o.owner, o.active = Anonymous, "", nil
	o.reset()

	if err := o.local.Replace(ctx, snapshot); err != nil {
		return fmt.Errorf("snapshot %s: %w", o.kind, err)
	}
	o.cache, o.valid = snapshot, true
	o.log.Info(ctx, "saved offline snapshot", "count", len(snapshot))
	return nil
}

// Sync pushes the whole in-memory collection to the remote store: entities
// with remote ids are updated with their full document, entities with local
// ids are inserted and take the assigned id. It returns true when every
// write succeeded, which also clears the pending flag. Anonymous sessions
// and failures return false; the collection is kept for a retry.
func (o *Orchestrator[T, P]) Sync(ctx context.Context) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.mode != Authenticated {
		return false
	}
	if _, err := o.itemsLocked(ctx); err != nil {
		o.log.Warn(ctx, "sync aborted", "error", err)
		return false
	}

	failed := 0
	for i := range o.cache {
		if err := o.pushLocked(ctx, i); err != nil {
			o.log.Warn(ctx, "sync failed", "id", P(&o.cache[i]).Metadata().ID, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return false
	}

	o.pending = false
	return true
}

func (o *Orchestrator[T, P]) pushLocked(ctx context.Context, i int) error {
	v := o.cache[i]
	id := P(&v).Metadata().ID

	if models.IsLocalID(id) {
		stored, err := o.active.Insert(ctx, v)
		if err != nil {
			return err
		}
		o.cache[i] = models.MarkSynced[T, P](stored)
		return nil
	}

	patch, err := models.DocumentPatch(&v)
	if err != nil {
		return err
	}
	if err := o.active.Update(ctx, id, patch); err != nil {
		return err
	}
	o.cache[i] = models.MarkSynced[T, P](v)
	return nil
}
