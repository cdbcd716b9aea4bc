package orchestrator

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	"github.com/dmitrijs2005/notekeeper/internal/search"
)

// Orchestrator routes every read and mutation of one kind to the store
// selected by the session mode.
type Orchestrator[T any, P models.Entity[T]] struct {
	mu sync.Mutex

	kind   models.Kind
	local  LocalStore[T]
	remote RemoteFactory[T]

	mode   SessionMode
	owner  string
	active Store[T] // remote store of owner, nil while Anonymous

	// cache mirrors the active store. It is valid after a successful read
	// or write. A failed write marks it stale but keeps it as the last known
	// view until the mode changes.
	cache []T
	valid bool

	pending bool

	now func() time.Time
	log logging.Logger
}

func New[T any, P models.Entity[T]](kind models.Kind, local LocalStore[T], remote RemoteFactory[T], log logging.Logger) *Orchestrator[T, P] {
	return &Orchestrator[T, P]{
		kind:   kind,
		local:  local,
		remote: remote,
		now:    time.Now,
		log:    log.With("module", "orchestrator", "kind", string(kind)),
	}
}

func (o *Orchestrator[T, P]) Kind() models.Kind { return o.kind }

func (o *Orchestrator[T, P]) Mode() SessionMode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mode
}

// Owner returns the signed-in owner, or "" while Anonymous.
func (o *Orchestrator[T, P]) Owner() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.owner
}

// Pending reports whether writes happened since the last successful Sync.
func (o *Orchestrator[T, P]) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

func (o *Orchestrator[T, P]) store() Store[T] {
	if o.mode == Authenticated {
		return o.active
	}
	return o.local
}

func (o *Orchestrator[T, P]) invalidate() {
	o.valid = false
}

// reset forgets the view of the previous mode.
func (o *Orchestrator[T, P]) reset() {
	o.cache, o.valid = nil, false
}

// Load re-reads the active store into the cache.
func (o *Orchestrator[T, P]) Load(ctx context.Context) ([]T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.loadLocked(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(o.cache), nil
}

func (o *Orchestrator[T, P]) loadLocked(ctx context.Context) error {
	items, err := o.store().List(ctx)
	if err != nil {
		o.invalidate()
		return fmt.Errorf("list %s: %w", o.kind, err)
	}
	if o.mode == Authenticated {
		for i := range items {
			items[i] = models.MarkSynced[T, P](items[i])
		}
	}
	if items == nil {
		items = []T{}
	}
	o.cache, o.valid = items, true
	return nil
}

func (o *Orchestrator[T, P]) itemsLocked(ctx context.Context) ([]T, error) {
	if !o.valid {
		if err := o.loadLocked(ctx); err != nil {
			return nil, err
		}
	}
	return o.cache, nil
}

// Items returns the whole collection, trashed entities included.
func (o *Orchestrator[T, P]) Items(ctx context.Context) ([]T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	items, err := o.itemsLocked(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

// Active returns the entities that are not in trash.
func (o *Orchestrator[T, P]) Active(ctx context.Context) ([]T, error) {
	return o.filter(ctx, func(m *models.Meta) bool { return !m.InTrash })
}

func (o *Orchestrator[T, P]) filter(ctx context.Context, keep func(*models.Meta) bool) ([]T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	items, err := o.itemsLocked(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for i := range items {
		if keep(P(&items[i]).Metadata()) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

func (o *Orchestrator[T, P]) Get(ctx context.Context, id string) (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lookupLocked(ctx, id)
}

// Search filters the whole collection by query. An empty query returns it unfiltered.
func (o *Orchestrator[T, P]) Search(ctx context.Context, query string) ([]T, error) {
	items, err := o.Items(ctx)
	if err != nil {
		return nil, err
	}
	return search.Filter(items, query, func(v *T) []string { return P(v).SearchFields() }), nil
}

func (o *Orchestrator[T, P]) indexLocked(id string) int {
	for i := range o.cache {
		if P(&o.cache[i]).Metadata().ID == id {
			return i
		}
	}
	return -1
}

// confirm marks v synced when it was just written to the remote store.
func (o *Orchestrator[T, P]) confirm(v T) T {
	if o.mode == Authenticated {
		return models.MarkSynced[T, P](v)
	}
	return v
}

// Add creates v and writes it to the active store.
func (o *Orchestrator[T, P]) Add(ctx context.Context, v T) (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var zero T

	created, err := models.Create[T, P](v, o.now())
	if err != nil {
		return zero, err
	}
	if _, err := o.itemsLocked(ctx); err != nil {
		return zero, err
	}

	o.pending = true
	stored, err := o.store().Insert(ctx, created)
	if err != nil {
		o.invalidate()
		return zero, fmt.Errorf("insert %s: %w", o.kind, err)
	}
	stored = o.confirm(stored)
	o.cache = append(o.cache, stored)
	return stored, nil
}

// Update applies patch to the entity with the given id.
func (o *Orchestrator[T, P]) Update(ctx context.Context, id string, patch models.Patch) (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.updateLocked(ctx, id, patch)
}

func (o *Orchestrator[T, P]) updateLocked(ctx context.Context, id string, patch models.Patch) (T, error) {
	var zero T
	if _, err := o.itemsLocked(ctx); err != nil {
		return zero, err
	}
	i := o.indexLocked(id)
	if i < 0 {
		return zero, fmt.Errorf("%s %s: %w", o.kind, id, ErrEntityNotFound)
	}

	updated, err := models.ApplyUpdate[T, P](o.cache[i], patch, o.now())
	if err != nil {
		return zero, err
	}
	// The stored patch carries normalized values, so both stores end up
	// holding what the cache holds.
	stored, err := models.PatchOf(&updated, patch.Keys()...)
	if err != nil {
		return zero, err
	}
	stored[models.FieldSynced] = false

	o.pending = true
	if err := o.store().Update(ctx, id, stored); err != nil {
		o.invalidate()
		return zero, fmt.Errorf("update %s %s: %w", o.kind, id, err)
	}
	updated = o.confirm(updated)
	o.cache[i] = updated
	return updated, nil
}

// ToggleFavorite flips the favorite flag.
func (o *Orchestrator[T, P]) ToggleFavorite(ctx context.Context, id string) (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	cur, err := o.lookupLocked(ctx, id)
	if err != nil {
		return cur, err
	}
	fav := P(&cur).Metadata().Favorite
	return o.updateLocked(ctx, id, models.Patch{models.FieldFavorite: !fav})
}

func (o *Orchestrator[T, P]) SetArchived(ctx context.Context, id string, archived bool) (T, error) {
	return o.Update(ctx, id, models.Patch{models.FieldArchived: archived})
}
