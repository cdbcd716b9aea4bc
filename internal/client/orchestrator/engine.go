package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/identity"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	"github.com/dmitrijs2005/notekeeper/internal/stats"
)

// kind is the type-erased view of an Orchestrator the Engine drives.
type kind interface {
	Kind() models.Kind
	Reload(ctx context.Context) error
	SignIn(ctx context.Context, owner string) error
	SignOut(ctx context.Context) error
	Migrate(ctx context.Context) error
	Sync(ctx context.Context) bool
	Pending() bool
	LocalEmpty(ctx context.Context) (bool, error)
	PurgeExpired(ctx context.Context, retention time.Duration) (int, error)
}

// Reload is Load without the result.
func (o *Orchestrator[T, P]) Reload(ctx context.Context) error {
	_, err := o.Load(ctx)
	return err
}

type (
	NoteOrchestrator   = Orchestrator[models.Note, *models.Note]
	BookOrchestrator   = Orchestrator[models.Book, *models.Book]
	MemoryOrchestrator = Orchestrator[models.MemoryItem, *models.MemoryItem]
)

// Engine drives the orchestrators of every kind from an identity.Gate.
// Kinds sync independently: a failure in one does not stop the others.
type Engine struct {
	mu    sync.Mutex
	gate  identity.Gate
	owner string
	// signOutErr is the outcome of the last sign-out transition.
	signOutErr error

	Notes  *NoteOrchestrator
	Books  *BookOrchestrator
	Memory *MemoryOrchestrator

	log logging.Logger
}

// NewEngine subscribes to the sign-out event of gate.
func NewEngine(gate identity.Gate, notes *NoteOrchestrator, books *BookOrchestrator, memory *MemoryOrchestrator, log logging.Logger) *Engine {
	e := &Engine{
		gate:   gate,
		Notes:  notes,
		Books:  books,
		Memory: memory,
		log:    log.With("module", "engine"),
	}
	gate.OnSignOut(e.signedOut)
	return e
}

func (e *Engine) kinds() []kind {
	return []kind{e.Notes, e.Books, e.Memory}
}

// Load reads every kind from its active store.
func (e *Engine) Load(ctx context.Context) error {
	var errs []error
	for _, k := range e.kinds() {
		errs = append(errs, k.Reload(ctx))
	}
	return errors.Join(errs...)
}

// Mode is Authenticated once Observe has seen a user.
func (e *Engine) Mode() SessionMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.owner == "" {
		return Anonymous
	}
	return Authenticated
}

func (e *Engine) Owner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.owner
}

// Observe compares the gate with the current mode and runs the matching
// transition: sign-in when a user appeared, sign-out when the session
// vanished without an event, both when the user changed.
func (e *Engine) Observe(ctx context.Context) error {
	u := e.gate.CurrentUser()

	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case u == nil && e.owner != "":
		e.log.Info(ctx, "session ended", "owner", e.owner)
		return e.signOutLocked(ctx)
	case u != nil && e.owner == "":
		return e.signInLocked(ctx, u.UserID)
	case u != nil && u.UserID != e.owner:
		e.log.Warn(ctx, "user changed without sign-out", "from", e.owner, "to", u.UserID)
		if err := e.signOutLocked(ctx); err != nil {
			return err
		}
		return e.signInLocked(ctx, u.UserID)
	}
	return nil
}

// Watch calls Observe every interval until ctx is done.
func (e *Engine) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		if err := e.Observe(ctx); err != nil {
			e.log.Error(ctx, "session transition failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (e *Engine) signInLocked(ctx context.Context, owner string) error {
	e.owner = owner
	var errs []error
	for _, k := range e.kinds() {
		if err := k.SignIn(ctx, owner); err != nil {
			errs = append(errs, fmt.Errorf("sign in %s: %w", k.Kind(), err))
		}
	}
	e.log.Info(ctx, "signed in", "owner", owner, "ok", len(errs) == 0)
	return errors.Join(errs...)
}

func (e *Engine) signOutLocked(ctx context.Context) error {
	e.owner = ""
	var errs []error
	for _, k := range e.kinds() {
		if err := k.SignOut(ctx); err != nil {
			errs = append(errs, fmt.Errorf("sign out %s: %w", k.Kind(), err))
		}
	}
	e.signOutErr = errors.Join(errs...)
	return e.signOutErr
}

// SignOutErr returns the error of the last sign-out, or nil when every kind
// saved its offline snapshot.
func (e *Engine) SignOutErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.signOutErr
}

func (e *Engine) signedOut(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.owner == "" {
		return
	}
	if err := e.signOutLocked(ctx); err != nil {
		e.log.Error(ctx, "sign-out snapshot failed", "error", err)
	}
}

// Sync pushes every kind. It returns false while Anonymous or when any kind
// failed.
func (e *Engine) Sync(ctx context.Context) bool {
	ok := true
	for _, k := range e.kinds() {
		if !k.Sync(ctx) {
			ok = false
		}
	}
	return ok
}

func (e *Engine) Pending() bool {
	for _, k := range e.kinds() {
		if k.Pending() {
			return true
		}
	}
	return false
}

// MixedState reports an authenticated session with local data left behind
// by an interrupted migration.
func (e *Engine) MixedState(ctx context.Context) (bool, error) {
	if e.Mode() != Authenticated {
		return false, nil
	}
	for _, k := range e.kinds() {
		empty, err := k.LocalEmpty(ctx)
		if err != nil {
			return false, err
		}
		if !empty {
			return true, nil
		}
	}
	return false, nil
}

// RetryMigration re-runs the sign-in migration of every kind.
func (e *Engine) RetryMigration(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.owner == "" {
		return ErrNotAuthenticated
	}
	var errs []error
	for _, k := range e.kinds() {
		if err := k.Migrate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("migrate %s: %w", k.Kind(), err))
		}
	}
	return errors.Join(errs...)
}

// PurgeExpired purges expired trash of every kind and returns the total.
func (e *Engine) PurgeExpired(ctx context.Context, retention time.Duration) (int, error) {
	total := 0
	var errs []error
	for _, k := range e.kinds() {
		n, err := k.PurgeExpired(ctx, retention)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

func (e *Engine) SetPinned(ctx context.Context, noteID string, pinned bool) (models.Note, error) {
	return e.Notes.Update(ctx, noteID, models.Patch{models.FieldIsPinned: pinned})
}

// Stats summarizes the current collections.
func (e *Engine) Stats(ctx context.Context) (stats.Summary, error) {
	notes, err := e.Notes.Items(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	books, err := e.Books.Items(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	items, err := e.Memory.Items(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(notes, books, items), nil
}
