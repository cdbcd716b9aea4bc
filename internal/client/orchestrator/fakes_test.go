package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/notekeeper/internal/client/identity"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/models"
)

var errBoom = errors.New("boom")

// memStore is an in-memory Store. Remote stores mint UUIDs on insert like
// the server does; local ones keep the id they are given.
type memStore[T any, P models.Entity[T]] struct {
	remote bool
	items  []T

	inserts      int
	failInsertAt int // 1-based; 0 never fails

	listErr, insertErr, updateErr, deleteErr, replaceErr error
}

func (s *memStore[T, P]) List(context.Context) ([]T, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return slices.Clone(s.items), nil
}

func (s *memStore[T, P]) Insert(_ context.Context, v T) (T, error) {
	var zero T
	s.inserts++
	if s.insertErr != nil || s.inserts == s.failInsertAt {
		return zero, errors.Join(errBoom, s.insertErr)
	}
	m := P(&v).Metadata()
	if s.remote {
		m.ID = uuid.NewString()
	} else if m.ID == "" {
		m.ID = models.NewLocalID()
	}
	s.items = append(s.items, v)
	return v, nil
}

func (s *memStore[T, P]) Update(_ context.Context, id string, patch models.Patch) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.items {
		if P(&s.items[i]).Metadata().ID == id {
			merged, err := models.Merge[T, P](s.items[i], patch)
			if err != nil {
				return err
			}
			s.items[i] = merged
			return nil
		}
	}
	return fmt.Errorf("%s: %w", id, common.ErrorNotFound)
}

func (s *memStore[T, P]) Delete(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.items = slices.DeleteFunc(s.items, func(v T) bool { return P(&v).Metadata().ID == id })
	return nil
}

func (s *memStore[T, P]) Replace(_ context.Context, items []T) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.items = slices.Clone(items)
	return nil
}

func (s *memStore[T, P]) Clear(context.Context) error {
	s.items = nil
	return nil
}

// remotes hands out one remote memStore per owner.
type remotes[T any, P models.Entity[T]] map[string]*memStore[T, P]

func (r remotes[T, P]) factory(owner string) Store[T] {
	s, ok := r[owner]
	if !ok {
		s = &memStore[T, P]{remote: true}
		r[owner] = s
	}
	return s
}

type fixture[T any, P models.Entity[T]] struct {
	o       *Orchestrator[T, P]
	local   *memStore[T, P]
	remotes remotes[T, P]
	now     time.Time
}

func newFixture[T any, P models.Entity[T]](t *testing.T, kind models.Kind) *fixture[T, P] {
	t.Helper()
	f := &fixture[T, P]{
		local:   &memStore[T, P]{},
		remotes: remotes[T, P]{},
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.o = New[T, P](kind, f.local, f.remotes.factory, logging.Discard())
	f.o.now = func() time.Time { return f.now }
	return f
}

func (f *fixture[T, P]) remote(owner string) *memStore[T, P] {
	f.remotes.factory(owner)
	return f.remotes[owner]
}

func (f *fixture[T, P]) tick(d time.Duration) { f.now = f.now.Add(d) }

func newNotes(t *testing.T) *fixture[models.Note, *models.Note] {
	return newFixture[models.Note, *models.Note](t, models.KindNote)
}

// fakeGate is a settable identity.Gate.
type fakeGate struct {
	user *identity.Identity
	subs []func(ctx context.Context)
}

func (g *fakeGate) CurrentUser() *identity.Identity { return g.user }

func (g *fakeGate) OnSignOut(fn func(ctx context.Context)) { g.subs = append(g.subs, fn) }

func (g *fakeGate) signIn(id string) { g.user = &identity.Identity{UserID: id, Username: id} }

func (g *fakeGate) signOut(ctx context.Context) {
	g.user = nil
	for _, fn := range g.subs {
		fn(ctx)
	}
}
