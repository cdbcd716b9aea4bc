package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	sm "github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/records"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

type fakeUsersRepo struct {
	createOut *sm.User
	createErr error

	getOut *sm.User
	getErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *sm.User) (*sm.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*sm.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

// memRecords mimics the Postgres records repository in memory.
type memRecords struct {
	rows map[models.Kind]map[string]sm.Record
	seq  int

	insertErr error
	updateErr error
}

func newMemRecords() *memRecords {
	return &memRecords{rows: map[models.Kind]map[string]sm.Record{}}
}

func (m *memRecords) table(kind models.Kind) map[string]sm.Record {
	if m.rows[kind] == nil {
		m.rows[kind] = map[string]sm.Record{}
	}
	return m.rows[kind]
}

func (m *memRecords) List(_ context.Context, kind models.Kind, ownerID string) ([]sm.Record, error) {
	out := []sm.Record{}
	for _, r := range m.table(kind) {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memRecords) Get(_ context.Context, kind models.Kind, ownerID, id string) (sm.Record, error) {
	r, ok := m.table(kind)[id]
	if !ok || r.OwnerID != ownerID {
		return sm.Record{}, common.ErrorNotFound
	}
	return r, nil
}

func (m *memRecords) Insert(_ context.Context, kind models.Kind, ownerID string, doc json.RawMessage) (sm.Record, error) {
	if m.insertErr != nil {
		return sm.Record{}, m.insertErr
	}
	m.seq++
	r := sm.Record{ID: uuid.NewString(), OwnerID: ownerID, Doc: doc}
	r.CreatedAt = r.CreatedAt.AddDate(0, 0, m.seq)
	m.table(kind)[r.ID] = r
	return r, nil
}

func (m *memRecords) Update(_ context.Context, kind models.Kind, ownerID, id string, patch json.RawMessage) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	r, ok := m.table(kind)[id]
	if !ok || r.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	var doc, p map[string]any
	if err := json.Unmarshal(r.Doc, &doc); err != nil {
		return err
	}
	if err := json.Unmarshal(patch, &p); err != nil {
		return err
	}
	for k, v := range p {
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	r.Doc = raw
	m.table(kind)[id] = r
	return nil
}

func (m *memRecords) Delete(_ context.Context, kind models.Kind, ownerID, id string) error {
	if r, ok := m.table(kind)[id]; ok && r.OwnerID == ownerID {
		delete(m.table(kind), id)
	}
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *memRecords
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Records(dbx.DBTX) records.Repository          { return m.r }
