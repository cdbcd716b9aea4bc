package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	sm "github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type fakeUsers struct {
	err   error
	salt  []byte
	token string

	lastUser     string
	lastVerifier []byte
}

func (f *fakeUsers) Register(_ context.Context, username string, _, verifier []byte) (*sm.User, error) {
	f.lastUser, f.lastVerifier = username, verifier
	if f.err != nil {
		return nil, f.err
	}
	return &sm.User{ID: "u1", UserName: username}, nil
}

func (f *fakeUsers) GetSalt(_ context.Context, username string) ([]byte, error) {
	f.lastUser = username
	return f.salt, f.err
}

func (f *fakeUsers) Login(_ context.Context, username string, candidate []byte) (string, error) {
	f.lastUser, f.lastVerifier = username, candidate
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type scoped struct {
	kind  models.Kind
	owner string
}

// fakeRecords keeps raw documents per kind and owner and assigns ids r1, r2, ...
type fakeRecords struct {
	err  error
	seq  int
	docs map[scoped][]map[string]any
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{docs: map[scoped][]map[string]any{}}
}

func (f *fakeRecords) List(_ context.Context, kind models.Kind, owner string) ([]json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []json.RawMessage{}
	for _, d := range f.docs[scoped{kind, owner}] {
		b, _ := json.Marshal(d)
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRecords) Insert(_ context.Context, kind models.Kind, owner string, rec json.RawMessage) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	var d map[string]any
	if err := json.Unmarshal(rec, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	f.seq++
	d["id"] = fmt.Sprintf("r%d", f.seq)
	k := scoped{kind, owner}
	f.docs[k] = append(f.docs[k], d)
	return json.Marshal(d)
}

func (f *fakeRecords) Update(_ context.Context, kind models.Kind, owner, id string, patch json.RawMessage) error {
	if f.err != nil {
		return f.err
	}
	var p map[string]any
	if err := json.Unmarshal(patch, &p); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	for _, d := range f.docs[scoped{kind, owner}] {
		if d["id"] == id {
			for k, v := range p {
				d[k] = v
			}
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeRecords) Delete(_ context.Context, kind models.Kind, owner, id string) error {
	if f.err != nil {
		return f.err
	}
	k := scoped{kind, owner}
	docs := f.docs[k]
	for i, d := range docs {
		if d["id"] == id {
			f.docs[k] = append(docs[:i], docs[i+1:]...)
			break
		}
	}
	return nil
}
