package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// RemoteStore is the Remote Store Adapter for one kind, bound to one owner.
type RemoteStore[T any, P models.Entity[T]] struct {
	c     RecordClient
	kind  models.Kind
	owner string
}

func NewRemoteStore[T any, P models.Entity[T]](c RecordClient, kind models.Kind, owner string) *RemoteStore[T, P] {
	return &RemoteStore[T, P]{c: c, kind: kind, owner: owner}
}

func (s *RemoteStore[T, P]) Owner() string { return s.owner }

// List returns every entity of the owner in store order.
func (s *RemoteStore[T, P]) List(ctx context.Context) ([]T, error) {
	recs, err := s.c.List(ctx, s.kind, s.owner)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, raw := range recs {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", s.kind, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Insert stores v under the owner. The returned entity carries the id
// assigned by the remote store.
func (s *RemoteStore[T, P]) Insert(ctx context.Context, v T) (T, error) {
	var zero T
	raw, err := json.Marshal(&v)
	if err != nil {
		return zero, fmt.Errorf("encode %s record: %w", s.kind, err)
	}
	resp, err := s.c.Insert(ctx, s.kind, s.owner, raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(resp, &out); err != nil {
		return zero, fmt.Errorf("decode %s record: %w", s.kind, err)
	}
	return out, nil
}

// Update merges patch into the remote entity. A missing id yields
// common.ErrorNotFound.
func (s *RemoteStore[T, P]) Update(ctx context.Context, id string, patch models.Patch) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode %s patch: %w", s.kind, err)
	}
	return s.c.Update(ctx, s.kind, s.owner, id, raw)
}

func (s *RemoteStore[T, P]) Delete(ctx context.Context, id string) error {
	return s.c.Delete(ctx, s.kind, s.owner, id)
}
