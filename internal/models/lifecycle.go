package models

import (
	"fmt"
	"time"
)

// Create returns v with local defaults: a fresh local id, both timestamps
// set to now, every lifecycle flag false and synced false.
func Create[T any, P Entity[T]](v T, now time.Time) (T, error) {
	var zero T
	now = now.UTC()
	p := P(&v)
	*p.Metadata() = Meta{ID: NewLocalID(), CreatedAt: now, UpdatedAt: now}
	p.Normalize(now)
	if err := p.Validate(); err != nil {
		return zero, err
	}
	return v, nil
}

// ApplyUpdate returns a copy of v with patch merged, updatedAt refreshed and
// synced cleared. The id and createdAt of v are preserved. trashedAt follows
// inTrash: it is set to now when a patch trashes without one and cleared
// whenever the result is not in trash.
func ApplyUpdate[T any, P Entity[T]](v T, patch Patch, now time.Time) (T, error) {
	var zero T
	if err := patch.checkMutable(); err != nil {
		return zero, err
	}
	out, err := Merge[T, P](v, patch)
	if err != nil {
		return zero, err
	}

	op := P(&out)
	m := op.Metadata()
	m.UpdatedAt = now.UTC()
	m.Synced = false
	m.reconcileTrash(now)

	op.Normalize(now)
	if err := op.Validate(); err != nil {
		return zero, err
	}
	return out, nil
}

// Merge applies patch to v as stored, without lifecycle bookkeeping. Stores
// use it to persist a patch computed elsewhere. The id and createdAt of v
// always win over the patch.
func Merge[T any, P Entity[T]](v T, patch Patch) (T, error) {
	var zero T
	doc, err := ToDoc(&v)
	if err != nil {
		return zero, fmt.Errorf("encode entity: %w", err)
	}
	for k, val := range patch {
		doc[k] = val
	}

	var out T
	if err := FromDoc(doc, &out); err != nil {
		return zero, fmt.Errorf("decode patched entity: %w", err)
	}

	src := P(&v).Metadata()
	m := P(&out).Metadata()
	m.ID = src.ID
	m.CreatedAt = src.CreatedAt
	return out, nil
}

// MarkSynced returns v with synced set. Only the sync engine calls it, after
// a confirmed remote write.
func MarkSynced[T any, P Entity[T]](v T) T {
	P(&v).Metadata().Synced = true
	return v
}

// IDOf returns the id of v.
func IDOf[T any, P Entity[T]](v T) string {
	return P(&v).Metadata().ID
}

// MetaOf returns a copy of the lifecycle fields of v.
func MetaOf[T any, P Entity[T]](v T) Meta {
	return *P(&v).Metadata()
}
