package models

import (
	"encoding/json"
	"fmt"
)

// JSON field names of Meta used by the sync engine.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldFavorite  = "favorite"
	FieldArchived  = "archived"
	FieldInTrash   = "inTrash"
	FieldTrashedAt = "trashedAt"
	FieldSynced    = "synced"
	FieldIsPinned  = "isPinned"
)

// Patch is a shallow JSON merge object keyed by JSON field names. A nil
// value clears the field.
type Patch map[string]any

// Keys returns the patched field names.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}

// Clone returns a shallow copy of p.
func (p Patch) Clone() Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p Patch) checkMutable() error {
	for _, k := range []string{FieldID, FieldCreatedAt} {
		if _, ok := p[k]; ok {
			return fmt.Errorf("%w: %s", ErrImmutableField, k)
		}
	}
	return nil
}

// ToDoc renders v as a JSON object.
func ToDoc(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FromDoc decodes a JSON object into v.
func FromDoc(doc map[string]any, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// PatchOf builds a patch carrying the current values of keys in v, always
// including updatedAt. inTrash and trashedAt are carried together. The sync engine sends it to the remote store after
// ApplyUpdate so the remote document reflects normalized values.
func PatchOf(v any, keys ...string) (Patch, error) {
	doc, err := ToDoc(v)
	if err != nil {
		return nil, err
	}
	p := Patch{FieldUpdatedAt: doc[FieldUpdatedAt]}
	for _, k := range keys {
		switch k {
		case FieldID, FieldCreatedAt, FieldSynced:
			continue
		case FieldInTrash, FieldTrashedAt:
			p[FieldInTrash], p[FieldTrashedAt] = doc[FieldInTrash], doc[FieldTrashedAt]
		}
		p[k] = doc[k]
	}
	return p, nil
}

// DocumentPatch returns the whole document of v minus identity fields.
// Manual sync uses it to push full state.
func DocumentPatch(v any) (Patch, error) {
	doc, err := ToDoc(v)
	if err != nil {
		return nil, err
	}
	delete(doc, FieldID)
	delete(doc, FieldCreatedAt)
	delete(doc, FieldSynced)
	return Patch(doc), nil
}
