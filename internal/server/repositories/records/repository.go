// Package records stores entity documents per kind in Postgres. Each kind
// has its own table of (id, owner_id, doc) rows; doc is JSONB.
package records

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/notekeeper/internal/models"
	sm "github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository is owner-scoped: a row of another owner behaves as missing.
type Repository interface {
	List(ctx context.Context, kind models.Kind, ownerID string) ([]sm.Record, error)
	Get(ctx context.Context, kind models.Kind, ownerID, id string) (sm.Record, error)
	Insert(ctx context.Context, kind models.Kind, ownerID string, doc json.RawMessage) (sm.Record, error)
	// Update merges patch into the stored document at the top level.
	Update(ctx context.Context, kind models.Kind, ownerID, id string, patch json.RawMessage) error
	// Delete succeeds for missing rows.
	Delete(ctx context.Context, kind models.Kind, ownerID, id string) error
}
