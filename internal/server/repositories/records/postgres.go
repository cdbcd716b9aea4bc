package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	sm "github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// table maps a kind to its table. Only known kinds reach SQL text.
func table(kind models.Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownKind, kind)
	}
	return string(kind), nil
}

func (r *PostgresRepository) List(ctx context.Context, kind models.Kind, ownerID string) ([]sm.Record, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, owner_id, doc, created_at FROM %s
		WHERE owner_id = $1
		ORDER BY created_at, id`, t)

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]sm.Record, 0)
	for rows.Next() {
		var rec sm.Record
		var doc []byte
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &doc, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", t, err)
		}
		rec.Doc = doc
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", t, err)
	}

	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, kind models.Kind, ownerID, id string) (sm.Record, error) {
	t, err := table(kind)
	if err != nil {
		return sm.Record{}, err
	}

	query := fmt.Sprintf(`SELECT id, owner_id, doc, created_at FROM %s
		WHERE id = $1 AND owner_id = $2`, t)

	var rec sm.Record
	var doc []byte
	err = r.db.QueryRowContext(ctx, query, id, ownerID).Scan(&rec.ID, &rec.OwnerID, &doc, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sm.Record{}, common.ErrorNotFound
		}
		return sm.Record{}, fmt.Errorf("db error: %w", err)
	}
	rec.Doc = doc
	return rec, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, kind models.Kind, ownerID string, doc json.RawMessage) (sm.Record, error) {
	t, err := table(kind)
	if err != nil {
		return sm.Record{}, err
	}

	query := fmt.Sprintf(`INSERT INTO %s (owner_id, doc)
		VALUES ($1, $2)
		RETURNING id, created_at`, t)

	rec := sm.Record{OwnerID: ownerID, Doc: doc}
	if err := r.db.QueryRowContext(ctx, query, ownerID, []byte(doc)).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return sm.Record{}, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Update(ctx context.Context, kind models.Kind, ownerID, id string, patch json.RawMessage) error {
	t, err := table(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET doc = doc || $1::jsonb
		WHERE id = $2 AND owner_id = $3`, t)

	res, err := r.db.ExecContext(ctx, query, []byte(patch), id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := dbx.RowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, kind models.Kind, ownerID, id string) error {
	t, err := table(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, t)
	if _, err := r.db.ExecContext(ctx, query, id, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
