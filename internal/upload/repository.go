package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GrantRecord is one issued upload grant as kept in the ledger. The ledger is
// an audit trail; expiry is enforced by the object store, not by this table.
type GrantRecord struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	NamespaceID string    `json:"gameId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository persists upload grants in PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Record inserts rec and fills in its ID and CreatedAt.
func (r *Repository) Record(ctx context.Context, rec *GrantRecord) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO upload_grants (object_key, namespace_id, file_name, content_type, size_bytes, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		rec.Key, rec.NamespaceID, rec.FileName, rec.ContentType, rec.Size, rec.ExpiresAt,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert upload grant: %w", err)
	}
	return nil
}

// ListRecent returns the newest grants, optionally restricted to one namespace.
func (r *Repository) ListRecent(ctx context.Context, namespaceID string, limit int) ([]GrantRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, object_key, namespace_id, file_name, content_type, size_bytes, expires_at, created_at
		 FROM upload_grants
		 WHERE $1 = '' OR namespace_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		namespaceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list upload grants: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (GrantRecord, error) {
		var g GrantRecord
		err := row.Scan(&g.ID, &g.Key, &g.NamespaceID, &g.FileName, &g.ContentType, &g.Size, &g.ExpiresAt, &g.CreatedAt)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan upload grants: %w", err)
	}
	return records, nil
}
