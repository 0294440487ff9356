package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/badno/shopcsv/pkg/models"
)

// Snapshot is one persisted parse of a catalog export.
type Snapshot struct {
	ID           uuid.UUID
	Source       string
	ProductCount int
	VariantCount int
	ImageCount   int
	CreatedAt    time.Time
}

// SnapshotRepo persists parsed collections for later comparison
type SnapshotRepo struct {
	client *Client
}

// NewSnapshotRepo creates a new snapshot repository
func NewSnapshotRepo(client *Client) *SnapshotRepo {
	return &SnapshotRepo{client: client}
}

// Create stores the collection as a new snapshot and returns it. The
// raw row of every product is kept as JSON so unknown columns survive.
func (r *SnapshotRepo) Create(ctx context.Context, source string, c *models.Collection) (*Snapshot, error) {
	snap := &Snapshot{
		ID:           uuid.New(),
		Source:       source,
		ProductCount: c.Len(),
		CreatedAt:    time.Now(),
	}
	for _, p := range c.Products() {
		snap.VariantCount += len(p.Variants)
		snap.ImageCount += len(p.Images)
	}

	tx, err := r.client.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO snapshots (id, source, product_count, variant_count, image_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, snap.ID, snap.Source, snap.ProductCount, snap.VariantCount, snap.ImageCount, snap.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for i, p := range c.Products() {
		fieldsJSON, err := json.Marshal(p.Fields)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize product %s: %w", p.Handle(), err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO snapshot_products (
				id, snapshot_id, position, handle, title, vendor, product_type,
				variant_count, image_count, metafield_count, fields
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, uuid.New(), snap.ID, i, p.Handle(), p.Title(), p.Vendor(), p.ProductType(),
			len(p.Variants), len(p.Images), len(p.Metafields), fieldsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to insert product %s: %w", p.Handle(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snap, nil
}

// List returns the most recent snapshots, newest first.
func (r *SnapshotRepo) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.client.pool.Query(ctx, `
		SELECT id, source, product_count, variant_count, image_count, created_at
		FROM snapshots
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Source, &s.ProductCount, &s.VariantCount, &s.ImageCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// Get retrieves one snapshot by id.
func (r *SnapshotRepo) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var s Snapshot
	err := r.client.pool.QueryRow(ctx, `
		SELECT id, source, product_count, variant_count, image_count, created_at
		FROM snapshots WHERE id = $1
	`, id).Scan(&s.ID, &s.Source, &s.ProductCount, &s.VariantCount, &s.ImageCount, &s.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("snapshot %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return &s, nil
}

// Handles returns the product handles of a snapshot in catalog order.
func (r *SnapshotRepo) Handles(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := r.client.pool.Query(ctx, `
		SELECT handle FROM snapshot_products
		WHERE snapshot_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot products: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("failed to scan handle: %w", err)
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}
