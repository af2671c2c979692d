package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type CatalogStore struct {
	db *sqlx.DB
}

// ErrCatalogItemNotFound lets callers downgrade an unresolved price to a
// flagged zero-cost line instead of aborting the computation.
var ErrCatalogItemNotFound = fmt.Errorf("catalog item not found")

func (cs *CatalogStore) GetItems(ctx context.Context, kind string) ([]CatalogItem, error) {
	var out []CatalogItem
	err := cs.db.SelectContext(ctx, &out, `
		SELECT id, kind, name, base_price_clp, unit, active, inserted_at, updated_at
		FROM catalog_items
		WHERE kind = $1 AND active = true
		ORDER BY name`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	return out, nil
}

func (cs *CatalogStore) GetItem(ctx context.Context, id int64) (CatalogItem, error) {
	var item CatalogItem
	err := cs.db.GetContext(ctx, &item, `
		SELECT id, kind, name, base_price_clp, unit, active, inserted_at, updated_at
		FROM catalog_items
		WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return CatalogItem{}, ErrCatalogItemNotFound
	}
	if err != nil {
		return CatalogItem{}, fmt.Errorf("failed to query catalog item %d: %w", id, err)
	}
	return item, nil
}

// UpsertItem keys on (kind, name), which is how supplier price lists refer
// to items.
func (cs *CatalogStore) UpsertItem(ctx context.Context, item *CatalogItem) error {
	query := `INSERT INTO catalog_items (kind, name, base_price_clp, unit, active)
		VALUES (:kind, :name, :base_price_clp, :unit, :active)
		ON CONFLICT (kind, name) DO UPDATE SET
			base_price_clp = EXCLUDED.base_price_clp,
			unit = EXCLUDED.unit,
			active = EXCLUDED.active,
			updated_at = now()
		RETURNING id, inserted_at, updated_at`

	rows, err := cs.db.NamedQueryContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog item %s: %w", item.Name, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&item.ID, &item.InsertedAt, &item.UpdatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}
