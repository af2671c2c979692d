package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type ImportHistoryStore struct {
	db *sqlx.DB
}

func (is *ImportHistoryStore) InsertImportHistory(ctx context.Context, h *ImportHistory) error {
	query := `INSERT INTO catalog_import_history (
		source_file,
		kind,
		trigger_type,
		status,
		item_count
	) VALUES (
		:source_file,
		:kind,
		:trigger_type,
		:status,
		:item_count
	) RETURNING id, processed_at`

	rows, err := is.db.NamedQueryContext(ctx, query, h)
	if err != nil {
		return fmt.Errorf("failed to record import history: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&h.ID, &h.ProcessedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (is *ImportHistoryStore) GetLatest(ctx context.Context, limit int) ([]ImportHistory, error) {
	var out []ImportHistory
	err := is.db.SelectContext(ctx, &out, `
		SELECT id, source_file, kind, trigger_type, status, item_count, processed_at
		FROM catalog_import_history
		ORDER BY processed_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import history: %w", err)
	}
	return out, nil
}
