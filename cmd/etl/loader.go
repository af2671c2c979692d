package main

import (
	"context"
	"fmt"
	"os"

	"github.com/centinela/backoffice/internal/catalog"
	"github.com/centinela/backoffice/internal/logger"
	"github.com/centinela/backoffice/internal/store"
)

type importResult struct {
	Imported int
	Skipped  int
	Failed   int
}

func importPriceList(ctx context.Context, path, kind string, storage *store.Storage, appLogger *logger.Logger) (importResult, error) {
	const component = "CatalogLoader"
	var result importResult

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("failed to open price list: %w", err)
	}
	defer file.Close()

	df, err := catalog.ReadPriceList(file)
	if err != nil {
		return result, err
	}

	items, skipped := catalog.ItemsFromFrame(df, kind)
	result.Skipped = len(skipped)
	for _, s := range skipped {
		appLogger.Warn(component, "Row skipped: file=%s reason=%v", path, s)
	}

	for i := range items {
		if err := storage.Catalog.UpsertItem(ctx, &items[i]); err != nil {
			appLogger.Error(component, "Failed to upsert item: name=%s error=%v", items[i].Name, err)
			result.Failed++
			continue
		}
		result.Imported++
	}

	appLogger.Info(component, "Price list processed: file=%s kind=%s imported=%d skipped=%d failed=%d",
		path, kind, result.Imported, result.Skipped, result.Failed)
	return result, nil
}
