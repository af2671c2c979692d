package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/centinela/backoffice/internal/payroll"
	"github.com/centinela/backoffice/internal/pricing"
	"github.com/centinela/backoffice/internal/rates"
	"github.com/centinela/backoffice/internal/salary"
)

type Storage struct {
	RateTables interface {
		// GetEffective materializes the rate-table version in force at the
		// given date into one immutable snapshot.
		GetEffective(ctx context.Context, at time.Time) (rates.Table, error)
		ListVersions(ctx context.Context) ([]RateTableVersion, error)
		// InsertVersion adds a superseding snapshot; existing versions are
		// never mutated.
		InsertVersion(ctx context.Context, v *RateTableVersion, funds []PensionFundRow, brackets []TaxBracketRow) error
	}

	Catalog interface {
		GetItems(ctx context.Context, kind string) ([]CatalogItem, error)
		GetItem(ctx context.Context, id int64) (CatalogItem, error)
		UpsertItem(ctx context.Context, item *CatalogItem) error
	}

	Guards interface {
		// GetSalaryContext reads the override, post and installation
		// packages of one guard in a single snapshot.
		GetSalaryContext(ctx context.Context, guardID string) (salary.Context, error)
		InsertOverride(ctx context.Context, guardID string, pkg *payroll.CompensationPackage) error
		RemoveOverride(ctx context.Context, guardID string) error

		GetCachedEstimate(ctx context.Context, guardID string) (PayEstimate, bool, error)
		PutCachedEstimate(ctx context.Context, est *PayEstimate) error
		InvalidateEstimate(ctx context.Context, guardID string) error
	}

	Quotes interface {
		// GetQuote materializes the quote with its positions, ancillary
		// collections and parameters in one snapshot read.
		GetQuote(ctx context.Context, id int64) (pricing.Quote, error)
		InsertPosition(ctx context.Context, quoteID int64, p *pricing.Position) error
		UpdatePositionCost(ctx context.Context, quoteID int64, name string, monthlyCost int64) error
		DeletePosition(ctx context.Context, quoteID int64, name string) error
		DeleteQuote(ctx context.Context, id int64) error
	}

	ImportHistory interface {
		InsertImportHistory(ctx context.Context, h *ImportHistory) error
		GetLatest(ctx context.Context, limit int) ([]ImportHistory, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		RateTables:    &RateTableStore{db: db},
		Catalog:       &CatalogStore{db: db},
		Guards:        &GuardStore{db: db},
		Quotes:        &QuoteStore{db: db},
		ImportHistory: &ImportHistoryStore{db: db},
	}
}
