package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/centinela/backoffice/internal/pricing"
	"github.com/centinela/backoffice/internal/rates"
)

type QuoteStore struct {
	db *sqlx.DB
}

// ErrQuoteNotFound is returned for an unknown quote id.
var ErrQuoteNotFound = fmt.Errorf("quote not found")

/*
GetQuote materializes one proposal wholesale: positions, every ancillary
collection and the pricing parameters, all inside one read-only transaction.
The cost summary downstream is a pure function of this snapshot, so a
catalog or rate update landing mid-read cannot produce a mixed result.
Uniform and exam lines resolve their prices against the catalog here; an
unresolvable price comes back flagged instead of failing the read.
*/
func (qs *QuoteStore) GetQuote(ctx context.Context, id int64) (pricing.Quote, error) {
	tx, err := qs.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return pricing.Quote{}, err
	}
	defer tx.Rollback()

	var params struct {
		ID                    int64   `db:"id"`
		MarginPct             float64 `db:"margin_pct"`
		FinancingPct          float64 `db:"financing_pct"`
		PolicyPct             float64 `db:"policy_pct"`
		ContractMonths        int     `db:"contract_months"`
		PolicyContractMonths  int     `db:"policy_contract_months"`
		PolicyCoveragePct     float64 `db:"policy_coverage_pct"`
		PolicyRatePct         float64 `db:"policy_rate_pct"`
		UniformChangesPerYear float64 `db:"uniform_changes_per_year"`
		AvgTenureMonths       float64 `db:"avg_tenure_months"`
		StandardMonthlyHours  int     `db:"standard_monthly_hours"`
	}
	err = tx.GetContext(ctx, &params, `
		SELECT id, margin_pct, financing_pct, policy_pct,
		       contract_months, policy_contract_months,
		       policy_coverage_pct, policy_rate_pct,
		       uniform_changes_per_year, avg_tenure_months, standard_monthly_hours
		FROM quotes
		WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return pricing.Quote{}, ErrQuoteNotFound
	}
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to query quote %d: %w", id, err)
	}

	q := pricing.Quote{
		ID: params.ID,
		Params: pricing.Parameters{
			MarginPct:             rates.New(params.MarginPct),
			FinancingPct:          rates.New(params.FinancingPct),
			PolicyPct:             rates.New(params.PolicyPct),
			ContractMonths:        params.ContractMonths,
			PolicyContractMonths:  params.PolicyContractMonths,
			PolicyCoveragePct:     rates.New(params.PolicyCoveragePct),
			PolicyRatePct:         rates.New(params.PolicyRatePct),
			UniformChangesPerYear: params.UniformChangesPerYear,
			AvgTenureMonths:       params.AvgTenureMonths,
			StandardMonthlyHours:  params.StandardMonthlyHours,
		},
	}

	var positions []struct {
		Name        string `db:"name"`
		GuardCount  int    `db:"guard_count"`
		MonthlyCost int64  `db:"monthly_employer_cost_clp"`
	}
	err = tx.SelectContext(ctx, &positions, `
		SELECT name, guard_count, monthly_employer_cost_clp
		FROM quote_positions
		WHERE quote_id = $1
		ORDER BY id`, id)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to query positions: %w", err)
	}
	for _, p := range positions {
		q.Positions = append(q.Positions, pricing.Position{
			Name:                p.Name,
			GuardCount:          p.GuardCount,
			MonthlyEmployerCost: p.MonthlyCost,
		})
	}

	var uniforms []struct {
		Name     string        `db:"name"`
		Quantity int           `db:"quantity"`
		Price    sql.NullInt64  `db:"base_price_clp"`
		Unit     sql.NullString `db:"unit"`
	}
	err = tx.SelectContext(ctx, &uniforms, `
		SELECT qu.name, qu.quantity, ci.base_price_clp, ci.unit
		FROM quote_uniform_items qu
		LEFT JOIN catalog_items ci
		  ON ci.id = qu.catalog_item_id AND ci.active = true
		WHERE qu.quote_id = $1
		ORDER BY qu.id`, id)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to query uniform items: %w", err)
	}
	for _, u := range uniforms {
		item := pricing.UniformItem{
			Name:     u.Name,
			Quantity: u.Quantity,
			Billing:  pricing.BillingMonthly,
		}
		if !u.Price.Valid {
			item.PriceMissing = true
		} else {
			item.UnitPrice = u.Price.Int64
			item.Billing = pricing.BillingBasis(u.Unit.String)
		}
		q.Uniforms = append(q.Uniforms, item)
	}

	var exams []struct {
		Name  string        `db:"name"`
		Price sql.NullInt64 `db:"base_price_clp"`
	}
	err = tx.SelectContext(ctx, &exams, `
		SELECT qe.name, ci.base_price_clp
		FROM quote_exam_items qe
		LEFT JOIN catalog_items ci
		  ON ci.id = qe.catalog_item_id AND ci.active = true
		WHERE qe.quote_id = $1
		ORDER BY qe.id`, id)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to query exam items: %w", err)
	}
	for _, e := range exams {
		item := pricing.ExamItem{Name: e.Name}
		if !e.Price.Valid {
			item.PriceMissing = true
		} else {
			item.UnitPrice = e.Price.Int64
		}
		q.Exams = append(q.Exams, item)
	}

	var meals []struct {
		Name          string `db:"name"`
		Enabled       bool   `db:"enabled"`
		PricePerMeal  int64  `db:"price_per_meal_clp"`
		MealsPerDay   int    `db:"meals_per_day"`
		DaysOfService int    `db:"days_of_service"`
	}
	err = tx.SelectContext(ctx, &meals, `
		SELECT name, enabled, price_per_meal_clp, meals_per_day, days_of_service
		FROM quote_meal_plans
		WHERE quote_id = $1
		ORDER BY id`, id)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to query meal plans: %w", err)
	}
	for _, m := range meals {
		q.Meals = append(q.Meals, pricing.MealPlan(m))
	}

	var vehicles []struct {
		Name               string  `db:"name"`
		Count              int     `db:"unit_count"`
		MonthlyRent        int64   `db:"monthly_rent_clp"`
		MonthlyMaintenance int64   `db:"monthly_maintenance_clp"`
		KmPerDay           float64 `db:"km_per_day"`
		DaysPerMonth       int     `db:"days_per_month"`
		KmPerLiter         float64 `db:"km_per_liter"`
		FuelPriceCLP       int64   `db:"fuel_price_clp"`
	}
	err = tx.SelectContext(ctx, &vehicles, `
		SELECT name, unit_count, monthly_rent_clp, monthly_maintenance_clp,
		       km_per_day, days_per_month, km_per_liter, fuel_price_clp
		FROM quote_vehicles
		WHERE quote_id = $1
		ORDER BY id`, id)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to query vehicles: %w", err)
	}
	for _, v := range vehicles {
		q.Vehicles = append(q.Vehicles, pricing.Vehicle{
			Name:               v.Name,
			Count:              v.Count,
			MonthlyRent:        v.MonthlyRent,
			MonthlyMaintenance: v.MonthlyMaintenance,
			KmPerDay:           v.KmPerDay,
			DaysPerMonth:       v.DaysPerMonth,
			KmPerLiter:         v.KmPerLiter,
			FuelPriceCLP:       v.FuelPriceCLP,
		})
	}

	var infra []struct {
		Name          string  `db:"name"`
		Quantity      int     `db:"quantity"`
		MonthlyRent   int64   `db:"monthly_rent_clp"`
		ConsumesFuel  bool    `db:"consumes_fuel"`
		LitersPerHour float64 `db:"liters_per_hour"`
		HoursPerDay   float64 `db:"hours_per_day"`
		DaysPerMonth  int     `db:"days_per_month"`
		FuelPriceCLP  int64   `db:"fuel_price_clp"`
	}
	err = tx.SelectContext(ctx, &infra, `
		SELECT name, quantity, monthly_rent_clp, consumes_fuel,
		       liters_per_hour, hours_per_day, days_per_month, fuel_price_clp
		FROM quote_infrastructure
		WHERE quote_id = $1
		ORDER BY id`, id)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to query infrastructure: %w", err)
	}
	for _, u := range infra {
		q.Infrastructure = append(q.Infrastructure, pricing.InfrastructureUnit(u))
	}

	var items []struct {
		Name   string `db:"name"`
		Amount int64  `db:"amount_clp"`
		Basis  string `db:"basis"`
		Tag    string `db:"tag"`
	}
	err = tx.SelectContext(ctx, &items, `
		SELECT name, amount_clp, basis, tag
		FROM quote_cost_items
		WHERE quote_id = $1
		ORDER BY id`, id)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to query cost items: %w", err)
	}
	for _, c := range items {
		q.CostItems = append(q.CostItems, pricing.CostItem{
			Name:   c.Name,
			Amount: c.Amount,
			Basis:  pricing.CostBasis(c.Basis),
			Tag:    pricing.CostTag(c.Tag),
		})
	}

	return q, tx.Commit()
}

func (qs *QuoteStore) InsertPosition(ctx context.Context, quoteID int64, p *pricing.Position) error {
	_, err := qs.db.ExecContext(ctx, `
		INSERT INTO quote_positions (quote_id, name, guard_count, monthly_employer_cost_clp)
		VALUES ($1,$2,$3,$4)`,
		quoteID, p.Name, p.GuardCount, p.MonthlyEmployerCost)
	if err != nil {
		return fmt.Errorf("failed to insert position %s: %w", p.Name, err)
	}
	return nil
}

// UpdatePositionCost re-snapshots the employer cost after a package or
// rate-table change.
func (qs *QuoteStore) UpdatePositionCost(ctx context.Context, quoteID int64, name string, monthlyCost int64) error {
	res, err := qs.db.ExecContext(ctx, `
		UPDATE quote_positions SET monthly_employer_cost_clp = $3
		WHERE quote_id = $1 AND name = $2`, quoteID, name, monthlyCost)
	if err != nil {
		return fmt.Errorf("failed to update position cost: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (qs *QuoteStore) DeletePosition(ctx context.Context, quoteID int64, name string) error {
	_, err := qs.db.ExecContext(ctx, `
		DELETE FROM quote_positions WHERE quote_id = $1 AND name = $2`, quoteID, name)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}

// DeleteQuote cascades over the owned collections; the quote exclusively
// owns its positions and ancillary items.
func (qs *QuoteStore) DeleteQuote(ctx context.Context, id int64) error {
	tx, err := qs.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{
		"quote_positions", "quote_uniform_items", "quote_exam_items",
		"quote_meal_plans", "quote_vehicles", "quote_infrastructure",
		"quote_cost_items",
	} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE quote_id = $1`, table), id); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quotes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	return tx.Commit()
}
