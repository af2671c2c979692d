package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/centinela/backoffice/internal/payroll"
	"github.com/centinela/backoffice/internal/rates"
	"github.com/centinela/backoffice/internal/salary"
)

type GuardStore struct {
	db *sqlx.DB
}

// ErrGuardNotFound is returned for an unknown guard id (RUT).
var ErrGuardNotFound = fmt.Errorf("guard not found")

/*
GetSalaryContext materializes the full fallback chain of one guard in a
single transaction: the active per-person override, the package on the
guard's assigned post, and the installation default. Resolution itself is
pure and runs outside the store; reading everything here in one snapshot is
what keeps a concurrent default edit from leaking into a half-resolved
structure.
*/
func (gs *GuardStore) GetSalaryContext(ctx context.Context, guardID string) (salary.Context, error) {
	tx, err := gs.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return salary.Context{}, err
	}
	defer tx.Rollback()

	var guard struct {
		ID             string        `db:"id"`
		PostID         sql.NullInt64 `db:"post_id"`
		InstallationID sql.NullInt64 `db:"installation_id"`
	}
	err = tx.GetContext(ctx, &guard, `
		SELECT g.id, g.post_id, p.installation_id
		FROM guards g
		LEFT JOIN posts p ON p.id = g.post_id
		WHERE g.id = $1`, guardID)
	if err == sql.ErrNoRows {
		return salary.Context{}, ErrGuardNotFound
	}
	if err != nil {
		return salary.Context{}, fmt.Errorf("failed to query guard %s: %w", guardID, err)
	}

	out := salary.Context{GuardID: guardID}

	var overridePkgID int64
	err = tx.GetContext(ctx, &overridePkgID, `
		SELECT package_id FROM salary_overrides
		WHERE guard_id = $1 AND active = true`, guardID)
	if err != nil && err != sql.ErrNoRows {
		return salary.Context{}, fmt.Errorf("failed to query salary override: %w", err)
	}
	if err == nil {
		if out.Override, err = loadPackage(ctx, tx, overridePkgID); err != nil {
			return salary.Context{}, err
		}
	}

	if guard.PostID.Valid {
		var postPkgID sql.NullInt64
		err = tx.GetContext(ctx, &postPkgID, `
			SELECT package_id FROM posts WHERE id = $1`, guard.PostID.Int64)
		if err != nil && err != sql.ErrNoRows {
			return salary.Context{}, fmt.Errorf("failed to query post package: %w", err)
		}
		if postPkgID.Valid {
			if out.PostDefault, err = loadPackage(ctx, tx, postPkgID.Int64); err != nil {
				return salary.Context{}, err
			}
		}
	}

	if guard.InstallationID.Valid {
		var instPkgID sql.NullInt64
		err = tx.GetContext(ctx, &instPkgID, `
			SELECT default_package_id FROM installations WHERE id = $1`, guard.InstallationID.Int64)
		if err != nil && err != sql.ErrNoRows {
			return salary.Context{}, fmt.Errorf("failed to query installation package: %w", err)
		}
		if instPkgID.Valid {
			if out.InstallationDefault, err = loadPackage(ctx, tx, instPkgID.Int64); err != nil {
				return salary.Context{}, err
			}
		}
	}

	return out, tx.Commit()
}

func loadPackage(ctx context.Context, tx *sqlx.Tx, id int64) (*payroll.CompensationPackage, error) {
	var row CompensationPackageRow
	err := tx.GetContext(ctx, &row, `
		SELECT id, base_salary_clp, gratification_mode, custom_gratification_clp,
		       meal_allowance_clp, transport_allowance_clp, other_allowance_clp,
		       pension_fund_code, health_system, health_plan_rate,
		       contract_type, work_injury_rate
		FROM compensation_packages
		WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load compensation package %d: %w", id, err)
	}

	var bonuses []PackageBonusRow
	err = tx.SelectContext(ctx, &bonuses, `
		SELECT id, package_id, name, amount_clp, pct_of_base, taxable
		FROM package_bonuses
		WHERE package_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load package bonuses: %w", err)
	}

	pkg := &payroll.CompensationPackage{
		BaseSalary:          row.BaseSalaryCLP,
		GratificationMode:   payroll.GratificationMode(row.GratificationMode),
		CustomGratification: row.CustomGratification,
		Allowances: payroll.Allowances{
			Meal:      row.MealAllowance,
			Transport: row.TransportAllowance,
			Other:     row.OtherAllowance,
		},
		PensionFundCode: row.PensionFundCode,
		HealthSystem:    payroll.HealthSystem(row.HealthSystem),
		HealthPlanRate:  rates.New(row.HealthPlanRate),
		ContractType:    rates.ContractType(row.ContractType),
		WorkInjuryRate:  rates.New(row.WorkInjuryRate),
	}
	for _, b := range bonuses {
		pkg.Bonuses = append(pkg.Bonuses, payroll.Bonus{
			Name:      b.Name,
			Amount:    b.AmountCLP,
			PctOfBase: rates.New(b.PctOfBase),
			Taxable:   b.Taxable,
		})
	}
	return pkg, nil
}

/*
Override mutations deactivate rather than delete: the negotiated history
stays auditable and lower-priority defaults are never touched. Both paths
invalidate the cached display estimate, which is recomputed lazily on the
next salary-structure read.
*/
func (gs *GuardStore) InsertOverride(ctx context.Context, guardID string, pkg *payroll.CompensationPackage) error {
	tx, err := gs.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var pkgID int64
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO compensation_packages (
			base_salary_clp, gratification_mode, custom_gratification_clp,
			meal_allowance_clp, transport_allowance_clp, other_allowance_clp,
			pension_fund_code, health_system, health_plan_rate,
			contract_type, work_injury_rate
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id`,
		pkg.BaseSalary, string(pkg.GratificationMode), pkg.CustomGratification,
		pkg.Allowances.Meal, pkg.Allowances.Transport, pkg.Allowances.Other,
		pkg.PensionFundCode, string(pkg.HealthSystem), pkg.HealthPlanRate.Fraction(),
		string(pkg.ContractType), pkg.WorkInjuryRate.Fraction(),
	).Scan(&pkgID)
	if err != nil {
		return fmt.Errorf("failed to insert override package: %w", err)
	}

	for _, b := range pkg.Bonuses {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO package_bonuses (package_id, name, amount_clp, pct_of_base, taxable)
			VALUES ($1,$2,$3,$4,$5)`,
			pkgID, b.Name, b.Amount, b.PctOfBase.Fraction(), b.Taxable)
		if err != nil {
			return fmt.Errorf("failed to insert override bonus %s: %w", b.Name, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE salary_overrides SET active = false WHERE guard_id = $1 AND active = true`, guardID); err != nil {
		return fmt.Errorf("failed to supersede previous override: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO salary_overrides (guard_id, package_id, active) VALUES ($1,$2,true)`, guardID, pkgID); err != nil {
		return fmt.Errorf("failed to insert salary override: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `
		DELETE FROM guard_pay_estimates WHERE guard_id = $1`, guardID); err != nil {
		return fmt.Errorf("failed to invalidate pay estimate: %w", err)
	}

	return tx.Commit()
}

func (gs *GuardStore) RemoveOverride(ctx context.Context, guardID string) error {
	tx, err := gs.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE salary_overrides SET active = false WHERE guard_id = $1 AND active = true`, guardID)
	if err != nil {
		return fmt.Errorf("failed to deactivate override: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	if _, err = tx.ExecContext(ctx, `
		DELETE FROM guard_pay_estimates WHERE guard_id = $1`, guardID); err != nil {
		return fmt.Errorf("failed to invalidate pay estimate: %w", err)
	}

	return tx.Commit()
}

func (gs *GuardStore) GetCachedEstimate(ctx context.Context, guardID string) (PayEstimate, bool, error) {
	var est PayEstimate
	err := gs.db.GetContext(ctx, &est, `
		SELECT guard_id, net_pay_clp, employer_cost_clp, rate_version, computed_at
		FROM guard_pay_estimates
		WHERE guard_id = $1`, guardID)
	if err == sql.ErrNoRows {
		return PayEstimate{}, false, nil
	}
	if err != nil {
		return PayEstimate{}, false, fmt.Errorf("failed to query pay estimate: %w", err)
	}
	return est, true, nil
}

func (gs *GuardStore) PutCachedEstimate(ctx context.Context, est *PayEstimate) error {
	est.ComputedAt = time.Now()
	_, err := gs.db.ExecContext(ctx, `
		INSERT INTO guard_pay_estimates (guard_id, net_pay_clp, employer_cost_clp, rate_version, computed_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (guard_id) DO UPDATE SET
			net_pay_clp = EXCLUDED.net_pay_clp,
			employer_cost_clp = EXCLUDED.employer_cost_clp,
			rate_version = EXCLUDED.rate_version,
			computed_at = EXCLUDED.computed_at`,
		est.GuardID, est.NetPayCLP, est.EmployerCostCLP, est.RateVersion, est.ComputedAt)
	if err != nil {
		return fmt.Errorf("failed to cache pay estimate: %w", err)
	}
	return nil
}

func (gs *GuardStore) InvalidateEstimate(ctx context.Context, guardID string) error {
	_, err := gs.db.ExecContext(ctx, `DELETE FROM guard_pay_estimates WHERE guard_id = $1`, guardID)
	if err != nil {
		return fmt.Errorf("failed to invalidate pay estimate: %w", err)
	}
	return nil
}
