package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/centinela/backoffice/internal/rates"
)

type RateTableStore struct {
	db *sqlx.DB
}

// ErrNoRateTable is returned when no version covers the requested date.
var ErrNoRateTable = fmt.Errorf("no rate table version effective at requested date")

/*
Versions are append-only: a statutory change inserts a new row with a later
effective_from, and GetEffective always picks the newest version at or before
the requested date. Callers snapshot one Table before computing so an
administrative update landing mid-computation cannot mix two versions into
one result.
*/
func (rs *RateTableStore) GetEffective(ctx context.Context, at time.Time) (rates.Table, error) {
	var v RateTableVersion
	err := rs.db.GetContext(ctx, &v, `
		SELECT id, effective_from, uf_value_clp, minimum_wage_clp,
		       sis_rate, work_injury_base_rate,
		       afc_employer_indefinite, afc_worker_indefinite,
		       afc_employer_fixed_term, afc_worker_fixed_term,
		       contribution_cap_uf, afc_cap_uf, public_health_rate,
		       vacation_provision_rate, severance_provision_rate, inserted_at
		FROM rate_table_versions
		WHERE effective_from <= $1
		ORDER BY effective_from DESC
		LIMIT 1`, at)
	if err == sql.ErrNoRows {
		return rates.Table{}, ErrNoRateTable
	}
	if err != nil {
		return rates.Table{}, fmt.Errorf("failed to query rate table version: %w", err)
	}

	var funds []PensionFundRow
	err = rs.db.SelectContext(ctx, &funds, `
		SELECT id, version_id, code, name, mandatory_rate, commission_rate
		FROM pension_fund_rates
		WHERE version_id = $1
		ORDER BY code`, v.ID)
	if err != nil {
		return rates.Table{}, fmt.Errorf("failed to query pension funds: %w", err)
	}

	var brackets []TaxBracketRow
	err = rs.db.SelectContext(ctx, &brackets, `
		SELECT id, version_id, lower_bound_clp, marginal_rate, deduction_clp
		FROM tax_brackets
		WHERE version_id = $1
		ORDER BY lower_bound_clp`, v.ID)
	if err != nil {
		return rates.Table{}, fmt.Errorf("failed to query tax brackets: %w", err)
	}

	return buildTable(v, funds, brackets), nil
}

func buildTable(v RateTableVersion, funds []PensionFundRow, brackets []TaxBracketRow) rates.Table {
	tbl := rates.Table{
		Version:            v.ID,
		EffectiveFrom:      v.EffectiveFrom,
		UFValue:            v.UFValueCLP,
		MinimumWage:        v.MinimumWage,
		SISRate:            rates.New(v.SISRate),
		WorkInjuryBaseRate: rates.New(v.WorkInjuryBaseRate),
		AFCIndefinite: rates.AFCSplit{
			Employer: rates.New(v.AFCEmployerIndefinite),
			Worker:   rates.New(v.AFCWorkerIndefinite),
		},
		AFCFixedTerm: rates.AFCSplit{
			Employer: rates.New(v.AFCEmployerFixedTerm),
			Worker:   rates.New(v.AFCWorkerFixedTerm),
		},
		ContributionCapUF:      v.ContributionCapUF,
		AFCCapUF:               v.AFCCapUF,
		PublicHealthRate:       rates.New(v.PublicHealthRate),
		PensionFunds:           make(map[string]rates.PensionFund, len(funds)),
		VacationProvisionRate:  rates.New(v.VacationProvisionRate),
		SeveranceProvisionRate: rates.New(v.SeveranceProvisionRate),
	}
	for _, f := range funds {
		tbl.PensionFunds[f.Code] = rates.PensionFund{
			Code:           f.Code,
			Name:           f.Name,
			MandatoryRate:  rates.New(f.MandatoryRate),
			CommissionRate: rates.New(f.CommissionRate),
		}
	}
	for _, b := range brackets {
		tbl.TaxBrackets = append(tbl.TaxBrackets, rates.TaxBracket{
			LowerBound:   b.LowerBoundCLP,
			MarginalRate: rates.New(b.MarginalRate),
			Deduction:    b.DeductionCLP,
		})
	}
	return tbl
}

func (rs *RateTableStore) ListVersions(ctx context.Context) ([]RateTableVersion, error) {
	var out []RateTableVersion
	err := rs.db.SelectContext(ctx, &out, `
		SELECT id, effective_from, uf_value_clp, minimum_wage_clp,
		       sis_rate, work_injury_base_rate,
		       afc_employer_indefinite, afc_worker_indefinite,
		       afc_employer_fixed_term, afc_worker_fixed_term,
		       contribution_cap_uf, afc_cap_uf, public_health_rate,
		       vacation_provision_rate, severance_provision_rate, inserted_at
		FROM rate_table_versions
		ORDER BY effective_from DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate table versions: %w", err)
	}
	return out, nil
}

func (rs *RateTableStore) InsertVersion(ctx context.Context, v *RateTableVersion, funds []PensionFundRow, brackets []TaxBracketRow) error {
	tx, err := rs.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO rate_table_versions (
			effective_from, uf_value_clp, minimum_wage_clp,
			sis_rate, work_injury_base_rate,
			afc_employer_indefinite, afc_worker_indefinite,
			afc_employer_fixed_term, afc_worker_fixed_term,
			contribution_cap_uf, afc_cap_uf, public_health_rate,
			vacation_provision_rate, severance_provision_rate
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, inserted_at`,
		v.EffectiveFrom, v.UFValueCLP, v.MinimumWage,
		v.SISRate, v.WorkInjuryBaseRate,
		v.AFCEmployerIndefinite, v.AFCWorkerIndefinite,
		v.AFCEmployerFixedTerm, v.AFCWorkerFixedTerm,
		v.ContributionCapUF, v.AFCCapUF, v.PublicHealthRate,
		v.VacationProvisionRate, v.SeveranceProvisionRate,
	).Scan(&v.ID, &v.InsertedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rate table version: %w", err)
	}

	for i := range funds {
		funds[i].VersionID = v.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pension_fund_rates (version_id, code, name, mandatory_rate, commission_rate)
			VALUES ($1,$2,$3,$4,$5)`,
			funds[i].VersionID, funds[i].Code, funds[i].Name, funds[i].MandatoryRate, funds[i].CommissionRate)
		if err != nil {
			return fmt.Errorf("failed to insert pension fund %s: %w", funds[i].Code, err)
		}
	}
	for i := range brackets {
		brackets[i].VersionID = v.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tax_brackets (version_id, lower_bound_clp, marginal_rate, deduction_clp)
			VALUES ($1,$2,$3,$4)`,
			brackets[i].VersionID, brackets[i].LowerBoundCLP, brackets[i].MarginalRate, brackets[i].DeductionCLP)
		if err != nil {
			return fmt.Errorf("failed to insert tax bracket: %w", err)
		}
	}

	return tx.Commit()
}
