package main

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/centinela/backoffice/internal/rates"
	"github.com/centinela/backoffice/internal/response"
	"github.com/centinela/backoffice/internal/store"
)

type rateTableResponse struct {
	Version       int64     `json:"version"`
	EffectiveFrom time.Time `json:"effective_from"`

	UFValueCLP     float64 `json:"uf_value_clp"`
	MinimumWageCLP int64   `json:"minimum_wage_clp"`

	SISPct        float64 `json:"sis_pct"`
	WorkInjuryPct float64 `json:"work_injury_base_pct"`

	AFCIndefinite afcSplitLine `json:"afc_indefinite"`
	AFCFixedTerm  afcSplitLine `json:"afc_fixed_term"`

	ContributionCapCLP int64 `json:"contribution_cap_clp"`
	AFCCapCLP          int64 `json:"afc_cap_clp"`

	PublicHealthPct float64 `json:"public_health_pct"`

	PensionFunds []pensionFundLine `json:"pension_funds"`
	TaxBrackets  []taxBracketLine  `json:"tax_brackets"`
}

type afcSplitLine struct {
	EmployerPct float64 `json:"employer_pct"`
	WorkerPct   float64 `json:"worker_pct"`
}

type pensionFundLine struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	MandatoryPct  float64 `json:"mandatory_pct"`
	CommissionPct float64 `json:"commission_pct"`
}

type taxBracketLine struct {
	LowerBoundCLP int64   `json:"lower_bound_clp"`
	MarginalPct   float64 `json:"marginal_pct"`
	DeductionCLP  int64   `json:"deduction_clp"`
}

// @Summary		Effective rate tables
// @Description	returns the rate-table snapshot in force at a date
// @Tags			Rates
// @Produce		json
// @Param			date	query		string	false	"Effective date (YYYY-MM-DD), defaults to today"
// @Success		200		{object}	response.APIResponse[rateTableResponse]
// @Failure		404		{object}	response.ErrorResponse
// @Router			/rates [get]
func (app *application) handleGetEffectiveRates(w http.ResponseWriter, r *http.Request) {
	const component = "RatesHandler"

	at, err := parseEffectiveDate(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	tbl, err := app.store.RateTables.GetEffective(r.Context(), at)
	if err != nil {
		if errors.Is(err, store.ErrNoRateTable) {
			writeJSONError(w, http.StatusNotFound, "no rate table effective at requested date")
			return
		}
		app.logger.Error(component, "Failed to load rate tables: date=%s error=%v", at.Format("2006-01-02"), err)
		writeJSONError(w, http.StatusInternalServerError, "rate tables unavailable")
		return
	}

	resp := response.APIResponse[rateTableResponse]{
		Success: true,
		Data:    toRateTableResponse(tbl),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// @Summary		Rate table versions
// @Description	lists the stored snapshot versions, newest first
// @Tags			Rates
// @Produce		json
// @Success		200	{object}	response.APIResponse[[]store.RateTableVersion]
// @Router			/rates/versions [get]
func (app *application) handleListRateVersions(w http.ResponseWriter, r *http.Request) {
	const component = "RatesHandler"

	versions, err := app.store.RateTables.ListVersions(r.Context())
	if err != nil {
		app.logger.Error(component, "Failed to list rate versions: error=%v", err)
		writeJSONError(w, http.StatusInternalServerError, "rate tables unavailable")
		return
	}

	resp := response.APIResponse[[]store.RateTableVersion]{
		Success: true,
		Data:    versions,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func toRateTableResponse(tbl rates.Table) rateTableResponse {
	out := rateTableResponse{
		Version:        tbl.Version,
		EffectiveFrom:  tbl.EffectiveFrom,
		UFValueCLP:     tbl.UFValue,
		MinimumWageCLP: tbl.MinimumWage,
		SISPct:         tbl.SISRate.Fraction(),
		WorkInjuryPct:  tbl.WorkInjuryBaseRate.Fraction(),
		AFCIndefinite: afcSplitLine{
			EmployerPct: tbl.AFCIndefinite.Employer.Fraction(),
			WorkerPct:   tbl.AFCIndefinite.Worker.Fraction(),
		},
		AFCFixedTerm: afcSplitLine{
			EmployerPct: tbl.AFCFixedTerm.Employer.Fraction(),
			WorkerPct:   tbl.AFCFixedTerm.Worker.Fraction(),
		},
		ContributionCapCLP: tbl.ContributionCap(),
		AFCCapCLP:          tbl.AFCCap(),
		PublicHealthPct:    tbl.PublicHealthRate.Fraction(),
	}

	for _, f := range tbl.PensionFunds {
		out.PensionFunds = append(out.PensionFunds, pensionFundLine{
			Code:          f.Code,
			Name:          f.Name,
			MandatoryPct:  f.MandatoryRate.Fraction(),
			CommissionPct: f.CommissionRate.Fraction(),
		})
	}
	sort.Slice(out.PensionFunds, func(i, j int) bool {
		return out.PensionFunds[i].Code < out.PensionFunds[j].Code
	})

	for _, b := range tbl.TaxBrackets {
		out.TaxBrackets = append(out.TaxBrackets, taxBracketLine{
			LowerBoundCLP: b.LowerBound,
			MarginalPct:   b.MarginalRate.Fraction(),
			DeductionCLP:  b.Deduction,
		})
	}

	return out
}
