package main

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/centinela/backoffice/internal/payroll"
	"github.com/centinela/backoffice/internal/rates"
	"github.com/centinela/backoffice/internal/response"
	"github.com/centinela/backoffice/internal/salary"
	"github.com/centinela/backoffice/internal/store"
)

type salaryStructureResponse struct {
	GuardID     string         `json:"guard_id"`
	Source      string         `json:"source"`
	HasOverride bool           `json:"has_override"`
	Package     packageSummary `json:"package"`
	Estimate    payEstimate    `json:"estimate"`
}

type packageSummary struct {
	BaseSalaryCLP       int64   `json:"base_salary_clp"`
	GratificationMode   string  `json:"gratification_mode"`
	CustomGratification int64   `json:"custom_gratification_clp,omitempty"`
	AFPName             string  `json:"afp_name"`
	HealthSystem        string  `json:"health_system"`
	HealthPlanPct       float64 `json:"health_plan_pct,omitempty"`
	ContractType        string  `json:"contract_type"`
}

type payEstimate struct {
	NetPayCLP       int64     `json:"net_pay_clp"`
	EmployerCostCLP int64     `json:"employer_cost_clp"`
	RateVersion     int64     `json:"rate_version"`
	ComputedAt      time.Time `json:"computed_at"`
	Cached          bool      `json:"cached"`
}

type salaryOverrideRequest struct {
	BaseSalaryCLP    int64  `json:"base_salary_clp"`
	GratificationCLP *int64 `json:"gratification_clp,omitempty"`

	Bonuses []struct {
		Name      string  `json:"name"`
		AmountCLP int64   `json:"amount_clp,omitempty"`
		PctOfBase float64 `json:"pct_of_base,omitempty"`
		Taxable   bool    `json:"taxable"`
	} `json:"bonuses,omitempty"`

	NonTaxableAllowances struct {
		Transport int64 `json:"transport,omitempty"`
		Meal      int64 `json:"meal,omitempty"`
		Other     int64 `json:"other,omitempty"`
	} `json:"non_taxable_allowances,omitempty"`

	AFPName       string  `json:"afp_name"`
	HealthSystem  string  `json:"health_system"`
	HealthPlanPct float64 `json:"health_plan_pct,omitempty"`
	ContractType  string  `json:"contract_type"`
	WorkInjuryPct float64 `json:"work_injury_pct,omitempty"`
}

// @Summary		Resolved salary structure
// @Description	resolves the compensation package of one guard through the override/post/installation fallback chain
// @Tags			Guards
// @Produce		json
// @Param			id	path		string	true	"Guard ID (RUT)"
// @Success		200	{object}	response.APIResponse[salaryStructureResponse]
// @Failure		404	{object}	response.ErrorResponse
// @Router			/guards/{id}/salary-structure [get]
func (app *application) handleGetSalaryStructure(w http.ResponseWriter, r *http.Request) {
	const component = "GuardHandler"
	guardID := chi.URLParam(r, "id")

	sctx, err := app.store.Guards.GetSalaryContext(r.Context(), guardID)
	if err != nil {
		if errors.Is(err, store.ErrGuardNotFound) {
			writeJSONError(w, http.StatusNotFound, "guard not found")
			return
		}
		app.logger.Error(component, "Failed to load salary context: guard=%s error=%v", guardID, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load salary context")
		return
	}

	res, err := salary.Resolve(sctx)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	est, err := app.payEstimateFor(r, guardID, res.Package)
	if err != nil {
		var cfgErr *rates.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeJSONError(w, http.StatusUnprocessableEntity, cfgErr.Error())
			return
		}
		app.logger.Error(component, "Failed to estimate pay: guard=%s error=%v", guardID, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to estimate pay")
		return
	}

	resp := response.APIResponse[salaryStructureResponse]{
		Success: true,
		Data: salaryStructureResponse{
			GuardID:     guardID,
			Source:      string(res.Source),
			HasOverride: res.HasOverride,
			Package: packageSummary{
				BaseSalaryCLP:       res.Package.BaseSalary,
				GratificationMode:   string(res.Package.GratificationMode),
				CustomGratification: res.Package.CustomGratification,
				AFPName:             res.Package.PensionFundCode,
				HealthSystem:        string(res.Package.HealthSystem),
				HealthPlanPct:       res.Package.HealthPlanRate.Fraction(),
				ContractType:        string(res.Package.ContractType),
			},
			Estimate: est,
		},
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// payEstimateFor serves the cached display estimate when one survives, and
// otherwise recomputes and re-caches it against the current rate tables.
func (app *application) payEstimateFor(r *http.Request, guardID string, pkg payroll.CompensationPackage) (payEstimate, error) {
	cached, ok, err := app.store.Guards.GetCachedEstimate(r.Context(), guardID)
	if err != nil {
		return payEstimate{}, err
	}
	if ok {
		return payEstimate{
			NetPayCLP:       cached.NetPayCLP,
			EmployerCostCLP: cached.EmployerCostCLP,
			RateVersion:     cached.RateVersion,
			ComputedAt:      cached.ComputedAt,
			Cached:          true,
		}, nil
	}

	tbl, err := app.store.RateTables.GetEffective(r.Context(), time.Now())
	if err != nil {
		return payEstimate{}, err
	}
	breakdown, err := payroll.Simulate(pkg, tbl, payroll.Assumptions{})
	if err != nil {
		return payEstimate{}, err
	}

	est := store.PayEstimate{
		GuardID:         guardID,
		NetPayCLP:       breakdown.NetPay,
		EmployerCostCLP: breakdown.MonthlyEmployerCost,
		RateVersion:     tbl.Version,
		ComputedAt:      time.Now(),
	}
	if err := app.store.Guards.PutCachedEstimate(r.Context(), &est); err != nil {
		return payEstimate{}, err
	}

	return payEstimate{
		NetPayCLP:       est.NetPayCLP,
		EmployerCostCLP: est.EmployerCostCLP,
		RateVersion:     est.RateVersion,
		ComputedAt:      est.ComputedAt,
	}, nil
}

// @Summary		Create a salary override
// @Description	installs a negotiated per-person package that takes precedence over post and installation defaults
// @Tags			Guards
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"Guard ID (RUT)"
// @Success		201	{object}	response.APIResponse[string]
// @Failure		400	{object}	response.ErrorResponse
// @Router			/guards/{id}/salary-override [post]
func (app *application) handleCreateSalaryOverride(w http.ResponseWriter, r *http.Request) {
	const component = "GuardHandler"
	guardID := chi.URLParam(r, "id")

	var req salaryOverrideRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}
	if msg, ok := validateOverrideRequest(req); !ok {
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	pkg := buildOverridePackage(req)
	if err := app.store.Guards.InsertOverride(r.Context(), guardID, &pkg); err != nil {
		app.logger.Error(component, "Failed to insert override: guard=%s error=%v", guardID, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to insert salary override")
		return
	}

	resp := response.APIResponse[string]{
		Success: true,
		Message: "salary override installed",
	}
	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// @Summary		Remove a salary override
// @Description	retires the per-person override so the guard falls back to the post or installation default
// @Tags			Guards
// @Produce		json
// @Param			id	path		string	true	"Guard ID (RUT)"
// @Success		200	{object}	response.APIResponse[string]
// @Failure		404	{object}	response.ErrorResponse
// @Router			/guards/{id}/salary-override [delete]
func (app *application) handleRemoveSalaryOverride(w http.ResponseWriter, r *http.Request) {
	const component = "GuardHandler"
	guardID := chi.URLParam(r, "id")

	if err := app.store.Guards.RemoveOverride(r.Context(), guardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "no active salary override for guard")
			return
		}
		app.logger.Error(component, "Failed to remove override: guard=%s error=%v", guardID, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to remove salary override")
		return
	}

	resp := response.APIResponse[string]{
		Success: true,
		Message: "salary override removed",
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func validateOverrideRequest(req salaryOverrideRequest) (string, bool) {
	switch {
	case req.BaseSalaryCLP < 0:
		return "base_salary_clp must be non-negative", false
	case req.GratificationCLP != nil && *req.GratificationCLP < 0:
		return "gratification_clp must be non-negative", false
	case req.NonTaxableAllowances.Transport < 0 ||
		req.NonTaxableAllowances.Meal < 0 ||
		req.NonTaxableAllowances.Other < 0:
		return "non_taxable_allowances must be non-negative", false
	case req.HealthPlanPct < 0 || req.WorkInjuryPct < 0:
		return "rates must be non-negative", false
	}
	for _, b := range req.Bonuses {
		if b.AmountCLP < 0 || b.PctOfBase < 0 {
			return "bonus amounts must be non-negative", false
		}
	}
	return "", true
}

func buildOverridePackage(req salaryOverrideRequest) payroll.CompensationPackage {
	pkg := payroll.CompensationPackage{
		BaseSalary:        req.BaseSalaryCLP,
		GratificationMode: payroll.GratificationAutoPct,
		Allowances: payroll.Allowances{
			Meal:      req.NonTaxableAllowances.Meal,
			Transport: req.NonTaxableAllowances.Transport,
			Other:     req.NonTaxableAllowances.Other,
		},
		PensionFundCode: req.AFPName,
		HealthSystem:    payroll.HealthSystem(req.HealthSystem),
		HealthPlanRate:  rates.New(req.HealthPlanPct),
		ContractType:    rates.ContractType(req.ContractType),
		WorkInjuryRate:  rates.New(req.WorkInjuryPct),
	}
	if req.GratificationCLP != nil {
		pkg.GratificationMode = payroll.GratificationCustom
		pkg.CustomGratification = *req.GratificationCLP
	}
	for _, b := range req.Bonuses {
		pkg.Bonuses = append(pkg.Bonuses, payroll.Bonus{
			Name:      b.Name,
			Amount:    b.AmountCLP,
			PctOfBase: rates.New(b.PctOfBase),
			Taxable:   b.Taxable,
		})
	}
	return pkg
}
