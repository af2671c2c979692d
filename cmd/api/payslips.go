package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/centinela/backoffice/internal/payroll"
	"github.com/centinela/backoffice/internal/rates"
	"github.com/centinela/backoffice/internal/response"
)

type payslipRequest struct {
	BaseSalaryCLP          int64   `json:"base_salary_clp"`
	GratificationCLP       *int64  `json:"gratification_clp,omitempty"`
	ContractType           string  `json:"contract_type"`
	AFPName                string  `json:"afp_name"`
	HealthSystem           string  `json:"health_system"`
	HealthPlanPct          float64 `json:"health_plan_pct,omitempty"`
	OtherTaxableAllowances int64   `json:"other_taxable_allowances,omitempty"`

	NonTaxableAllowances struct {
		Transport int64 `json:"transport,omitempty"`
		Meal      int64 `json:"meal,omitempty"`
		Other     int64 `json:"other,omitempty"`
	} `json:"non_taxable_allowances,omitempty"`

	Assumptions struct {
		IncludeVacationProvision  bool    `json:"include_vacation_provision"`
		IncludeSeveranceProvision bool    `json:"include_severance_provision"`
		VacationProvisionPct      float64 `json:"vacation_provision_pct,omitempty"`
		SeveranceProvisionPct     float64 `json:"severance_provision_pct,omitempty"`
	} `json:"assumptions,omitempty"`
}

type amountLine struct {
	Amount int64 `json:"amount"`
}

type afcLine struct {
	Total         int64 `json:"total"`
	EmployerShare int64 `json:"employer_share"`
	WorkerShare   int64 `json:"worker_share"`
}

type payslipBreakdown struct {
	BaseSalary         int64      `json:"base_salary"`
	Gratification      int64      `json:"gratification"`
	TotalTaxableIncome int64      `json:"total_taxable_income"`
	SISEmployer        int64      `json:"sis_employer"`
	AFCEmployer        afcLine    `json:"afc_employer"`
	WorkInjuryEmployer amountLine `json:"work_injury_employer"`
	VacationProvision  int64      `json:"vacation_provision"`
	SeveranceProvision int64      `json:"severance_provision"`
}

type workerBreakdown struct {
	AFP    amountLine `json:"afp"`
	Health int64      `json:"health"`
	AFC    int64      `json:"afc"`
	Tax    int64      `json:"tax"`
}

type payslipResponse struct {
	Breakdown               payslipBreakdown `json:"breakdown"`
	MonthlyEmployerCostCLP  int64            `json:"monthly_employer_cost_clp"`
	WorkerNetSalaryEstimate int64            `json:"worker_net_salary_estimate"`
	WorkerBreakdownEstimate workerBreakdown  `json:"worker_breakdown_estimate"`
	Warnings                []string         `json:"warnings,omitempty"`
}

// @Summary		Simulate a payslip
// @Description	runs the gross-to-net simulation for one compensation package against the rate tables in force
// @Tags			Payslips
// @Accept			json
// @Produce		json
// @Param			date	query		string	false	"Effective date for rate-table selection (YYYY-MM-DD)"
// @Success		200		{object}	response.APIResponse[payslipResponse]
// @Failure		400		{object}	response.ErrorResponse
// @Router			/payslips/simulate [post]
func (app *application) handleSimulatePayslip(w http.ResponseWriter, r *http.Request) {
	const component = "PayslipHandler"
	start := time.Now()

	var req payslipRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	if msg, ok := validatePayslipRequest(req); !ok {
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	at, err := parseEffectiveDate(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	tbl, err := app.store.RateTables.GetEffective(r.Context(), at)
	if err != nil {
		app.logger.Error(component, "Failed to load rate tables: date=%s error=%v", at.Format("2006-01-02"), err)
		writeJSONError(w, http.StatusInternalServerError, "rate tables unavailable")
		return
	}

	pkg, asm := buildSimulationInput(req)
	breakdown, err := payroll.Simulate(pkg, tbl, asm)
	if err != nil {
		var cfgErr *rates.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeJSONError(w, http.StatusBadRequest, cfgErr.Error())
			return
		}
		app.logger.Error(component, "Simulation failed: error=%v", err)
		writeJSONError(w, http.StatusInternalServerError, "simulation failed")
		return
	}

	resp := response.APIResponse[payslipResponse]{
		Success: true,
		Data:    toPayslipResponse(breakdown),
		Meta:    response.NewCalculationMeta(start, tbl.Version),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func validatePayslipRequest(req payslipRequest) (string, bool) {
	switch {
	case req.BaseSalaryCLP < 0:
		return "base_salary_clp must be non-negative", false
	case req.GratificationCLP != nil && *req.GratificationCLP < 0:
		return "gratification_clp must be non-negative", false
	case req.OtherTaxableAllowances < 0:
		return "other_taxable_allowances must be non-negative", false
	case req.NonTaxableAllowances.Transport < 0 ||
		req.NonTaxableAllowances.Meal < 0 ||
		req.NonTaxableAllowances.Other < 0:
		return "non_taxable_allowances must be non-negative", false
	case req.HealthPlanPct < 0:
		return "health_plan_pct must be non-negative", false
	case req.Assumptions.VacationProvisionPct < 0 || req.Assumptions.SeveranceProvisionPct < 0:
		return "provision rates must be non-negative", false
	}
	return "", true
}

func buildSimulationInput(req payslipRequest) (payroll.CompensationPackage, payroll.Assumptions) {
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
	}
	if req.GratificationCLP != nil {
		pkg.GratificationMode = payroll.GratificationCustom
		pkg.CustomGratification = *req.GratificationCLP
	}
	if req.OtherTaxableAllowances > 0 {
		pkg.Bonuses = append(pkg.Bonuses, payroll.Bonus{
			Name:    "other_taxable_allowances",
			Amount:  req.OtherTaxableAllowances,
			Taxable: true,
		})
	}

	asm := payroll.Assumptions{
		IncludeVacationProvision:  req.Assumptions.IncludeVacationProvision,
		IncludeSeveranceProvision: req.Assumptions.IncludeSeveranceProvision,
		VacationProvisionRate:     rates.New(req.Assumptions.VacationProvisionPct),
		SeveranceProvisionRate:    rates.New(req.Assumptions.SeveranceProvisionPct),
	}
	return pkg, asm
}

func toPayslipResponse(b payroll.Breakdown) payslipResponse {
	return payslipResponse{
		Breakdown: payslipBreakdown{
			BaseSalary:         b.BaseSalary,
			Gratification:      b.Gratification,
			TotalTaxableIncome: b.TotalTaxableIncome,
			SISEmployer:        b.SISEmployer,
			AFCEmployer: afcLine{
				Total:         b.AFC.Total,
				EmployerShare: b.AFC.EmployerShare,
				WorkerShare:   b.AFC.WorkerShare,
			},
			WorkInjuryEmployer: amountLine{Amount: b.WorkInjuryEmployer},
			VacationProvision:  b.VacationProvision,
			SeveranceProvision: b.SeveranceProvision,
		},
		MonthlyEmployerCostCLP:  b.MonthlyEmployerCost,
		WorkerNetSalaryEstimate: b.NetPay,
		WorkerBreakdownEstimate: workerBreakdown{
			AFP:    amountLine{Amount: b.Deductions.Pension},
			Health: b.Deductions.Health,
			AFC:    b.Deductions.AFC,
			Tax:    b.Deductions.IncomeTax,
		},
		Warnings: b.Warnings,
	}
}
