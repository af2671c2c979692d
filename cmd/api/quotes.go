package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/centinela/backoffice/internal/pricing"
	"github.com/centinela/backoffice/internal/response"
	"github.com/centinela/backoffice/internal/store"
)

type proposalResponse struct {
	QuoteID      int64 `json:"quote_id"`
	SalePrice    int64 `json:"salePrice"`
	MonthlyTotal int64 `json:"monthlyTotal"`
}

// @Summary		Quote cost summary
// @Description	recomputes the full monthly cost breakdown of one quote from its current inputs
// @Tags			Quotes
// @Produce		json
// @Param			id	path		int	true	"Quote ID"
// @Success		200	{object}	response.APIResponse[pricing.Summary]
// @Failure		404	{object}	response.ErrorResponse
// @Router			/quotes/{id}/costs [get]
func (app *application) handleGetQuoteCosts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	summary, _, ok := app.computeQuote(w, r)
	if !ok {
		return
	}

	resp := response.APIResponse[pricing.Summary]{
		Success: true,
		Data:    summary,
		Meta:    response.NewCalculationMeta(start, 0),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// @Summary		Client-facing proposal figures
// @Description	exposes only the sellable numbers of a quote, never the internal cost breakdown
// @Tags			Quotes
// @Produce		json
// @Param			id	path		int	true	"Quote ID"
// @Success		200	{object}	response.APIResponse[proposalResponse]
// @Failure		404	{object}	response.ErrorResponse
// @Router			/quotes/{id}/proposal [get]
func (app *application) handleGetQuoteProposal(w http.ResponseWriter, r *http.Request) {
	summary, quoteID, ok := app.computeQuote(w, r)
	if !ok {
		return
	}

	resp := response.APIResponse[proposalResponse]{
		Success: true,
		Data: proposalResponse{
			QuoteID:      quoteID,
			SalePrice:    summary.SalePrice,
			MonthlyTotal: summary.MonthlyTotal,
		},
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (app *application) computeQuote(w http.ResponseWriter, r *http.Request) (pricing.Summary, int64, bool) {
	const component = "QuoteHandler"

	id, err := parseIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid quote id")
		return pricing.Summary{}, 0, false
	}

	quote, err := app.store.Quotes.GetQuote(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrQuoteNotFound) {
			writeJSONError(w, http.StatusNotFound, "quote not found")
			return pricing.Summary{}, 0, false
		}
		app.logger.Error(component, "Failed to load quote: id=%d error=%v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load quote")
		return pricing.Summary{}, 0, false
	}

	return pricing.ComputeQuoteCosts(quote), id, true
}
