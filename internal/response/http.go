package response

import (
	"time"

	"github.com/google/uuid"
)

type APIResponse[T any] struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Data    T                `json:"data,omitempty"`
	Meta    *CalculationMeta `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// CalculationMeta identifies one engine run so a breakdown shown in a
// proposal can be traced back to the rate-table version that produced it.
type CalculationMeta struct {
	CalculationID    string    `json:"calculation_id"`
	RateTableVersion int64     `json:"rate_table_version,omitempty"`
	ComputedAt       time.Time `json:"computed_at"`
	DurationMS       float64   `json:"duration_ms"`
}

// NewCalculationMeta stamps a fresh run started at the given time.
func NewCalculationMeta(start time.Time, rateVersion int64) *CalculationMeta {
	return &CalculationMeta{
		CalculationID:    uuid.NewString(),
		RateTableVersion: rateVersion,
		ComputedAt:       start,
		DurationMS:       float64(time.Since(start).Microseconds()) / 1000,
	}
}
