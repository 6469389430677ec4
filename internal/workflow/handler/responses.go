package handler

import (
	"math/big"
	"time"

	"willgate/internal/workflow/models"
	"willgate/internal/workflow/ports"
	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
)

// Amounts are decimal strings so clients never lose precision.

type PayoutResponse struct {
	Beneficiary domain.Address `json:"beneficiary"`
	Percentage  int            `json:"percentage"`
	Amount      string         `json:"amount"`
}

type ReceiptResponse struct {
	ID         string           `json:"id"`
	Account    domain.Address   `json:"account"`
	Total      string           `json:"total"`
	Payouts    []PayoutResponse `json:"payouts"`
	ExecutedAt time.Time        `json:"executed_at"`
}

type DistributionResponse struct {
	Status     models.DistributionStatus `json:"status"`
	Receipt    *ReceiptResponse          `json:"receipt,omitempty"`
	Attempts   int                       `json:"attempts"`
	LastError  string                    `json:"last_error,omitempty"`
	StartedAt  *time.Time                `json:"started_at,omitempty"`
	FinishedAt *time.Time                `json:"finished_at,omitempty"`
}

// StatusResponse is models.Status with the distribution rendered for the wire.
type StatusResponse struct {
	*models.Status
	Distribution DistributionResponse `json:"distribution"`
}

type PresenceResponse struct {
	Nominees []models.Presence `json:"nominees"`
}

type AuditResponse struct {
	Account domain.Address `json:"account"`
	Events  []audit.Event  `json:"events"`
}

func toStatusResponse(st *models.Status) StatusResponse {
	return StatusResponse{Status: st, Distribution: toDistributionResponse(&st.Distribution)}
}

func toDistributionResponse(d *models.Distribution) DistributionResponse {
	return DistributionResponse{
		Status:     d.Status,
		Receipt:    toReceiptResponse(d.Receipt),
		Attempts:   d.Attempts,
		LastError:  d.LastError,
		StartedAt:  d.StartedAt,
		FinishedAt: d.FinishedAt,
	}
}

func toReceiptResponse(r *ports.Receipt) *ReceiptResponse {
	if r == nil {
		return nil
	}
	payouts := make([]PayoutResponse, 0, len(r.Payouts))
	for _, p := range r.Payouts {
		payouts = append(payouts, PayoutResponse{
			Beneficiary: p.Beneficiary,
			Percentage:  p.Percentage,
			Amount:      amount(p.Amount),
		})
	}
	return &ReceiptResponse{
		ID:         r.ID,
		Account:    r.Account,
		Total:      amount(r.Total),
		Payouts:    payouts,
		ExecutedAt: r.ExecutedAt,
	}
}

func amount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
