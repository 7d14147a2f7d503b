package payslip

import (
	"strings"
	"time"
)

type HoldRequest struct {
	SlipID string `json:"-"`
	Reason string `json:"reason"`
	HeldBy string `json:"-"`
}

func (r HoldRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return ErrHoldReasonRequired
	}
	return nil
}

type SlipResponse struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employee_id"`
	SalaryPeriodID    string     `json:"salary_period_id"`
	PaymentPeriodID   *string    `json:"payment_period_id,omitempty"`
	Status            SlipStatus `json:"status"`
	PendingReason     *string    `json:"pending_reason,omitempty"`
	HoldReason        *string    `json:"hold_reason,omitempty"`
	HeldAt            *time.Time `json:"held_at,omitempty"`
	HeldBy            *string    `json:"held_by,omitempty"`
	WorkingDays       float64    `json:"working_days"`
	OvertimeTier1     float64    `json:"overtime_tier1"`
	OvertimeTier2     float64    `json:"overtime_tier2"`
	OvertimeTier3     float64    `json:"overtime_tier3"`
	PenaltyDays       int        `json:"penalty_days"`
	CompensationTotal string     `json:"compensation_total"`
	CarriedOver       bool       `json:"carried_over"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
}

func NewSlipResponse(s Slip) SlipResponse {
	return SlipResponse{
		ID:                s.ID,
		EmployeeID:        s.EmployeeID,
		SalaryPeriodID:    s.SalaryPeriodID,
		PaymentPeriodID:   s.PaymentPeriodID,
		Status:            s.Status,
		PendingReason:     s.PendingReason,
		HoldReason:        s.HoldReason,
		HeldAt:            s.HeldAt,
		HeldBy:            s.HeldBy,
		WorkingDays:       s.WorkingDays,
		OvertimeTier1:     s.OvertimeTier1,
		OvertimeTier2:     s.OvertimeTier2,
		OvertimeTier3:     s.OvertimeTier3,
		PenaltyDays:       s.PenaltyDays,
		CompensationTotal: s.CompensationTotal.StringFixed(2),
		CarriedOver:       s.CarriedOver(),
		DeliveredAt:       s.DeliveredAt,
	}
}

type PeriodResponse struct {
	ID            string       `json:"id"`
	Month         string       `json:"month"`
	Status        PeriodStatus `json:"status"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	PaymentCount  int          `json:"payment_count"`
	PaymentTotal  string       `json:"payment_total"`
	DeferredCount int          `json:"deferred_count"`
	DeferredTotal string       `json:"deferred_total"`
}

func NewPeriodResponse(p SalaryPeriod) PeriodResponse {
	return PeriodResponse{
		ID:            p.ID,
		Month:         p.Month,
		Status:        p.Status,
		CompletedAt:   p.CompletedAt,
		PaymentCount:  p.PaymentCount,
		PaymentTotal:  p.PaymentTotal.StringFixed(2),
		DeferredCount: p.DeferredCount,
		DeferredTotal: p.DeferredTotal.StringFixed(2),
	}
}
