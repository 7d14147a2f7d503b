package payslip

import (
	"time"

	"github.com/shopspring/decimal"
)

type SlipStatus string

const (
	SlipStatusPending   SlipStatus = "PENDING"
	SlipStatusReady     SlipStatus = "READY"
	SlipStatusHold      SlipStatus = "HOLD"
	SlipStatusDelivered SlipStatus = "DELIVERED"
)

type PeriodStatus string

const (
	PeriodStatusOngoing   PeriodStatus = "ONGOING"
	PeriodStatusCompleted PeriodStatus = "COMPLETED"
)

// SalaryPeriod is one payroll month. Completion locks the period;
// uncompletion is allowed only while no later period exists.
type SalaryPeriod struct {
	ID          string
	Month       string // YYYY-MM
	Status      PeriodStatus
	CompletedAt *time.Time

	// Statistics over the two derived views
	PaymentCount  int
	PaymentTotal  decimal.Decimal
	DeferredCount int
	DeferredTotal decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Slip is one payroll slip per (employee, salary period). SalaryPeriodID
// never changes after creation; PaymentPeriodID records where the slip was
// or will be paid and differs from SalaryPeriodID exactly when the slip
// carried over.
type Slip struct {
	ID              string
	EmployeeID      string
	SalaryPeriodID  string
	PaymentPeriodID *string
	Status          SlipStatus
	PendingReason   *string

	HoldReason *string
	HeldAt     *time.Time
	HeldBy     *string

	// Figures recomputed from the monthly timesheet
	ContractNumber    *string
	WorkingDays       float64
	OvertimeTier1     float64
	OvertimeTier2     float64
	OvertimeTier3     float64
	PenaltyDays       int
	CompensationTotal decimal.Decimal

	// Penalty settlement bookkeeping: an unsettled penalty keeps the slip
	// PENDING until it is paid off.
	PenaltySettledAt *time.Time

	DeliveredAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CarriedOver reports whether the slip is paid in a period other than the
// one it belongs to. Derived, never stored separately.
func (s Slip) CarriedOver() bool {
	return s.PaymentPeriodID != nil && *s.PaymentPeriodID != s.SalaryPeriodID
}

// HasUnpaidPenalty reports whether penalty days exist without settlement.
func (s Slip) HasUnpaidPenalty() bool {
	return s.PenaltyDays > 0 && s.PenaltySettledAt == nil
}
