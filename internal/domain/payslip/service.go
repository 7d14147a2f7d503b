package payslip

import "context"

// Service is the slip engine plus the salary-period lifecycle. Slip state
// and period state are two separate machines; the only cross-machine fact
// is the carry-over rule (payment period differs from salary period).
type Service interface {
	// CreatePeriod opens the period for month and prepares one slip per
	// active employee. Every strictly earlier period must be COMPLETED.
	CreatePeriod(ctx context.Context, month string) (SalaryPeriod, error)

	// Recompute re-derives one slip: DELIVERED is never touched, HOLD keeps
	// its status but refreshes figures, anything else lands on PENDING
	// (with reason) or READY.
	Recompute(ctx context.Context, slipID string) (Slip, error)

	// RecomputePeriod recomputes every non-delivered slip of the period.
	// Failures are reported per slip, not aborted wholesale.
	RecomputePeriod(ctx context.Context, periodID string) error

	Hold(ctx context.Context, req HoldRequest) (Slip, error)

	// Unhold releases a held slip and recomputes it. When the owning period
	// is already COMPLETED the slip's payment period moves to the current
	// ONGOING period (carry-over).
	Unhold(ctx context.Context, slipID string) (Slip, error)

	// SettlePenalty marks the slip's penalty as paid and recomputes.
	SettlePenalty(ctx context.Context, slipID string) (Slip, error)

	// Complete locks the period: every READY slip becomes DELIVERED with
	// this period as payment period.
	Complete(ctx context.Context, periodID string) (SalaryPeriod, error)

	// Uncomplete reverts the period to ONGOING. Rejected when a later
	// period exists. Delivered slips stay delivered.
	Uncomplete(ctx context.Context, periodID string) (SalaryPeriod, error)

	GetSlip(ctx context.Context, slipID string) (Slip, error)
	ListSlips(ctx context.Context, periodID string) ([]Slip, error)

	// PaymentTable lists the slips paid or queued for payment in this
	// period; DeferredTable lists the period's own slips not paid in it.
	PaymentTable(ctx context.Context, periodID string) ([]Slip, error)
	DeferredTable(ctx context.Context, periodID string) ([]Slip, error)

	GetPeriod(ctx context.Context, periodID string) (SalaryPeriod, error)
	ListPeriods(ctx context.Context) ([]SalaryPeriod, error)
}
