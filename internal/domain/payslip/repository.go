package payslip

import "context"

type PeriodRepository interface {
	Create(ctx context.Context, period SalaryPeriod) (SalaryPeriod, error)
	GetByID(ctx context.Context, id string) (SalaryPeriod, error)
	GetByMonth(ctx context.Context, month string) (*SalaryPeriod, error)

	// GetOngoing returns the single ONGOING period, ErrNoOngoingPeriod when
	// every period is completed or none exists.
	GetOngoing(ctx context.Context) (SalaryPeriod, error)

	// ExistsLaterThan reports whether any period with a later month exists.
	// Evaluated inside the uncomplete transaction as the guard check.
	ExistsLaterThan(ctx context.Context, month string) (bool, error)

	// CountOpenBefore counts not-completed periods strictly earlier than
	// month, guarding period creation ordering.
	CountOpenBefore(ctx context.Context, month string) (int, error)

	Update(ctx context.Context, period SalaryPeriod) error
	List(ctx context.Context) ([]SalaryPeriod, error)
}

type SlipRepository interface {
	Create(ctx context.Context, slip Slip) (Slip, error)
	GetByID(ctx context.Context, id string) (Slip, error)
	GetByEmployeeAndPeriod(ctx context.Context, employeeID string, periodID string) (*Slip, error)
	Update(ctx context.Context, slip Slip) error

	// ListByPeriod returns every slip owned by the period.
	ListByPeriod(ctx context.Context, periodID string) ([]Slip, error)

	// ListByPaymentPeriod returns slips paid (or queued for payment) in the
	// period, including carried-over slips owned by earlier periods.
	ListByPaymentPeriod(ctx context.Context, periodID string) ([]Slip, error)
}
