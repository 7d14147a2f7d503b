package payslip

import "errors"

var (
	ErrSlipNotFound          = errors.New("payroll slip not found")
	ErrPeriodNotFound        = errors.New("salary period not found")
	ErrHoldReasonRequired    = errors.New("hold requires a non-empty reason")
	ErrSlipNotHoldable       = errors.New("only PENDING or READY slips can be held")
	ErrSlipNotOnHold         = errors.New("slip is not on hold")
	ErrSlipDelivered         = errors.New("slip is delivered and immutable")
	ErrPeriodCompleted       = errors.New("salary period is already completed")
	ErrPeriodNotCompleted    = errors.New("salary period is not completed")
	ErrNewerPeriodExists     = errors.New("a later salary period exists")
	ErrEarlierPeriodOpen     = errors.New("an earlier salary period is not completed yet")
	ErrPeriodAlreadyExists   = errors.New("salary period already exists for month")
	ErrNoOngoingPeriod       = errors.New("no ongoing salary period")
	ErrPenaltyAlreadySettled = errors.New("penalty already settled")
)
