package timesheet

import "errors"

var (
	ErrEntryNotFound        = errors.New("timesheet entry not found")
	ErrMonthlyNotFound      = errors.New("monthly timesheet not found")
	ErrDuplicatePunch       = errors.New("duplicate punch event")
	ErrEntryAlreadyExists   = errors.New("timesheet entry already exists for employee and date")
	ErrManuallyCorrected    = errors.New("entry is manually corrected and protected from recompute")
	ErrInvalidMonth         = errors.New("month must be in YYYY-MM format")
	ErrRefreshAttemptsSpent = errors.New("snapshot refresh attempts exhausted")
	ErrEmployeeCodeRequired = errors.New("employee_code is required")
	ErrTimestampRequired    = errors.New("timestamp is required")
)
