package contract

import (
	"context"
	"time"
)

type ContractRepository interface {
	// GetActive returns the contract effective for the employee on date,
	// or nil when the employee has no active contract.
	GetActive(ctx context.Context, employeeID string, date time.Time) (*Contract, error)
}
