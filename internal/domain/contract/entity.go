package contract

import (
	"time"

	"github.com/shopspring/decimal"
)

type Contract struct {
	ID               string
	EmployeeID       string
	Number           string
	WageRate         decimal.Decimal // daily wage amount at 100% attendance
	IsProbation      bool
	PostMaternity    bool
	AnnualLeaveDays  float64
	StartDate        time.Time
	EndDate          *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ActiveOn reports whether the contract covers the given date.
func (c Contract) ActiveOn(date time.Time) bool {
	if date.Before(c.StartDate) {
		return false
	}
	if c.EndDate != nil && date.After(*c.EndDate) {
		return false
	}
	return true
}
