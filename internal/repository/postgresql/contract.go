package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/contract"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type contractRepository struct {
	db *database.DB
}

func NewContractRepository(db *database.DB) contract.ContractRepository {
	return &contractRepository{db: db}
}

// GetActive implements contract.ContractRepository.
func (r *contractRepository) GetActive(ctx context.Context, employeeID string, date time.Time) (*contract.Contract, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, number, wage_rate, is_probation, post_maternity,
		       annual_leave_days, start_date, end_date, created_at, updated_at
		FROM contracts
		WHERE employee_id = $1
		  AND start_date <= $2
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY start_date DESC
		LIMIT 1
	`

	var c contract.Contract
	err := q.QueryRow(ctx, query, employeeID, date).Scan(
		&c.ID, &c.EmployeeID, &c.Number, &c.WageRate, &c.IsProbation, &c.PostMaternity,
		&c.AnnualLeaveDays, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // no active contract
		}
		return nil, fmt.Errorf("failed to get active contract: %w", err)
	}

	return &c, nil
}
