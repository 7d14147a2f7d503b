package postgresql

import (
	"context"
	"fmt"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/payslip"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type slipRepository struct {
	db *database.DB
}

func NewSlipRepository(db *database.DB) payslip.SlipRepository {
	return &slipRepository{db: db}
}

const slipColumns = `
	id, employee_id, salary_period_id, payment_period_id, status, pending_reason,
	hold_reason, held_at, held_by,
	contract_number, working_days,
	overtime_tier1, overtime_tier2, overtime_tier3,
	penalty_days, compensation_total, penalty_settled_at,
	delivered_at, created_at, updated_at`

func scanSlip(row pgx.Row) (payslip.Slip, error) {
	var s payslip.Slip
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.SalaryPeriodID, &s.PaymentPeriodID, &s.Status, &s.PendingReason,
		&s.HoldReason, &s.HeldAt, &s.HeldBy,
		&s.ContractNumber, &s.WorkingDays,
		&s.OvertimeTier1, &s.OvertimeTier2, &s.OvertimeTier3,
		&s.PenaltyDays, &s.CompensationTotal, &s.PenaltySettledAt,
		&s.DeliveredAt, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Create implements payslip.SlipRepository.
func (r *slipRepository) Create(ctx context.Context, slip payslip.Slip) (payslip.Slip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_slips (employee_id, salary_period_id, status, compensation_total)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		slip.EmployeeID,
		slip.SalaryPeriodID,
		slip.Status,
		slip.CompensationTotal,
	).Scan(&slip.ID, &slip.CreatedAt, &slip.UpdatedAt)
	if err != nil {
		return payslip.Slip{}, fmt.Errorf("failed to create payroll slip: %w", err)
	}

	return slip, nil
}

// GetByID implements payslip.SlipRepository.
func (r *slipRepository) GetByID(ctx context.Context, id string) (payslip.Slip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + slipColumns + ` FROM payroll_slips WHERE id = $1`

	slip, err := scanSlip(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.Slip{}, payslip.ErrSlipNotFound
		}
		return payslip.Slip{}, fmt.Errorf("failed to get payroll slip by ID: %w", err)
	}

	return slip, nil
}

// GetByEmployeeAndPeriod implements payslip.SlipRepository.
func (r *slipRepository) GetByEmployeeAndPeriod(ctx context.Context, employeeID string, periodID string) (*payslip.Slip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + slipColumns + ` FROM payroll_slips WHERE employee_id = $1 AND salary_period_id = $2`

	slip, err := scanSlip(q.QueryRow(ctx, query, employeeID, periodID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payroll slip by employee and period: %w", err)
	}

	return &slip, nil
}

// Update implements payslip.SlipRepository.
func (r *slipRepository) Update(ctx context.Context, slip payslip.Slip) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_slips SET
			payment_period_id = $2, status = $3, pending_reason = $4,
			hold_reason = $5, held_at = $6, held_by = $7,
			contract_number = $8, working_days = $9,
			overtime_tier1 = $10, overtime_tier2 = $11, overtime_tier3 = $12,
			penalty_days = $13, compensation_total = $14, penalty_settled_at = $15,
			delivered_at = $16,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		slip.ID,
		slip.PaymentPeriodID, slip.Status, slip.PendingReason,
		slip.HoldReason, slip.HeldAt, slip.HeldBy,
		slip.ContractNumber, slip.WorkingDays,
		slip.OvertimeTier1, slip.OvertimeTier2, slip.OvertimeTier3,
		slip.PenaltyDays, slip.CompensationTotal, slip.PenaltySettledAt,
		slip.DeliveredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll slip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payslip.ErrSlipNotFound
	}

	return nil
}

// ListByPeriod implements payslip.SlipRepository.
func (r *slipRepository) ListByPeriod(ctx context.Context, periodID string) ([]payslip.Slip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + slipColumns + ` FROM payroll_slips WHERE salary_period_id = $1 ORDER BY employee_id`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll slips by period: %w", err)
	}
	defer rows.Close()

	return collectSlips(rows)
}

// ListByPaymentPeriod implements payslip.SlipRepository.
func (r *slipRepository) ListByPaymentPeriod(ctx context.Context, periodID string) ([]payslip.Slip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + slipColumns + ` FROM payroll_slips WHERE payment_period_id = $1 ORDER BY employee_id`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll slips by payment period: %w", err)
	}
	defer rows.Close()

	return collectSlips(rows)
}

func collectSlips(rows pgx.Rows) ([]payslip.Slip, error) {
	var slips []payslip.Slip
	for rows.Next() {
		slip, err := scanSlip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll slip: %w", err)
		}
		slips = append(slips, slip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll slips: %w", err)
	}
	return slips, nil
}
