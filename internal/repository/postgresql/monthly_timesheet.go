package postgresql

import (
	"context"
	"fmt"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type monthlyRepository struct {
	db *database.DB
}

func NewMonthlyRepository(db *database.DB) timesheet.MonthlyRepository {
	return &monthlyRepository{db: db}
}

const monthlyColumns = `
	id, employee_id, month,
	working_days, overtime_tier1, overtime_tier2, overtime_tier3,
	late_minutes, early_minutes, penalty_days,
	leave_days, paid_leave_hours, compensation_total, available_leave_days,
	need_refresh, refresh_attempts,
	created_at, updated_at`

func scanMonthly(row pgx.Row) (timesheet.MonthlyTimesheet, error) {
	var m timesheet.MonthlyTimesheet
	err := row.Scan(
		&m.ID, &m.EmployeeID, &m.Month,
		&m.WorkingDays, &m.OvertimeTier1, &m.OvertimeTier2, &m.OvertimeTier3,
		&m.LateMinutes, &m.EarlyMinutes, &m.PenaltyDays,
		&m.LeaveDays, &m.PaidLeaveHours, &m.CompensationTotal, &m.AvailableLeaveDays,
		&m.NeedRefresh, &m.RefreshAttempts,
		&m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

// GetByEmployeeAndMonth implements timesheet.MonthlyRepository.
func (r *monthlyRepository) GetByEmployeeAndMonth(ctx context.Context, employeeID string, month string) (*timesheet.MonthlyTimesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + monthlyColumns + ` FROM monthly_timesheets WHERE employee_id = $1 AND month = $2`

	monthly, err := scanMonthly(q.QueryRow(ctx, query, employeeID, month))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // no rollup yet
		}
		return nil, fmt.Errorf("failed to get monthly timesheet: %w", err)
	}

	return &monthly, nil
}

// Create implements timesheet.MonthlyRepository.
func (r *monthlyRepository) Create(ctx context.Context, monthly timesheet.MonthlyTimesheet) (timesheet.MonthlyTimesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO monthly_timesheets (employee_id, month, compensation_total, need_refresh)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, month) DO UPDATE SET updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		monthly.EmployeeID,
		monthly.Month,
		monthly.CompensationTotal,
		monthly.NeedRefresh,
	).Scan(&monthly.ID, &monthly.CreatedAt, &monthly.UpdatedAt)
	if err != nil {
		return timesheet.MonthlyTimesheet{}, fmt.Errorf("failed to create monthly timesheet: %w", err)
	}

	return monthly, nil
}

// Update implements timesheet.MonthlyRepository.
func (r *monthlyRepository) Update(ctx context.Context, monthly timesheet.MonthlyTimesheet) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE monthly_timesheets SET
			working_days = $2, overtime_tier1 = $3, overtime_tier2 = $4, overtime_tier3 = $5,
			late_minutes = $6, early_minutes = $7, penalty_days = $8,
			leave_days = $9, paid_leave_hours = $10, compensation_total = $11,
			available_leave_days = $12,
			need_refresh = $13, refresh_attempts = $14,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		monthly.ID,
		monthly.WorkingDays, monthly.OvertimeTier1, monthly.OvertimeTier2, monthly.OvertimeTier3,
		monthly.LateMinutes, monthly.EarlyMinutes, monthly.PenaltyDays,
		monthly.LeaveDays, monthly.PaidLeaveHours, monthly.CompensationTotal,
		monthly.AvailableLeaveDays,
		monthly.NeedRefresh, monthly.RefreshAttempts,
	)
	if err != nil {
		return fmt.Errorf("failed to update monthly timesheet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timesheet.ErrMonthlyNotFound
	}

	return nil
}

// MarkNeedRefresh implements timesheet.MonthlyRepository. The upsert keeps
// the flag write a single cheap statement on the entry hot path.
func (r *monthlyRepository) MarkNeedRefresh(ctx context.Context, employeeID string, month string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO monthly_timesheets (employee_id, month, need_refresh)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (employee_id, month)
		DO UPDATE SET need_refresh = TRUE, refresh_attempts = 0, updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, employeeID, month); err != nil {
		return fmt.Errorf("failed to mark monthly timesheet for refresh: %w", err)
	}

	return nil
}

// ListNeedingRefresh implements timesheet.MonthlyRepository.
func (r *monthlyRepository) ListNeedingRefresh(ctx context.Context, limit int) ([]timesheet.MonthlyTimesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + monthlyColumns + `
		FROM monthly_timesheets
		WHERE need_refresh = TRUE
		ORDER BY updated_at
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly timesheets needing refresh: %w", err)
	}
	defer rows.Close()

	return collectMonthlies(rows)
}

// ListStuck implements timesheet.MonthlyRepository.
func (r *monthlyRepository) ListStuck(ctx context.Context, minAttempts int) ([]timesheet.MonthlyTimesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + monthlyColumns + `
		FROM monthly_timesheets
		WHERE need_refresh = TRUE AND refresh_attempts >= $1
		ORDER BY updated_at
	`

	rows, err := q.Query(ctx, query, minAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to list stuck monthly timesheets: %w", err)
	}
	defer rows.Close()

	return collectMonthlies(rows)
}

func collectMonthlies(rows pgx.Rows) ([]timesheet.MonthlyTimesheet, error) {
	var monthlies []timesheet.MonthlyTimesheet
	for rows.Next() {
		monthly, err := scanMonthly(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monthly timesheet: %w", err)
		}
		monthlies = append(monthlies, monthly)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly timesheets: %w", err)
	}
	return monthlies, nil
}
