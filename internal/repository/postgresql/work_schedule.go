package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/schedule"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workScheduleRepository struct {
	db *database.DB
}

func NewWorkScheduleRepository(db *database.DB) schedule.WorkScheduleRepository {
	return &workScheduleRepository{db: db}
}

// GetActiveForEmployee implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) GetActiveForEmployee(ctx context.Context, employeeID string, date time.Time) (*schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ws.id, ws.name, ws.grace_period_minutes, a.effective_from, a.effective_to,
		       ws.created_at, ws.updated_at
		FROM work_schedules ws
		JOIN work_schedule_assignments a ON a.work_schedule_id = ws.id
		WHERE a.employee_id = $1
		  AND a.effective_from <= $2
		  AND (a.effective_to IS NULL OR a.effective_to >= $2)
		ORDER BY a.effective_from DESC
		LIMIT 1
	`

	var ws schedule.WorkSchedule
	err := q.QueryRow(ctx, query, employeeID, date).Scan(
		&ws.ID, &ws.Name, &ws.GracePeriodMinutes, &ws.EffectiveFrom, &ws.EffectiveTo,
		&ws.CreatedAt, &ws.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // no schedule assigned on this date
		}
		return nil, fmt.Errorf("failed to get active work schedule: %w", err)
	}

	days, err := r.listDays(ctx, ws.ID)
	if err != nil {
		return nil, err
	}
	ws.Days = days

	return &ws, nil
}

func (r *workScheduleRepository) listDays(ctx context.Context, scheduleID string) ([]schedule.DaySchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, work_schedule_id, day_of_week,
		       morning_start, morning_end, afternoon_start, afternoon_end,
		       created_at, updated_at
		FROM work_schedule_days
		WHERE work_schedule_id = $1
		ORDER BY day_of_week
	`

	rows, err := q.Query(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work schedule days: %w", err)
	}
	defer rows.Close()

	var days []schedule.DaySchedule
	for rows.Next() {
		var d schedule.DaySchedule
		if err := rows.Scan(
			&d.ID, &d.WorkScheduleID, &d.DayOfWeek,
			&d.MorningStart, &d.MorningEnd, &d.AfternoonStart, &d.AfternoonEnd,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan work schedule day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work schedule days: %w", err)
	}

	return days, nil
}

// ListAssignedEmployeeIDs implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) ListAssignedEmployeeIDs(ctx context.Context, scheduleID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT employee_id
		FROM work_schedule_assignments
		WHERE work_schedule_id = $1
	`

	rows, err := q.Query(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee IDs: %w", err)
	}

	return ids, nil
}
