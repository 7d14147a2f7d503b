package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type entryRepository struct {
	db *database.DB
}

func NewEntryRepository(db *database.DB) timesheet.EntryRepository {
	return &entryRepository{db: db}
}

const entryColumns = `
	id, employee_id, date,
	start_time, end_time, punch_count,
	contract_number, wage_rate, day_type, is_exempt, grace_period_minutes,
	morning_start, morning_end, afternoon_start, afternoon_end,
	post_maternity, paid_leave_hours, snapshot_at,
	approved_ot_start, approved_ot_end, approved_ot_hours,
	morning_hours, afternoon_hours,
	overtime_tier1, overtime_tier2, overtime_tier3,
	ot_start_time, ot_end_time,
	late_minutes, early_minutes, is_punished,
	working_days, compensation_value, status, absent_reason,
	is_manually_corrected, finalized_at,
	created_at, updated_at`

func scanEntry(row pgx.Row) (timesheet.Entry, error) {
	var e timesheet.Entry
	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.Date,
		&e.StartTime, &e.EndTime, &e.PunchCount,
		&e.ContractNumber, &e.WageRate, &e.DayType, &e.IsExempt, &e.GracePeriodMinutes,
		&e.MorningStart, &e.MorningEnd, &e.AfternoonStart, &e.AfternoonEnd,
		&e.PostMaternity, &e.PaidLeaveHours, &e.SnapshotAt,
		&e.ApprovedOTStart, &e.ApprovedOTEnd, &e.ApprovedOTHours,
		&e.MorningHours, &e.AfternoonHours,
		&e.OvertimeTier1, &e.OvertimeTier2, &e.OvertimeTier3,
		&e.OTStartTime, &e.OTEndTime,
		&e.LateMinutes, &e.EarlyMinutes, &e.IsPunished,
		&e.WorkingDays, &e.CompensationValue, &e.Status, &e.AbsentReason,
		&e.IsManuallyCorrected, &e.FinalizedAt,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// Create implements timesheet.EntryRepository.
func (r *entryRepository) Create(ctx context.Context, entry timesheet.Entry) (timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO timesheet_entries (employee_id, date, status, wage_rate, compensation_value)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		entry.EmployeeID,
		entry.Date,
		entry.Status,
		entry.WageRate,
		entry.CompensationValue,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return timesheet.Entry{}, timesheet.ErrEntryAlreadyExists
		}
		return timesheet.Entry{}, fmt.Errorf("failed to create timesheet entry: %w", err)
	}

	return entry, nil
}

// GetByID implements timesheet.EntryRepository.
func (r *entryRepository) GetByID(ctx context.Context, id string) (timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + ` FROM timesheet_entries WHERE id = $1`

	entry, err := scanEntry(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return timesheet.Entry{}, timesheet.ErrEntryNotFound
		}
		return timesheet.Entry{}, fmt.Errorf("failed to get timesheet entry by ID: %w", err)
	}

	return entry, nil
}

// GetByEmployeeAndDate implements timesheet.EntryRepository.
func (r *entryRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + ` FROM timesheet_entries WHERE employee_id = $1 AND date = $2`

	entry, err := scanEntry(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // no entry for this day yet
		}
		return nil, fmt.Errorf("failed to get timesheet entry by employee and date: %w", err)
	}

	return &entry, nil
}

// Update implements timesheet.EntryRepository.
func (r *entryRepository) Update(ctx context.Context, entry timesheet.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheet_entries SET
			start_time = $2, end_time = $3, punch_count = $4,
			contract_number = $5, wage_rate = $6, day_type = $7, is_exempt = $8,
			grace_period_minutes = $9,
			morning_start = $10, morning_end = $11, afternoon_start = $12, afternoon_end = $13,
			post_maternity = $14, paid_leave_hours = $15, snapshot_at = $16,
			approved_ot_start = $17, approved_ot_end = $18, approved_ot_hours = $19,
			morning_hours = $20, afternoon_hours = $21,
			overtime_tier1 = $22, overtime_tier2 = $23, overtime_tier3 = $24,
			ot_start_time = $25, ot_end_time = $26,
			late_minutes = $27, early_minutes = $28, is_punished = $29,
			working_days = $30, compensation_value = $31, status = $32, absent_reason = $33,
			is_manually_corrected = $34, finalized_at = $35,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		entry.ID,
		entry.StartTime, entry.EndTime, entry.PunchCount,
		entry.ContractNumber, entry.WageRate, entry.DayType, entry.IsExempt,
		entry.GracePeriodMinutes,
		entry.MorningStart, entry.MorningEnd, entry.AfternoonStart, entry.AfternoonEnd,
		entry.PostMaternity, entry.PaidLeaveHours, entry.SnapshotAt,
		entry.ApprovedOTStart, entry.ApprovedOTEnd, entry.ApprovedOTHours,
		entry.MorningHours, entry.AfternoonHours,
		entry.OvertimeTier1, entry.OvertimeTier2, entry.OvertimeTier3,
		entry.OTStartTime, entry.OTEndTime,
		entry.LateMinutes, entry.EarlyMinutes, entry.IsPunished,
		entry.WorkingDays, entry.CompensationValue, entry.Status, entry.AbsentReason,
		entry.IsManuallyCorrected, entry.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update timesheet entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timesheet.ErrEntryNotFound
	}

	return nil
}

// ListByMonth implements timesheet.EntryRepository.
func (r *entryRepository) ListByMonth(ctx context.Context, employeeID string, month string) ([]timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + entryColumns + `
		FROM timesheet_entries
		WHERE employee_id = $1
		  AND to_char(date, 'YYYY-MM') = $2
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheet entries by month: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListUnfinalized implements timesheet.EntryRepository.
func (r *entryRepository) ListUnfinalized(ctx context.Context, date time.Time) ([]timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + entryColumns + `
		FROM timesheet_entries
		WHERE date = $1
		  AND finalized_at IS NULL
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list unfinalized entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListIDsByEmployeeAndRange implements timesheet.EntryRepository.
func (r *entryRepository) ListIDsByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id FROM timesheet_entries
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry IDs by range: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// ListIDsByDate implements timesheet.EntryRepository.
func (r *entryRepository) ListIDsByDate(ctx context.Context, date time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id FROM timesheet_entries WHERE date = $1 ORDER BY employee_id`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry IDs by date: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

func collectEntries(rows pgx.Rows) ([]timesheet.Entry, error) {
	var entries []timesheet.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timesheet entries: %w", err)
	}
	return entries, nil
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entry ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry IDs: %w", err)
	}
	return ids, nil
}
