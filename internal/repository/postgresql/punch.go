package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgconn"
)

type punchRepository struct {
	db *database.DB
}

func NewPunchRepository(db *database.DB) timesheet.PunchRepository {
	return &punchRepository{db: db}
}

// Insert implements timesheet.PunchRepository. The unique constraint on
// (employee_code, timestamp, device) makes replayed events harmless.
func (r *punchRepository) Insert(ctx context.Context, punch timesheet.Punch) (timesheet.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO punches (employee_code, employee_id, timestamp, device, kind)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		punch.EmployeeCode,
		punch.EmployeeID,
		punch.Timestamp,
		punch.Device,
		punch.Kind,
	).Scan(&punch.ID, &punch.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return timesheet.Punch{}, timesheet.ErrDuplicatePunch
		}
		return timesheet.Punch{}, fmt.Errorf("failed to insert punch: %w", err)
	}

	return punch, nil
}

// ListByEmployeeAndDate implements timesheet.PunchRepository.
func (r *punchRepository) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]timesheet.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_code, employee_id, timestamp, device, kind, created_at
		FROM punches
		WHERE employee_id = $1
		  AND timestamp >= $2
		  AND timestamp < $2::timestamptz + INTERVAL '1 day'
		ORDER BY timestamp
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list punches: %w", err)
	}
	defer rows.Close()

	var punches []timesheet.Punch
	for rows.Next() {
		var p timesheet.Punch
		if err := rows.Scan(&p.ID, &p.EmployeeCode, &p.EmployeeID, &p.Timestamp, &p.Device, &p.Kind, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punches: %w", err)
	}

	return punches, nil
}
