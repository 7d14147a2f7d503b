package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/schedule"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type calendarRepository struct {
	db *database.DB
}

func NewCalendarRepository(db *database.DB) schedule.CalendarRepository {
	return &calendarRepository{db: db}
}

// GetHoliday implements schedule.CalendarRepository.
func (r *calendarRepository) GetHoliday(ctx context.Context, date time.Time) (*schedule.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, date, name, created_at FROM holidays WHERE date = $1`

	var h schedule.Holiday
	err := q.QueryRow(ctx, query, date).Scan(&h.ID, &h.Date, &h.Name, &h.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get holiday: %w", err)
	}

	return &h, nil
}

// GetCompensatoryWorkday implements schedule.CalendarRepository.
func (r *calendarRepository) GetCompensatoryWorkday(ctx context.Context, date time.Time) (*schedule.CompensatoryWorkday, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, date, name, created_at FROM compensatory_workdays WHERE date = $1`

	var c schedule.CompensatoryWorkday
	err := q.QueryRow(ctx, query, date).Scan(&c.ID, &c.Date, &c.Name, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get compensatory workday: %w", err)
	}

	return &c, nil
}
