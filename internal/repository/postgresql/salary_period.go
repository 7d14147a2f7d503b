package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/payslip"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type salaryPeriodRepository struct {
	db *database.DB
}

func NewSalaryPeriodRepository(db *database.DB) payslip.PeriodRepository {
	return &salaryPeriodRepository{db: db}
}

const periodColumns = `
	id, month, status, completed_at,
	payment_count, payment_total, deferred_count, deferred_total,
	created_at, updated_at`

func scanPeriod(row pgx.Row) (payslip.SalaryPeriod, error) {
	var p payslip.SalaryPeriod
	err := row.Scan(
		&p.ID, &p.Month, &p.Status, &p.CompletedAt,
		&p.PaymentCount, &p.PaymentTotal, &p.DeferredCount, &p.DeferredTotal,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create implements payslip.PeriodRepository.
func (r *salaryPeriodRepository) Create(ctx context.Context, period payslip.SalaryPeriod) (payslip.SalaryPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_periods (month, status, payment_total, deferred_total)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		period.Month,
		period.Status,
		period.PaymentTotal,
		period.DeferredTotal,
	).Scan(&period.ID, &period.CreatedAt, &period.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return payslip.SalaryPeriod{}, payslip.ErrPeriodAlreadyExists
		}
		return payslip.SalaryPeriod{}, fmt.Errorf("failed to create salary period: %w", err)
	}

	return period, nil
}

// GetByID implements payslip.PeriodRepository.
func (r *salaryPeriodRepository) GetByID(ctx context.Context, id string) (payslip.SalaryPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM salary_periods WHERE id = $1`

	period, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.SalaryPeriod{}, payslip.ErrPeriodNotFound
		}
		return payslip.SalaryPeriod{}, fmt.Errorf("failed to get salary period by ID: %w", err)
	}

	return period, nil
}

// GetByMonth implements payslip.PeriodRepository.
func (r *salaryPeriodRepository) GetByMonth(ctx context.Context, month string) (*payslip.SalaryPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM salary_periods WHERE month = $1`

	period, err := scanPeriod(q.QueryRow(ctx, query, month))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get salary period by month: %w", err)
	}

	return &period, nil
}

// GetOngoing implements payslip.PeriodRepository.
func (r *salaryPeriodRepository) GetOngoing(ctx context.Context) (payslip.SalaryPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM salary_periods WHERE status = 'ONGOING' ORDER BY month DESC LIMIT 1`

	period, err := scanPeriod(q.QueryRow(ctx, query))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.SalaryPeriod{}, payslip.ErrNoOngoingPeriod
		}
		return payslip.SalaryPeriod{}, fmt.Errorf("failed to get ongoing salary period: %w", err)
	}

	return period, nil
}

// ExistsLaterThan implements payslip.PeriodRepository.
func (r *salaryPeriodRepository) ExistsLaterThan(ctx context.Context, month string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS(SELECT 1 FROM salary_periods WHERE month > $1)`

	var exists bool
	if err := q.QueryRow(ctx, query, month).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check later salary periods: %w", err)
	}

	return exists, nil
}

// CountOpenBefore implements payslip.PeriodRepository.
func (r *salaryPeriodRepository) CountOpenBefore(ctx context.Context, month string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT COUNT(*) FROM salary_periods WHERE month < $1 AND status <> 'COMPLETED'`

	var count int
	if err := q.QueryRow(ctx, query, month).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open salary periods: %w", err)
	}

	return count, nil
}

// Update implements payslip.PeriodRepository.
func (r *salaryPeriodRepository) Update(ctx context.Context, period payslip.SalaryPeriod) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_periods SET
			status = $2, completed_at = $3,
			payment_count = $4, payment_total = $5,
			deferred_count = $6, deferred_total = $7,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		period.ID,
		period.Status, period.CompletedAt,
		period.PaymentCount, period.PaymentTotal,
		period.DeferredCount, period.DeferredTotal,
	)
	if err != nil {
		return fmt.Errorf("failed to update salary period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payslip.ErrPeriodNotFound
	}

	return nil
}

// List implements payslip.PeriodRepository.
func (r *salaryPeriodRepository) List(ctx context.Context) ([]payslip.SalaryPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM salary_periods ORDER BY month DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary periods: %w", err)
	}
	defer rows.Close()

	var periods []payslip.SalaryPeriod
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary period: %w", err)
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary periods: %w", err)
	}

	return periods, nil
}
