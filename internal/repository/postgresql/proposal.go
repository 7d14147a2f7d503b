package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/proposal"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type proposalRepository struct {
	db *database.DB
}

func NewProposalRepository(db *database.DB) proposal.ProposalRepository {
	return &proposalRepository{db: db}
}

const proposalColumns = `
	id, employee_id, kind, status, start_date, end_date, reason,
	paid_leave_hours_per_day, corrected_start, corrected_end, missing_punch_at,
	executed_at, created_at, updated_at`

func scanProposal(row pgx.Row) (proposal.Proposal, error) {
	var p proposal.Proposal
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.Kind, &p.Status, &p.StartDate, &p.EndDate, &p.Reason,
		&p.PaidLeaveHoursPerDay, &p.CorrectedStart, &p.CorrectedEnd, &p.MissingPunchAt,
		&p.ExecutedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// GetByID implements proposal.ProposalRepository.
func (r *proposalRepository) GetByID(ctx context.Context, id string) (proposal.Proposal, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`

	p, err := scanProposal(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return proposal.Proposal{}, proposal.ErrProposalNotFound
		}
		return proposal.Proposal{}, fmt.Errorf("failed to get proposal by ID: %w", err)
	}

	entries, err := r.listOvertimeEntries(ctx, p.ID)
	if err != nil {
		return proposal.Proposal{}, err
	}
	p.OvertimeEntries = entries

	return p, nil
}

func (r *proposalRepository) listOvertimeEntries(ctx context.Context, proposalID string) ([]proposal.OvertimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, proposal_id, date, window_start, window_end, approved_hours, created_at
		FROM proposal_overtime_entries
		WHERE proposal_id = $1
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime entries: %w", err)
	}
	defer rows.Close()

	var entries []proposal.OvertimeEntry
	for rows.Next() {
		var e proposal.OvertimeEntry
		if err := rows.Scan(&e.ID, &e.ProposalID, &e.Date, &e.WindowStart, &e.WindowEnd, &e.ApprovedHours, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan overtime entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overtime entries: %w", err)
	}

	return entries, nil
}

// MarkExecuted implements proposal.ProposalRepository. The WHERE clause on
// executed_at makes the stamp first-writer-wins.
func (r *proposalRepository) MarkExecuted(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE proposals
		SET executed_at = $2, updated_at = NOW()
		WHERE id = $1 AND executed_at IS NULL
	`

	tag, err := q.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark proposal executed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return proposal.ErrAlreadyExecuted
	}

	return nil
}

// ListApprovedForDate implements proposal.ProposalRepository.
func (r *proposalRepository) ListApprovedForDate(ctx context.Context, employeeID string, date time.Time) ([]proposal.Proposal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE employee_id = $1
		  AND status = 'approved'
		  AND start_date <= $2
		  AND end_date >= $2
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved proposals: %w", err)
	}
	defer rows.Close()

	var proposals []proposal.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate proposals: %w", err)
	}

	return proposals, nil
}
