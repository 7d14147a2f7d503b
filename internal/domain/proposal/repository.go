package proposal

import (
	"context"
	"time"
)

type ProposalRepository interface {
	// GetByID loads a proposal with its overtime entries.
	GetByID(ctx context.Context, id string) (Proposal, error)

	// MarkExecuted stamps executed_at if and only if it is still null;
	// ErrAlreadyExecuted otherwise. This is the idempotence gate.
	MarkExecuted(ctx context.Context, id string, at time.Time) error

	// ListApprovedForDate returns approved proposals of the employee whose
	// range covers the date, for snapshot resolution.
	ListApprovedForDate(ctx context.Context, employeeID string, date time.Time) ([]Proposal, error)
}

type Service interface {
	// Execute applies an approved proposal onto timesheet data. All writes
	// happen in one transaction; re-running is a no-op.
	Execute(ctx context.Context, proposalID string) error
}
