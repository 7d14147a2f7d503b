package timesheet

import (
	"context"
	"time"
)

type EntryRepository interface {
	// Create inserts a new entry; ErrEntryAlreadyExists on the
	// (employee, date) unique constraint.
	Create(ctx context.Context, entry Entry) (Entry, error)

	GetByID(ctx context.Context, id string) (Entry, error)

	// GetByEmployeeAndDate returns nil when no entry exists yet.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Entry, error)

	// Update persists the full entry row.
	Update(ctx context.Context, entry Entry) error

	// ListByMonth returns the employee's entries for one YYYY-MM month.
	ListByMonth(ctx context.Context, employeeID string, month string) ([]Entry, error)

	// ListUnfinalized returns entries on the given date that have not been
	// finalized yet, for the daily cutoff job.
	ListUnfinalized(ctx context.Context, date time.Time) ([]Entry, error)

	// ListIDsByEmployeeAndRange returns entry IDs inside a date range, used
	// to target snapshot invalidation after reference-data changes.
	ListIDsByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]string, error)

	// ListIDsByDate returns every entry ID on a date, used when a calendar
	// change (holiday declared) affects all employees.
	ListIDsByDate(ctx context.Context, date time.Time) ([]string, error)
}

type MonthlyRepository interface {
	// GetByEmployeeAndMonth returns nil when no monthly record exists yet.
	GetByEmployeeAndMonth(ctx context.Context, employeeID string, month string) (*MonthlyTimesheet, error)

	Create(ctx context.Context, monthly MonthlyTimesheet) (MonthlyTimesheet, error)

	Update(ctx context.Context, monthly MonthlyTimesheet) error

	// MarkNeedRefresh flips the dirty bit, creating the monthly row when
	// missing. Must be cheap; it runs on every entry write.
	MarkNeedRefresh(ctx context.Context, employeeID string, month string) error

	// ListNeedingRefresh returns flagged records for the sweep.
	ListNeedingRefresh(ctx context.Context, limit int) ([]MonthlyTimesheet, error)

	// ListStuck returns flagged records whose refresh attempts exceeded the
	// bound, for operator visibility.
	ListStuck(ctx context.Context, minAttempts int) ([]MonthlyTimesheet, error)
}

type PunchRepository interface {
	// Insert stores a punch; ErrDuplicatePunch on the
	// (employee_code, timestamp, device) unique constraint.
	Insert(ctx context.Context, punch Punch) (Punch, error)

	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]Punch, error)
}

// RefreshQueueRepository is the explicit snapshot invalidation queue.
// Upstream reference-data change handlers enqueue affected entry IDs and
// an idempotent worker drains them.
type RefreshQueueRepository interface {
	Enqueue(ctx context.Context, entryIDs []string) error
	Dequeue(ctx context.Context, limit int) ([]RefreshItem, error)
	MarkDone(ctx context.Context, itemID string) error
	MarkFailed(ctx context.Context, itemID string, reason string) error
}
