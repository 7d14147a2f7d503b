package timesheet

import (
	"context"
	"time"
)

// EntryService is the punch-facing surface of the timesheet core.
type EntryService interface {
	// RecordPunch folds one validated clock event into the owning daily
	// entry, creating and snapshotting it on first contact. Duplicate
	// events return ErrDuplicatePunch with no mutation.
	RecordPunch(ctx context.Context, req RecordPunchRequest) (Entry, error)

	// PrepareMonth creates blank entries for every active employee for
	// every day of the month. Returns the number of entries created.
	PrepareMonth(ctx context.Context, month string) (int, error)

	GetEntry(ctx context.Context, employeeID string, date time.Time) (Entry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error)
	GetMonthly(ctx context.Context, employeeID string, month string) (MonthlyTimesheet, error)

	// ListNeedingRefresh exposes the dirty monthly records so downstream
	// reporting jobs know what to re-read.
	ListNeedingRefresh(ctx context.Context, limit int) ([]MonthlyTimesheet, error)
}

// SnapshotService stages mutable reference data into entries.
type SnapshotService interface {
	// Refresh re-resolves and persists the snapshot fields of one entry.
	// Computed fields are never touched here.
	Refresh(ctx context.Context, entryID string) error

	// InvalidateEmployeeRange enqueues every entry of the employee inside
	// the date range (contract or schedule assignment changed).
	InvalidateEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) error

	// InvalidateDate enqueues every entry on the date (holiday or
	// compensatory workday declared).
	InvalidateDate(ctx context.Context, date time.Time) error

	// ProcessQueue drains pending refresh items with bounded retries.
	ProcessQueue(ctx context.Context) error
}

// Aggregator maintains the monthly rollups.
type Aggregator interface {
	// Sweep recomputes every flagged monthly record and clears the flag.
	Sweep(ctx context.Context) error

	// RefreshMonthly recomputes one (employee, month) rollup immediately.
	RefreshMonthly(ctx context.Context, employeeID string, month string) error
}

// Finalizer commits terminal daily statuses at the business-day boundary.
type Finalizer interface {
	FinalizeDay(ctx context.Context, date time.Time) error
}
