package schedule

import (
	"context"
	"time"
)

// WorkScheduleRepository resolves the schedule applicable to an employee.
// Schedules are owned by the organization service; this core reads them
// only while building timesheet snapshots.
type WorkScheduleRepository interface {
	// GetActiveForEmployee returns the schedule assigned to the employee
	// and effective on date, or nil when none applies.
	GetActiveForEmployee(ctx context.Context, employeeID string, date time.Time) (*WorkSchedule, error)

	// ListAssignedEmployeeIDs returns the employees assigned to a schedule,
	// used to target snapshot refreshes after a schedule change.
	ListAssignedEmployeeIDs(ctx context.Context, scheduleID string) ([]string, error)
}

type CalendarRepository interface {
	GetHoliday(ctx context.Context, date time.Time) (*Holiday, error)
	GetCompensatoryWorkday(ctx context.Context, date time.Time) (*CompensatoryWorkday, error)
}
