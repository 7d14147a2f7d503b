package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

type DayType string

const (
	DayTypeOfficial     DayType = "official"
	DayTypeHoliday      DayType = "holiday"
	DayTypeCompensatory DayType = "compensatory"
)

type Status string

const (
	StatusEmpty        Status = "empty"
	StatusSinglePunch  Status = "single_punch"
	StatusOnTime       Status = "on_time"
	StatusNotOnTime    Status = "not_on_time"
	StatusAbsent       Status = "absent"
	StatusUncalculable Status = "uncalculable"
)

// Entry is the authoritative daily record for one employee on one calendar
// date. Unique on (EmployeeID, Date).
//
// The snapshot fields are copied in by the snapshot service when the entry
// is created or when upstream reference data changes; the calculator reads
// only the snapshot and the raw punch-derived interval, never the mutable
// reference tables.
type Entry struct {
	ID         string
	EmployeeID string
	Date       time.Time // calendar day, midnight UTC

	// Raw punch-derived interval
	StartTime  *time.Time
	EndTime    *time.Time
	PunchCount int

	// Snapshot
	ContractNumber     *string
	WageRate           decimal.Decimal
	DayType            DayType
	IsExempt           bool
	GracePeriodMinutes int
	MorningStart       *time.Time
	MorningEnd         *time.Time
	AfternoonStart     *time.Time // nil together with AfternoonEnd on half-day schedules
	AfternoonEnd       *time.Time
	PostMaternity      bool
	PaidLeaveHours     float64
	SnapshotAt         *time.Time

	// Approved overtime window, written only by proposal execution
	ApprovedOTStart *time.Time
	ApprovedOTEnd   *time.Time
	ApprovedOTHours float64

	// Computed
	MorningHours      float64
	AfternoonHours    float64
	OvertimeTier1     float64 // official weekday, 1.5x
	OvertimeTier2     float64 // Sunday, 2x
	OvertimeTier3     float64 // holiday, 3x
	OTStartTime       *time.Time
	OTEndTime         *time.Time
	LateMinutes       int
	EarlyMinutes      int
	IsPunished        bool
	WorkingDays       float64
	CompensationValue decimal.Decimal
	Status            Status
	AbsentReason      *string

	IsManuallyCorrected bool
	FinalizedAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSnapshot reports whether the entry carries enough snapshot data to be
// calculated. A missing day-type snapshot means "cannot calculate".
func (e *Entry) HasSnapshot() bool {
	return e.SnapshotAt != nil && e.DayType != ""
}

// IsWorkingDay reports whether the snapshot schedule requires attendance
// on this date. Day-off entries (no shift in the schedule) still exist so
// approved overtime can be computed against them.
func (e *Entry) IsWorkingDay() bool {
	return e.MorningStart != nil && e.MorningEnd != nil
}

// RequiresAttendance reports whether lateness rules apply: a scheduled
// shift exists and the day is not a holiday.
func (e *Entry) RequiresAttendance() bool {
	return e.IsWorkingDay() && e.DayType != DayTypeHoliday
}

// IsHalfDay reports whether the snapshot schedule has only a morning shift.
func (e *Entry) IsHalfDay() bool {
	return e.AfternoonStart == nil || e.AfternoonEnd == nil
}

// OvertimeHours returns the sum over the three tiers.
func (e *Entry) OvertimeHours() float64 {
	return e.OvertimeTier1 + e.OvertimeTier2 + e.OvertimeTier3
}

// Month returns the owning month key in YYYY-MM form.
func (e *Entry) Month() string {
	return e.Date.Format("2006-01")
}

// MonthlyTimesheet is the per-employee monthly rollup of daily entries.
// NeedRefresh is flipped on every entry write and consumed by the
// aggregation sweep.
type MonthlyTimesheet struct {
	ID         string
	EmployeeID string
	Month      string // YYYY-MM

	WorkingDays        float64
	OvertimeTier1      float64
	OvertimeTier2      float64
	OvertimeTier3      float64
	LateMinutes        int
	EarlyMinutes       int
	PenaltyDays        int
	LeaveDays          float64 // sum(paid_leave_hours)/8, fractional days supported
	PaidLeaveHours     float64
	CompensationTotal  decimal.Decimal
	AvailableLeaveDays float64

	NeedRefresh     bool
	RefreshAttempts int

	CreatedAt time.Time
	UpdatedAt time.Time
}

type PunchKind string

const (
	PunchKindDevice    PunchKind = "device"
	PunchKindSynthetic PunchKind = "synthetic" // created by cannot-attend proposal execution
)

// Punch is one validated clock event. Duplicates on
// (EmployeeCode, Timestamp, Device) are rejected idempotently.
type Punch struct {
	ID           string
	EmployeeCode string
	EmployeeID   string
	Timestamp    time.Time
	Device       string
	Kind         PunchKind
	CreatedAt    time.Time
}

// RefreshItem is one pending snapshot refresh in the invalidation queue.
type RefreshItem struct {
	ID         string
	EntryID    string
	Attempts   int
	LastError  *string
	EnqueuedAt time.Time
}
