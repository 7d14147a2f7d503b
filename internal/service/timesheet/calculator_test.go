package timesheet

import (
	"testing"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts.UTC()
}

func timePtr(ts time.Time) *time.Time {
	return &ts
}

// fullDayEntry builds a snapshotted entry for a standard 08:00-12:00 /
// 13:00-17:00 working Monday with a 5 minute grace period.
func fullDayEntry(t *testing.T) timesheet.Entry {
	t.Helper()
	snapshotAt := mustTime(t, "2025-03-10T00:00:05Z")
	return timesheet.Entry{
		ID:                 "entry-1",
		EmployeeID:         "emp-1",
		Date:               mustTime(t, "2025-03-10T00:00:00Z"), // Monday
		DayType:            timesheet.DayTypeOfficial,
		WageRate:           decimal.NewFromInt(400000),
		GracePeriodMinutes: 5,
		MorningStart:       timePtr(mustTime(t, "2025-03-10T08:00:00Z")),
		MorningEnd:         timePtr(mustTime(t, "2025-03-10T12:00:00Z")),
		AfternoonStart:     timePtr(mustTime(t, "2025-03-10T13:00:00Z")),
		AfternoonEnd:       timePtr(mustTime(t, "2025-03-10T17:00:00Z")),
		SnapshotAt:         &snapshotAt,
	}
}

func TestCalculateMissingSnapshot(t *testing.T) {
	e := timesheet.Entry{
		ID:         "entry-1",
		EmployeeID: "emp-1",
		Date:       mustTime(t, "2025-03-10T00:00:00Z"),
		StartTime:  timePtr(mustTime(t, "2025-03-10T08:00:00Z")),
		EndTime:    timePtr(mustTime(t, "2025-03-10T17:00:00Z")),
		PunchCount: 2,
		WageRate:   decimal.NewFromInt(400000),
	}

	got := Calculate(e)

	assert.Equal(t, timesheet.StatusUncalculable, got.Status)
	assert.Zero(t, got.WorkingDays)
	assert.Zero(t, got.MorningHours)
	assert.Zero(t, got.OvertimeHours())
	assert.True(t, got.CompensationValue.IsZero())
}

func TestCalculateFullDayOnTime(t *testing.T) {
	e := fullDayEntry(t)
	e.StartTime = timePtr(mustTime(t, "2025-03-10T07:58:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T17:02:00Z"))
	e.PunchCount = 2

	got := Calculate(e)

	assert.Equal(t, timesheet.StatusOnTime, got.Status)
	assert.Equal(t, 4.0, got.MorningHours)
	assert.Equal(t, 4.0, got.AfternoonHours)
	assert.Equal(t, 0, got.LateMinutes)
	assert.Equal(t, 0, got.EarlyMinutes)
	assert.False(t, got.IsPunished)
	assert.Equal(t, 1.0, got.WorkingDays)
	assert.True(t, got.CompensationValue.Equal(decimal.NewFromInt(400000)))
	// no approved window, so nothing past 17:00 counts
	assert.Zero(t, got.OvertimeHours())
}

func TestCalculateLateAndEarlyBeyondGrace(t *testing.T) {
	e := fullDayEntry(t)
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:10:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T16:50:00Z"))
	e.PunchCount = 2

	got := Calculate(e)

	assert.Equal(t, 10, got.LateMinutes)
	assert.Equal(t, 10, got.EarlyMinutes)
	assert.True(t, got.IsPunished)
	assert.Equal(t, timesheet.StatusNotOnTime, got.Status)
}

func TestCalculateLateWithinGrace(t *testing.T) {
	e := fullDayEntry(t)
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:04:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T17:00:00Z"))
	e.PunchCount = 2

	got := Calculate(e)

	assert.Equal(t, 4, got.LateMinutes)
	assert.False(t, got.IsPunished)
	assert.Equal(t, timesheet.StatusOnTime, got.Status)
}

func TestCalculateExemptNeverPunished(t *testing.T) {
	e := fullDayEntry(t)
	e.IsExempt = true
	e.StartTime = timePtr(mustTime(t, "2025-03-10T09:30:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T15:00:00Z"))
	e.PunchCount = 2

	got := Calculate(e)

	assert.False(t, got.IsPunished)
	assert.Equal(t, timesheet.StatusOnTime, got.Status)
}

func TestCalculatePostMaternityGraceAndNursingCredit(t *testing.T) {
	e := fullDayEntry(t)
	e.PostMaternity = true
	e.GracePeriodMinutes = 65
	e.StartTime = timePtr(mustTime(t, "2025-03-10T09:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T17:00:00Z"))
	e.PunchCount = 2

	got := Calculate(e)

	assert.Equal(t, 60, got.LateMinutes)
	assert.False(t, got.IsPunished)
	// 7h presence / 8 + 0.125 nursing credit, capped at 1.0
	assert.Equal(t, 1.0, got.WorkingDays)
}

func TestCalculateNursingCreditRequiresPresence(t *testing.T) {
	e := fullDayEntry(t)
	e.PostMaternity = true

	got := Calculate(e)

	assert.Zero(t, got.WorkingDays)
}

func TestCalculateSinglePunchFullDay(t *testing.T) {
	e := fullDayEntry(t)
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.PunchCount = 1
	e.ApprovedOTStart = timePtr(mustTime(t, "2025-03-10T17:00:00Z"))
	e.ApprovedOTEnd = timePtr(mustTime(t, "2025-03-10T20:00:00Z"))
	e.ApprovedOTHours = 3

	got := Calculate(e)

	assert.Equal(t, timesheet.StatusSinglePunch, got.Status)
	assert.Equal(t, 0.5, got.WorkingDays)
	// the single-punch rule overrides even an approved window
	assert.Zero(t, got.OvertimeHours())
	assert.True(t, got.CompensationValue.Equal(decimal.NewFromInt(200000)))
}

func TestCalculateSinglePunchHalfDay(t *testing.T) {
	e := fullDayEntry(t)
	e.AfternoonStart = nil
	e.AfternoonEnd = nil
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.PunchCount = 1

	got := Calculate(e)

	assert.Equal(t, timesheet.StatusSinglePunch, got.Status)
	assert.Equal(t, 0.25, got.WorkingDays)
}

func TestCalculateSinglePunchDayOff(t *testing.T) {
	e := fullDayEntry(t)
	e.MorningStart = nil
	e.MorningEnd = nil
	e.AfternoonStart = nil
	e.AfternoonEnd = nil
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.PunchCount = 1

	got := Calculate(e)

	assert.Equal(t, timesheet.StatusSinglePunch, got.Status)
	assert.Zero(t, got.WorkingDays)
}

func TestCalculateOvertimeCappedByApprovedHours(t *testing.T) {
	e := fullDayEntry(t)
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T21:00:00Z"))
	e.PunchCount = 2
	e.ApprovedOTStart = timePtr(mustTime(t, "2025-03-10T17:00:00Z"))
	e.ApprovedOTEnd = timePtr(mustTime(t, "2025-03-10T21:00:00Z"))
	e.ApprovedOTHours = 2

	got := Calculate(e)

	// worked 12h minus 8h standard = 4h raw, capped at the 2h approval
	assert.Equal(t, 2.0, got.OvertimeTier1)
	assert.Zero(t, got.OvertimeTier2)
	assert.Zero(t, got.OvertimeTier3)
}

func TestCalculateOvertimeCappedByWindowIntersection(t *testing.T) {
	e := fullDayEntry(t)
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T18:30:00Z"))
	e.PunchCount = 2
	e.ApprovedOTStart = timePtr(mustTime(t, "2025-03-10T17:00:00Z"))
	e.ApprovedOTEnd = timePtr(mustTime(t, "2025-03-10T20:00:00Z"))
	e.ApprovedOTHours = 3

	got := Calculate(e)

	// left at 18:30, so only 1.5h of the window was used
	assert.Equal(t, 1.5, got.OvertimeTier1)
	require.NotNil(t, got.OTStartTime)
	require.NotNil(t, got.OTEndTime)
	assert.Equal(t, mustTime(t, "2025-03-10T17:00:00Z"), *got.OTStartTime)
	assert.Equal(t, mustTime(t, "2025-03-10T18:30:00Z"), *got.OTEndTime)
}

func TestCalculateOvertimeOutsideWindowIgnored(t *testing.T) {
	e := fullDayEntry(t)
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T19:00:00Z"))
	e.PunchCount = 2
	// window on a different part of the day never intersects the stay
	e.ApprovedOTStart = timePtr(mustTime(t, "2025-03-10T20:00:00Z"))
	e.ApprovedOTEnd = timePtr(mustTime(t, "2025-03-10T22:00:00Z"))
	e.ApprovedOTHours = 2

	got := Calculate(e)

	assert.Zero(t, got.OvertimeHours())
}

func TestCalculateNoApprovalNoOvertime(t *testing.T) {
	e := fullDayEntry(t)
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T22:00:00Z"))
	e.PunchCount = 2

	got := Calculate(e)

	assert.Zero(t, got.OvertimeHours())
}

func TestCalculateHolidayOvertimeTier3(t *testing.T) {
	e := fullDayEntry(t)
	e.DayType = timesheet.DayTypeHoliday
	e.StartTime = timePtr(mustTime(t, "2025-03-10T09:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T13:00:00Z"))
	e.PunchCount = 2
	e.ApprovedOTStart = timePtr(mustTime(t, "2025-03-10T09:00:00Z"))
	e.ApprovedOTEnd = timePtr(mustTime(t, "2025-03-10T13:00:00Z"))
	e.ApprovedOTHours = 4

	got := Calculate(e)

	// attendance is not required on a holiday, everything worked is OT
	assert.Equal(t, 4.0, got.OvertimeTier3)
	assert.Zero(t, got.OvertimeTier1)
	assert.Equal(t, 0, got.LateMinutes)
	assert.False(t, got.IsPunished)
}

func TestCalculateSundayOvertimeTier2(t *testing.T) {
	e := fullDayEntry(t)
	e.Date = mustTime(t, "2025-03-09T00:00:00Z") // Sunday
	e.MorningStart = nil
	e.MorningEnd = nil
	e.AfternoonStart = nil
	e.AfternoonEnd = nil
	e.StartTime = timePtr(mustTime(t, "2025-03-09T10:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-09T13:00:00Z"))
	e.PunchCount = 2
	e.ApprovedOTStart = timePtr(mustTime(t, "2025-03-09T10:00:00Z"))
	e.ApprovedOTEnd = timePtr(mustTime(t, "2025-03-09T14:00:00Z"))
	e.ApprovedOTHours = 4

	got := Calculate(e)

	assert.Equal(t, 3.0, got.OvertimeTier2)
	assert.Zero(t, got.OvertimeTier1)
	assert.Zero(t, got.OvertimeTier3)
}

func TestCalculateHolidayWinsOverSunday(t *testing.T) {
	e := fullDayEntry(t)
	e.Date = mustTime(t, "2025-03-09T00:00:00Z") // Sunday declared a holiday
	e.DayType = timesheet.DayTypeHoliday
	e.MorningStart = nil
	e.MorningEnd = nil
	e.AfternoonStart = nil
	e.AfternoonEnd = nil
	e.StartTime = timePtr(mustTime(t, "2025-03-09T10:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-09T12:00:00Z"))
	e.PunchCount = 2
	e.ApprovedOTStart = timePtr(mustTime(t, "2025-03-09T10:00:00Z"))
	e.ApprovedOTEnd = timePtr(mustTime(t, "2025-03-09T12:00:00Z"))
	e.ApprovedOTHours = 2

	got := Calculate(e)

	assert.Equal(t, 2.0, got.OvertimeTier3)
	assert.Zero(t, got.OvertimeTier2)
}

func TestCalculatePaidLeaveCreditsWorkingDays(t *testing.T) {
	e := fullDayEntry(t)
	e.IsExempt = true
	e.PaidLeaveHours = 8
	reason := "annual leave"
	e.AbsentReason = &reason

	got := Calculate(e)

	assert.Equal(t, timesheet.StatusAbsent, got.Status)
	assert.Equal(t, 1.0, got.WorkingDays)
	assert.True(t, got.CompensationValue.Equal(decimal.NewFromInt(400000)))
}

func TestCalculateWorkingDaysCappedAtOne(t *testing.T) {
	e := fullDayEntry(t)
	e.PaidLeaveHours = 4
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T17:00:00Z"))
	e.PunchCount = 2

	got := Calculate(e)

	// 8h presence plus 4h paid leave still caps at one day
	assert.Equal(t, 1.0, got.WorkingDays)
}

func TestCalculateHalfDayCapsAtHalf(t *testing.T) {
	e := fullDayEntry(t)
	e.AfternoonStart = nil
	e.AfternoonEnd = nil
	e.PaidLeaveHours = 8
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T12:00:00Z"))
	e.PunchCount = 2

	got := Calculate(e)

	assert.Equal(t, 0.5, got.WorkingDays)
}

func TestCalculateLunchGapNotWorked(t *testing.T) {
	e := fullDayEntry(t)
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T17:00:00Z"))
	e.PunchCount = 2
	e.ApprovedOTStart = timePtr(mustTime(t, "2025-03-10T17:00:00Z"))
	e.ApprovedOTEnd = timePtr(mustTime(t, "2025-03-10T20:00:00Z"))
	e.ApprovedOTHours = 3

	got := Calculate(e)

	// 9h span minus the lunch hour is exactly the 8h standard, no OT
	assert.Zero(t, got.OvertimeHours())
}

func TestCalculateIsPure(t *testing.T) {
	e := fullDayEntry(t)
	e.StartTime = timePtr(mustTime(t, "2025-03-10T08:00:00Z"))
	e.EndTime = timePtr(mustTime(t, "2025-03-10T17:00:00Z"))
	e.PunchCount = 2

	first := Calculate(e)
	second := Calculate(first)

	assert.Equal(t, first, second)
}
