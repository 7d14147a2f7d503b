package timesheet

import (
	"math"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/shopspring/decimal"
)

const hoursPerWorkingDay = 8.0

// nursingCredit is the extra working-day fraction granted to
// post-maternity employees on days they attend (one hour out of eight).
const nursingCredit = 0.125

// Calculate derives every computed field of an entry from its snapshot and
// punch-derived interval. It is a pure function: no repository access, no
// clock access, no mutation of its input.
//
// A missing snapshot is never guessed around; the entry comes back with
// zeroed figures and an uncalculable status.
func Calculate(e timesheet.Entry) timesheet.Entry {
	e = resetComputed(e)

	if !e.HasSnapshot() {
		e.Status = timesheet.StatusUncalculable
		return e
	}

	switch punchCount(e) {
	case 0:
		return calculateNoPunch(e)
	case 1:
		return calculateSinglePunch(e)
	default:
		return calculateFull(e)
	}
}

func resetComputed(e timesheet.Entry) timesheet.Entry {
	e.MorningHours = 0
	e.AfternoonHours = 0
	e.OvertimeTier1 = 0
	e.OvertimeTier2 = 0
	e.OvertimeTier3 = 0
	e.OTStartTime = nil
	e.OTEndTime = nil
	e.LateMinutes = 0
	e.EarlyMinutes = 0
	e.IsPunished = false
	e.WorkingDays = 0
	e.CompensationValue = decimal.Zero
	return e
}

func punchCount(e timesheet.Entry) int {
	n := 0
	if e.StartTime != nil {
		n++
	}
	if e.EndTime != nil {
		n++
	}
	return n
}

// calculateNoPunch credits approved paid leave and nothing else. The
// absent status itself is committed by leave execution or the finalizer.
func calculateNoPunch(e timesheet.Entry) timesheet.Entry {
	e.WorkingDays = capWorkingDays(e, e.PaidLeaveHours/hoursPerWorkingDay)
	e.CompensationValue = compensation(e)
	if e.AbsentReason != nil {
		e.Status = timesheet.StatusAbsent
	} else if e.Status != timesheet.StatusAbsent {
		e.Status = timesheet.StatusEmpty
	}
	return e
}

// calculateSinglePunch applies the hard single-punch rule: working days
// forced to 0.5 (two required shifts) or 0.25 (one shift), overtime zero
// in every tier. This overrides all other computation for the day.
func calculateSinglePunch(e timesheet.Entry) timesheet.Entry {
	if e.RequiresAttendance() {
		if e.IsHalfDay() {
			e.WorkingDays = 0.25
		} else {
			e.WorkingDays = 0.5
		}
	}
	e.CompensationValue = compensation(e)
	e.Status = timesheet.StatusSinglePunch
	return e
}

func calculateFull(e timesheet.Entry) timesheet.Entry {
	start, end := *e.StartTime, *e.EndTime

	var standardHours float64
	var worked float64

	if e.RequiresAttendance() {
		morningStart, morningEnd := *e.MorningStart, *e.MorningEnd
		e.MorningHours = round2(overlapHours(start, end, morningStart, morningEnd))
		standardHours = morningEnd.Sub(morningStart).Hours()
		scheduledEnd := morningEnd

		worked = end.Sub(start).Hours()
		if !e.IsHalfDay() {
			afternoonStart, afternoonEnd := *e.AfternoonStart, *e.AfternoonEnd
			e.AfternoonHours = round2(overlapHours(start, end, afternoonStart, afternoonEnd))
			standardHours += afternoonEnd.Sub(afternoonStart).Hours()
			scheduledEnd = afternoonEnd
			// the lunch gap is not worked time
			worked -= overlapHours(start, end, morningEnd, afternoonStart)
		}

		if start.After(morningStart) {
			e.LateMinutes = int(math.Floor(start.Sub(morningStart).Minutes()))
		}
		if end.Before(scheduledEnd) {
			e.EarlyMinutes = int(math.Floor(scheduledEnd.Sub(end).Minutes()))
		}
		if !e.IsExempt {
			e.IsPunished = e.LateMinutes+e.EarlyMinutes > e.GracePeriodMinutes
		}
	} else {
		// Day off or holiday: nothing is required, everything worked counts
		// toward overtime only.
		worked = end.Sub(start).Hours()
	}

	e = applyOvertime(e, start, end, worked, standardHours)

	official := e.MorningHours + e.AfternoonHours
	workingDays := official/hoursPerWorkingDay + e.PaidLeaveHours/hoursPerWorkingDay
	if e.PostMaternity && official > 0 {
		workingDays += nursingCredit
	}
	e.WorkingDays = capWorkingDays(e, workingDays)
	e.CompensationValue = compensation(e)

	if e.IsPunished {
		e.Status = timesheet.StatusNotOnTime
	} else {
		e.Status = timesheet.StatusOnTime
	}
	return e
}

// applyOvertime counts overtime only inside an approved window, capped at
// both the approved duration and the actual intersection. The intersection
// itself is recorded as the effective overtime window.
func applyOvertime(e timesheet.Entry, start, end time.Time, worked, standardHours float64) timesheet.Entry {
	if e.ApprovedOTStart == nil || e.ApprovedOTEnd == nil || e.ApprovedOTHours <= 0 {
		return e
	}

	otStart := maxTime(start, *e.ApprovedOTStart)
	otEnd := minTime(end, *e.ApprovedOTEnd)
	if !otEnd.After(otStart) {
		return e
	}

	rawOT := worked - standardHours
	if rawOT <= 0 {
		return e
	}

	ot := math.Min(rawOT, e.ApprovedOTHours)
	ot = math.Min(ot, otEnd.Sub(otStart).Hours())
	ot = round2(ot)
	if ot <= 0 {
		return e
	}

	e.OTStartTime = &otStart
	e.OTEndTime = &otEnd

	switch {
	case e.DayType == timesheet.DayTypeHoliday:
		e.OvertimeTier3 = ot // 3x
	case e.Date.Weekday() == time.Sunday:
		e.OvertimeTier2 = ot // 2x
	default:
		e.OvertimeTier1 = ot // 1.5x
	}
	return e
}

// capWorkingDays clamps the day total at the schedule's target: 1.0 for a
// full day, 0.5 for a half-day schedule.
func capWorkingDays(e timesheet.Entry, days float64) float64 {
	limit := 1.0
	if e.IsWorkingDay() && e.IsHalfDay() {
		limit = 0.5
	}
	if days > limit {
		days = limit
	}
	return round3(days)
}

func compensation(e timesheet.Entry) decimal.Decimal {
	if e.WorkingDays == 0 {
		return decimal.Zero
	}
	return e.WageRate.Mul(decimal.NewFromFloat(e.WorkingDays)).Round(2)
}

func overlapHours(start1, end1, start2, end2 time.Time) float64 {
	start := maxTime(start1, start2)
	end := minTime(end1, end2)
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Hours()
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func minTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
