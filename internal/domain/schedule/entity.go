package schedule

import "time"

type WorkSchedule struct {
	ID                 string
	Name               string
	GracePeriodMinutes int
	EffectiveFrom      time.Time
	EffectiveTo        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Days []DaySchedule
}

// DaySchedule holds the clock times for one weekday. Times carry only the
// hour and minute; OnDate places them on a concrete calendar day.
type DaySchedule struct {
	ID             string
	WorkScheduleID string
	DayOfWeek      int // 1=Monday, ..., 7=Sunday
	MorningStart   time.Time
	MorningEnd     time.Time
	AfternoonStart *time.Time
	AfternoonEnd   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsHalfDay reports whether the day has only the morning shift.
func (d DaySchedule) IsHalfDay() bool {
	return d.AfternoonStart == nil || d.AfternoonEnd == nil
}

// OnDate returns the clock time t anchored on the given calendar day.
func OnDate(t time.Time, date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

// DayFor returns the day schedule matching the weekday of date, or nil
// if the schedule has no entry for that weekday (non-working day).
func (s *WorkSchedule) DayFor(date time.Time) *DaySchedule {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // time.Sunday is 0, schedules use 7
	}
	for i := range s.Days {
		if s.Days[i].DayOfWeek == weekday {
			return &s.Days[i]
		}
	}
	return nil
}

type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	CreatedAt time.Time
}

// CompensatoryWorkday declares a normally-off date as a working day,
// typically to compensate for a bridged holiday.
type CompensatoryWorkday struct {
	ID        string
	Date      time.Time
	Name      string
	CreatedAt time.Time
}
