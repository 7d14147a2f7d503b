package timesheet

import (
	"strings"
	"time"
)

// RecordPunchRequest mirrors the raw event delivered by the ingestion
// process: (employee_code, timestamp, device).
type RecordPunchRequest struct {
	EmployeeCode string    `json:"employee_code"`
	Timestamp    time.Time `json:"timestamp"`
	Device       string    `json:"device"`
	Kind         PunchKind `json:"-"`
}

func (r RecordPunchRequest) Validate() error {
	if strings.TrimSpace(r.EmployeeCode) == "" {
		return ErrEmployeeCodeRequired
	}
	if r.Timestamp.IsZero() {
		return ErrTimestampRequired
	}
	return nil
}

// EntryFilter narrows entry listings.
type EntryFilter struct {
	EmployeeID string
	Month      string // YYYY-MM
}

type EntryResponse struct {
	ID                  string     `json:"id"`
	EmployeeID          string     `json:"employee_id"`
	Date                string     `json:"date"`
	StartTime           *time.Time `json:"start_time,omitempty"`
	EndTime             *time.Time `json:"end_time,omitempty"`
	DayType             DayType    `json:"day_type"`
	MorningHours        float64    `json:"morning_hours"`
	AfternoonHours      float64    `json:"afternoon_hours"`
	OvertimeTier1       float64    `json:"overtime_tier1"`
	OvertimeTier2       float64    `json:"overtime_tier2"`
	OvertimeTier3       float64    `json:"overtime_tier3"`
	OTStartTime         *time.Time `json:"ot_start_time,omitempty"`
	OTEndTime           *time.Time `json:"ot_end_time,omitempty"`
	LateMinutes         int        `json:"late_minutes"`
	EarlyMinutes        int        `json:"early_minutes"`
	IsPunished          bool       `json:"is_punished"`
	WorkingDays         float64    `json:"working_days"`
	CompensationValue   string     `json:"compensation_value"`
	PaidLeaveHours      float64    `json:"paid_leave_hours"`
	Status              Status     `json:"status"`
	AbsentReason        *string    `json:"absent_reason,omitempty"`
	IsManuallyCorrected bool       `json:"is_manually_corrected"`
}

func NewEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:                  e.ID,
		EmployeeID:          e.EmployeeID,
		Date:                e.Date.Format("2006-01-02"),
		StartTime:           e.StartTime,
		EndTime:             e.EndTime,
		DayType:             e.DayType,
		MorningHours:        e.MorningHours,
		AfternoonHours:      e.AfternoonHours,
		OvertimeTier1:       e.OvertimeTier1,
		OvertimeTier2:       e.OvertimeTier2,
		OvertimeTier3:       e.OvertimeTier3,
		OTStartTime:         e.OTStartTime,
		OTEndTime:           e.OTEndTime,
		LateMinutes:         e.LateMinutes,
		EarlyMinutes:        e.EarlyMinutes,
		IsPunished:          e.IsPunished,
		WorkingDays:         e.WorkingDays,
		CompensationValue:   e.CompensationValue.StringFixed(2),
		PaidLeaveHours:      e.PaidLeaveHours,
		Status:              e.Status,
		AbsentReason:        e.AbsentReason,
		IsManuallyCorrected: e.IsManuallyCorrected,
	}
}

type MonthlyResponse struct {
	ID                 string  `json:"id"`
	EmployeeID         string  `json:"employee_id"`
	Month              string  `json:"month"`
	WorkingDays        float64 `json:"working_days"`
	OvertimeTier1      float64 `json:"overtime_tier1"`
	OvertimeTier2      float64 `json:"overtime_tier2"`
	OvertimeTier3      float64 `json:"overtime_tier3"`
	LateMinutes        int     `json:"late_minutes"`
	EarlyMinutes       int     `json:"early_minutes"`
	PenaltyDays        int     `json:"penalty_days"`
	LeaveDays          float64 `json:"leave_days"`
	CompensationTotal  string  `json:"compensation_total"`
	AvailableLeaveDays float64 `json:"available_leave_days"`
	NeedRefresh        bool    `json:"need_refresh"`
}

func NewMonthlyResponse(m MonthlyTimesheet) MonthlyResponse {
	return MonthlyResponse{
		ID:                 m.ID,
		EmployeeID:         m.EmployeeID,
		Month:              m.Month,
		WorkingDays:        m.WorkingDays,
		OvertimeTier1:      m.OvertimeTier1,
		OvertimeTier2:      m.OvertimeTier2,
		OvertimeTier3:      m.OvertimeTier3,
		LateMinutes:        m.LateMinutes,
		EarlyMinutes:       m.EarlyMinutes,
		PenaltyDays:        m.PenaltyDays,
		LeaveDays:          m.LeaveDays,
		CompensationTotal:  m.CompensationTotal.StringFixed(2),
		AvailableLeaveDays: m.AvailableLeaveDays,
		NeedRefresh:        m.NeedRefresh,
	}
}
