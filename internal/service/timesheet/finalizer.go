package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
)

type FinalizerImpl struct {
	entryRepo   timesheet.EntryRepository
	monthlyRepo timesheet.MonthlyRepository
}

func NewFinalizer(
	entryRepo timesheet.EntryRepository,
	monthlyRepo timesheet.MonthlyRepository,
) timesheet.Finalizer {
	return &FinalizerImpl{entryRepo: entryRepo, monthlyRepo: monthlyRepo}
}

// FinalizeDay implements timesheet.Finalizer.
//
// Runs once per business day after the cutoff: zero punches commits
// absent, one punch commits single_punch with the hard rule applied, two
// punches keep the computed punctuality status. Finalized entries remain
// mutable afterwards: corrections and approvals re-run the full calculator
// instead of trusting the locked value.
func (f *FinalizerImpl) FinalizeDay(ctx context.Context, date time.Time) error {
	entries, err := f.entryRepo.ListUnfinalized(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to list unfinalized entries: %w", err)
	}

	now := time.Now().UTC()
	finalized := 0
	for _, entry := range entries {
		entry = Calculate(entry)

		if entry.Status == timesheet.StatusEmpty {
			entry.Status = timesheet.StatusAbsent
			if entry.AbsentReason == nil && entry.PaidLeaveHours == 0 && entry.RequiresAttendance() {
				reason := "no punches recorded"
				entry.AbsentReason = &reason
			}
		}

		entry.FinalizedAt = &now
		if err := f.entryRepo.Update(ctx, entry); err != nil {
			// Per-entry reporting; one bad row must not abort the day.
			slog.Error("failed to finalize entry",
				"entry_id", entry.ID, "employee_id", entry.EmployeeID, "error", err)
			continue
		}
		if err := f.monthlyRepo.MarkNeedRefresh(ctx, entry.EmployeeID, entry.Month()); err != nil {
			slog.Error("failed to flag monthly timesheet after finalize",
				"employee_id", entry.EmployeeID, "month", entry.Month(), "error", err)
		}
		finalized++
	}

	slog.Info("daily finalize completed",
		"date", date.Format("2006-01-02"), "entries", len(entries), "finalized", finalized)
	return nil
}
