package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/contract"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/proposal"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/schedule"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
)

const (
	defaultGraceMinutes       = 5
	postMaternityGraceMinutes = 65

	// maxRefreshAttempts bounds queue retries; items past the bound stay
	// visible as failed instead of cycling forever.
	maxRefreshAttempts = 5
	refreshBatchSize   = 200
)

type SnapshotServiceImpl struct {
	entryRepo    timesheet.EntryRepository
	monthlyRepo  timesheet.MonthlyRepository
	queueRepo    timesheet.RefreshQueueRepository
	scheduleRepo schedule.WorkScheduleRepository
	calendarRepo schedule.CalendarRepository
	contractRepo contract.ContractRepository
	proposalRepo proposal.ProposalRepository
}

func NewSnapshotService(
	entryRepo timesheet.EntryRepository,
	monthlyRepo timesheet.MonthlyRepository,
	queueRepo timesheet.RefreshQueueRepository,
	scheduleRepo schedule.WorkScheduleRepository,
	calendarRepo schedule.CalendarRepository,
	contractRepo contract.ContractRepository,
	proposalRepo proposal.ProposalRepository,
) timesheet.SnapshotService {
	return &SnapshotServiceImpl{
		entryRepo:    entryRepo,
		monthlyRepo:  monthlyRepo,
		queueRepo:    queueRepo,
		scheduleRepo: scheduleRepo,
		calendarRepo: calendarRepo,
		contractRepo: contractRepo,
		proposalRepo: proposalRepo,
	}
}

// Refresh implements timesheet.SnapshotService.
//
// It stages the currently-applicable rules into the entry so the
// calculator never reads mutable reference tables: day classification,
// contract figures, grace period and pre-approved leave. Computed fields
// are left alone; the queue worker re-runs the calculator afterwards.
func (s *SnapshotServiceImpl) Refresh(ctx context.Context, entryID string) error {
	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to load entry for snapshot refresh: %w", err)
	}

	entry, err = s.resolveSnapshot(ctx, entry)
	if err != nil {
		return err
	}

	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotServiceImpl) resolveSnapshot(ctx context.Context, entry timesheet.Entry) (timesheet.Entry, error) {
	date := entry.Date

	// Day classification: holiday wins over compensatory wins over schedule.
	holiday, err := s.calendarRepo.GetHoliday(ctx, date)
	if err != nil {
		return entry, fmt.Errorf("failed to resolve holiday: %w", err)
	}
	compensatory, err := s.calendarRepo.GetCompensatoryWorkday(ctx, date)
	if err != nil {
		return entry, fmt.Errorf("failed to resolve compensatory workday: %w", err)
	}

	switch {
	case holiday != nil:
		entry.DayType = timesheet.DayTypeHoliday
	case compensatory != nil:
		entry.DayType = timesheet.DayTypeCompensatory
	default:
		entry.DayType = timesheet.DayTypeOfficial
	}

	workSchedule, err := s.scheduleRepo.GetActiveForEmployee(ctx, entry.EmployeeID, date)
	if err != nil {
		return entry, fmt.Errorf("failed to resolve work schedule: %w", err)
	}
	if workSchedule == nil {
		// No schedule means the entry cannot be calculated; leave the
		// snapshot unset so the calculator parks the entry with a reason.
		entry.SnapshotAt = nil
		entry.DayType = ""
		return entry, nil
	}

	entry.MorningStart = nil
	entry.MorningEnd = nil
	entry.AfternoonStart = nil
	entry.AfternoonEnd = nil

	day := workSchedule.DayFor(date)
	if day == nil && entry.DayType == timesheet.DayTypeCompensatory && len(workSchedule.Days) > 0 {
		// A compensatory workday on a normally-off weekday borrows the
		// schedule's first shift template.
		day = &workSchedule.Days[0]
	}
	if day != nil {
		morningStart := schedule.OnDate(day.MorningStart, date)
		morningEnd := schedule.OnDate(day.MorningEnd, date)
		entry.MorningStart = &morningStart
		entry.MorningEnd = &morningEnd
		if !day.IsHalfDay() {
			afternoonStart := schedule.OnDate(*day.AfternoonStart, date)
			afternoonEnd := schedule.OnDate(*day.AfternoonEnd, date)
			entry.AfternoonStart = &afternoonStart
			entry.AfternoonEnd = &afternoonEnd
		}
	}

	entry.GracePeriodMinutes = workSchedule.GracePeriodMinutes
	if entry.GracePeriodMinutes <= 0 {
		entry.GracePeriodMinutes = defaultGraceMinutes
	}

	activeContract, err := s.contractRepo.GetActive(ctx, entry.EmployeeID, date)
	if err != nil {
		return entry, fmt.Errorf("failed to resolve contract: %w", err)
	}
	if activeContract != nil {
		number := activeContract.Number
		entry.ContractNumber = &number
		entry.WageRate = activeContract.WageRate
		entry.PostMaternity = activeContract.PostMaternity
		if activeContract.PostMaternity {
			entry.GracePeriodMinutes = postMaternityGraceMinutes
		}
	} else {
		entry.ContractNumber = nil
		entry.PostMaternity = false
	}

	// Approved proposals active on the date: exemption and pre-approved
	// paid leave. Execution side effects are applied elsewhere; here only
	// the rule values are staged.
	proposals, err := s.proposalRepo.ListApprovedForDate(ctx, entry.EmployeeID, date)
	if err != nil {
		return entry, fmt.Errorf("failed to resolve approved proposals: %w", err)
	}
	entry.IsExempt = false
	paidLeave := 0.0
	for _, p := range proposals {
		if p.IsLeave() {
			entry.IsExempt = true
			if p.Kind == proposal.KindLeavePaid {
				paidLeave += p.PaidLeaveHoursPerDay
			}
		}
	}
	entry.PaidLeaveHours = paidLeave

	now := time.Now().UTC()
	entry.SnapshotAt = &now
	return entry, nil
}

// InvalidateEmployeeRange implements timesheet.SnapshotService.
func (s *SnapshotServiceImpl) InvalidateEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) error {
	ids, err := s.entryRepo.ListIDsByEmployeeAndRange(ctx, employeeID, from, to)
	if err != nil {
		return fmt.Errorf("failed to list entries for invalidation: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.queueRepo.Enqueue(ctx, ids); err != nil {
		return fmt.Errorf("failed to enqueue snapshot refreshes: %w", err)
	}
	return nil
}

// InvalidateDate implements timesheet.SnapshotService.
func (s *SnapshotServiceImpl) InvalidateDate(ctx context.Context, date time.Time) error {
	ids, err := s.entryRepo.ListIDsByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to list entries for invalidation: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.queueRepo.Enqueue(ctx, ids); err != nil {
		return fmt.Errorf("failed to enqueue snapshot refreshes: %w", err)
	}
	return nil
}

// ProcessQueue implements timesheet.SnapshotService. Failures are retried
// with an attempt counter; items past the bound are marked failed and
// surface through the queue table instead of blocking the drain.
func (s *SnapshotServiceImpl) ProcessQueue(ctx context.Context) error {
	items, err := s.queueRepo.Dequeue(ctx, refreshBatchSize)
	if err != nil {
		return fmt.Errorf("failed to dequeue snapshot refreshes: %w", err)
	}

	for _, item := range items {
		if err := s.refreshAndRecalculate(ctx, item.EntryID); err != nil {
			if item.Attempts+1 >= maxRefreshAttempts {
				slog.Error("snapshot refresh attempts exhausted",
					"entry_id", item.EntryID, "attempts", item.Attempts+1, "error", err)
			}
			if markErr := s.queueRepo.MarkFailed(ctx, item.ID, err.Error()); markErr != nil {
				slog.Error("failed to mark refresh item failed", "item_id", item.ID, "error", markErr)
			}
			continue
		}
		if err := s.queueRepo.MarkDone(ctx, item.ID); err != nil {
			slog.Error("failed to mark refresh item done", "item_id", item.ID, "error", err)
		}
	}
	return nil
}

func (s *SnapshotServiceImpl) refreshAndRecalculate(ctx context.Context, entryID string) error {
	if err := s.Refresh(ctx, entryID); err != nil {
		return err
	}

	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, timesheet.ErrEntryNotFound) {
			return nil
		}
		return fmt.Errorf("failed to reload entry after snapshot: %w", err)
	}

	entry = Calculate(entry)
	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist recalculated entry: %w", err)
	}
	if err := s.monthlyRepo.MarkNeedRefresh(ctx, entry.EmployeeID, entry.Month()); err != nil {
		return fmt.Errorf("failed to flag monthly timesheet: %w", err)
	}
	return nil
}
