package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/contract"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/shopspring/decimal"
)

const (
	sweepBatchSize     = 100
	maxMonthlyAttempts = 5
	hoursPerLeaveDay   = 8.0
)

type AggregatorImpl struct {
	entryRepo    timesheet.EntryRepository
	monthlyRepo  timesheet.MonthlyRepository
	contractRepo contract.ContractRepository
}

func NewAggregator(
	entryRepo timesheet.EntryRepository,
	monthlyRepo timesheet.MonthlyRepository,
	contractRepo contract.ContractRepository,
) timesheet.Aggregator {
	return &AggregatorImpl{
		entryRepo:    entryRepo,
		monthlyRepo:  monthlyRepo,
		contractRepo: contractRepo,
	}
}

// Sweep implements timesheet.Aggregator.
//
// The sweep is optimistic: each flagged record is read, recomputed and
// written without holding a lock across the batch. A concurrent entry
// write that re-flags a record mid-sweep just schedules another pass.
// Per-record failures bump an attempt counter; records past the bound are
// skipped and stay visible via ListStuck.
func (a *AggregatorImpl) Sweep(ctx context.Context) error {
	flagged, err := a.monthlyRepo.ListNeedingRefresh(ctx, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list flagged monthly timesheets: %w", err)
	}

	for _, monthly := range flagged {
		if monthly.RefreshAttempts >= maxMonthlyAttempts {
			continue
		}
		if err := a.RefreshMonthly(ctx, monthly.EmployeeID, monthly.Month); err != nil {
			slog.Error("monthly aggregation failed",
				"employee_id", monthly.EmployeeID, "month", monthly.Month,
				"attempt", monthly.RefreshAttempts+1, "error", err)

			monthly.RefreshAttempts++
			if updateErr := a.monthlyRepo.Update(ctx, monthly); updateErr != nil {
				slog.Error("failed to record aggregation attempt",
					"employee_id", monthly.EmployeeID, "month", monthly.Month, "error", updateErr)
			}
		}
	}
	return nil
}

// RefreshMonthly implements timesheet.Aggregator.
func (a *AggregatorImpl) RefreshMonthly(ctx context.Context, employeeID string, month string) error {
	entries, err := a.entryRepo.ListByMonth(ctx, employeeID, month)
	if err != nil {
		return fmt.Errorf("failed to list entries for aggregation: %w", err)
	}

	monthly, err := a.monthlyRepo.GetByEmployeeAndMonth(ctx, employeeID, month)
	if err != nil {
		return fmt.Errorf("failed to get monthly timesheet: %w", err)
	}
	if monthly == nil {
		created, err := a.monthlyRepo.Create(ctx, timesheet.MonthlyTimesheet{
			EmployeeID: employeeID,
			Month:      month,
		})
		if err != nil {
			return fmt.Errorf("failed to create monthly timesheet: %w", err)
		}
		monthly = &created
	}

	rollup := *monthly
	rollup.WorkingDays = 0
	rollup.OvertimeTier1 = 0
	rollup.OvertimeTier2 = 0
	rollup.OvertimeTier3 = 0
	rollup.LateMinutes = 0
	rollup.EarlyMinutes = 0
	rollup.PenaltyDays = 0
	rollup.PaidLeaveHours = 0
	rollup.CompensationTotal = decimal.Zero

	for _, entry := range entries {
		rollup.WorkingDays += entry.WorkingDays
		rollup.OvertimeTier1 += entry.OvertimeTier1
		rollup.OvertimeTier2 += entry.OvertimeTier2
		rollup.OvertimeTier3 += entry.OvertimeTier3
		rollup.LateMinutes += entry.LateMinutes
		rollup.EarlyMinutes += entry.EarlyMinutes
		if entry.IsPunished {
			rollup.PenaltyDays++
		}
		rollup.PaidLeaveHours += entry.PaidLeaveHours
		rollup.CompensationTotal = rollup.CompensationTotal.Add(entry.CompensationValue)
	}
	rollup.LeaveDays = round3Agg(rollup.PaidLeaveHours / hoursPerLeaveDay)
	rollup.WorkingDays = round3Agg(rollup.WorkingDays)

	rollup.AvailableLeaveDays = 0
	if lastDay, err := lastDayOfMonth(month); err == nil {
		activeContract, err := a.contractRepo.GetActive(ctx, employeeID, lastDay)
		if err != nil {
			return fmt.Errorf("failed to resolve contract for leave balance: %w", err)
		}
		if activeContract != nil {
			rollup.AvailableLeaveDays = activeContract.AnnualLeaveDays - rollup.LeaveDays
		}
	}

	rollup.NeedRefresh = false
	rollup.RefreshAttempts = 0
	if err := a.monthlyRepo.Update(ctx, rollup); err != nil {
		return fmt.Errorf("failed to persist monthly timesheet: %w", err)
	}
	return nil
}

func lastDayOfMonth(month string) (time.Time, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, timesheet.ErrInvalidMonth
	}
	return first.AddDate(0, 1, -1), nil
}

func round3Agg(v float64) float64 {
	return round3(v)
}
