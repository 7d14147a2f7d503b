package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
)

type TimesheetJobs struct {
	snapshots  timesheet.SnapshotService
	aggregator timesheet.Aggregator
	finalizer  timesheet.Finalizer

	snapshotInterval   time.Duration
	aggregateInterval  time.Duration
	finalizeCutoffHour int
}

func NewTimesheetJobs(
	snapshots timesheet.SnapshotService,
	aggregator timesheet.Aggregator,
	finalizer timesheet.Finalizer,
	snapshotInterval time.Duration,
	aggregateInterval time.Duration,
	finalizeCutoffHour int,
) *TimesheetJobs {
	return &TimesheetJobs{
		snapshots:          snapshots,
		aggregator:         aggregator,
		finalizer:          finalizer,
		snapshotInterval:   snapshotInterval,
		aggregateInterval:  aggregateInterval,
		finalizeCutoffHour: finalizeCutoffHour,
	}
}

func (j *TimesheetJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("drain_snapshot_refresh_queue", j.snapshotInterval, j.DrainSnapshotQueue)
	scheduler.AddJob("aggregate_monthly_timesheets", j.aggregateInterval, j.AggregateMonthly)
	scheduler.AddJob("finalize_daily_entries", 1*time.Hour, j.FinalizePreviousDay)
}

func (j *TimesheetJobs) DrainSnapshotQueue(ctx context.Context) error {
	if err := j.snapshots.ProcessQueue(ctx); err != nil {
		return fmt.Errorf("failed to drain snapshot refresh queue: %w", err)
	}
	return nil
}

func (j *TimesheetJobs) AggregateMonthly(ctx context.Context) error {
	if err := j.aggregator.Sweep(ctx); err != nil {
		return fmt.Errorf("failed to sweep monthly timesheets: %w", err)
	}
	return nil
}

// FinalizePreviousDay runs hourly but acts only during the cutoff hour,
// committing terminal statuses for the previous business day.
func (j *TimesheetJobs) FinalizePreviousDay(ctx context.Context) error {
	now := time.Now().UTC()
	if now.Hour() != j.finalizeCutoffHour {
		return nil
	}

	previous := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	slog.Info("Cron: Starting daily finalize job", "date", previous.Format("2006-01-02"))

	if err := j.finalizer.FinalizeDay(ctx, previous); err != nil {
		return fmt.Errorf("failed to finalize day %s: %w", previous.Format("2006-01-02"), err)
	}
	return nil
}
