package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/payslip"
)

type PayslipJobs struct {
	payslipSvc payslip.Service
	periodRepo payslip.PeriodRepository

	sweepInterval time.Duration
}

func NewPayslipJobs(payslipSvc payslip.Service, periodRepo payslip.PeriodRepository, sweepInterval time.Duration) *PayslipJobs {
	return &PayslipJobs{
		payslipSvc:    payslipSvc,
		periodRepo:    periodRepo,
		sweepInterval: sweepInterval,
	}
}

func (j *PayslipJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("recompute_ongoing_payroll_slips", j.sweepInterval, j.RecomputeOngoingPeriod)
}

// RecomputeOngoingPeriod keeps the open period's slips in step with the
// monthly rollups: slips flip between PENDING and READY as aggregation
// catches up, holds and deliveries are left alone.
func (j *PayslipJobs) RecomputeOngoingPeriod(ctx context.Context) error {
	period, err := j.periodRepo.GetOngoing(ctx)
	if err != nil {
		if errors.Is(err, payslip.ErrNoOngoingPeriod) {
			return nil
		}
		return fmt.Errorf("failed to get ongoing period: %w", err)
	}

	if err := j.payslipSvc.RecomputePeriod(ctx, period.ID); err != nil {
		return fmt.Errorf("failed to recompute period %s: %w", period.Month, err)
	}
	return nil
}
