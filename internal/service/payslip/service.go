package payslip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/contract"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/payslip"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/aura-hris/timesheet-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PayslipServiceImpl struct {
	db           *database.DB
	periodRepo   payslip.PeriodRepository
	slipRepo     payslip.SlipRepository
	monthlyRepo  timesheet.MonthlyRepository
	contractRepo contract.ContractRepository
	employeeRepo employee.EmployeeRepository

	// runTx wraps multi-write operations in one transaction.
	runTx func(ctx context.Context, fn func(tx pgx.Tx) error) error
}

func NewPayslipService(
	db *database.DB,
	periodRepo payslip.PeriodRepository,
	slipRepo payslip.SlipRepository,
	monthlyRepo timesheet.MonthlyRepository,
	contractRepo contract.ContractRepository,
	employeeRepo employee.EmployeeRepository,
) payslip.Service {
	s := &PayslipServiceImpl{
		db:           db,
		periodRepo:   periodRepo,
		slipRepo:     slipRepo,
		monthlyRepo:  monthlyRepo,
		contractRepo: contractRepo,
		employeeRepo: employeeRepo,
	}
	s.runTx = func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		return postgresql.WithTransaction(ctx, s.db, fn)
	}
	return s
}

// CreatePeriod implements payslip.Service.
func (s *PayslipServiceImpl) CreatePeriod(ctx context.Context, month string) (payslip.SalaryPeriod, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return payslip.SalaryPeriod{}, timesheet.ErrInvalidMonth
	}

	var period payslip.SalaryPeriod
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		existing, err := s.periodRepo.GetByMonth(txCtx, month)
		if err != nil {
			return fmt.Errorf("failed to check existing period: %w", err)
		}
		if existing != nil {
			return payslip.ErrPeriodAlreadyExists
		}

		open, err := s.periodRepo.CountOpenBefore(txCtx, month)
		if err != nil {
			return fmt.Errorf("failed to count open periods: %w", err)
		}
		if open > 0 {
			return payslip.ErrEarlierPeriodOpen
		}

		period, err = s.periodRepo.Create(txCtx, payslip.SalaryPeriod{
			Month:         month,
			Status:        payslip.PeriodStatusOngoing,
			PaymentTotal:  decimal.Zero,
			DeferredTotal: decimal.Zero,
		})
		if err != nil {
			return fmt.Errorf("failed to create period: %w", err)
		}

		employees, err := s.employeeRepo.ListActive(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list active employees: %w", err)
		}
		for _, emp := range employees {
			slip, err := s.slipRepo.Create(txCtx, payslip.Slip{
				EmployeeID:        emp.ID,
				SalaryPeriodID:    period.ID,
				Status:            payslip.SlipStatusPending,
				CompensationTotal: decimal.Zero,
			})
			if err != nil {
				return fmt.Errorf("failed to create slip for employee %s: %w", emp.ID, err)
			}
			if _, err := s.recomputeSlip(txCtx, slip, period); err != nil {
				return err
			}
		}

		return s.refreshPeriodStats(txCtx, &period)
	})
	if err != nil {
		return payslip.SalaryPeriod{}, err
	}
	return period, nil
}

// Recompute implements payslip.Service.
func (s *PayslipServiceImpl) Recompute(ctx context.Context, slipID string) (payslip.Slip, error) {
	slip, err := s.slipRepo.GetByID(ctx, slipID)
	if err != nil {
		return payslip.Slip{}, err
	}
	period, err := s.periodRepo.GetByID(ctx, slip.SalaryPeriodID)
	if err != nil {
		return payslip.Slip{}, err
	}

	slip, err = s.recomputeSlip(ctx, slip, period)
	if err != nil {
		return payslip.Slip{}, err
	}
	if err := s.refreshStatsForSlip(ctx, slip); err != nil {
		return payslip.Slip{}, err
	}
	return slip, nil
}

// recomputeSlip re-derives figures and status from the monthly rollup.
// DELIVERED slips are returned untouched. HOLD slips get fresh figures but
// keep their status; the hold wins over any computed state.
func (s *PayslipServiceImpl) recomputeSlip(ctx context.Context, slip payslip.Slip, period payslip.SalaryPeriod) (payslip.Slip, error) {
	if slip.Status == payslip.SlipStatusDelivered {
		return slip, nil
	}

	monthly, err := s.monthlyRepo.GetByEmployeeAndMonth(ctx, slip.EmployeeID, period.Month)
	if err != nil {
		return payslip.Slip{}, fmt.Errorf("failed to load monthly timesheet: %w", err)
	}

	var pendingReason *string
	switch {
	case monthly == nil:
		reason := "monthly timesheet missing"
		pendingReason = &reason
	case monthly.NeedRefresh:
		reason := "monthly timesheet aggregation pending"
		pendingReason = &reason
	default:
		slip.WorkingDays = monthly.WorkingDays
		slip.OvertimeTier1 = monthly.OvertimeTier1
		slip.OvertimeTier2 = monthly.OvertimeTier2
		slip.OvertimeTier3 = monthly.OvertimeTier3
		slip.PenaltyDays = monthly.PenaltyDays
		slip.CompensationTotal = monthly.CompensationTotal
	}

	if pendingReason == nil {
		lastDay, _ := time.Parse("2006-01", period.Month)
		lastDay = lastDay.AddDate(0, 1, -1)
		activeContract, err := s.contractRepo.GetActive(ctx, slip.EmployeeID, lastDay)
		if err != nil {
			return payslip.Slip{}, fmt.Errorf("failed to resolve contract: %w", err)
		}
		if activeContract == nil {
			reason := "no active contract for period"
			pendingReason = &reason
			slip.ContractNumber = nil
		} else {
			number := activeContract.Number
			slip.ContractNumber = &number
		}
	}

	if pendingReason == nil && slip.HasUnpaidPenalty() {
		reason := "unsettled attendance penalty"
		pendingReason = &reason
	}

	slip.PendingReason = pendingReason
	if slip.Status != payslip.SlipStatusHold {
		if pendingReason != nil {
			slip.Status = payslip.SlipStatusPending
		} else {
			slip.Status = payslip.SlipStatusReady
		}
	}

	// A slip turning READY after its period locked missed that period's
	// payment batch; route its payment to the current open period.
	if slip.Status == payslip.SlipStatusReady && slip.PaymentPeriodID == nil &&
		period.Status == payslip.PeriodStatusCompleted {
		ongoing, err := s.periodRepo.GetOngoing(ctx)
		switch {
		case err == nil:
			paymentPeriodID := ongoing.ID
			slip.PaymentPeriodID = &paymentPeriodID
		case errors.Is(err, payslip.ErrNoOngoingPeriod):
			// No open period yet; the next recompute routes it.
		default:
			return payslip.Slip{}, err
		}
	}

	if err := s.slipRepo.Update(ctx, slip); err != nil {
		return payslip.Slip{}, fmt.Errorf("failed to persist slip: %w", err)
	}
	return slip, nil
}

// RecomputePeriod implements payslip.Service.
func (s *PayslipServiceImpl) RecomputePeriod(ctx context.Context, periodID string) error {
	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return err
	}

	slips, err := s.slipRepo.ListByPeriod(ctx, periodID)
	if err != nil {
		return fmt.Errorf("failed to list slips: %w", err)
	}
	for _, slip := range slips {
		if slip.Status == payslip.SlipStatusDelivered {
			continue
		}
		if _, err := s.recomputeSlip(ctx, slip, period); err != nil {
			slog.Error("slip recompute failed",
				"slip_id", slip.ID, "employee_id", slip.EmployeeID, "error", err)
		}
	}
	return s.refreshPeriodStats(ctx, &period)
}

// Hold implements payslip.Service.
func (s *PayslipServiceImpl) Hold(ctx context.Context, req payslip.HoldRequest) (payslip.Slip, error) {
	if err := req.Validate(); err != nil {
		return payslip.Slip{}, err
	}

	slip, err := s.slipRepo.GetByID(ctx, req.SlipID)
	if err != nil {
		return payslip.Slip{}, err
	}
	switch slip.Status {
	case payslip.SlipStatusDelivered:
		return payslip.Slip{}, payslip.ErrSlipDelivered
	case payslip.SlipStatusHold:
		return payslip.Slip{}, payslip.ErrSlipNotHoldable
	}

	now := time.Now().UTC()
	reason := req.Reason
	heldBy := req.HeldBy
	slip.Status = payslip.SlipStatusHold
	slip.HoldReason = &reason
	slip.HeldAt = &now
	slip.HeldBy = &heldBy

	if err := s.slipRepo.Update(ctx, slip); err != nil {
		return payslip.Slip{}, fmt.Errorf("failed to persist slip: %w", err)
	}
	if err := s.refreshStatsForSlip(ctx, slip); err != nil {
		return payslip.Slip{}, err
	}
	return slip, nil
}

// Unhold implements payslip.Service.
//
// Releasing a hold after the owning period completed moves the slip's
// payment to the current ONGOING period; its salary period never changes.
func (s *PayslipServiceImpl) Unhold(ctx context.Context, slipID string) (payslip.Slip, error) {
	var slip payslip.Slip
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		var err error
		slip, err = s.slipRepo.GetByID(txCtx, slipID)
		if err != nil {
			return err
		}
		if slip.Status != payslip.SlipStatusHold {
			return payslip.ErrSlipNotOnHold
		}

		slip.HoldReason = nil
		slip.HeldAt = nil
		slip.HeldBy = nil
		slip.Status = payslip.SlipStatusPending

		owning, err := s.periodRepo.GetByID(txCtx, slip.SalaryPeriodID)
		if err != nil {
			return err
		}

		// recomputeSlip routes the payment to the open period when the
		// owning period is already completed.
		slip, err = s.recomputeSlip(txCtx, slip, owning)
		if err != nil {
			return err
		}
		return s.refreshStatsForSlip(txCtx, slip)
	})
	if err != nil {
		return payslip.Slip{}, err
	}
	return slip, nil
}

// SettlePenalty implements payslip.Service.
func (s *PayslipServiceImpl) SettlePenalty(ctx context.Context, slipID string) (payslip.Slip, error) {
	slip, err := s.slipRepo.GetByID(ctx, slipID)
	if err != nil {
		return payslip.Slip{}, err
	}
	if slip.Status == payslip.SlipStatusDelivered {
		return payslip.Slip{}, payslip.ErrSlipDelivered
	}
	if slip.PenaltySettledAt != nil {
		return payslip.Slip{}, payslip.ErrPenaltyAlreadySettled
	}

	now := time.Now().UTC()
	slip.PenaltySettledAt = &now
	if err := s.slipRepo.Update(ctx, slip); err != nil {
		return payslip.Slip{}, fmt.Errorf("failed to persist slip: %w", err)
	}
	return s.Recompute(ctx, slip.ID)
}

// Complete implements payslip.Service.
//
// Completion is all-or-nothing: either every READY slip is delivered and
// the period is COMPLETED, or nothing changes. PENDING and HOLD slips are
// left for a later period to pick up.
func (s *PayslipServiceImpl) Complete(ctx context.Context, periodID string) (payslip.SalaryPeriod, error) {
	var period payslip.SalaryPeriod
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		var err error
		period, err = s.periodRepo.GetByID(txCtx, periodID)
		if err != nil {
			return err
		}
		if period.Status == payslip.PeriodStatusCompleted {
			return payslip.ErrPeriodCompleted
		}

		now := time.Now().UTC()
		deliver := func(slip payslip.Slip) error {
			if slip.Status != payslip.SlipStatusReady {
				return nil
			}
			paymentPeriodID := period.ID
			slip.PaymentPeriodID = &paymentPeriodID
			slip.Status = payslip.SlipStatusDelivered
			slip.DeliveredAt = &now
			return s.slipRepo.Update(txCtx, slip)
		}

		own, err := s.slipRepo.ListByPeriod(txCtx, period.ID)
		if err != nil {
			return fmt.Errorf("failed to list slips: %w", err)
		}
		for _, slip := range own {
			if slip.PaymentPeriodID != nil && *slip.PaymentPeriodID != period.ID {
				// Already rerouted to a later payment period.
				continue
			}
			if err := deliver(slip); err != nil {
				return fmt.Errorf("failed to deliver slip %s: %w", slip.ID, err)
			}
		}

		// Carried-over slips from earlier periods queued for payment here.
		carried, err := s.slipRepo.ListByPaymentPeriod(txCtx, period.ID)
		if err != nil {
			return fmt.Errorf("failed to list carried-over slips: %w", err)
		}
		for _, slip := range carried {
			if slip.SalaryPeriodID == period.ID {
				continue
			}
			if err := deliver(slip); err != nil {
				return fmt.Errorf("failed to deliver carried-over slip %s: %w", slip.ID, err)
			}
		}

		period.Status = payslip.PeriodStatusCompleted
		period.CompletedAt = &now
		return s.refreshPeriodStats(txCtx, &period)
	})
	if err != nil {
		return payslip.SalaryPeriod{}, err
	}
	return period, nil
}

// Uncomplete implements payslip.Service.
//
// DELIVERED slips stay delivered; the payout already happened and undoing
// the period does not claw money back.
func (s *PayslipServiceImpl) Uncomplete(ctx context.Context, periodID string) (payslip.SalaryPeriod, error) {
	var period payslip.SalaryPeriod
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		var err error
		period, err = s.periodRepo.GetByID(txCtx, periodID)
		if err != nil {
			return err
		}
		if period.Status != payslip.PeriodStatusCompleted {
			return payslip.ErrPeriodNotCompleted
		}

		later, err := s.periodRepo.ExistsLaterThan(txCtx, period.Month)
		if err != nil {
			return fmt.Errorf("failed to check later periods: %w", err)
		}
		if later {
			return payslip.ErrNewerPeriodExists
		}

		period.Status = payslip.PeriodStatusOngoing
		period.CompletedAt = nil
		return s.refreshPeriodStats(txCtx, &period)
	})
	if err != nil {
		return payslip.SalaryPeriod{}, err
	}
	return period, nil
}

// GetSlip implements payslip.Service.
func (s *PayslipServiceImpl) GetSlip(ctx context.Context, slipID string) (payslip.Slip, error) {
	return s.slipRepo.GetByID(ctx, slipID)
}

// ListSlips implements payslip.Service.
func (s *PayslipServiceImpl) ListSlips(ctx context.Context, periodID string) ([]payslip.Slip, error) {
	if _, err := s.periodRepo.GetByID(ctx, periodID); err != nil {
		return nil, err
	}
	return s.slipRepo.ListByPeriod(ctx, periodID)
}

// PaymentTable implements payslip.Service: slips actually paid or being
// paid in this period. While the period is ONGOING those are the READY
// slips queued for its batch; once COMPLETED, the DELIVERED slips whose
// payment period matches.
func (s *PayslipServiceImpl) PaymentTable(ctx context.Context, periodID string) ([]payslip.Slip, error) {
	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	wanted := payslip.SlipStatusReady
	if period.Status == payslip.PeriodStatusCompleted {
		wanted = payslip.SlipStatusDelivered
	}

	routed, err := s.slipRepo.ListByPaymentPeriod(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment slips: %w", err)
	}
	payment := make([]payslip.Slip, 0, len(routed))
	seen := make(map[string]struct{}, len(routed))
	for _, slip := range routed {
		if slip.Status == wanted {
			payment = append(payment, slip)
			seen[slip.ID] = struct{}{}
		}
	}

	// Own slips without an explicit payment period pay here by default.
	own, err := s.slipRepo.ListByPeriod(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slips: %w", err)
	}
	for _, slip := range own {
		if _, ok := seen[slip.ID]; ok {
			continue
		}
		if slip.PaymentPeriodID == nil && slip.Status == wanted {
			payment = append(payment, slip)
		}
	}
	return payment, nil
}

// DeferredTable implements payslip.Service: the period's own slips not
// paid in it. PENDING and HOLD always defer; READY defers once the period
// completed (the slip became ready after lock and pays in a later batch);
// carried-over slips stay visible here regardless of status.
func (s *PayslipServiceImpl) DeferredTable(ctx context.Context, periodID string) ([]payslip.Slip, error) {
	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	own, err := s.slipRepo.ListByPeriod(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slips: %w", err)
	}
	deferred := make([]payslip.Slip, 0)
	for _, slip := range own {
		switch {
		case slip.Status == payslip.SlipStatusPending || slip.Status == payslip.SlipStatusHold:
			deferred = append(deferred, slip)
		case slip.CarriedOver():
			deferred = append(deferred, slip)
		case period.Status == payslip.PeriodStatusCompleted && slip.Status == payslip.SlipStatusReady:
			deferred = append(deferred, slip)
		}
	}
	return deferred, nil
}

// GetPeriod implements payslip.Service.
func (s *PayslipServiceImpl) GetPeriod(ctx context.Context, periodID string) (payslip.SalaryPeriod, error) {
	return s.periodRepo.GetByID(ctx, periodID)
}

// ListPeriods implements payslip.Service.
func (s *PayslipServiceImpl) ListPeriods(ctx context.Context) ([]payslip.SalaryPeriod, error) {
	return s.periodRepo.List(ctx)
}

func (s *PayslipServiceImpl) refreshStatsForSlip(ctx context.Context, slip payslip.Slip) error {
	period, err := s.periodRepo.GetByID(ctx, slip.SalaryPeriodID)
	if err != nil {
		return err
	}
	if err := s.refreshPeriodStats(ctx, &period); err != nil {
		return err
	}
	if slip.PaymentPeriodID != nil && *slip.PaymentPeriodID != period.ID {
		paying, err := s.periodRepo.GetByID(ctx, *slip.PaymentPeriodID)
		if err != nil {
			return err
		}
		return s.refreshPeriodStats(ctx, &paying)
	}
	return nil
}

// refreshPeriodStats recomputes the two summary views and persists the
// period. Mutates the argument so callers return fresh stats.
func (s *PayslipServiceImpl) refreshPeriodStats(ctx context.Context, period *payslip.SalaryPeriod) error {
	payment, err := s.PaymentTable(ctx, period.ID)
	if err != nil {
		return err
	}
	deferred, err := s.DeferredTable(ctx, period.ID)
	if err != nil {
		return err
	}

	period.PaymentCount = len(payment)
	period.PaymentTotal = decimal.Zero
	for _, slip := range payment {
		period.PaymentTotal = period.PaymentTotal.Add(slip.CompensationTotal)
	}
	period.DeferredCount = len(deferred)
	period.DeferredTotal = decimal.Zero
	for _, slip := range deferred {
		period.DeferredTotal = period.DeferredTotal.Add(slip.CompensationTotal)
	}

	if err := s.periodRepo.Update(ctx, *period); err != nil {
		return fmt.Errorf("failed to persist period stats: %w", err)
	}
	return nil
}
