package payslip

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/contract"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/payslip"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePeriodRepo struct {
	periods map[string]payslip.SalaryPeriod
}

func (f *fakePeriodRepo) Create(_ context.Context, period payslip.SalaryPeriod) (payslip.SalaryPeriod, error) {
	period.ID = uuid.NewString()
	f.periods[period.ID] = period
	return period, nil
}

func (f *fakePeriodRepo) GetByID(_ context.Context, id string) (payslip.SalaryPeriod, error) {
	period, ok := f.periods[id]
	if !ok {
		return payslip.SalaryPeriod{}, payslip.ErrPeriodNotFound
	}
	return period, nil
}

func (f *fakePeriodRepo) GetByMonth(_ context.Context, month string) (*payslip.SalaryPeriod, error) {
	for _, period := range f.periods {
		if period.Month == month {
			p := period
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakePeriodRepo) GetOngoing(_ context.Context) (payslip.SalaryPeriod, error) {
	var candidates []payslip.SalaryPeriod
	for _, period := range f.periods {
		if period.Status == payslip.PeriodStatusOngoing {
			candidates = append(candidates, period)
		}
	}
	if len(candidates) == 0 {
		return payslip.SalaryPeriod{}, payslip.ErrNoOngoingPeriod
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Month > candidates[j].Month })
	return candidates[0], nil
}

func (f *fakePeriodRepo) ExistsLaterThan(_ context.Context, month string) (bool, error) {
	for _, period := range f.periods {
		if period.Month > month {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePeriodRepo) CountOpenBefore(_ context.Context, month string) (int, error) {
	n := 0
	for _, period := range f.periods {
		if period.Month < month && period.Status != payslip.PeriodStatusCompleted {
			n++
		}
	}
	return n, nil
}

func (f *fakePeriodRepo) Update(_ context.Context, period payslip.SalaryPeriod) error {
	if _, ok := f.periods[period.ID]; !ok {
		return payslip.ErrPeriodNotFound
	}
	f.periods[period.ID] = period
	return nil
}

func (f *fakePeriodRepo) List(_ context.Context) ([]payslip.SalaryPeriod, error) {
	var out []payslip.SalaryPeriod
	for _, period := range f.periods {
		out = append(out, period)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

type fakeSlipRepo struct {
	slips map[string]payslip.Slip
	order []string
}

func (f *fakeSlipRepo) Create(_ context.Context, slip payslip.Slip) (payslip.Slip, error) {
	slip.ID = uuid.NewString()
	f.slips[slip.ID] = slip
	f.order = append(f.order, slip.ID)
	return slip, nil
}

func (f *fakeSlipRepo) GetByID(_ context.Context, id string) (payslip.Slip, error) {
	slip, ok := f.slips[id]
	if !ok {
		return payslip.Slip{}, payslip.ErrSlipNotFound
	}
	return slip, nil
}

func (f *fakeSlipRepo) GetByEmployeeAndPeriod(_ context.Context, employeeID string, periodID string) (*payslip.Slip, error) {
	for _, id := range f.order {
		slip := f.slips[id]
		if slip.EmployeeID == employeeID && slip.SalaryPeriodID == periodID {
			return &slip, nil
		}
	}
	return nil, nil
}

func (f *fakeSlipRepo) Update(_ context.Context, slip payslip.Slip) error {
	if _, ok := f.slips[slip.ID]; !ok {
		return payslip.ErrSlipNotFound
	}
	f.slips[slip.ID] = slip
	return nil
}

func (f *fakeSlipRepo) ListByPeriod(_ context.Context, periodID string) ([]payslip.Slip, error) {
	var out []payslip.Slip
	for _, id := range f.order {
		if f.slips[id].SalaryPeriodID == periodID {
			out = append(out, f.slips[id])
		}
	}
	return out, nil
}

func (f *fakeSlipRepo) ListByPaymentPeriod(_ context.Context, periodID string) ([]payslip.Slip, error) {
	var out []payslip.Slip
	for _, id := range f.order {
		slip := f.slips[id]
		if slip.PaymentPeriodID != nil && *slip.PaymentPeriodID == periodID {
			out = append(out, slip)
		}
	}
	return out, nil
}

type fakeMonthlyRepo struct {
	monthlies map[string]timesheet.MonthlyTimesheet // employeeID|month
}

func (f *fakeMonthlyRepo) GetByEmployeeAndMonth(_ context.Context, employeeID string, month string) (*timesheet.MonthlyTimesheet, error) {
	monthly, ok := f.monthlies[employeeID+"|"+month]
	if !ok {
		return nil, nil
	}
	return &monthly, nil
}

func (f *fakeMonthlyRepo) Create(_ context.Context, monthly timesheet.MonthlyTimesheet) (timesheet.MonthlyTimesheet, error) {
	monthly.ID = uuid.NewString()
	f.monthlies[monthly.EmployeeID+"|"+monthly.Month] = monthly
	return monthly, nil
}

func (f *fakeMonthlyRepo) Update(_ context.Context, monthly timesheet.MonthlyTimesheet) error {
	f.monthlies[monthly.EmployeeID+"|"+monthly.Month] = monthly
	return nil
}

func (f *fakeMonthlyRepo) MarkNeedRefresh(_ context.Context, employeeID string, month string) error {
	monthly := f.monthlies[employeeID+"|"+month]
	monthly.EmployeeID = employeeID
	monthly.Month = month
	monthly.NeedRefresh = true
	f.monthlies[employeeID+"|"+month] = monthly
	return nil
}

func (f *fakeMonthlyRepo) ListNeedingRefresh(_ context.Context, limit int) ([]timesheet.MonthlyTimesheet, error) {
	return nil, nil
}

func (f *fakeMonthlyRepo) ListStuck(_ context.Context, minAttempts int) ([]timesheet.MonthlyTimesheet, error) {
	return nil, nil
}

type fakeContractRepo struct {
	contracts []contract.Contract
}

func (f *fakeContractRepo) GetActive(_ context.Context, employeeID string, date time.Time) (*contract.Contract, error) {
	for _, c := range f.contracts {
		if c.EmployeeID == employeeID && c.ActiveOn(date) {
			active := c
			return &active, nil
		}
	}
	return nil, nil
}

type fakeEmployeeRepo struct {
	active []employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	for _, emp := range f.active {
		if emp.ID == id {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByCode(_ context.Context, code string) (employee.Employee, error) {
	for _, emp := range f.active {
		if emp.Code == code {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	return f.active, nil
}

type fixture struct {
	periodRepo   *fakePeriodRepo
	slipRepo     *fakeSlipRepo
	monthlyRepo  *fakeMonthlyRepo
	contractRepo *fakeContractRepo
	employeeRepo *fakeEmployeeRepo
	svc          *PayslipServiceImpl
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	periodRepo := &fakePeriodRepo{periods: make(map[string]payslip.SalaryPeriod)}
	slipRepo := &fakeSlipRepo{slips: make(map[string]payslip.Slip)}
	monthlyRepo := &fakeMonthlyRepo{monthlies: make(map[string]timesheet.MonthlyTimesheet)}
	contractRepo := &fakeContractRepo{}
	employeeRepo := &fakeEmployeeRepo{active: []employee.Employee{
		{ID: "emp-1", Code: "2023-0001", Status: employee.EmploymentStatusActive},
		{ID: "emp-2", Code: "2023-0002", Status: employee.EmploymentStatusActive},
	}}

	svc := &PayslipServiceImpl{
		periodRepo:   periodRepo,
		slipRepo:     slipRepo,
		monthlyRepo:  monthlyRepo,
		contractRepo: contractRepo,
		employeeRepo: employeeRepo,
	}
	svc.runTx = func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		return fn(nil)
	}

	return fixture{
		periodRepo:   periodRepo,
		slipRepo:     slipRepo,
		monthlyRepo:  monthlyRepo,
		contractRepo: contractRepo,
		employeeRepo: employeeRepo,
		svc:          svc,
	}
}

func (f fixture) seedPeriod(t *testing.T, month string, status payslip.PeriodStatus) payslip.SalaryPeriod {
	t.Helper()
	period, err := f.periodRepo.Create(context.Background(), payslip.SalaryPeriod{
		Month:         month,
		Status:        status,
		PaymentTotal:  decimal.Zero,
		DeferredTotal: decimal.Zero,
	})
	require.NoError(t, err)
	return period
}

func (f fixture) seedSlip(t *testing.T, slip payslip.Slip) payslip.Slip {
	t.Helper()
	created, err := f.slipRepo.Create(context.Background(), slip)
	require.NoError(t, err)
	return created
}

func (f fixture) seedCleanMonthly(employeeID, month string) {
	f.monthlies()[employeeID+"|"+month] = timesheet.MonthlyTimesheet{
		EmployeeID:        employeeID,
		Month:             month,
		WorkingDays:       21.5,
		OvertimeTier1:     4,
		CompensationTotal: decimal.NewFromInt(8600000),
	}
}

func (f fixture) monthlies() map[string]timesheet.MonthlyTimesheet {
	return f.monthlyRepo.monthlies
}

func (f fixture) seedContract(t *testing.T, employeeID string) {
	t.Helper()
	start, err := time.Parse("2006-01-02", "2024-01-01")
	require.NoError(t, err)
	f.contractRepo.contracts = append(f.contractRepo.contracts, contract.Contract{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Number:     "K-2024-007",
		StartDate:  start,
	})
}

func TestRecomputeReadyWhenRollupClean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusPending, CompensationTotal: decimal.Zero,
	})
	f.seedCleanMonthly("emp-1", "2025-03")
	f.seedContract(t, "emp-1")

	got, err := f.svc.Recompute(ctx, slip.ID)
	require.NoError(t, err)

	assert.Equal(t, payslip.SlipStatusReady, got.Status)
	assert.Nil(t, got.PendingReason)
	assert.Equal(t, 21.5, got.WorkingDays)
	assert.Equal(t, 4.0, got.OvertimeTier1)
	assert.True(t, got.CompensationTotal.Equal(decimal.NewFromInt(8600000)))
	require.NotNil(t, got.ContractNumber)
	assert.Equal(t, "K-2024-007", *got.ContractNumber)

	updated, err := f.periodRepo.GetByID(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.PaymentCount)
	assert.True(t, updated.PaymentTotal.Equal(decimal.NewFromInt(8600000)))
}

func TestRecomputePendingWhenRollupMissing(t *testing.T) {
	f := newFixture(t)
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusPending, CompensationTotal: decimal.Zero,
	})

	got, err := f.svc.Recompute(context.Background(), slip.ID)
	require.NoError(t, err)

	assert.Equal(t, payslip.SlipStatusPending, got.Status)
	require.NotNil(t, got.PendingReason)
	assert.Equal(t, "monthly timesheet missing", *got.PendingReason)
}

func TestRecomputePendingWhileAggregationDirty(t *testing.T) {
	f := newFixture(t)
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusPending, CompensationTotal: decimal.Zero,
	})
	f.seedCleanMonthly("emp-1", "2025-03")
	monthly := f.monthlies()["emp-1|2025-03"]
	monthly.NeedRefresh = true
	f.monthlies()["emp-1|2025-03"] = monthly

	got, err := f.svc.Recompute(context.Background(), slip.ID)
	require.NoError(t, err)

	assert.Equal(t, payslip.SlipStatusPending, got.Status)
	require.NotNil(t, got.PendingReason)
	assert.Equal(t, "monthly timesheet aggregation pending", *got.PendingReason)
	// stale figures are not copied from a dirty rollup
	assert.Zero(t, got.WorkingDays)
}

func TestRecomputePendingWithoutContract(t *testing.T) {
	f := newFixture(t)
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusPending, CompensationTotal: decimal.Zero,
	})
	f.seedCleanMonthly("emp-1", "2025-03")

	got, err := f.svc.Recompute(context.Background(), slip.ID)
	require.NoError(t, err)

	assert.Equal(t, payslip.SlipStatusPending, got.Status)
	require.NotNil(t, got.PendingReason)
	assert.Equal(t, "no active contract for period", *got.PendingReason)
}

func TestRecomputePendingWithUnpaidPenalty(t *testing.T) {
	f := newFixture(t)
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusPending, CompensationTotal: decimal.Zero,
	})
	f.seedCleanMonthly("emp-1", "2025-03")
	monthly := f.monthlies()["emp-1|2025-03"]
	monthly.PenaltyDays = 2
	f.monthlies()["emp-1|2025-03"] = monthly
	f.seedContract(t, "emp-1")

	got, err := f.svc.Recompute(context.Background(), slip.ID)
	require.NoError(t, err)

	assert.Equal(t, payslip.SlipStatusPending, got.Status)
	require.NotNil(t, got.PendingReason)
	assert.Equal(t, "unsettled attendance penalty", *got.PendingReason)
	assert.Equal(t, 2, got.PenaltyDays)
}

func TestRecomputeDeliveredIsImmutable(t *testing.T) {
	f := newFixture(t)
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	deliveredAt := time.Now().UTC()
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status:            payslip.SlipStatusDelivered,
		DeliveredAt:       &deliveredAt,
		WorkingDays:       20,
		CompensationTotal: decimal.NewFromInt(8000000),
	})
	// a later rollup change must not rewrite a delivered slip
	f.seedCleanMonthly("emp-1", "2025-03")
	f.seedContract(t, "emp-1")

	got, err := f.svc.Recompute(context.Background(), slip.ID)
	require.NoError(t, err)

	assert.Equal(t, payslip.SlipStatusDelivered, got.Status)
	assert.Equal(t, 20.0, got.WorkingDays)
	assert.True(t, got.CompensationTotal.Equal(decimal.NewFromInt(8000000)))
}

func TestRecomputeHoldKeepsHoldStatus(t *testing.T) {
	f := newFixture(t)
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	reason := "bank account under verification"
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusHold, HoldReason: &reason,
		CompensationTotal: decimal.Zero,
	})
	f.seedCleanMonthly("emp-1", "2025-03")
	f.seedContract(t, "emp-1")

	got, err := f.svc.Recompute(context.Background(), slip.ID)
	require.NoError(t, err)

	// fresh figures, but the hold wins over the computed state
	assert.Equal(t, payslip.SlipStatusHold, got.Status)
	assert.Equal(t, 21.5, got.WorkingDays)
}

func TestHoldTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status:            payslip.SlipStatusReady,
		CompensationTotal: decimal.NewFromInt(8600000),
	})

	got, err := f.svc.Hold(ctx, payslip.HoldRequest{
		SlipID: slip.ID, Reason: "pending dispute", HeldBy: "user-7",
	})
	require.NoError(t, err)

	assert.Equal(t, payslip.SlipStatusHold, got.Status)
	require.NotNil(t, got.HoldReason)
	assert.Equal(t, "pending dispute", *got.HoldReason)
	require.NotNil(t, got.HeldBy)
	assert.Equal(t, "user-7", *got.HeldBy)
	assert.NotNil(t, got.HeldAt)

	// the held slip moves from the payment view to the deferred view
	updated, err := f.periodRepo.GetByID(ctx, period.ID)
	require.NoError(t, err)
	assert.Zero(t, updated.PaymentCount)
	assert.Equal(t, 1, updated.DeferredCount)
	assert.True(t, updated.DeferredTotal.Equal(decimal.NewFromInt(8600000)))
}

func TestHoldRequiresReason(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Hold(context.Background(), payslip.HoldRequest{SlipID: "s-1", Reason: "   "})
	assert.ErrorIs(t, err, payslip.ErrHoldReasonRequired)
}

func TestHoldRejectsDeliveredAndHeld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)

	delivered := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusDelivered, CompensationTotal: decimal.Zero,
	})
	_, err := f.svc.Hold(ctx, payslip.HoldRequest{SlipID: delivered.ID, Reason: "too late"})
	assert.ErrorIs(t, err, payslip.ErrSlipDelivered)

	held := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-2", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusHold, CompensationTotal: decimal.Zero,
	})
	_, err = f.svc.Hold(ctx, payslip.HoldRequest{SlipID: held.ID, Reason: "twice"})
	assert.ErrorIs(t, err, payslip.ErrSlipNotHoldable)
}

func TestSettlePenaltyUnblocksSlip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	reason := "unsettled attendance penalty"
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusPending, PendingReason: &reason,
		PenaltyDays: 2, CompensationTotal: decimal.Zero,
	})
	f.seedCleanMonthly("emp-1", "2025-03")
	monthly := f.monthlies()["emp-1|2025-03"]
	monthly.PenaltyDays = 2
	f.monthlies()["emp-1|2025-03"] = monthly
	f.seedContract(t, "emp-1")

	got, err := f.svc.SettlePenalty(ctx, slip.ID)
	require.NoError(t, err)

	assert.NotNil(t, got.PenaltySettledAt)
	assert.Equal(t, payslip.SlipStatusReady, got.Status)
	assert.Nil(t, got.PendingReason)

	_, err = f.svc.SettlePenalty(ctx, slip.ID)
	assert.ErrorIs(t, err, payslip.ErrPenaltyAlreadySettled)
}

func TestSettlePenaltyRejectsDelivered(t *testing.T) {
	f := newFixture(t)
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusDelivered, CompensationTotal: decimal.Zero,
	})

	_, err := f.svc.SettlePenalty(context.Background(), slip.ID)
	assert.ErrorIs(t, err, payslip.ErrSlipDelivered)
}

func TestPaymentAndDeferredTables(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	january := f.seedPeriod(t, "2025-01", payslip.PeriodStatusCompleted)
	february := f.seedPeriod(t, "2025-02", payslip.PeriodStatusOngoing)

	ready := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: february.ID,
		Status: payslip.SlipStatusReady, CompensationTotal: decimal.NewFromInt(8600000),
	})
	held := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-2", SalaryPeriodID: february.ID,
		Status: payslip.SlipStatusHold, CompensationTotal: decimal.NewFromInt(5000000),
	})
	pending := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-4", SalaryPeriodID: february.ID,
		Status: payslip.SlipStatusPending, CompensationTotal: decimal.Zero,
	})
	// january slip released from hold after completion, paying in february
	februaryID := february.ID
	carried := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-3", SalaryPeriodID: january.ID, PaymentPeriodID: &februaryID,
		Status: payslip.SlipStatusReady, CompensationTotal: decimal.NewFromInt(7000000),
	})

	payment, err := f.svc.PaymentTable(ctx, february.ID)
	require.NoError(t, err)
	require.Len(t, payment, 2)
	ids := []string{payment[0].ID, payment[1].ID}
	assert.Contains(t, ids, ready.ID)
	assert.Contains(t, ids, carried.ID)

	// held and pending slips defer, in seed order
	deferred, err := f.svc.DeferredTable(ctx, february.ID)
	require.NoError(t, err)
	require.Len(t, deferred, 2)
	assert.Equal(t, held.ID, deferred[0].ID)
	assert.Equal(t, pending.ID, deferred[1].ID)

	januaryDeferred, err := f.svc.DeferredTable(ctx, january.ID)
	require.NoError(t, err)
	require.Len(t, januaryDeferred, 1)
	assert.Equal(t, carried.ID, januaryDeferred[0].ID)
	assert.True(t, januaryDeferred[0].CarriedOver())

	// nothing was delivered in january yet
	januaryPayment, err := f.svc.PaymentTable(ctx, january.ID)
	require.NoError(t, err)
	assert.Empty(t, januaryPayment)
}

func TestCompletedPeriodTables(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	period := f.seedPeriod(t, "2025-01", payslip.PeriodStatusCompleted)

	deliveredAt := time.Now().UTC()
	periodID := period.ID
	delivered := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID, PaymentPeriodID: &periodID,
		Status: payslip.SlipStatusDelivered, DeliveredAt: &deliveredAt,
		CompensationTotal: decimal.NewFromInt(8600000),
	})
	// became ready only after the lock; pays in a later period
	lateReady := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-2", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusReady, CompensationTotal: decimal.NewFromInt(5000000),
	})

	payment, err := f.svc.PaymentTable(ctx, period.ID)
	require.NoError(t, err)
	require.Len(t, payment, 1)
	assert.Equal(t, delivered.ID, payment[0].ID)

	deferred, err := f.svc.DeferredTable(ctx, period.ID)
	require.NoError(t, err)
	require.Len(t, deferred, 1)
	assert.Equal(t, lateReady.ID, deferred[0].ID)
}

func TestRecomputePeriodRefreshesEverySlip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	first := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusPending, CompensationTotal: decimal.Zero,
	})
	second := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-2", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusPending, CompensationTotal: decimal.Zero,
	})
	f.seedCleanMonthly("emp-1", "2025-03")
	f.seedContract(t, "emp-1")

	require.NoError(t, f.svc.RecomputePeriod(ctx, period.ID))

	got, err := f.slipRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.SlipStatusReady, got.Status)

	got, err = f.slipRepo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.SlipStatusPending, got.Status)
	require.NotNil(t, got.PendingReason)
	assert.Equal(t, "monthly timesheet missing", *got.PendingReason)

	// only the ready slip is queued for payment; the pending one defers
	updated, err := f.periodRepo.GetByID(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.PaymentCount)
	assert.True(t, updated.PaymentTotal.Equal(decimal.NewFromInt(8600000)))
	assert.Equal(t, 1, updated.DeferredCount)
}

func TestListSlipsUnknownPeriod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListSlips(context.Background(), "missing")
	assert.ErrorIs(t, err, payslip.ErrPeriodNotFound)
}

func TestSettlePenaltyAfterPeriodCompletedCarriesOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	january := f.seedPeriod(t, "2025-01", payslip.PeriodStatusCompleted)
	february := f.seedPeriod(t, "2025-02", payslip.PeriodStatusOngoing)

	reason := "unsettled attendance penalty"
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: january.ID,
		Status: payslip.SlipStatusPending, PendingReason: &reason,
		PenaltyDays: 2, CompensationTotal: decimal.Zero,
	})
	f.seedCleanMonthly("emp-1", "2025-01")
	monthly := f.monthlies()["emp-1|2025-01"]
	monthly.PenaltyDays = 2
	f.monthlies()["emp-1|2025-01"] = monthly
	f.seedContract(t, "emp-1")

	got, err := f.svc.SettlePenalty(ctx, slip.ID)
	require.NoError(t, err)

	// ready after its period locked, so payment moves to the open period
	assert.Equal(t, payslip.SlipStatusReady, got.Status)
	require.NotNil(t, got.PaymentPeriodID)
	assert.Equal(t, february.ID, *got.PaymentPeriodID)
	assert.True(t, got.CarriedOver())

	payment, err := f.svc.PaymentTable(ctx, february.ID)
	require.NoError(t, err)
	require.Len(t, payment, 1)
	assert.Equal(t, slip.ID, payment[0].ID)

	deferred, err := f.svc.DeferredTable(ctx, january.ID)
	require.NoError(t, err)
	require.Len(t, deferred, 1)
	assert.Equal(t, slip.ID, deferred[0].ID)

	updatedJanuary, err := f.periodRepo.GetByID(ctx, january.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updatedJanuary.DeferredCount)
	updatedFebruary, err := f.periodRepo.GetByID(ctx, february.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updatedFebruary.PaymentCount)
	assert.True(t, updatedFebruary.PaymentTotal.Equal(decimal.NewFromInt(8600000)))
}

func TestUnholdRecomputesHeldSlip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	reason := "bank account under verification"
	heldAt := time.Now().UTC()
	heldBy := "user-7"
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusHold, HoldReason: &reason,
		HeldAt: &heldAt, HeldBy: &heldBy,
		CompensationTotal: decimal.Zero,
	})
	f.seedCleanMonthly("emp-1", "2025-03")
	f.seedContract(t, "emp-1")

	got, err := f.svc.Unhold(ctx, slip.ID)
	require.NoError(t, err)

	assert.Equal(t, payslip.SlipStatusReady, got.Status)
	assert.Nil(t, got.HoldReason)
	assert.Nil(t, got.HeldAt)
	assert.Nil(t, got.HeldBy)
	// owning period still open, so the payment stays home
	assert.Nil(t, got.PaymentPeriodID)
	assert.Equal(t, 21.5, got.WorkingDays)
}

func TestUnholdRejectsNotHeld(t *testing.T) {
	f := newFixture(t)
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID,
		Status: payslip.SlipStatusReady, CompensationTotal: decimal.Zero,
	})

	_, err := f.svc.Unhold(context.Background(), slip.ID)
	assert.ErrorIs(t, err, payslip.ErrSlipNotOnHold)
}

func TestUnholdAfterCompletionCarriesOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	january := f.seedPeriod(t, "2025-01", payslip.PeriodStatusCompleted)
	february := f.seedPeriod(t, "2025-02", payslip.PeriodStatusOngoing)

	reason := "document check"
	slip := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: january.ID,
		Status: payslip.SlipStatusHold, HoldReason: &reason,
		CompensationTotal: decimal.Zero,
	})
	f.seedCleanMonthly("emp-1", "2025-01")
	f.seedContract(t, "emp-1")

	got, err := f.svc.Unhold(ctx, slip.ID)
	require.NoError(t, err)

	assert.Equal(t, payslip.SlipStatusReady, got.Status)
	require.NotNil(t, got.PaymentPeriodID)
	assert.Equal(t, february.ID, *got.PaymentPeriodID)

	payment, err := f.svc.PaymentTable(ctx, february.ID)
	require.NoError(t, err)
	require.Len(t, payment, 1)
	assert.Equal(t, slip.ID, payment[0].ID)

	deferred, err := f.svc.DeferredTable(ctx, january.ID)
	require.NoError(t, err)
	require.Len(t, deferred, 1)
	assert.Equal(t, slip.ID, deferred[0].ID)
}

func TestCompleteDeliversReadySlips(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	january := f.seedPeriod(t, "2025-01", payslip.PeriodStatusCompleted)
	february := f.seedPeriod(t, "2025-02", payslip.PeriodStatusOngoing)

	ready := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: february.ID,
		Status: payslip.SlipStatusReady, CompensationTotal: decimal.NewFromInt(8600000),
	})
	pending := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-2", SalaryPeriodID: february.ID,
		Status: payslip.SlipStatusPending, CompensationTotal: decimal.Zero,
	})
	holdReason := "dispute"
	held := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-3", SalaryPeriodID: february.ID,
		Status: payslip.SlipStatusHold, HoldReason: &holdReason,
		CompensationTotal: decimal.NewFromInt(5000000),
	})
	februaryID := february.ID
	carried := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-4", SalaryPeriodID: january.ID, PaymentPeriodID: &februaryID,
		Status: payslip.SlipStatusReady, CompensationTotal: decimal.NewFromInt(7000000),
	})

	period, err := f.svc.Complete(ctx, february.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.PeriodStatusCompleted, period.Status)
	assert.NotNil(t, period.CompletedAt)

	got, err := f.slipRepo.GetByID(ctx, ready.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.SlipStatusDelivered, got.Status)
	require.NotNil(t, got.PaymentPeriodID)
	assert.Equal(t, february.ID, *got.PaymentPeriodID)
	assert.NotNil(t, got.DeliveredAt)

	got, err = f.slipRepo.GetByID(ctx, carried.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.SlipStatusDelivered, got.Status)

	// pending and held slips wait for a later batch
	got, err = f.slipRepo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.SlipStatusPending, got.Status)
	got, err = f.slipRepo.GetByID(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.SlipStatusHold, got.Status)

	assert.Equal(t, 2, period.PaymentCount)
	assert.True(t, period.PaymentTotal.Equal(decimal.NewFromInt(15600000)))
	assert.Equal(t, 2, period.DeferredCount)
	assert.True(t, period.DeferredTotal.Equal(decimal.NewFromInt(5000000)))
}

func TestCompleteRejectsCompletedPeriod(t *testing.T) {
	f := newFixture(t)
	period := f.seedPeriod(t, "2025-01", payslip.PeriodStatusCompleted)

	_, err := f.svc.Complete(context.Background(), period.ID)
	assert.ErrorIs(t, err, payslip.ErrPeriodCompleted)
}

func TestUncompleteRevertsPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	completedAt := time.Now().UTC()
	period, err := f.periodRepo.Create(ctx, payslip.SalaryPeriod{
		Month:  "2025-01",
		Status: payslip.PeriodStatusCompleted, CompletedAt: &completedAt,
		PaymentTotal: decimal.Zero, DeferredTotal: decimal.Zero,
	})
	require.NoError(t, err)
	periodID := period.ID
	deliveredAt := time.Now().UTC()
	delivered := f.seedSlip(t, payslip.Slip{
		EmployeeID: "emp-1", SalaryPeriodID: period.ID, PaymentPeriodID: &periodID,
		Status: payslip.SlipStatusDelivered, DeliveredAt: &deliveredAt,
		CompensationTotal: decimal.NewFromInt(8600000),
	})

	got, err := f.svc.Uncomplete(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.PeriodStatusOngoing, got.Status)
	assert.Nil(t, got.CompletedAt)

	// the payout already happened; reopening never claws it back
	slip, err := f.slipRepo.GetByID(ctx, delivered.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.SlipStatusDelivered, slip.Status)
	assert.NotNil(t, slip.DeliveredAt)
}

func TestUncompleteRejectsWhenLaterPeriodExists(t *testing.T) {
	f := newFixture(t)
	january := f.seedPeriod(t, "2025-01", payslip.PeriodStatusCompleted)
	f.seedPeriod(t, "2025-02", payslip.PeriodStatusOngoing)

	_, err := f.svc.Uncomplete(context.Background(), january.ID)
	assert.ErrorIs(t, err, payslip.ErrNewerPeriodExists)
}

func TestUncompleteRejectsOngoingPeriod(t *testing.T) {
	f := newFixture(t)
	period := f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)

	_, err := f.svc.Uncomplete(context.Background(), period.ID)
	assert.ErrorIs(t, err, payslip.ErrPeriodNotCompleted)
}

func TestCreatePeriodPreparesSlips(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedCleanMonthly("emp-1", "2025-03")
	f.seedContract(t, "emp-1")

	period, err := f.svc.CreatePeriod(ctx, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, payslip.PeriodStatusOngoing, period.Status)
	assert.Equal(t, "2025-03", period.Month)

	slips, err := f.slipRepo.ListByPeriod(ctx, period.ID)
	require.NoError(t, err)
	require.Len(t, slips, 2)

	byEmployee := map[string]payslip.Slip{}
	for _, slip := range slips {
		byEmployee[slip.EmployeeID] = slip
	}
	assert.Equal(t, payslip.SlipStatusReady, byEmployee["emp-1"].Status)
	assert.True(t, byEmployee["emp-1"].CompensationTotal.Equal(decimal.NewFromInt(8600000)))
	assert.Equal(t, payslip.SlipStatusPending, byEmployee["emp-2"].Status)
	require.NotNil(t, byEmployee["emp-2"].PendingReason)
	assert.Equal(t, "monthly timesheet missing", *byEmployee["emp-2"].PendingReason)

	assert.Equal(t, 1, period.PaymentCount)
	assert.Equal(t, 1, period.DeferredCount)
}

func TestCreatePeriodRequiresEarlierCompleted(t *testing.T) {
	f := newFixture(t)
	f.seedPeriod(t, "2025-02", payslip.PeriodStatusOngoing)

	_, err := f.svc.CreatePeriod(context.Background(), "2025-03")
	assert.ErrorIs(t, err, payslip.ErrEarlierPeriodOpen)
}

func TestCreatePeriodRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	f.seedPeriod(t, "2025-03", payslip.PeriodStatusOngoing)

	_, err := f.svc.CreatePeriod(context.Background(), "2025-03")
	assert.ErrorIs(t, err, payslip.ErrPeriodAlreadyExists)
}

func TestCreatePeriodInvalidMonth(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePeriod(context.Background(), "march 2025")
	assert.ErrorIs(t, err, timesheet.ErrInvalidMonth)
}
