package timesheet

import (
	"context"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/contract"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/proposal"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/schedule"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/google/uuid"
)

// In-memory repositories for service tests. They mirror the constraint
// behavior of the real ones: unique violations map to the same sentinels
// and lookups that can legitimately miss return nil instead of an error.

type fakeEntryRepo struct {
	entries map[string]timesheet.Entry
	order   []string

	listByMonthErr error
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[string]timesheet.Entry)}
}

func entryKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.UTC().Format("2006-01-02")
}

func (f *fakeEntryRepo) Create(_ context.Context, entry timesheet.Entry) (timesheet.Entry, error) {
	for _, existing := range f.entries {
		if entryKey(existing.EmployeeID, existing.Date) == entryKey(entry.EmployeeID, entry.Date) {
			return timesheet.Entry{}, timesheet.ErrEntryAlreadyExists
		}
	}
	entry.ID = uuid.NewString()
	f.entries[entry.ID] = entry
	f.order = append(f.order, entry.ID)
	return entry, nil
}

func (f *fakeEntryRepo) GetByID(_ context.Context, id string) (timesheet.Entry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return timesheet.Entry{}, timesheet.ErrEntryNotFound
	}
	return entry, nil
}

func (f *fakeEntryRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*timesheet.Entry, error) {
	for _, id := range f.order {
		entry := f.entries[id]
		if entryKey(entry.EmployeeID, entry.Date) == entryKey(employeeID, date) {
			return &entry, nil
		}
	}
	return nil, nil
}

func (f *fakeEntryRepo) Update(_ context.Context, entry timesheet.Entry) error {
	if _, ok := f.entries[entry.ID]; !ok {
		return timesheet.ErrEntryNotFound
	}
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeEntryRepo) ListByMonth(_ context.Context, employeeID string, month string) ([]timesheet.Entry, error) {
	if f.listByMonthErr != nil {
		return nil, f.listByMonthErr
	}
	var out []timesheet.Entry
	for _, id := range f.order {
		entry := f.entries[id]
		if entry.EmployeeID == employeeID && entry.Month() == month {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) ListUnfinalized(_ context.Context, date time.Time) ([]timesheet.Entry, error) {
	var out []timesheet.Entry
	for _, id := range f.order {
		entry := f.entries[id]
		if entry.FinalizedAt == nil && entry.Date.Equal(date) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) ListIDsByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]string, error) {
	var out []string
	for _, id := range f.order {
		entry := f.entries[id]
		if entry.EmployeeID == employeeID && !entry.Date.Before(from) && !entry.Date.After(to) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) ListIDsByDate(_ context.Context, date time.Time) ([]string, error) {
	var out []string
	for _, id := range f.order {
		if f.entries[id].Date.Equal(date) {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeMonthlyRepo struct {
	monthlies map[string]timesheet.MonthlyTimesheet
}

func newFakeMonthlyRepo() *fakeMonthlyRepo {
	return &fakeMonthlyRepo{monthlies: make(map[string]timesheet.MonthlyTimesheet)}
}

func monthlyKey(employeeID, month string) string {
	return employeeID + "|" + month
}

func (f *fakeMonthlyRepo) GetByEmployeeAndMonth(_ context.Context, employeeID string, month string) (*timesheet.MonthlyTimesheet, error) {
	monthly, ok := f.monthlies[monthlyKey(employeeID, month)]
	if !ok {
		return nil, nil
	}
	return &monthly, nil
}

func (f *fakeMonthlyRepo) Create(_ context.Context, monthly timesheet.MonthlyTimesheet) (timesheet.MonthlyTimesheet, error) {
	monthly.ID = uuid.NewString()
	f.monthlies[monthlyKey(monthly.EmployeeID, monthly.Month)] = monthly
	return monthly, nil
}

func (f *fakeMonthlyRepo) Update(_ context.Context, monthly timesheet.MonthlyTimesheet) error {
	key := monthlyKey(monthly.EmployeeID, monthly.Month)
	if _, ok := f.monthlies[key]; !ok {
		return timesheet.ErrMonthlyNotFound
	}
	f.monthlies[key] = monthly
	return nil
}

func (f *fakeMonthlyRepo) MarkNeedRefresh(_ context.Context, employeeID string, month string) error {
	key := monthlyKey(employeeID, month)
	monthly, ok := f.monthlies[key]
	if !ok {
		monthly = timesheet.MonthlyTimesheet{
			ID:         uuid.NewString(),
			EmployeeID: employeeID,
			Month:      month,
		}
	}
	monthly.NeedRefresh = true
	monthly.RefreshAttempts = 0
	f.monthlies[key] = monthly
	return nil
}

func (f *fakeMonthlyRepo) ListNeedingRefresh(_ context.Context, limit int) ([]timesheet.MonthlyTimesheet, error) {
	var out []timesheet.MonthlyTimesheet
	for _, monthly := range f.monthlies {
		if monthly.NeedRefresh && len(out) < limit {
			out = append(out, monthly)
		}
	}
	return out, nil
}

func (f *fakeMonthlyRepo) ListStuck(_ context.Context, minAttempts int) ([]timesheet.MonthlyTimesheet, error) {
	var out []timesheet.MonthlyTimesheet
	for _, monthly := range f.monthlies {
		if monthly.NeedRefresh && monthly.RefreshAttempts >= minAttempts {
			out = append(out, monthly)
		}
	}
	return out, nil
}

type fakePunchRepo struct {
	punches []timesheet.Punch
}

func punchDedupKey(p timesheet.Punch) string {
	return p.EmployeeCode + "|" + p.Timestamp.UTC().Format(time.RFC3339) + "|" + p.Device
}

func (f *fakePunchRepo) Insert(_ context.Context, punch timesheet.Punch) (timesheet.Punch, error) {
	for _, existing := range f.punches {
		if punchDedupKey(existing) == punchDedupKey(punch) {
			return timesheet.Punch{}, timesheet.ErrDuplicatePunch
		}
	}
	punch.ID = uuid.NewString()
	f.punches = append(f.punches, punch)
	return punch, nil
}

func (f *fakePunchRepo) ListByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) ([]timesheet.Punch, error) {
	dayStart := date.UTC()
	dayEnd := dayStart.AddDate(0, 0, 1)
	var out []timesheet.Punch
	for _, p := range f.punches {
		if p.EmployeeID == employeeID && !p.Timestamp.Before(dayStart) && p.Timestamp.Before(dayEnd) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	for _, emp := range f.employees {
		if emp.ID == id {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByCode(_ context.Context, code string) (employee.Employee, error) {
	for _, emp := range f.employees {
		if emp.Code == code {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.employees {
		if emp.Status == employee.EmploymentStatusActive {
			out = append(out, emp)
		}
	}
	return out, nil
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

type fakeScheduleRepo struct {
	schedules map[string]*schedule.WorkSchedule // by employee ID
}

func (f *fakeScheduleRepo) GetActiveForEmployee(_ context.Context, employeeID string, _ time.Time) (*schedule.WorkSchedule, error) {
	return f.schedules[employeeID], nil
}

func (f *fakeScheduleRepo) ListAssignedEmployeeIDs(_ context.Context, scheduleID string) ([]string, error) {
	var out []string
	for employeeID, s := range f.schedules {
		if s != nil && s.ID == scheduleID {
			out = append(out, employeeID)
		}
	}
	return out, nil
}

type fakeCalendarRepo struct {
	holidays     map[string]schedule.Holiday
	compensatory map[string]schedule.CompensatoryWorkday
}

func (f *fakeCalendarRepo) GetHoliday(_ context.Context, date time.Time) (*schedule.Holiday, error) {
	if h, ok := f.holidays[date.UTC().Format("2006-01-02")]; ok {
		return &h, nil
	}
	return nil, nil
}

func (f *fakeCalendarRepo) GetCompensatoryWorkday(_ context.Context, date time.Time) (*schedule.CompensatoryWorkday, error) {
	if c, ok := f.compensatory[date.UTC().Format("2006-01-02")]; ok {
		return &c, nil
	}
	return nil, nil
}

type fakeProposalRepo struct {
	proposals map[string]*proposal.Proposal
}

func (f *fakeProposalRepo) GetByID(_ context.Context, id string) (proposal.Proposal, error) {
	p, ok := f.proposals[id]
	if !ok {
		return proposal.Proposal{}, proposal.ErrProposalNotFound
	}
	return *p, nil
}

func (f *fakeProposalRepo) MarkExecuted(_ context.Context, id string, at time.Time) error {
	p, ok := f.proposals[id]
	if !ok {
		return proposal.ErrProposalNotFound
	}
	if p.ExecutedAt != nil {
		return proposal.ErrAlreadyExecuted
	}
	p.ExecutedAt = &at
	return nil
}

func (f *fakeProposalRepo) ListApprovedForDate(_ context.Context, employeeID string, date time.Time) ([]proposal.Proposal, error) {
	var out []proposal.Proposal
	for _, p := range f.proposals {
		if p.EmployeeID == employeeID && p.Status == proposal.ApprovalStatusApproved && p.CoversDate(date) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeQueueRepo struct {
	items []timesheet.RefreshItem
	done  map[string]bool
	dead  map[string]bool
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{done: make(map[string]bool), dead: make(map[string]bool)}
}

func (f *fakeQueueRepo) Enqueue(_ context.Context, entryIDs []string) error {
	for _, entryID := range entryIDs {
		pending := false
		for _, item := range f.items {
			if item.EntryID == entryID && !f.done[item.ID] && !f.dead[item.ID] {
				pending = true
				break
			}
		}
		if !pending {
			f.items = append(f.items, timesheet.RefreshItem{ID: uuid.NewString(), EntryID: entryID})
		}
	}
	return nil
}

func (f *fakeQueueRepo) Dequeue(_ context.Context, limit int) ([]timesheet.RefreshItem, error) {
	var out []timesheet.RefreshItem
	for _, item := range f.items {
		if !f.done[item.ID] && !f.dead[item.ID] && len(out) < limit {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeQueueRepo) MarkDone(_ context.Context, itemID string) error {
	f.done[itemID] = true
	return nil
}

func (f *fakeQueueRepo) MarkFailed(_ context.Context, itemID string, reason string) error {
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Attempts++
			f.items[i].LastError = &reason
			if f.items[i].Attempts >= 5 {
				f.dead[itemID] = true
			}
		}
	}
	return nil
}

func (f *fakeQueueRepo) pendingCount() int {
	n := 0
	for _, item := range f.items {
		if !f.done[item.ID] && !f.dead[item.ID] {
			n++
		}
	}
	return n
}

// fakeSnapshots stamps a fixed schedule onto freshly created entries, the
// way the real snapshot service stages reference data.
type fakeSnapshots struct {
	entryRepo *fakeEntryRepo
	apply     func(entry timesheet.Entry) timesheet.Entry
}

func (f *fakeSnapshots) Refresh(ctx context.Context, entryID string) error {
	entry, err := f.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if f.apply != nil {
		entry = f.apply(entry)
	}
	if entry.SnapshotAt == nil {
		now := time.Now().UTC()
		entry.SnapshotAt = &now
	}
	return f.entryRepo.Update(ctx, entry)
}

func (f *fakeSnapshots) InvalidateEmployeeRange(context.Context, string, time.Time, time.Time) error {
	return nil
}

func (f *fakeSnapshots) InvalidateDate(context.Context, time.Time) error {
	return nil
}

func (f *fakeSnapshots) ProcessQueue(context.Context) error {
	return nil
}
