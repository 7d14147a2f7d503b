package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
)

type EntryServiceImpl struct {
	entryRepo    timesheet.EntryRepository
	monthlyRepo  timesheet.MonthlyRepository
	punchRepo    timesheet.PunchRepository
	employeeRepo employee.EmployeeRepository
	snapshots    timesheet.SnapshotService
}

func NewEntryService(
	entryRepo timesheet.EntryRepository,
	monthlyRepo timesheet.MonthlyRepository,
	punchRepo timesheet.PunchRepository,
	employeeRepo employee.EmployeeRepository,
	snapshots timesheet.SnapshotService,
) timesheet.EntryService {
	return &EntryServiceImpl{
		entryRepo:    entryRepo,
		monthlyRepo:  monthlyRepo,
		punchRepo:    punchRepo,
		employeeRepo: employeeRepo,
		snapshots:    snapshots,
	}
}

// RecordPunch implements timesheet.EntryService.
//
// Punch ingestion is per-entry disjoint: two concurrent punches for
// different employees or days never touch the same row, so no cross-entity
// coordination is needed here.
func (s *EntryServiceImpl) RecordPunch(ctx context.Context, req timesheet.RecordPunchRequest) (timesheet.Entry, error) {
	if err := req.Validate(); err != nil {
		return timesheet.Entry{}, err
	}

	emp, err := s.employeeRepo.GetByCode(ctx, req.EmployeeCode)
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to resolve employee by code: %w", err)
	}

	kind := req.Kind
	if kind == "" {
		kind = timesheet.PunchKindDevice
	}

	_, err = s.punchRepo.Insert(ctx, timesheet.Punch{
		EmployeeCode: req.EmployeeCode,
		EmployeeID:   emp.ID,
		Timestamp:    req.Timestamp.UTC(),
		Device:       req.Device,
		Kind:         kind,
	})
	if err != nil {
		// Duplicate events are rejected idempotently; the caller decides
		// whether to log or surface them.
		return timesheet.Entry{}, err
	}

	date := dayOf(req.Timestamp.UTC())
	entry, err := s.findOrCreateEntry(ctx, emp.ID, date)
	if err != nil {
		return timesheet.Entry{}, err
	}

	if entry.IsManuallyCorrected {
		// The approved correction is authoritative; raw punches are stored
		// but must not overwrite the corrected interval.
		slog.Info("punch ignored for manually corrected entry",
			"employee_id", emp.ID, "date", date.Format("2006-01-02"))
		return entry, nil
	}

	punches, err := s.punchRepo.ListByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to list punches: %w", err)
	}
	entry = FoldPunches(entry, punches)

	entry = Calculate(entry)
	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to update entry: %w", err)
	}
	if err := s.monthlyRepo.MarkNeedRefresh(ctx, entry.EmployeeID, entry.Month()); err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to flag monthly timesheet: %w", err)
	}
	return entry, nil
}

// FoldPunches derives the raw interval from the day's punches: first punch
// is the start, last punch the end. A single punch leaves the end open so
// the single-punch rule applies.
func FoldPunches(entry timesheet.Entry, punches []timesheet.Punch) timesheet.Entry {
	entry.StartTime = nil
	entry.EndTime = nil
	entry.PunchCount = len(punches)
	if len(punches) == 0 {
		return entry
	}

	first := punches[0].Timestamp
	last := punches[0].Timestamp
	for _, p := range punches[1:] {
		if p.Timestamp.Before(first) {
			first = p.Timestamp
		}
		if p.Timestamp.After(last) {
			last = p.Timestamp
		}
	}

	entry.StartTime = &first
	if len(punches) > 1 {
		entry.EndTime = &last
	}
	return entry
}

func (s *EntryServiceImpl) findOrCreateEntry(ctx context.Context, employeeID string, date time.Time) (timesheet.Entry, error) {
	existing, err := s.entryRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to get entry: %w", err)
	}
	if existing != nil {
		return *existing, nil
	}

	created, err := s.entryRepo.Create(ctx, timesheet.Entry{
		EmployeeID: employeeID,
		Date:       date,
		Status:     timesheet.StatusEmpty,
	})
	if err != nil {
		if errors.Is(err, timesheet.ErrEntryAlreadyExists) {
			// Lost a create race against a concurrent punch; reload.
			existing, getErr := s.entryRepo.GetByEmployeeAndDate(ctx, employeeID, date)
			if getErr != nil || existing == nil {
				return timesheet.Entry{}, fmt.Errorf("failed to reload entry after create race: %w", err)
			}
			return *existing, nil
		}
		return timesheet.Entry{}, fmt.Errorf("failed to create entry: %w", err)
	}

	if err := s.snapshots.Refresh(ctx, created.ID); err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to snapshot new entry: %w", err)
	}
	refreshed, err := s.entryRepo.GetByID(ctx, created.ID)
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to reload snapshotted entry: %w", err)
	}
	return refreshed, nil
}

// PrepareMonth implements timesheet.EntryService. The monthly preparation
// batch creates one entry per active employee per day so later punches and
// proposals always find their row.
func (s *EntryServiceImpl) PrepareMonth(ctx context.Context, month string) (int, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, timesheet.ErrInvalidMonth
	}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active employees: %w", err)
	}

	created := 0
	daysInMonth := first.AddDate(0, 1, -1).Day()
	for _, emp := range employees {
		for day := 1; day <= daysInMonth; day++ {
			date := time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
			existing, err := s.entryRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
			if err != nil {
				return created, fmt.Errorf("failed to check entry: %w", err)
			}
			if existing != nil {
				continue
			}
			if _, err := s.findOrCreateEntry(ctx, emp.ID, date); err != nil {
				// Report per unit of work; the batch keeps going.
				slog.Error("failed to prepare entry",
					"employee_id", emp.ID, "date", date.Format("2006-01-02"), "error", err)
				continue
			}
			created++
		}
	}
	return created, nil
}

// GetEntry implements timesheet.EntryService.
func (s *EntryServiceImpl) GetEntry(ctx context.Context, employeeID string, date time.Time) (timesheet.Entry, error) {
	entry, err := s.entryRepo.GetByEmployeeAndDate(ctx, employeeID, dayOf(date))
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to get entry: %w", err)
	}
	if entry == nil {
		return timesheet.Entry{}, timesheet.ErrEntryNotFound
	}
	return *entry, nil
}

// ListEntries implements timesheet.EntryService.
func (s *EntryServiceImpl) ListEntries(ctx context.Context, filter timesheet.EntryFilter) ([]timesheet.Entry, error) {
	if _, err := time.Parse("2006-01", filter.Month); err != nil {
		return nil, timesheet.ErrInvalidMonth
	}
	entries, err := s.entryRepo.ListByMonth(ctx, filter.EmployeeID, filter.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// GetMonthly implements timesheet.EntryService.
func (s *EntryServiceImpl) GetMonthly(ctx context.Context, employeeID string, month string) (timesheet.MonthlyTimesheet, error) {
	monthly, err := s.monthlyRepo.GetByEmployeeAndMonth(ctx, employeeID, month)
	if err != nil {
		return timesheet.MonthlyTimesheet{}, fmt.Errorf("failed to get monthly timesheet: %w", err)
	}
	if monthly == nil {
		return timesheet.MonthlyTimesheet{}, timesheet.ErrMonthlyNotFound
	}
	return *monthly, nil
}

// ListNeedingRefresh implements timesheet.EntryService.
func (s *EntryServiceImpl) ListNeedingRefresh(ctx context.Context, limit int) ([]timesheet.MonthlyTimesheet, error) {
	if limit <= 0 {
		limit = 100
	}
	flagged, err := s.monthlyRepo.ListNeedingRefresh(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list flagged monthly timesheets: %w", err)
	}
	return flagged, nil
}

// dayOf truncates a timestamp to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
