package proposal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/proposal"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/aura-hris/timesheet-backend-go/internal/repository/postgresql"
	timesheetservice "github.com/aura-hris/timesheet-backend-go/internal/service/timesheet"
	"github.com/jackc/pgx/v5"
)

type ProposalServiceImpl struct {
	db           *database.DB
	proposalRepo proposal.ProposalRepository
	entryRepo    timesheet.EntryRepository
	monthlyRepo  timesheet.MonthlyRepository
	punchRepo    timesheet.PunchRepository
	employeeRepo employee.EmployeeRepository
	snapshots    timesheet.SnapshotService

	// runTx wraps the execution stamp and the timesheet writes in one
	// transaction.
	runTx func(ctx context.Context, fn func(tx pgx.Tx) error) error
}

func NewProposalService(
	db *database.DB,
	proposalRepo proposal.ProposalRepository,
	entryRepo timesheet.EntryRepository,
	monthlyRepo timesheet.MonthlyRepository,
	punchRepo timesheet.PunchRepository,
	employeeRepo employee.EmployeeRepository,
	snapshots timesheet.SnapshotService,
) proposal.Service {
	s := &ProposalServiceImpl{
		db:           db,
		proposalRepo: proposalRepo,
		entryRepo:    entryRepo,
		monthlyRepo:  monthlyRepo,
		punchRepo:    punchRepo,
		employeeRepo: employeeRepo,
		snapshots:    snapshots,
	}
	s.runTx = func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		return postgresql.WithTransaction(ctx, s.db, fn)
	}
	return s
}

// Execute implements proposal.Service.
//
// The execution stamp and every timesheet write commit together. The
// stamp doubles as the idempotence gate: an already-stamped proposal
// returns without touching anything, so delivery retries from the
// approval service are safe.
func (s *ProposalServiceImpl) Execute(ctx context.Context, proposalID string) error {
	prop, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return fmt.Errorf("failed to load proposal: %w", err)
	}
	if prop.Status != proposal.ApprovalStatusApproved {
		return proposal.ErrProposalNotApproved
	}
	if prop.ExecutedAt != nil {
		slog.Info("proposal already executed, skipping",
			"proposal_id", prop.ID, "kind", prop.Kind)
		return nil
	}

	return s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.proposalRepo.MarkExecuted(txCtx, prop.ID, time.Now().UTC()); err != nil {
			if errors.Is(err, proposal.ErrAlreadyExecuted) {
				// Lost the race against a concurrent delivery; their
				// transaction carries the effects.
				return nil
			}
			return fmt.Errorf("failed to mark proposal executed: %w", err)
		}

		switch prop.Kind {
		case proposal.KindLeavePaid, proposal.KindLeaveUnpaid:
			return s.executeLeave(txCtx, prop)
		case proposal.KindCorrection:
			return s.executeCorrection(txCtx, prop)
		case proposal.KindCannotAttend:
			return s.executeCannotAttend(txCtx, prop)
		case proposal.KindOvertime:
			return s.executeOvertime(txCtx, prop)
		default:
			return proposal.ErrUnknownKind
		}
	})
}

// executeLeave marks every covered day absent with the proposal's reason
// and, for paid leave, credits the approved hours.
func (s *ProposalServiceImpl) executeLeave(ctx context.Context, prop proposal.Proposal) error {
	for date := dayOf(prop.StartDate); !date.After(dayOf(prop.EndDate)); date = date.AddDate(0, 0, 1) {
		entry, err := s.findOrCreateEntry(ctx, prop.EmployeeID, date)
		if err != nil {
			return err
		}

		reason := prop.Reason
		entry.AbsentReason = &reason
		entry.IsExempt = true
		if prop.Kind == proposal.KindLeavePaid {
			entry.PaidLeaveHours = prop.PaidLeaveHoursPerDay
		}
		entry.Status = timesheet.StatusAbsent

		if err := s.recalculateAndSave(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// executeCorrection replaces the punch-derived interval with the approved
// one and freezes the entry against later device punches.
func (s *ProposalServiceImpl) executeCorrection(ctx context.Context, prop proposal.Proposal) error {
	if prop.CorrectedStart == nil || prop.CorrectedEnd == nil {
		return fmt.Errorf("correction proposal %s has no corrected interval", prop.ID)
	}

	entry, err := s.findOrCreateEntry(ctx, prop.EmployeeID, dayOf(*prop.CorrectedStart))
	if err != nil {
		return err
	}

	start := prop.CorrectedStart.UTC()
	end := prop.CorrectedEnd.UTC()
	entry.StartTime = &start
	entry.EndTime = &end
	entry.PunchCount = 2
	entry.IsManuallyCorrected = true

	return s.recalculateAndSave(ctx, entry)
}

// executeCannotAttend synthesizes the punch the employee could not make.
// The synthetic event goes through the same dedup as device punches, then
// the day's interval is refolded from the full punch set.
func (s *ProposalServiceImpl) executeCannotAttend(ctx context.Context, prop proposal.Proposal) error {
	if prop.MissingPunchAt == nil {
		return fmt.Errorf("cannot_attend proposal %s has no punch timestamp", prop.ID)
	}

	emp, err := s.employeeRepo.GetByID(ctx, prop.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to resolve employee: %w", err)
	}

	at := prop.MissingPunchAt.UTC()
	_, err = s.punchRepo.Insert(ctx, timesheet.Punch{
		EmployeeCode: emp.Code,
		EmployeeID:   prop.EmployeeID,
		Timestamp:    at,
		Device:       "proposal",
		Kind:         timesheet.PunchKindSynthetic,
	})
	if err != nil && !errors.Is(err, timesheet.ErrDuplicatePunch) {
		return fmt.Errorf("failed to insert synthetic punch: %w", err)
	}

	date := dayOf(at)
	entry, err := s.findOrCreateEntry(ctx, prop.EmployeeID, date)
	if err != nil {
		return err
	}
	if entry.IsManuallyCorrected {
		slog.Info("synthetic punch ignored for manually corrected entry",
			"proposal_id", prop.ID, "date", date.Format("2006-01-02"))
		return nil
	}

	punches, err := s.punchRepo.ListByEmployeeAndDate(ctx, prop.EmployeeID, date)
	if err != nil {
		return fmt.Errorf("failed to list punches: %w", err)
	}
	entry = timesheetservice.FoldPunches(entry, punches)

	return s.recalculateAndSave(ctx, entry)
}

// executeOvertime stages the approved window onto each covered entry; the
// calculator caps the actual overtime against it.
func (s *ProposalServiceImpl) executeOvertime(ctx context.Context, prop proposal.Proposal) error {
	for _, ot := range prop.OvertimeEntries {
		entry, err := s.findOrCreateEntry(ctx, prop.EmployeeID, dayOf(ot.Date))
		if err != nil {
			return err
		}

		windowStart := ot.WindowStart.UTC()
		windowEnd := ot.WindowEnd.UTC()
		entry.ApprovedOTStart = &windowStart
		entry.ApprovedOTEnd = &windowEnd
		entry.ApprovedOTHours = ot.ApprovedHours

		if err := s.recalculateAndSave(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProposalServiceImpl) findOrCreateEntry(ctx context.Context, employeeID string, date time.Time) (timesheet.Entry, error) {
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

func (s *ProposalServiceImpl) recalculateAndSave(ctx context.Context, entry timesheet.Entry) error {
	entry = timesheetservice.Calculate(entry)
	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if err := s.monthlyRepo.MarkNeedRefresh(ctx, entry.EmployeeID, entry.Month()); err != nil {
		return fmt.Errorf("failed to flag monthly timesheet: %w", err)
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
