package proposal

import "time"

// Kind is a closed set; execution dispatches one handler per variant.
type Kind string

const (
	KindLeavePaid    Kind = "leave_paid"
	KindLeaveUnpaid  Kind = "leave_unpaid"
	KindCorrection   Kind = "correction"
	KindCannotAttend Kind = "cannot_attend"
	KindOvertime     Kind = "overtime"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Proposal is an externally-authored, approval-gated request. This core
// reads proposals and records execution; the approval workflow itself is
// owned by another service.
type Proposal struct {
	ID         string
	EmployeeID string
	Kind       Kind
	Status     ApprovalStatus
	StartDate  time.Time
	EndDate    time.Time
	Reason     string

	// leave_paid: approved paid hours credited per covered day
	PaidLeaveHoursPerDay float64

	// correction: approved replacement punch times
	CorrectedStart *time.Time
	CorrectedEnd   *time.Time

	// cannot_attend: timestamp of the missing punch to synthesize
	MissingPunchAt *time.Time

	ExecutedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	OvertimeEntries []OvertimeEntry
}

// OvertimeEntry is one approved overtime window inside an overtime
// proposal: the calculator caps actual overtime against ApprovedHours.
type OvertimeEntry struct {
	ID            string
	ProposalID    string
	Date          time.Time
	WindowStart   time.Time
	WindowEnd     time.Time
	ApprovedHours float64
	CreatedAt     time.Time
}

// CoversDate reports whether the proposal's range includes the date.
func (p Proposal) CoversDate(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// IsLeave reports whether the proposal is either leave variant.
func (p Proposal) IsLeave() bool {
	return p.Kind == KindLeavePaid || p.Kind == KindLeaveUnpaid
}
