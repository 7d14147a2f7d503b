package response

import (
	"errors"
	"net/http"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/payslip"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/proposal"
	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrEntryNotFound):
		NotFound(w, "Timesheet entry not found")
	case errors.Is(err, timesheet.ErrMonthlyNotFound):
		NotFound(w, "Monthly timesheet not found")
	case errors.Is(err, timesheet.ErrDuplicatePunch):
		Conflict(w, "Punch already recorded")
	case errors.Is(err, timesheet.ErrInvalidMonth):
		BadRequest(w, "Month must be in YYYY-MM format", nil)
	case errors.Is(err, timesheet.ErrEmployeeCodeRequired):
		BadRequest(w, "Employee code is required", nil)
	case errors.Is(err, timesheet.ErrTimestampRequired):
		BadRequest(w, "Punch timestamp is required", nil)
	case errors.Is(err, timesheet.ErrManuallyCorrected):
		Conflict(w, "Entry is manually corrected")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Proposal domain errors
	case errors.Is(err, proposal.ErrProposalNotFound):
		NotFound(w, "Proposal not found")
	case errors.Is(err, proposal.ErrProposalNotApproved):
		Conflict(w, "Proposal is not approved")
	case errors.Is(err, proposal.ErrUnknownKind):
		BadRequest(w, "Unknown proposal kind", nil)

	// Payslip domain errors
	case errors.Is(err, payslip.ErrSlipNotFound):
		NotFound(w, "Payroll slip not found")
	case errors.Is(err, payslip.ErrPeriodNotFound):
		NotFound(w, "Salary period not found")
	case errors.Is(err, payslip.ErrHoldReasonRequired):
		BadRequest(w, "Hold requires a reason", nil)
	case errors.Is(err, payslip.ErrSlipNotHoldable):
		Conflict(w, "Slip cannot be held in its current status")
	case errors.Is(err, payslip.ErrSlipNotOnHold):
		Conflict(w, "Slip is not on hold")
	case errors.Is(err, payslip.ErrSlipDelivered):
		Conflict(w, "Slip is delivered and immutable")
	case errors.Is(err, payslip.ErrPeriodCompleted):
		Conflict(w, "Salary period is already completed")
	case errors.Is(err, payslip.ErrPeriodNotCompleted):
		Conflict(w, "Salary period is not completed")
	case errors.Is(err, payslip.ErrNewerPeriodExists):
		Conflict(w, "A later salary period exists")
	case errors.Is(err, payslip.ErrEarlierPeriodOpen):
		Conflict(w, "An earlier salary period is still open")
	case errors.Is(err, payslip.ErrPeriodAlreadyExists):
		Conflict(w, "Salary period already exists for month")
	case errors.Is(err, payslip.ErrNoOngoingPeriod):
		NotFound(w, "No ongoing salary period")
	case errors.Is(err, payslip.ErrPenaltyAlreadySettled):
		Conflict(w, "Penalty already settled")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
