package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/aura-hris/timesheet-backend-go/internal/handler/http/response"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type TimesheetHandler interface {
	RecordPunch(w http.ResponseWriter, r *http.Request)
	PrepareMonth(w http.ResponseWriter, r *http.Request)
	GetEntry(w http.ResponseWriter, r *http.Request)
	ListEntries(w http.ResponseWriter, r *http.Request)
	GetMonthly(w http.ResponseWriter, r *http.Request)
	ListNeedingRefresh(w http.ResponseWriter, r *http.Request)
	RefreshMonthly(w http.ResponseWriter, r *http.Request)
	InvalidateDate(w http.ResponseWriter, r *http.Request)
	InvalidateEmployeeRange(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	entryService timesheet.EntryService
	snapshots    timesheet.SnapshotService
	aggregator   timesheet.Aggregator
}

func NewTimesheetHandler(
	entryService timesheet.EntryService,
	snapshots timesheet.SnapshotService,
	aggregator timesheet.Aggregator,
) TimesheetHandler {
	return &timesheetHandlerImpl{
		entryService: entryService,
		snapshots:    snapshots,
		aggregator:   aggregator,
	}
}

// RecordPunch implements TimesheetHandler. Manual punch submission shares
// the service path with the event consumer.
func (h *timesheetHandlerImpl) RecordPunch(w http.ResponseWriter, r *http.Request) {
	var req timesheet.RecordPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Kind = timesheet.PunchKindDevice

	entry, err := h.entryService.RecordPunch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch recorded", timesheet.NewEntryResponse(entry))
}

// PrepareMonth implements TimesheetHandler.
func (h *timesheetHandlerImpl) PrepareMonth(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")

	created, err := h.entryService.PrepareMonth(r.Context(), month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Month prepared", map[string]int{"entries_created": created})
}

// GetEntry implements TimesheetHandler.
func (h *timesheetHandlerImpl) GetEntry(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	dateStr := chi.URLParam(r, "date")

	date, ok := validator.IsValidDate(dateStr)
	if !ok {
		response.BadRequest(w, "Date must be in YYYY-MM-DD format", nil)
		return
	}

	entry, err := h.entryService.GetEntry(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, timesheet.NewEntryResponse(entry))
}

// ListEntries implements TimesheetHandler.
func (h *timesheetHandlerImpl) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter := timesheet.EntryFilter{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Month:      chi.URLParam(r, "month"),
	}

	entries, err := h.entryService.ListEntries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	results := make([]timesheet.EntryResponse, 0, len(entries))
	for _, entry := range entries {
		results = append(results, timesheet.NewEntryResponse(entry))
	}

	response.Success(w, results)
}

// GetMonthly implements TimesheetHandler.
func (h *timesheetHandlerImpl) GetMonthly(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	month := chi.URLParam(r, "month")

	monthly, err := h.entryService.GetMonthly(r.Context(), employeeID, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, timesheet.NewMonthlyResponse(monthly))
}

// ListNeedingRefresh implements TimesheetHandler.
func (h *timesheetHandlerImpl) ListNeedingRefresh(w http.ResponseWriter, r *http.Request) {
	flagged, err := h.entryService.ListNeedingRefresh(r.Context(), 100)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	results := make([]timesheet.MonthlyResponse, 0, len(flagged))
	for _, monthly := range flagged {
		results = append(results, timesheet.NewMonthlyResponse(monthly))
	}

	response.Success(w, results)
}

// RefreshMonthly implements TimesheetHandler: synchronous recompute for
// callers that cannot wait for the sweep.
func (h *timesheetHandlerImpl) RefreshMonthly(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	month := chi.URLParam(r, "month")

	if err := h.aggregator.RefreshMonthly(r.Context(), employeeID, month); err != nil {
		response.HandleError(w, err)
		return
	}

	monthly, err := h.entryService.GetMonthly(r.Context(), employeeID, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Monthly timesheet refreshed", timesheet.NewMonthlyResponse(monthly))
}

// InvalidateDate implements TimesheetHandler: called when a holiday or
// compensatory workday is declared after entries already exist.
func (h *timesheetHandlerImpl) InvalidateDate(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")

	date, ok := validator.IsValidDate(dateStr)
	if !ok {
		response.BadRequest(w, "Date must be in YYYY-MM-DD format", nil)
		return
	}

	if err := h.snapshots.InvalidateDate(r.Context(), date); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Snapshot refresh enqueued", nil)
}

// InvalidateEmployeeRange implements TimesheetHandler: called when an
// employee's contract or schedule assignment changed retroactively.
func (h *timesheetHandlerImpl) InvalidateEmployeeRange(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	from, okFrom := validator.IsValidDate(req.From)
	to, okTo := validator.IsValidDate(req.To)
	if !okFrom || !okTo {
		response.BadRequest(w, "Dates must be in YYYY-MM-DD format", nil)
		return
	}
	if to.Before(from) {
		response.BadRequest(w, "Range end must not precede range start", nil)
		return
	}
	if to.Sub(from) > 366*24*time.Hour {
		response.BadRequest(w, "Range must not exceed one year", nil)
		return
	}

	if err := h.snapshots.InvalidateEmployeeRange(r.Context(), employeeID, from, to); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Snapshot refresh enqueued", nil)
}
