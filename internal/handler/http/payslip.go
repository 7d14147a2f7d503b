package http

import (
	"encoding/json"
	"net/http"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/payslip"
	"github.com/aura-hris/timesheet-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type PayslipHandler interface {
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	CompletePeriod(w http.ResponseWriter, r *http.Request)
	UncompletePeriod(w http.ResponseWriter, r *http.Request)
	RecomputePeriod(w http.ResponseWriter, r *http.Request)
	ListSlips(w http.ResponseWriter, r *http.Request)
	PaymentTable(w http.ResponseWriter, r *http.Request)
	DeferredTable(w http.ResponseWriter, r *http.Request)
	GetSlip(w http.ResponseWriter, r *http.Request)
	RecomputeSlip(w http.ResponseWriter, r *http.Request)
	HoldSlip(w http.ResponseWriter, r *http.Request)
	UnholdSlip(w http.ResponseWriter, r *http.Request)
	SettlePenalty(w http.ResponseWriter, r *http.Request)
}

type payslipHandlerImpl struct {
	payslipService payslip.Service
}

func NewPayslipHandler(payslipService payslip.Service) PayslipHandler {
	return &payslipHandlerImpl{payslipService: payslipService}
}

// CreatePeriod implements PayslipHandler.
func (h *payslipHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	period, err := h.payslipService.CreatePeriod(r.Context(), req.Month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary period created", payslip.NewPeriodResponse(period))
}

// ListPeriods implements PayslipHandler.
func (h *payslipHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.payslipService.ListPeriods(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	results := make([]payslip.PeriodResponse, 0, len(periods))
	for _, period := range periods {
		results = append(results, payslip.NewPeriodResponse(period))
	}

	response.Success(w, results)
}

// GetPeriod implements PayslipHandler.
func (h *payslipHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.payslipService.GetPeriod(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payslip.NewPeriodResponse(period))
}

// CompletePeriod implements PayslipHandler.
func (h *payslipHandlerImpl) CompletePeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.payslipService.Complete(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary period completed", payslip.NewPeriodResponse(period))
}

// UncompletePeriod implements PayslipHandler.
func (h *payslipHandlerImpl) UncompletePeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.payslipService.Uncomplete(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary period reopened", payslip.NewPeriodResponse(period))
}

// RecomputePeriod implements PayslipHandler.
func (h *payslipHandlerImpl) RecomputePeriod(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "periodID")

	if err := h.payslipService.RecomputePeriod(r.Context(), periodID); err != nil {
		response.HandleError(w, err)
		return
	}

	period, err := h.payslipService.GetPeriod(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary period recomputed", payslip.NewPeriodResponse(period))
}

// ListSlips implements PayslipHandler.
func (h *payslipHandlerImpl) ListSlips(w http.ResponseWriter, r *http.Request) {
	slips, err := h.payslipService.ListSlips(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, slipResponses(slips))
}

// PaymentTable implements PayslipHandler.
func (h *payslipHandlerImpl) PaymentTable(w http.ResponseWriter, r *http.Request) {
	slips, err := h.payslipService.PaymentTable(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, slipResponses(slips))
}

// DeferredTable implements PayslipHandler.
func (h *payslipHandlerImpl) DeferredTable(w http.ResponseWriter, r *http.Request) {
	slips, err := h.payslipService.DeferredTable(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, slipResponses(slips))
}

// GetSlip implements PayslipHandler.
func (h *payslipHandlerImpl) GetSlip(w http.ResponseWriter, r *http.Request) {
	slip, err := h.payslipService.GetSlip(r.Context(), chi.URLParam(r, "slipID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payslip.NewSlipResponse(slip))
}

// RecomputeSlip implements PayslipHandler.
func (h *payslipHandlerImpl) RecomputeSlip(w http.ResponseWriter, r *http.Request) {
	slip, err := h.payslipService.Recompute(r.Context(), chi.URLParam(r, "slipID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Slip recomputed", payslip.NewSlipResponse(slip))
}

// HoldSlip implements PayslipHandler.
func (h *payslipHandlerImpl) HoldSlip(w http.ResponseWriter, r *http.Request) {
	var req payslip.HoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.SlipID = chi.URLParam(r, "slipID")
	req.HeldBy = subjectFromToken(r)

	slip, err := h.payslipService.Hold(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Slip held", payslip.NewSlipResponse(slip))
}

// UnholdSlip implements PayslipHandler.
func (h *payslipHandlerImpl) UnholdSlip(w http.ResponseWriter, r *http.Request) {
	slip, err := h.payslipService.Unhold(r.Context(), chi.URLParam(r, "slipID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Slip released", payslip.NewSlipResponse(slip))
}

// SettlePenalty implements PayslipHandler.
func (h *payslipHandlerImpl) SettlePenalty(w http.ResponseWriter, r *http.Request) {
	slip, err := h.payslipService.SettlePenalty(r.Context(), chi.URLParam(r, "slipID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Penalty settled", payslip.NewSlipResponse(slip))
}

func slipResponses(slips []payslip.Slip) []payslip.SlipResponse {
	results := make([]payslip.SlipResponse, 0, len(slips))
	for _, slip := range slips {
		results = append(results, payslip.NewSlipResponse(slip))
	}
	return results
}

// subjectFromToken pulls the authenticated user out of the verified JWT
// for audit fields. Empty when the claim is absent.
func subjectFromToken(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	if userID, ok := claims["user_id"].(string); ok {
		return userID
	}
	return ""
}
