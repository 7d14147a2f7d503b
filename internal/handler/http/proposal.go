package http

import (
	"net/http"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/proposal"
	"github.com/aura-hris/timesheet-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ProposalHandler interface {
	Execute(w http.ResponseWriter, r *http.Request)
}

type proposalHandlerImpl struct {
	proposalService proposal.Service
}

func NewProposalHandler(proposalService proposal.Service) ProposalHandler {
	return &proposalHandlerImpl{proposalService: proposalService}
}

// Execute implements ProposalHandler: synchronous execution path for the
// approval service, alternative to the event topic. Idempotent, so both
// paths may fire for the same proposal.
func (h *proposalHandlerImpl) Execute(w http.ResponseWriter, r *http.Request) {
	if err := h.proposalService.Execute(r.Context(), chi.URLParam(r, "proposalID")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Proposal executed", nil)
}
