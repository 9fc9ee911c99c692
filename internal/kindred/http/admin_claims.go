package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
	"github.com/AvallenSolutions/kindredcollective/pkg/httpx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

type AdminClaimHandler struct {
	Claims *service.ClaimService
}

type ResolveClaimRequest struct {
	// Status must be CLAIMED (approve) or REJECTED (reject).
	Status string `json:"status"`
}

// HandleResolve godoc
//
//	@Summary		Resolve a supplier claim
//	@Description	Approve or reject a pending claim out of band. Approval hands the supplier to the claimant; rejection releases it.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Claim id"
//	@Param			request	body		ResolveClaimRequest	true	"Target status"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/admin/claims/{id} [patch].
func (h *AdminClaimHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ResolveClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var approve bool
	switch req.Status {
	case "CLAIMED":
		approve = true
	case "REJECTED":
		approve = false
	default:
		httpx.WriteError(w, http.StatusBadRequest, "status must be CLAIMED or REJECTED")
		return
	}

	err := h.Claims.AdminResolve(ctx, r.PathValue("id"), approve)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClaimNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClaimNotPending):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to resolve supplier claim", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to resolve supplier claim")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, nil, "claim resolved")
}
