package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
	"github.com/AvallenSolutions/kindredcollective/pkg/httpx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

type ClaimHandler struct {
	Claims *service.ClaimService
	Users  *service.UserService
}

type InitiateClaimRequest struct {
	CompanyEmail string `json:"companyEmail"`
}

type InitiateClaimResponse struct {
	ClaimID string `json:"claimId"`
	// Code is only present when the server runs in dev mode.
	Code string `json:"code,omitempty"`
}

// HandleInitiate godoc
//
//	@Summary		Start a supplier claim
//	@Description	Open a claim on an unclaimed supplier and email a verification code to the company address.
//	@Tags			Supplier claims
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string					true	"Supplier slug"
//	@Param			request	body		InitiateClaimRequest	true	"Company email"
//	@Success		201		{object}	httpx.Envelope			"claimId"
//	@Failure		400		{object}	httpx.Envelope			"already claimed, pending, or invalid email"
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/suppliers/{slug}/claim [post].
func (h *ClaimHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req InitiateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	receipt, err := h.Claims.Initiate(ctx,
		r.PathValue("slug"), httpx.UserIDFromContext(ctx), req.CompanyEmail)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSupplierNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidCompanyEmail),
			errors.Is(err, service.ErrSupplierAlreadyClaimed),
			errors.Is(err, service.ErrClaimAlreadyPending),
			errors.Is(err, service.ErrAlreadyOwnsSupplier):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to initiate supplier claim", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to initiate supplier claim")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusCreated, InitiateClaimResponse{
		ClaimID: receipt.ClaimID,
		Code:    receipt.Code,
	}, "verification code sent")
}

type VerifyClaimRequest struct {
	Code string `json:"code"`
}

// HandleVerify godoc
//
//	@Summary		Verify a supplier claim
//	@Description	Submit the emailed code. Five wrong codes reject the claim and release the supplier.
//	@Tags			Supplier claims
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string				true	"Supplier slug"
//	@Param			request	body		VerifyClaimRequest	true	"Verification code"
//	@Success		200		{object}	httpx.Envelope		"supplier"
//	@Failure		400		{object}	httpx.Envelope		"Invalid verification code"
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/suppliers/{slug}/claim [patch].
func (h *ClaimHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req VerifyClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "code is required")
		return
	}

	sup, err := h.Claims.Verify(ctx, r.PathValue("slug"), httpx.UserIDFromContext(ctx), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSupplierNotFound),
			errors.Is(err, service.ErrClaimNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidClaimCode),
			errors.Is(err, service.ErrClaimLockedOut):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to verify supplier claim", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to verify supplier claim")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, newSupplierView(sup), "supplier claimed")
}
