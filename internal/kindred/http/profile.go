package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
	"github.com/AvallenSolutions/kindredcollective/pkg/httpx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

// ProfileHandler creates the business entities that organisations wrap.
type ProfileHandler struct {
	UserService *service.UserService
}

type CreateProfileRequest struct {
	Name string `json:"name"`
}

// HandleCreateBrand godoc
//
//	@Summary		Create a brand profile
//	@Description	Register the caller's brand entity. Required before creating a BRAND organisation.
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateProfileRequest	true	"Brand name"
//	@Success		201		{object}	httpx.Envelope			"brand"
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/brand [post].
func (h *ProfileHandler) HandleCreateBrand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	brand, err := h.UserService.CreateBrand(ctx, httpx.UserIDFromContext(ctx), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProfile),
			errors.Is(err, service.ErrProfileExists):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to create brand profile", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to create brand profile")
		}
		return
	}

	httpx.WriteData(w, http.StatusCreated, newBrandView(brand))
}

// HandleCreateSupplier godoc
//
//	@Summary		Create a supplier profile
//	@Description	Register a supplier entity owned by the caller. Suppliers seeded by an admin are claimed via the claim flow instead.
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateProfileRequest	true	"Supplier name"
//	@Success		201		{object}	httpx.Envelope			"supplier"
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/supplier [post].
func (h *ProfileHandler) HandleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	userID := httpx.UserIDFromContext(ctx)
	sup, err := h.UserService.CreateOwnedSupplier(ctx, userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProfile),
			errors.Is(err, service.ErrProfileExists):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to create supplier profile", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to create supplier profile")
		}
		return
	}

	httpx.WriteData(w, http.StatusCreated, newSupplierView(sup))
}
