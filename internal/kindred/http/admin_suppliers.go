package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
	"github.com/AvallenSolutions/kindredcollective/pkg/httpx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

type AdminSupplierHandler struct {
	UserService *service.UserService
}

type SeedSupplierRequest struct {
	Name string `json:"name"`
}

// HandleCreate godoc
//
//	@Summary		Seed an unclaimed supplier
//	@Description	Create a supplier entity with no owner, available for the claim flow.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SeedSupplierRequest	true	"Supplier name"
//	@Success		201		{object}	httpx.Envelope		"supplier"
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/admin/suppliers [post].
func (h *AdminSupplierHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req SeedSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sup, err := h.UserService.SeedSupplier(ctx, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProfile) {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("failed to seed supplier", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to seed supplier")
		return
	}

	httpx.WriteData(w, http.StatusCreated, newSupplierView(sup))
}
