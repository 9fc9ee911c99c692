package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
	"github.com/AvallenSolutions/kindredcollective/pkg/httpx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

type BootstrapHandler struct {
	Bootstrap *service.BootstrapService
}

type BootstrapRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// ServeHTTP godoc
//
//	@Summary		Bootstrap the first admin account
//	@Description	Create the initial ADMIN user on a fresh deployment. Requires the X-Bootstrap-Token header matching KINDRED_BOOTSTRAP_TOKEN and only works while no users exist.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string				true	"Deploy-time bootstrap token"
//	@Param			request				body		BootstrapRequest	true	"Initial admin details"
//	@Success		201					{object}	httpx.Envelope		"user"
//	@Failure		400					{object}	httpx.Envelope
//	@Failure		401					{object}	httpx.Envelope
//	@Failure		404					{object}	httpx.Envelope	"bootstrap not enabled"
//	@Failure		500					{object}	httpx.Envelope
//	@Router			/api/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// With no token configured the endpoint does not exist.
	if h.Bootstrap.Token == "" {
		httpx.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "bootstrap token required")
		return
	}

	var req BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.Bootstrap.Bootstrap(ctx, token, service.BootstrapParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapUnauthorized),
			errors.Is(err, service.ErrAlreadyBootstrapped):
			httpx.WriteError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrInvalidBootstrapRequest):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("bootstrap failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to bootstrap service")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteMessage(w, http.StatusCreated, newUserView(user), "service bootstrapped")
}
