package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
	"github.com/AvallenSolutions/kindredcollective/pkg/httpx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

type SignupHandler struct {
	AuthService *service.AuthService
}

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	InviteToken string `json:"inviteToken"`
}

// ServeHTTP godoc
//
//	@Summary		Register a new account
//	@Description	Create a user account against a consumable invite token. The invite check, user insert and link usage recompute are atomic.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SignupRequest	true	"Signup request"
//	@Success		201		{object}	httpx.Envelope	"user"
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope	"invite missing, inactive, expired or exhausted"
//	@Failure		500		{object}	httpx.Envelope
//	@Router			/api/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.AuthService.Signup(ctx, service.SignupParams{
		Email:       req.Email,
		Password:    req.Password,
		Role:        domain.UserRole(req.Role),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		InviteToken: req.InviteToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignupRequest):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInviteLinkNotFound),
			errors.Is(err, domain.ErrInviteLinkInactive),
			errors.Is(err, domain.ErrInviteLinkExpired),
			errors.Is(err, domain.ErrInviteLinkMaxUses):
			// Signup without a valid invite is forbidden, whatever the reason.
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		default:
			log.Error("signup failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to create account")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusCreated, newUserView(user), "account created")
}
