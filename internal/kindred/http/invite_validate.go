package http

import (
	"errors"
	"net/http"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
	"github.com/AvallenSolutions/kindredcollective/pkg/httpx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

type InviteValidateHandler struct {
	InviteLinks *service.InviteLinkService
}

// ValidateResponse is the payload for a consumable invite token.
type ValidateResponse struct {
	Valid      bool    `json:"valid"`
	Token      string  `json:"token"`
	TargetRole *string `json:"targetRole,omitempty"`
}

// ServeHTTP godoc
//
//	@Summary		Validate an invite token
//	@Description	Check whether a signup invite token is consumable. Applies the same eligibility rule as signup itself.
//	@Tags			Invites
//	@Produce		json
//	@Param			token	query		string			true	"Invite token"
//	@Success		200		{object}	httpx.Envelope	"valid, token, targetRole"
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope	"inactive, expired or exhausted"
//	@Failure		404		{object}	httpx.Envelope
//	@Router			/api/invites/validate [get].
func (h *InviteValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "token is required")
		return
	}

	link, err := h.InviteLinks.Validate(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteLinkNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrInviteLinkInactive),
			errors.Is(err, domain.ErrInviteLinkExpired),
			errors.Is(err, domain.ErrInviteLinkMaxUses):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		default:
			log.Error("failed to validate invite link", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to validate invite link")
		}
		return
	}

	resp := ValidateResponse{Valid: true, Token: link.Token}
	if link.TargetRole != nil {
		role := string(*link.TargetRole)
		resp.TargetRole = &role
	}

	httpx.WriteData(w, http.StatusOK, resp)
}
