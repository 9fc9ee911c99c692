package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
	"github.com/AvallenSolutions/kindredcollective/pkg/httpx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

type OrgInviteHandler struct {
	OrgInvites *service.OrganisationInviteService
}

type CreateOrgInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type CreateOrgInviteResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HandleCreate godoc
//
//	@Summary		Invite someone into the organisation
//	@Description	Issue a single-use, email-targeted membership invite. OWNER and ADMIN may invite members; only OWNER may invite at ADMIN level.
//	@Tags			Organisation invites
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateOrgInviteRequest	true	"Invitee email and role"
//	@Success		201		{object}	httpx.Envelope			"token, email, role, expiresAt"
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/organisation/invites [post].
func (h *OrgInviteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateOrgInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	inv, err := h.OrgInvites.Create(ctx,
		httpx.UserIDFromContext(ctx), req.Email, domain.OrgRole(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInviteEmail),
			errors.Is(err, service.ErrInvalidOrgRole),
			errors.Is(err, service.ErrInviteeAlreadyMember),
			errors.Is(err, service.ErrOrgInviteDuplicate):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrgPermissionDenied),
			errors.Is(err, service.ErrAdminInviteOwnerOnly):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrOrganisationNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		default:
			log.Error("failed to create organisation invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to create organisation invite")
		}
		return
	}

	httpx.WriteData(w, http.StatusCreated, CreateOrgInviteResponse{
		Token:     inv.Token,
		Email:     inv.Email,
		Role:      string(inv.Role),
		ExpiresAt: inv.ExpiresAt,
	})
}

// HandleInspect godoc
//
//	@Summary		Inspect an organisation invite
//	@Description	Public token lookup for the pre-acceptance landing page.
//	@Tags			Organisation invites
//	@Produce		json
//	@Param			token	path		string			true	"Invite token"
//	@Success		200		{object}	httpx.Envelope	"organisationName, email, role, expiresAt"
//	@Failure		400		{object}	httpx.Envelope	"expired or already accepted"
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Router			/api/me/organisation/invite/{token} [get].
func (h *OrgInviteHandler) HandleInspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	view, err := h.OrgInvites.Inspect(ctx, r.PathValue("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrgInviteNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrOrgInviteExpired),
			errors.Is(err, service.ErrOrgInviteAccepted):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to inspect organisation invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to inspect organisation invite")
		}
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{
		"organisationName": view.OrganisationName,
		"email":            view.Email,
		"role":             string(view.Role),
		"expiresAt":        view.ExpiresAt,
	})
}

// HandleAccept godoc
//
//	@Summary		Accept an organisation invite
//	@Description	Redeem the invite for the authenticated user. The invite email must match the caller's account email.
//	@Tags			Organisation invites
//	@Produce		json
//	@Param			token	path		string			true	"Invite token"
//	@Success		200		{object}	httpx.Envelope	"organisationId, role"
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope	"email mismatch"
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/organisation/invite/{token} [post].
func (h *OrgInviteHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	membership, err := h.OrgInvites.Accept(ctx,
		httpx.UserIDFromContext(ctx), httpx.EmailFromContext(ctx), r.PathValue("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrgInviteNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrOrgInviteEmailMismatch):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrOrgInviteExpired),
			errors.Is(err, service.ErrOrgInviteAccepted),
			errors.Is(err, service.ErrAlreadyOrgMember):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to accept organisation invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to accept organisation invite")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, map[string]any{
		"organisationId": membership.OrganisationID,
		"role":           string(membership.Role),
	}, "invite accepted")
}

// HandleRevoke godoc
//
//	@Summary		Revoke an organisation invite
//	@Tags			Organisation invites
//	@Produce		json
//	@Param			token	path		string	true	"Invite token"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/organisation/invite/{token} [delete].
func (h *OrgInviteHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.OrgInvites.Revoke(ctx, httpx.UserIDFromContext(ctx), r.PathValue("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrgInviteNotFound),
			errors.Is(err, service.ErrOrganisationNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrOrgInviteAccepted):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrgPermissionDenied),
			errors.Is(err, service.ErrAdminInviteOwnerOnly):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		default:
			log.Error("failed to revoke organisation invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to revoke organisation invite")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, nil, "invite revoked")
}
