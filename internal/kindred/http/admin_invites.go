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

type AdminInviteHandler struct {
	InviteLinks *service.InviteLinkService
}

type CreateInviteLinkRequest struct {
	TargetRole *string    `json:"targetRole,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	MaxUses    *int64     `json:"maxUses,omitempty"`
}

// HandleCreate godoc
//
//	@Summary		Issue an invite link
//	@Description	Mint a shareable signup link. All constraints (expiry, usage cap, target role) are optional.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateInviteLinkRequest	true	"Link constraints"
//	@Success		201		{object}	httpx.Envelope			"invite link"
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/admin/invites [post].
func (h *AdminInviteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateInviteLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var targetRole *domain.UserRole
	if req.TargetRole != nil {
		role := domain.UserRole(*req.TargetRole)
		targetRole = &role
	}

	link, err := h.InviteLinks.Issue(ctx,
		httpx.UserIDFromContext(ctx), targetRole, req.ExpiresAt, req.MaxUses)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInviteLink),
			errors.Is(err, service.ErrInviteLinkInvalidExpiry):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to issue invite link", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to issue invite link")
		}
		return
	}

	httpx.WriteData(w, http.StatusCreated, newInviteLinkView(link, h.InviteLinks.URL(link)))
}

// HandleList godoc
//
//	@Summary		List invite links
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope	"invite links"
//	@Failure		401	{object}	httpx.Envelope
//	@Failure		403	{object}	httpx.Envelope
//	@Failure		500	{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/admin/invites [get].
func (h *AdminInviteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	links, err := h.InviteLinks.List(ctx)
	if err != nil {
		log.Error("failed to list invite links", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list invite links")
		return
	}

	views := make([]InviteLinkView, 0, len(links))
	for _, l := range links {
		views = append(views, newInviteLinkView(l, h.InviteLinks.URL(l)))
	}

	httpx.WriteData(w, http.StatusOK, views)
}

type UpdateInviteLinkRequest struct {
	IsActive  bool       `json:"isActive"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	MaxUses   *int64     `json:"maxUses,omitempty"`
}

// HandleUpdate godoc
//
//	@Summary		Update an invite link
//	@Description	Change activation, expiry or usage cap. Deactivation takes effect for all future signups immediately.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Invite link id"
//	@Param			request	body		UpdateInviteLinkRequest	true	"New constraints"
//	@Success		200		{object}	httpx.Envelope			"invite link"
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/admin/invites/{id} [patch].
func (h *AdminInviteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UpdateInviteLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	link, err := h.InviteLinks.Update(ctx, r.PathValue("id"), req.IsActive, req.ExpiresAt, req.MaxUses)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteLinkNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidInviteLink):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to update invite link", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to update invite link")
		}
		return
	}

	httpx.WriteData(w, http.StatusOK, newInviteLinkView(link, h.InviteLinks.URL(link)))
}

// HandleDelete godoc
//
//	@Summary		Delete an invite link
//	@Description	Remove a link that has never been used. Consumed links are kept for audit; deactivate them instead.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string	true	"Invite link id"
//	@Success		200	{object}	httpx.Envelope
//	@Failure		400	{object}	httpx.Envelope	"link has been used"
//	@Failure		401	{object}	httpx.Envelope
//	@Failure		403	{object}	httpx.Envelope
//	@Failure		404	{object}	httpx.Envelope
//	@Failure		500	{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/admin/invites/{id} [delete].
func (h *AdminInviteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.InviteLinks.Delete(ctx, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteLinkNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInviteLinkInUse):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to delete invite link", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to delete invite link")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, nil, "invite link deleted")
}
