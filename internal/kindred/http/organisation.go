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

type OrganisationHandler struct {
	Organisations *service.OrganisationService
}

type CreateOrganisationRequest struct {
	Name string `json:"name"`
}

// HandleCreate godoc
//
//	@Summary		Create an organisation
//	@Description	Wrap the caller's brand or supplier profile in a new organisation and enrol them as OWNER.
//	@Tags			Organisation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateOrganisationRequest	true	"Organisation name"
//	@Success		201		{object}	httpx.Envelope				"organisation"
//	@Failure		400		{object}	httpx.Envelope				"no business profile, or already a member"
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/organisation [post].
func (h *OrganisationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateOrganisationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	org, err := h.Organisations.Create(ctx, httpx.UserIDFromContext(ctx), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyOrgMember):
			httpx.WriteError(w, http.StatusBadRequest, "already a member of an organisation")
		case errors.Is(err, service.ErrNoBusinessProfile),
			errors.Is(err, service.ErrInvalidProfile):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to create organisation", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to create organisation")
		}
		return
	}

	httpx.WriteData(w, http.StatusCreated, newOrganisationView(org))
}

// OrganisationResponse is an organisation with its full roster.
type OrganisationResponse struct {
	Organisation OrganisationView  `json:"organisation"`
	Members      []RosterEntryView `json:"members"`
}

// HandleGet godoc
//
//	@Summary		Get the caller's organisation
//	@Tags			Organisation
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope	"organisation, members"
//	@Failure		401	{object}	httpx.Envelope
//	@Failure		404	{object}	httpx.Envelope
//	@Failure		500	{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/organisation [get].
func (h *OrganisationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	view, err := h.Organisations.Get(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, service.ErrOrganisationNotFound) {
			httpx.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Error("failed to load organisation", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load organisation")
		return
	}

	httpx.WriteData(w, http.StatusOK, OrganisationResponse{
		Organisation: newOrganisationView(view.Organisation),
		Members:      newRosterView(view.Members),
	})
}

// HandleDelete godoc
//
//	@Summary		Delete the caller's organisation
//	@Description	Owner only. Memberships and open invites are removed with it.
//	@Tags			Organisation
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope
//	@Failure		401	{object}	httpx.Envelope
//	@Failure		403	{object}	httpx.Envelope
//	@Failure		404	{object}	httpx.Envelope
//	@Failure		500	{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/organisation [delete].
func (h *OrganisationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.Organisations.Delete(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrganisationNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrOrgPermissionDenied):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		default:
			log.Error("failed to delete organisation", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to delete organisation")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, nil, "organisation deleted")
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateMemberRole godoc
//
//	@Summary		Change a member's organisation role
//	@Description	OWNER may set ADMIN or MEMBER on anyone; ADMIN may only demote another ADMIN to MEMBER. Ownership moves via transfer.
//	@Tags			Organisation
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Target user id"
//	@Param			request	body		UpdateMemberRoleRequest	true	"New role"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/organisation/members/{id} [patch].
func (h *OrganisationHandler) HandleUpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UpdateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := h.Organisations.UpdateMemberRole(ctx,
		httpx.UserIDFromContext(ctx), r.PathValue("id"), domain.OrgRole(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrgRole),
			errors.Is(err, service.ErrOwnerViaTransferOnly),
			errors.Is(err, service.ErrOwnerImmutable):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrgPermissionDenied):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrOrganisationNotFound),
			errors.Is(err, service.ErrNotOrgMember):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		default:
			log.Error("failed to update member role", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to update member role")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, nil, "member role updated")
}

// HandleRemoveMember godoc
//
//	@Summary		Remove a member from the organisation
//	@Description	OWNER removes anyone but themselves; ADMIN removes members only. Use leave to remove yourself.
//	@Tags			Organisation
//	@Produce		json
//	@Param			id	path		string	true	"Target user id"
//	@Success		200	{object}	httpx.Envelope
//	@Failure		400	{object}	httpx.Envelope
//	@Failure		401	{object}	httpx.Envelope
//	@Failure		403	{object}	httpx.Envelope
//	@Failure		404	{object}	httpx.Envelope
//	@Failure		500	{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/organisation/members/{id} [delete].
func (h *OrganisationHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.Organisations.RemoveMember(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotRemoveSelf),
			errors.Is(err, service.ErrOwnerImmutable):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrgPermissionDenied):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrOrganisationNotFound),
			errors.Is(err, service.ErrNotOrgMember):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		default:
			log.Error("failed to remove organisation member", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to remove organisation member")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, nil, "member removed")
}

// HandleLeave godoc
//
//	@Summary		Leave the organisation
//	@Description	Self-service removal. The owner must transfer ownership first.
//	@Tags			Organisation
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope
//	@Failure		400	{object}	httpx.Envelope
//	@Failure		401	{object}	httpx.Envelope
//	@Failure		404	{object}	httpx.Envelope
//	@Failure		500	{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/organisation/leave [post].
func (h *OrganisationHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.Organisations.Leave(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOwnerCannotLeave):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrganisationNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		default:
			log.Error("failed to leave organisation", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to leave organisation")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, nil, "left organisation")
}

type TransferOwnershipRequest struct {
	NewOwnerID string `json:"newOwnerId"`
}

// HandleTransfer godoc
//
//	@Summary		Transfer organisation ownership
//	@Description	Promote an ADMIN to OWNER and demote the caller to ADMIN atomically.
//	@Tags			Organisation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TransferOwnershipRequest	true	"New owner"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/organisation/transfer [post].
func (h *OrganisationHandler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req TransferOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.NewOwnerID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "newOwnerId is required")
		return
	}

	err := h.Organisations.TransferOwnership(ctx, httpx.UserIDFromContext(ctx), req.NewOwnerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransferTargetNotAdmin):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrgPermissionDenied):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrOrganisationNotFound),
			errors.Is(err, service.ErrNotOrgMember):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		default:
			log.Error("failed to transfer ownership", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to transfer ownership")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, nil, "ownership transferred")
}
