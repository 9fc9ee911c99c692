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

type MeHandler struct {
	UserService *service.UserService
}

// MeResponse aggregates the session user, their optional profile and their
// organisation membership.
type MeResponse struct {
	User         UserView          `json:"user"`
	Member       *MemberView       `json:"member,omitempty"`
	Organisation *OrganisationView `json:"organisation,omitempty"`
	OrgRole      *string           `json:"orgRole,omitempty"`
}

// HandleGet godoc
//
//	@Summary		Current user
//	@Description	Return the authenticated user with their member profile and organisation membership, when present.
//	@Tags			Me
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope	"user, member, organisation, orgRole"
//	@Failure		401	{object}	httpx.Envelope
//	@Failure		500	{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	view, err := h.UserService.Me(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		log.Error("failed to load current user", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load current user")
		return
	}

	resp := MeResponse{User: newUserView(view.User)}
	if view.Member != nil {
		m := newMemberView(*view.Member)
		resp.Member = &m
	}
	if view.Organisation != nil {
		o := newOrganisationView(*view.Organisation)
		resp.Organisation = &o
		role := string(*view.OrgRole)
		resp.OrgRole = &role
	}

	httpx.WriteData(w, http.StatusOK, resp)
}

type UpdateMemberRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	JobTitle  *string `json:"jobTitle,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// HandleUpdateMember godoc
//
//	@Summary		Complete or update the member profile
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Param			request	body		UpdateMemberRequest	true	"Profile fields"
//	@Success		200		{object}	httpx.Envelope		"member"
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope
//	@Failure		500		{object}	httpx.Envelope
//	@Security		BearerAuth
//	@Router			/api/me/member [put].
func (h *MeHandler) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	member, err := h.UserService.UpdateMember(ctx, domain.Member{
		UserID:    httpx.UserIDFromContext(ctx),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		JobTitle:  req.JobTitle,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidMemberName) {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("failed to update member profile", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update member profile")
		return
	}

	httpx.WriteData(w, http.StatusOK, newMemberView(member))
}
