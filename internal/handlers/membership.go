package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-management-api/internal/dto"
	apierrors "github.com/yukikurage/team-management-api/internal/errors"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/services"
	"github.com/yukikurage/team-management-api/internal/store"
)

// MembershipHandler acts on a single membership addressed by id.
type MembershipHandler struct {
	memberships *services.MembershipService
	repo        repository.MembershipRepository
}

func NewMembershipHandler(memberships *services.MembershipService, repo repository.MembershipRepository) *MembershipHandler {
	return &MembershipHandler{memberships: memberships, repo: repo}
}

// load returns the membership and whether the caller may see it. Only the
// member and the team's coaches can.
func (h *MembershipHandler) load(c *gin.Context) (m *models.Membership, userID string, isCoach bool, ok bool) {
	userID, ok = currentUserID(c)
	if !ok {
		return nil, "", false, false
	}

	m, err := h.memberships.GetMembership(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, "", false, false
	}

	caller, err := h.repo.FindByUserAndTeam(c.Request.Context(), userID, m.TeamID)
	switch {
	case err == nil:
		isCoach = caller.CountsAsCoach()
	case !errors.Is(err, store.ErrNotFound):
		respondError(c, err)
		return nil, "", false, false
	}

	if m.UserID != userID && !isCoach {
		respondError(c, services.ErrMembershipNotFound)
		return nil, "", false, false
	}
	return m, userID, isCoach, true
}

// AcceptInvite accepts the caller's own pending invite
func (h *MembershipHandler) AcceptInvite(c *gin.Context) {
	m, userID, _, ok := h.load(c)
	if !ok {
		return
	}
	if m.UserID != userID {
		apierrors.Forbidden(c, "Only the invited user can accept")
		return
	}

	accepted, err := h.memberships.AcceptInvite(c.Request.Context(), m.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMembershipDTO(*accepted, nil))
}

// DeclineInvite declines the caller's own pending invite
func (h *MembershipHandler) DeclineInvite(c *gin.Context) {
	m, userID, _, ok := h.load(c)
	if !ok {
		return
	}
	if m.UserID != userID {
		apierrors.Forbidden(c, "Only the invited user can decline")
		return
	}

	if err := h.memberships.DeclineInvite(c.Request.Context(), m.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateRole changes a member's role; coaches only
func (h *MembershipHandler) UpdateRole(c *gin.Context) {
	m, _, isCoach, ok := h.load(c)
	if !ok {
		return
	}
	if !isCoach {
		apierrors.Forbidden(c, "Only coaches can change roles")
		return
	}

	type UpdateRoleRequest struct {
		Role string `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	updated, err := h.memberships.UpdateRole(c.Request.Context(), m.ID, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMembershipDTO(*updated, nil))
}

// RemoveMembership removes a membership; the member themself or a coach may do this
func (h *MembershipHandler) RemoveMembership(c *gin.Context) {
	m, _, _, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.memberships.RemoveMembershipByID(c.Request.Context(), m.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
