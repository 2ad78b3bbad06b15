package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-management-api/internal/dto"
	apierrors "github.com/yukikurage/team-management-api/internal/errors"
	"github.com/yukikurage/team-management-api/internal/middleware"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/services"
	"github.com/yukikurage/team-management-api/internal/utils"
)

type TeamHandler struct {
	teams       *services.TeamService
	memberships *services.MembershipService
	safety      *services.SafetyService
	cascade     *services.CascadeService
}

func NewTeamHandler(svc *services.Services) *TeamHandler {
	return &TeamHandler{
		teams:       svc.Teams,
		memberships: svc.Memberships,
		safety:      svc.Safety,
		cascade:     svc.Cascade,
	}
}

// CreateTeam creates a team with the caller as its first coach
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type CreateTeamRequest struct {
		Name string `json:"name" binding:"required,max=100"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	team, err := h.teams.CreateTeam(c.Request.Context(), services.CreateTeamInput{
		Name:      req.Name,
		CreatorID: userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

// ListMyMemberships returns the caller's memberships, pending invites included
func (h *TeamHandler) ListMyMemberships(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	memberships, err := h.memberships.ListByUser(c.Request.Context(), userID, pageOf(params))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.MembershipDTO, len(memberships))
	for i, m := range memberships {
		out[i] = dto.ToMembershipDTO(m, nil)
	}
	c.JSON(http.StatusOK, gin.H{
		"memberships": out,
		"page":        params.Page,
		"limit":       params.Limit,
	})
}

// ListMembers returns the team's members with their profiles
func (h *TeamHandler) ListMembers(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.Forbidden(c, "Team access required")
		return
	}
	params := utils.GetPaginationParams(c)

	members, err := h.memberships.ListByTeam(c.Request.Context(), team.ID, pageOf(params))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.MembershipDTO, len(members))
	for i, m := range members {
		out[i] = dto.ToMembershipDTO(m.Membership, m.Profile)
	}
	c.JSON(http.StatusOK, gin.H{
		"team":    dto.ToTeamDTO(*team),
		"members": out,
		"page":    params.Page,
		"limit":   params.Limit,
	})
}

// InviteMember creates a pending membership for another user
func (h *TeamHandler) InviteMember(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.Forbidden(c, "Team access required")
		return
	}

	type InviteRequest struct {
		UserID string `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	m, err := h.memberships.AddMembership(c.Request.Context(), services.AddMembershipInput{
		UserID: req.UserID,
		TeamID: team.ID,
		Role:   role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMembershipDTO(*m, nil))
}

// GetLeaveSafety reports whether the caller may leave the team
func (h *TeamHandler) GetLeaveSafety(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.safety.CheckCoachSafety(c.Request.Context(), userID, services.ActionLeaveTeam, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// LeaveTeam removes the caller's own membership
func (h *TeamHandler) LeaveTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.memberships.RemoveMembership(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TerminateTeam deactivates the team and removes everything that belongs to it
func (h *TeamHandler) TerminateTeam(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.Forbidden(c, "Team access required")
		return
	}

	report, err := h.cascade.TerminateTeam(c.Request.Context(), team.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReportDTO(report))
}

func pageOf(p utils.PaginationParams) repository.Page {
	return repository.Page{Limit: p.Limit, Offset: p.Offset}
}
