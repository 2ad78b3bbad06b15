package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-management-api/internal/dto"
	apierrors "github.com/yukikurage/team-management-api/internal/errors"
	"github.com/yukikurage/team-management-api/internal/middleware"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/services"
)

type TournamentHandler struct {
	tournaments *services.TournamentService
	organizers  *services.OrganizerService
	cascade     *services.CascadeService
}

func NewTournamentHandler(svc *services.Services) *TournamentHandler {
	return &TournamentHandler{
		tournaments: svc.Tournaments,
		organizers:  svc.Organizers,
		cascade:     svc.Cascade,
	}
}

// CreateTournament creates a tournament organized by the caller
func (h *TournamentHandler) CreateTournament(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type CreateTournamentRequest struct {
		Name          string `json:"name" binding:"required,max=100"`
		MaxOrganizers int    `json:"max_organizers" binding:"min=0"`
	}

	var req CreateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	t, err := h.tournaments.CreateTournament(c.Request.Context(), services.CreateTournamentInput{
		Name:          req.Name,
		CreatorID:     userID,
		MaxOrganizers: req.MaxOrganizers,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTournamentDTO(*t))
}

// ListOrganized returns the tournaments the caller actively organizes
func (h *TournamentHandler) ListOrganized(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tournaments, err := h.organizers.ListTournamentsOrganizedBy(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.TournamentDTO, len(tournaments))
	for i, t := range tournaments {
		out[i] = dto.ToTournamentDTO(t)
	}
	c.JSON(http.StatusOK, gin.H{"tournaments": out})
}

// ListOrganizers returns active organizers and pending invites of a tournament
func (h *TournamentHandler) ListOrganizers(c *gin.Context) {
	t, ok := middleware.GetTournament(c)
	if !ok {
		apierrors.Forbidden(c, "Tournament access required")
		return
	}

	rels, err := h.organizers.ListOrganizers(c.Request.Context(), t.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tournament": dto.ToTournamentDTO(*t),
		"organizers": toOrganizerDTOs(rels),
	})
}

// InviteOrganizer invites a user, by email, to co-organize the tournament
func (h *TournamentHandler) InviteOrganizer(c *gin.Context) {
	t, ok := middleware.GetTournament(c)
	if !ok {
		apierrors.Forbidden(c, "Tournament access required")
		return
	}

	type InviteOrganizerRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req InviteOrganizerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rel, err := h.organizers.InviteOrganizer(c.Request.Context(), t.ID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrganizerDTO(*rel))
}

// RemoveOrganizer removes an organizer or revokes a pending invite
func (h *TournamentHandler) RemoveOrganizer(c *gin.Context) {
	t, ok := middleware.GetTournament(c)
	if !ok {
		apierrors.Forbidden(c, "Tournament access required")
		return
	}

	if err := h.organizers.RemoveOrganizer(c.Request.Context(), c.Param("user_id"), t.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterTeam enters a team into the tournament
func (h *TournamentHandler) RegisterTeam(c *gin.Context) {
	t, ok := middleware.GetTournament(c)
	if !ok {
		apierrors.Forbidden(c, "Tournament access required")
		return
	}

	type RegisterTeamRequest struct {
		TeamID string `json:"team_id" binding:"required"`
	}

	var req RegisterTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.tournaments.RegisterTeam(c.Request.Context(), t.ID, req.TeamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTournamentDTO(*updated))
}

// DeleteTournament removes the tournament, its organizer relations and team links
func (h *TournamentHandler) DeleteTournament(c *gin.Context) {
	t, ok := middleware.GetTournament(c)
	if !ok {
		apierrors.Forbidden(c, "Tournament access required")
		return
	}

	report, err := h.cascade.DeleteTournament(c.Request.Context(), t.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReportDTO(report))
}

// ListMyInvites returns the caller's pending organizer invites
func (h *TournamentHandler) ListMyInvites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	rels, err := h.organizers.ListPendingInvites(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": toOrganizerDTOs(rels)})
}

// AcceptInvite accepts the caller's pending organizer invite
func (h *TournamentHandler) AcceptInvite(c *gin.Context) {
	rel, ok := h.ownInvite(c)
	if !ok {
		return
	}

	accepted, err := h.organizers.AcceptInvite(c.Request.Context(), rel.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganizerDTO(*accepted))
}

// DeclineInvite declines the caller's pending organizer invite
func (h *TournamentHandler) DeclineInvite(c *gin.Context) {
	rel, ok := h.ownInvite(c)
	if !ok {
		return
	}

	if err := h.organizers.DeclineInvite(c.Request.Context(), rel.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ownInvite loads the relation named by :id. Invites addressed to someone
// else are reported as missing.
func (h *TournamentHandler) ownInvite(c *gin.Context) (*models.OrganizerRelation, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	rel, err := h.organizers.GetRelation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if rel.UserID != userID {
		respondError(c, services.ErrOrganizerNotFound)
		return nil, false
	}
	return rel, true
}

func toOrganizerDTOs(rels []models.OrganizerRelation) []dto.OrganizerDTO {
	out := make([]dto.OrganizerDTO, len(rels))
	for i, rel := range rels {
		out[i] = dto.ToOrganizerDTO(rel)
	}
	return out
}
