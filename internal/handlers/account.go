package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-management-api/internal/dto"
	"github.com/yukikurage/team-management-api/internal/services"
)

// AccountHandler serves the account deletion flow.
type AccountHandler struct {
	safety  *services.SafetyService
	cascade *services.CascadeService
}

func NewAccountHandler(safety *services.SafetyService, cascade *services.CascadeService) *AccountHandler {
	return &AccountHandler{safety: safety, cascade: cascade}
}

// AccountSafetyResponse tells a client up front whether deleting the account would be refused.
type AccountSafetyResponse struct {
	CanDelete  bool                            `json:"can_delete"`
	Coaching   *services.CoachSafetyResult     `json:"coaching"`
	Organizing *services.OrganizerSafetyResult `json:"organizing"`
}

// GetDeletionSafety runs both pre-deletion checks without mutating anything.
func (h *AccountHandler) GetDeletionSafety(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	organizing, err := h.safety.CheckUserCanBeRemovedFromAllTournaments(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	coaching, err := h.safety.CheckCoachSafety(ctx, userID, services.ActionDeleteAccount, "")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AccountSafetyResponse{
		CanDelete:  organizing.CanProceed && coaching.CanProceed,
		Coaching:   coaching,
		Organizing: organizing,
	})
}

// DeleteAccount deletes the caller's account and ends the session.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	report, err := h.cascade.DeleteUserAccount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		_ = c.Error(err)
	}

	c.JSON(http.StatusOK, toReportDTO(report))
}

func toReportDTO(r *services.CascadeReport) dto.CascadeReportDTO {
	return dto.CascadeReportDTO{
		Operation:   r.Operation,
		Removed:     r.Removed,
		AlreadyGone: r.AlreadyGone,
		Skipped:     r.Skipped,
	}
}
