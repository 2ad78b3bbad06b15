package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-management-api/internal/constants"
	apierrors "github.com/yukikurage/team-management-api/internal/errors"
	"github.com/yukikurage/team-management-api/internal/middleware"
	"github.com/yukikurage/team-management-api/internal/services"
)

// SafetyViolationDetails identifies the team or tournament that would lose its last privileged member.
type SafetyViolationDetails struct {
	Aggregate       services.Aggregate `json:"aggregate"`
	ID              string             `json:"id"`
	Name            string             `json:"name,omitempty"`
	PrivilegedCount int                `json:"privileged_count"`
}

// CascadeStageDetails names the cascade stage that could not complete.
type CascadeStageDetails struct {
	Operation string `json:"operation"`
	Stage     string `json:"stage"`
}

// respondError maps service errors onto API errors.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var violation *services.SafetyViolationError
	var stageErr *services.CascadeStageError

	switch {
	case errors.As(err, &violation):
		apierrors.SafetyViolation(c, violation.Message, SafetyViolationDetails{
			Aggregate:       violation.Aggregate,
			ID:              violation.AggregateID,
			Name:            violation.AggregateName,
			PrivilegedCount: violation.PrivilegedCount,
		})
	case errors.As(err, &stageErr):
		apierrors.ServiceUnavailable(c, "Operation stopped before completing; retry to resume", CascadeStageDetails{
			Operation: stageErr.Operation,
			Stage:     stageErr.Stage,
		})
	case errors.Is(err, services.ErrValidation):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrMembershipNotFound),
		errors.Is(err, services.ErrOrganizerNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyTeamMember),
		errors.Is(err, services.ErrAlreadyOrganizer),
		errors.Is(err, services.ErrTeamAlreadyRegistered):
		apierrors.Conflict(c, apierrors.ErrCodeAlreadyExists, err.Error())
	case errors.Is(err, services.ErrInviteNotPending):
		apierrors.Conflict(c, apierrors.ErrCodeInvalidOperation, err.Error())
	case errors.Is(err, services.ErrOrganizerCapacityReached):
		apierrors.Conflict(c, apierrors.ErrCodeCapacityReached, err.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		apierrors.ServiceUnavailable(c, "", nil)
	default:
		apierrors.InternalError(c, "")
	}
}

func bindError(c *gin.Context, err error) {
	_ = c.Error(err)
	apierrors.BadRequest(c, "Invalid request body")
}

func currentUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return userID, ok
}
