package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-management-api/internal/constants"
	apierrors "github.com/yukikurage/team-management-api/internal/errors"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/store"
)

// RequireTeamMember loads the team named by :id and the caller's accepted
// membership in it. Non-members get 404 so team existence is not leaked.
func RequireTeamMember(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		team, err := repos.Teams.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortLookup(c, err, "Team not found")
			return
		}

		member, err := repos.Memberships.FindByUserAndTeam(c.Request.Context(), userID, team.ID)
		if err != nil {
			abortLookup(c, err, "Team not found")
			return
		}
		if member.Pending() {
			apierrors.NotFound(c, "Team not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTeam, team)
		c.Set(constants.ContextKeyMembership, member)
		c.Next()
	}
}

// RequireTeamCoach checks the membership set by RequireTeamMember is an accepted coach.
func RequireTeamCoach() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetMembership(c)
		if !ok {
			apierrors.Forbidden(c, "Team access required")
			c.Abort()
			return
		}
		if !member.CountsAsCoach() {
			apierrors.Forbidden(c, "Only coaches can perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireTournamentOrganizer loads the tournament named by :id and checks the
// caller is one of its active organizers.
func RequireTournamentOrganizer(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		tournament, err := repos.Tournaments.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortLookup(c, err, "Tournament not found")
			return
		}

		rel, err := repos.Organizers.FindByUserAndTournament(c.Request.Context(), userID, tournament.ID)
		if err != nil {
			abortLookup(c, err, "Tournament not found")
			return
		}
		if !rel.Active {
			apierrors.Forbidden(c, "Only organizers can perform this action")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTournament, tournament)
		c.Next()
	}
}

// GetTeam returns the team loaded by RequireTeamMember.
func GetTeam(c *gin.Context) (*models.Team, bool) {
	v, exists := c.Get(constants.ContextKeyTeam)
	if !exists {
		return nil, false
	}
	team, ok := v.(*models.Team)
	return team, ok
}

// GetMembership returns the caller's membership loaded by RequireTeamMember.
func GetMembership(c *gin.Context) (*models.Membership, bool) {
	v, exists := c.Get(constants.ContextKeyMembership)
	if !exists {
		return nil, false
	}
	member, ok := v.(*models.Membership)
	return member, ok
}

// GetTournament returns the tournament loaded by RequireTournamentOrganizer.
func GetTournament(c *gin.Context) (*models.Tournament, bool) {
	v, exists := c.Get(constants.ContextKeyTournament)
	if !exists {
		return nil, false
	}
	tournament, ok := v.(*models.Tournament)
	return tournament, ok
}

func abortLookup(c *gin.Context, err error, notFound string) {
	if errors.Is(err, store.ErrNotFound) {
		apierrors.NotFound(c, notFound)
	} else {
		apierrors.ServiceUnavailable(c, "", nil)
	}
	c.Abort()
}
