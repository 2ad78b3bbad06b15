package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-management-api/internal/constants"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/middleware"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/services"
)

// RouterDeps holds everything the HTTP layer is wired to.
type RouterDeps struct {
	Services     *services.Services
	Repositories *repository.Repositories
	Sessions     sessions.Store
	Log          *logger.Logger
	CORSOrigins  []string
	// AuthLimiter throttles signup and login. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Log))
	if len(deps.CORSOrigins) > 0 {
		r.Use(middleware.CORS(deps.CORSOrigins))
	}
	r.Use(sessions.Sessions(constants.SessionName, deps.Sessions))

	authHandler := NewAuthHandler(deps.Services.Auth)
	accountHandler := NewAccountHandler(deps.Services.Safety, deps.Services.Cascade)
	teamHandler := NewTeamHandler(deps.Services)
	membershipHandler := NewMembershipHandler(deps.Services.Memberships, deps.Repositories.Memberships)
	tournamentHandler := NewTournamentHandler(deps.Services)

	requireMember := middleware.RequireTeamMember(deps.Repositories)
	requireCoach := middleware.RequireTeamCoach()
	requireOrganizer := middleware.RequireTournamentOrganizer(deps.Repositories)

	throttle := func(c *gin.Context) { c.Next() }
	if deps.AuthLimiter != nil {
		throttle = deps.AuthLimiter.Middleware()
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Team Management API is running",
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", throttle, authHandler.Signup)
			auth.POST("/login", throttle, authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		account := api.Group("/account")
		account.Use(middleware.RequireAuth())
		{
			account.GET("/safety", accountHandler.GetDeletionSafety)
			account.DELETE("", accountHandler.DeleteAccount)
		}

		teams := api.Group("/teams")
		teams.Use(middleware.RequireAuth())
		{
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("", teamHandler.ListMyMemberships)
			teams.GET("/:id/members", requireMember, teamHandler.ListMembers)
			teams.POST("/:id/invites", requireMember, requireCoach, teamHandler.InviteMember)
			teams.GET("/:id/safety", teamHandler.GetLeaveSafety)
			teams.DELETE("/:id/members/me", teamHandler.LeaveTeam)
			teams.DELETE("/:id", requireMember, requireCoach, teamHandler.TerminateTeam)
		}

		memberships := api.Group("/memberships")
		memberships.Use(middleware.RequireAuth())
		{
			memberships.POST("/:id/accept", membershipHandler.AcceptInvite)
			memberships.POST("/:id/decline", membershipHandler.DeclineInvite)
			memberships.PATCH("/:id", membershipHandler.UpdateRole)
			memberships.DELETE("/:id", membershipHandler.RemoveMembership)
		}

		tournaments := api.Group("/tournaments")
		tournaments.Use(middleware.RequireAuth())
		{
			tournaments.POST("", tournamentHandler.CreateTournament)
			tournaments.GET("/organized", tournamentHandler.ListOrganized)
			tournaments.GET("/:id/organizers", requireOrganizer, tournamentHandler.ListOrganizers)
			tournaments.POST("/:id/organizers", requireOrganizer, tournamentHandler.InviteOrganizer)
			tournaments.DELETE("/:id/organizers/:user_id", requireOrganizer, tournamentHandler.RemoveOrganizer)
			tournaments.POST("/:id/teams", requireOrganizer, tournamentHandler.RegisterTeam)
			tournaments.DELETE("/:id", requireOrganizer, tournamentHandler.DeleteTournament)
		}

		invites := api.Group("/organizer-invites")
		invites.Use(middleware.RequireAuth())
		{
			invites.GET("", tournamentHandler.ListMyInvites)
			invites.POST("/:id/accept", tournamentHandler.AcceptInvite)
			invites.POST("/:id/decline", tournamentHandler.DeclineInvite)
		}
	}

	return r
}
