package services

import (
	"github.com/yukikurage/team-management-api/internal/identity"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/repository"
)

// Options tunes the services built by New.
type Options struct {
	// MaxOrganizers is the default organizer limit of new tournaments.
	MaxOrganizers int
	// Concurrency bounds parallel store calls inside one operation.
	Concurrency int
}

// Services bundles every service over one set of repositories.
type Services struct {
	Auth        *AuthService
	Safety      *SafetyService
	Memberships *MembershipService
	Organizers  *OrganizerService
	Cascade     *CascadeService
	Teams       *TeamService
	Tournaments *TournamentService
}

// New wires every service.
func New(repos *repository.Repositories, identities identity.Provider, log *logger.Logger, opts Options) *Services {
	safety := NewSafetyService(repos, opts.Concurrency)
	memberships := NewMembershipService(repos, safety, log, opts.Concurrency)
	organizers := NewOrganizerService(repos, safety, log)

	return &Services{
		Auth:        NewAuthService(identities, repos.Users, log),
		Safety:      safety,
		Memberships: memberships,
		Organizers:  organizers,
		Cascade:     NewCascadeService(repos, safety, memberships, organizers, identities, log.With("component", "cascade"), opts.Concurrency),
		Teams:       NewTeamService(repos, memberships, log),
		Tournaments: NewTournamentService(repos, organizers, opts.MaxOrganizers, log),
	}
}
