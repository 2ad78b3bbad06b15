package dto

import (
	"time"

	"github.com/yukikurage/team-management-api/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Active        bool       `json:"active"`
	CoachCount    int        `json:"coach_count"`
	CreatedBy     string     `json:"created_by"`
	TournamentIDs []string   `json:"tournament_ids"`
	CreatedAt     time.Time  `json:"created_at"`
	TerminatedAt  *time.Time `json:"terminated_at,omitempty"`
}

// MembershipDTO represents a team membership, with the member's profile when loaded
type MembershipDTO struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	TeamID         string      `json:"team_id"`
	Role           models.Role `json:"role"`
	JoinedAt       time.Time   `json:"joined_at"`
	Active         bool        `json:"active"`
	InviteAccepted bool        `json:"invite_accepted"`
	User           *UserDTO    `json:"user,omitempty"`
}

// ToTeamDTO converts a team to DTO
func ToTeamDTO(team models.Team) TeamDTO {
	ids := team.TournamentIDs
	if ids == nil {
		ids = []string{}
	}
	return TeamDTO{
		ID:            team.ID,
		Name:          team.Name,
		Active:        team.Active,
		CoachCount:    team.CoachCount,
		CreatedBy:     team.CreatedBy,
		TournamentIDs: ids,
		CreatedAt:     team.CreatedAt,
		TerminatedAt:  team.TerminatedAt,
	}
}

// ToMembershipDTO converts a membership to DTO
func ToMembershipDTO(m models.Membership, profile *models.User) MembershipDTO {
	out := MembershipDTO{
		ID:             m.ID,
		UserID:         m.UserID,
		TeamID:         m.TeamID,
		Role:           m.Role,
		JoinedAt:       m.JoinedAt,
		Active:         m.Active,
		InviteAccepted: m.InviteAccepted,
	}
	if profile != nil {
		user := ToUserDTO(*profile)
		out.User = &user
	}
	return out
}
