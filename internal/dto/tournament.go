package dto

import (
	"time"

	"github.com/yukikurage/team-management-api/internal/models"
)

// TournamentDTO represents a tournament in API responses
type TournamentDTO struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OrganizerCount int       `json:"organizer_count"`
	MaxOrganizers  int       `json:"max_organizers"`
	TeamIDs        []string  `json:"team_ids"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// OrganizerDTO represents an organizer relation or a pending organizer invite
type OrganizerDTO struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	TournamentID string    `json:"tournament_id"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToTournamentDTO(t models.Tournament) TournamentDTO {
	ids := t.TeamIDs
	if ids == nil {
		ids = []string{}
	}
	return TournamentDTO{
		ID:             t.ID,
		Name:           t.Name,
		OrganizerCount: t.OrganizerCount,
		MaxOrganizers:  t.MaxOrganizers,
		TeamIDs:        ids,
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
	}
}

func ToOrganizerDTO(rel models.OrganizerRelation) OrganizerDTO {
	return OrganizerDTO{
		ID:           rel.ID,
		UserID:       rel.UserID,
		TournamentID: rel.TournamentID,
		Active:       rel.Active,
		CreatedAt:    rel.CreatedAt,
	}
}
