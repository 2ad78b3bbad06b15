package models

import "time"

// OrganizerRelation binds a user to a tournament. Active=false is a pending invite.
type OrganizerRelation struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	TournamentID string    `json:"tournamentId"`
	CreatedAt    time.Time `json:"createdAt"`
	Active       bool      `json:"active"`
}
