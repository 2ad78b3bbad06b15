package models

import "time"

type Team struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Active        bool       `json:"active"`
	CoachCount    int        `json:"coachCount"`
	CreatedBy     string     `json:"createdBy"`
	TournamentIDs []string   `json:"tournamentIds"`
	CreatedAt     time.Time  `json:"createdAt"`
	TerminatedAt  *time.Time `json:"terminatedAt,omitempty"`
}
