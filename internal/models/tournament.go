package models

import "time"

type Tournament struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OrganizerCount int       `json:"organizerCount"`
	MaxOrganizers  int       `json:"maxOrganizers"`
	TeamIDs        []string  `json:"teamIds"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Full reports whether no further organizers may be invited.
func (t *Tournament) Full() bool {
	return t.OrganizerCount >= t.MaxOrganizers
}
