package models

import "time"

// Membership binds a user to a team. A pending invite has Active and
// InviteAccepted both false; an accepted membership has both true.
type Membership struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	TeamID         string    `json:"teamId"`
	Role           Role      `json:"role"`
	JoinedAt       time.Time `json:"joinedAt"`
	Active         bool      `json:"active"`
	InviteAccepted bool      `json:"inviteAccepted"`
}

// Pending reports whether the membership is an unanswered invite.
func (m *Membership) Pending() bool {
	return !m.InviteAccepted
}

// CountsAsCoach reports whether m counts toward the team's coach invariant.
func (m *Membership) CountsAsCoach() bool {
	return m.Role == RoleCoach && m.Active && m.InviteAccepted
}
