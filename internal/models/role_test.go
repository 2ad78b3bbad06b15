package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"COACH", RoleCoach},
		{"coach", RoleCoach},
		{" Player ", RolePlayer},
		{"parent", RoleParent},
		{"ORGANIZER", RoleOrganizer},
		{"staff", RoleStaff},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRole_Invalid(t *testing.T) {
	for _, in := range []string{"", "captain", "COACHES"} {
		_, err := ParseRole(in)
		assert.ErrorIs(t, err, ErrInvalidRole, in)
	}
}

func TestMembership_CountsAsCoach(t *testing.T) {
	m := Membership{Role: RoleCoach, Active: true, InviteAccepted: true}
	assert.True(t, m.CountsAsCoach())

	m.InviteAccepted = false
	assert.False(t, m.CountsAsCoach())
	assert.True(t, m.Pending())

	m = Membership{Role: RolePlayer, Active: true, InviteAccepted: true}
	assert.False(t, m.CountsAsCoach())
}
