package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-management-api/internal/dto"
	apierrors "github.com/yukikurage/team-management-api/internal/errors"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/services"
)

type membersResponse struct {
	Team    dto.TeamDTO         `json:"team"`
	Members []dto.MembershipDTO `json:"members"`
}

func TestTeamHandler_CreateAndListMembers(t *testing.T) {
	env := setupHandlerTestEnv(t)
	coach := env.login(t, "coach@example.com")
	team := coach.createTeam(t, "Falcons")

	assert.True(t, team.Active)
	assert.Equal(t, 1, team.CoachCount)

	w := coach.do(http.MethodGet, "/api/teams/"+team.ID+"/members", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[membersResponse](t, w)
	require.Len(t, resp.Members, 1)
	assert.Equal(t, "COACH", string(resp.Members[0].Role))
	require.NotNil(t, resp.Members[0].User)
	assert.Equal(t, "coach@example.com", resp.Members[0].User.Email)

	w = coach.do(http.MethodGet, "/api/teams", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Memberships []dto.MembershipDTO `json:"memberships"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Len(t, mine.Memberships, 1)
}

func TestTeamHandler_MembersHiddenFromOutsiders(t *testing.T) {
	env := setupHandlerTestEnv(t)
	coach := env.login(t, "coach@example.com")
	outsider := env.login(t, "outsider@example.com")
	team := coach.createTeam(t, "Falcons")

	w := outsider.do(http.MethodGet, "/api/teams/"+team.ID+"/members", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = coach.do(http.MethodGet, "/api/teams/missing/members", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeamHandler_InviteRequiresCoach(t *testing.T) {
	env := setupHandlerTestEnv(t)
	coach := env.login(t, "coach@example.com")
	player := env.login(t, "player@example.com")
	other := env.login(t, "other@example.com")
	team := coach.createTeam(t, "Falcons")
	player.joinTeam(t, coach, team.ID, "player")

	w := player.do(http.MethodPost, "/api/teams/"+team.ID+"/invites", map[string]string{"user_id": other.user.ID, "role": "PLAYER"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = coach.do(http.MethodPost, "/api/teams/"+team.ID+"/invites", map[string]string{"user_id": other.user.ID, "role": "CAPTAIN"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = coach.do(http.MethodPost, "/api/teams/"+team.ID+"/invites", map[string]string{"user_id": player.user.ID, "role": "PLAYER"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrCodeAlreadyExists, decode[apierrors.APIError](t, w).Code)
}

func TestTeamHandler_SoleCoachCannotLeave(t *testing.T) {
	env := setupHandlerTestEnv(t)
	coach := env.login(t, "coach@example.com")
	team := coach.createTeam(t, "Falcons")

	w := coach.do(http.MethodGet, "/api/teams/"+team.ID+"/safety", nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[services.CoachSafetyResult](t, w)
	assert.False(t, result.CanProceed)
	assert.Equal(t, 1, result.CoachCount)

	w = coach.do(http.MethodDelete, "/api/teams/"+team.ID+"/members/me", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Code    string                 `json:"code"`
		Details SafetyViolationDetails `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierrors.ErrCodeSafetyViolation, body.Code)
	assert.Equal(t, services.AggregateTeam, body.Details.Aggregate)
	assert.Equal(t, team.ID, body.Details.ID)
	assert.Equal(t, "Falcons", body.Details.Name)
	assert.Equal(t, 1, body.Details.PrivilegedCount)
}

func TestTeamHandler_LeaveWithSecondCoach(t *testing.T) {
	env := setupHandlerTestEnv(t)
	coach := env.login(t, "coach@example.com")
	second := env.login(t, "second@example.com")
	team := coach.createTeam(t, "Falcons")
	second.joinTeam(t, coach, team.ID, "COACH")

	w := coach.do(http.MethodDelete, "/api/teams/"+team.ID+"/members/me", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = coach.do(http.MethodDelete, "/api/teams/"+team.ID+"/members/me", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = second.do(http.MethodDelete, "/api/teams/"+team.ID+"/members/me", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTeamHandler_Terminate(t *testing.T) {
	env := setupHandlerTestEnv(t)
	coach := env.login(t, "coach@example.com")
	player := env.login(t, "player@example.com")
	team := coach.createTeam(t, "Falcons")
	player.joinTeam(t, coach, team.ID, "PLAYER")

	w := player.do(http.MethodDelete, "/api/teams/"+team.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = coach.do(http.MethodDelete, "/api/teams/"+team.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[dto.CascadeReportDTO](t, w)
	assert.Equal(t, services.OperationTerminateTeam, report.Operation)
	// chat room plus two memberships
	assert.Equal(t, 3, report.Removed)

	ids, err := env.repos.Dependents.ListIDs(context.Background(), repository.CollectionMemberships, "teamId", team.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	w = coach.do(http.MethodGet, "/api/teams/"+team.ID+"/members", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMembershipHandler_RoleChangesAndRemoval(t *testing.T) {
	env := setupHandlerTestEnv(t)
	coach := env.login(t, "coach@example.com")
	player := env.login(t, "player@example.com")
	team := coach.createTeam(t, "Falcons")
	m := player.joinTeam(t, coach, team.ID, "PLAYER")

	w := player.do(http.MethodPatch, "/api/memberships/"+m.ID, map[string]string{"role": "COACH"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = coach.do(http.MethodPatch, "/api/memberships/"+m.ID, map[string]string{"role": "staff"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "STAFF", string(decode[dto.MembershipDTO](t, w).Role))

	w = coach.do(http.MethodDelete, "/api/memberships/"+m.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = coach.do(http.MethodDelete, "/api/memberships/"+m.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMembershipHandler_InviteIsPrivate(t *testing.T) {
	env := setupHandlerTestEnv(t)
	coach := env.login(t, "coach@example.com")
	invitee := env.login(t, "invitee@example.com")
	stranger := env.login(t, "stranger@example.com")
	team := coach.createTeam(t, "Falcons")

	w := coach.do(http.MethodPost, "/api/teams/"+team.ID+"/invites", map[string]string{"user_id": invitee.user.ID, "role": "PARENT"})
	require.Equal(t, http.StatusCreated, w.Code)
	invite := decode[dto.MembershipDTO](t, w)
	assert.False(t, invite.InviteAccepted)

	w = stranger.do(http.MethodPost, "/api/memberships/"+invite.ID+"/accept", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = coach.do(http.MethodPost, "/api/memberships/"+invite.ID+"/accept", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = invitee.do(http.MethodPost, "/api/memberships/"+invite.ID+"/decline", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = invitee.do(http.MethodPost, "/api/memberships/"+invite.ID+"/accept", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
