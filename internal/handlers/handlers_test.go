package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-management-api/internal/dto"
	"github.com/yukikurage/team-management-api/internal/identity"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/services"
	"github.com/yukikurage/team-management-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type handlerTestEnv struct {
	router *gin.Engine
	store  *store.MemoryStore
	repos  *repository.Repositories
	svc    *services.Services
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.NewMemoryStore()
	repos := repository.New(s)
	identities := identity.NewStoreProvider(s).WithCost(bcrypt.MinCost)
	log := logger.NewNop()
	svc := services.New(repos, identities, log, services.Options{MaxOrganizers: 3, Concurrency: 2})

	router := NewRouter(RouterDeps{
		Services:     svc,
		Repositories: repos,
		Sessions:     cookie.NewStore([]byte("secret")),
		Log:          log,
	})

	return &handlerTestEnv{router: router, store: s, repos: repos, svc: svc}
}

// client is a signed-in user carrying its session cookie.
type client struct {
	env    *handlerTestEnv
	user   dto.UserDTO
	cookie *http.Cookie
}

func (e *handlerTestEnv) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login signs up email and returns a client holding the login session.
func (e *handlerTestEnv) login(t *testing.T, email string) *client {
	t.Helper()

	w := e.do(http.MethodPost, "/api/auth/signup", map[string]string{"email": email, "password": "supersecret"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "supersecret"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))

	resp := w.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	return &client{env: e, user: user, cookie: cookies[0]}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	return c.env.do(method, path, body, c.cookie)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (c *client) createTeam(t *testing.T, name string) dto.TeamDTO {
	t.Helper()
	w := c.do(http.MethodPost, "/api/teams", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.TeamDTO](t, w)
}

func (c *client) createTournament(t *testing.T, name string) dto.TournamentDTO {
	t.Helper()
	w := c.do(http.MethodPost, "/api/tournaments", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.TournamentDTO](t, w)
}

// joinTeam has coach invite c to the team with role and c accept it.
func (c *client) joinTeam(t *testing.T, coach *client, teamID, role string) dto.MembershipDTO {
	t.Helper()
	w := coach.do(http.MethodPost, "/api/teams/"+teamID+"/invites", map[string]string{"user_id": c.user.ID, "role": role})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	invite := decode[dto.MembershipDTO](t, w)

	w = c.do(http.MethodPost, "/api/memberships/"+invite.ID+"/accept", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[dto.MembershipDTO](t, w)
}
