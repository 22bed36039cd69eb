package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk/internal/authz"
	"github.com/crewdesk/crewdesk/internal/session"
	_ "github.com/crewdesk/crewdesk/testing"
)

func newTestServer(t *testing.T, members map[string]*Member) *httptest.Server {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := session.NewStore(client, time.Hour)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(&mockRepo{members: members})
	provider := session.NewProvider(svc, store, nil, logger)
	handler := NewHandler(logger, provider, authz.Resolver{}, nil, false)

	r := chi.NewRouter()
	r.Use(session.Middleware(provider, logger))
	r.Route("/auth", handler.MountRoutes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func activeMembers(t *testing.T) map[string]*Member {
	t.Helper()
	return map[string]*Member{
		"admin@crewdesk.local": {
			ID:           1,
			Name:         "Alice Admin",
			Email:        "admin@crewdesk.local",
			PasswordHash: hashSecret(t, "admin-password"),
			Role:         authz.RoleAdmin,
			IsActive:     true,
		},
		"inactive@crewdesk.local": {
			ID:           2,
			Name:         "Ivan Inactive",
			Email:        "inactive@crewdesk.local",
			PasswordHash: hashSecret(t, "inactive-password"),
			Role:         authz.RoleMember,
			IsActive:     false,
		},
	}
}

func postLogin(t *testing.T, srv *httptest.Server, email, password string) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	res, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return res
}

func TestLoginSuccess(t *testing.T) {
	srv := newTestServer(t, activeMembers(t))

	res := postLogin(t, srv, "admin@crewdesk.local", "admin-password")
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload struct {
		Token     string `json:"token"`
		Principal struct {
			ID    int64      `json:"id"`
			Email string     `json:"email"`
			Role  authz.Role `json:"role"`
		} `json:"principal"`
		Capabilities map[string]bool `json:"capabilities"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, int64(1), payload.Principal.ID)
	assert.Equal(t, authz.RoleAdmin, payload.Principal.Role)
	assert.Len(t, payload.Capabilities, len(authz.Capabilities()))
	assert.True(t, payload.Capabilities["canManageUsers"])

	// The fallback cookie is set alongside the bearer token.
	var found bool
	for _, c := range res.Cookies() {
		if c.Name == session.CookieName {
			found = true
			assert.Equal(t, payload.Token, c.Value)
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "expected session cookie")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t, activeMembers(t))

	cases := map[string]struct {
		email    string
		password string
	}{
		"unknown email":    {"ghost@crewdesk.local", "ghost-password"},
		"wrong password":   {"admin@crewdesk.local", "not-the-password"},
		"inactive account": {"inactive@crewdesk.local", "inactive-password"},
	}

	var bodies []string
	for name, tc := range cases {
		res := postLogin(t, srv, tc.email, tc.password)
		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, name)
		assert.Contains(t, string(body), "invalid email or password", name)
		bodies = append(bodies, string(body))
	}
	// Same status, same message for every denial.
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[1], bodies[2])
}

func TestLoginValidation(t *testing.T) {
	srv := newTestServer(t, activeMembers(t))

	res := postLogin(t, srv, "not-an-email", "admin-password")
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader([]byte("{broken")))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSessionEndpoint(t *testing.T) {
	srv := newTestServer(t, activeMembers(t))

	// Before login the endpoint answers 401, never an error page.
	res, err := http.Get(srv.URL + "/auth/session")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	loginRes := postLogin(t, srv, "admin@crewdesk.local", "admin-password")
	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(loginRes.Body).Decode(&payload))
	loginRes.Body.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/session", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+payload.Token)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var restored struct {
		Token     string `json:"token"`
		Principal struct {
			Email string `json:"email"`
		} `json:"principal"`
		Capabilities map[string]bool `json:"capabilities"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&restored))
	// Restore never re-issues the token.
	assert.Empty(t, restored.Token)
	assert.Equal(t, "admin@crewdesk.local", restored.Principal.Email)
	assert.True(t, restored.Capabilities["canViewFinance"])
}

func TestLogoutEndsSession(t *testing.T) {
	srv := newTestServer(t, activeMembers(t))

	loginRes := postLogin(t, srv, "admin@crewdesk.local", "admin-password")
	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(loginRes.Body).Decode(&payload))
	loginRes.Body.Close()

	logout := func() *http.Response {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/logout", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+payload.Token)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return res
	}

	res := logout()
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	// The cookie is expired on the way out.
	for _, c := range res.Cookies() {
		if c.Name == session.CookieName {
			assert.Less(t, c.MaxAge, 0)
		}
	}

	// Logging out again is still a success.
	res = logout()
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	// The token no longer restores a session.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/session", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+payload.Token)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
