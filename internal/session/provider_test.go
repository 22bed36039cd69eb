package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk/internal/authz"
	"github.com/crewdesk/crewdesk/internal/shared"
)

type stubVerifier struct {
	principal *authz.Principal
	err       error
	calls     int
}

func (s *stubVerifier) Verify(ctx context.Context, email, secret string) (*authz.Principal, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p := *s.principal
	return &p, nil
}

type recordingAuditor struct {
	registered []string
	removed    []string
}

func (a *recordingAuditor) CreateSession(ctx context.Context, token string, memberID int64, expiresAt time.Time, ip, ua string) error {
	a.registered = append(a.registered, token)
	return nil
}

func (a *recordingAuditor) DeleteSession(ctx context.Context, token string) error {
	a.removed = append(a.removed, token)
	return nil
}

func newTestProvider(t *testing.T, verifier Verifier, auditor Auditor) *Provider {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(client, time.Hour)
	return NewProvider(verifier, store, auditor, nil)
}

func TestLoginSuccessPersistsPrincipal(t *testing.T) {
	verifier := &stubVerifier{principal: &authz.Principal{
		ID:    1,
		Name:  "Alice Admin",
		Email: "admin@crewdesk.local",
		Role:  authz.RoleAdmin,
	}}
	auditor := &recordingAuditor{}
	provider := newTestProvider(t, verifier, auditor)
	ctx := context.Background()

	principal, token, err := provider.Login(ctx, "admin@crewdesk.local", "admin-password", LoginMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, authz.RoleAdmin, principal.Role)
	assert.False(t, principal.IssuedAt.IsZero())

	restored, err := provider.Restore(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, principal.ID, restored.ID)
	assert.Equal(t, principal.Role, restored.Role)

	require.Len(t, auditor.registered, 1)
	assert.Equal(t, token, auditor.registered[0])
}

func TestLoginInvalidCredentialsLeavesNoState(t *testing.T) {
	verifier := &stubVerifier{err: shared.ErrInvalidCredentials}
	provider := newTestProvider(t, verifier, nil)

	principal, token, err := provider.Login(context.Background(), "admin@crewdesk.local", "wrong-password", LoginMeta{})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	assert.Nil(t, principal)
	assert.Empty(t, token)
}

func TestLoginInactiveAccount(t *testing.T) {
	verifier := &stubVerifier{err: shared.ErrAccountInactive}
	provider := newTestProvider(t, verifier, nil)

	_, _, err := provider.Login(context.Background(), "inactive@crewdesk.local", "inactive-password", LoginMeta{})
	require.ErrorIs(t, err, shared.ErrAccountInactive)
}

func TestRestoreEmptyToken(t *testing.T) {
	provider := newTestProvider(t, &stubVerifier{err: shared.ErrInvalidCredentials}, nil)

	principal, err := provider.Restore(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, principal)
}

func TestLogoutIsIdempotent(t *testing.T) {
	verifier := &stubVerifier{principal: &authz.Principal{ID: 5, Role: authz.RoleMember}}
	auditor := &recordingAuditor{}
	provider := newTestProvider(t, verifier, auditor)
	ctx := context.Background()

	_, token, err := provider.Login(ctx, "member@crewdesk.local", "member-password", LoginMeta{})
	require.NoError(t, err)

	require.NoError(t, provider.Logout(ctx, token))
	require.NoError(t, provider.Logout(ctx, token))

	restored, err := provider.Restore(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, restored)

	// Logging out with no session at all also succeeds.
	require.NoError(t, provider.Logout(ctx, ""))
}

func TestConcurrentIdenticalLoginsCoalesce(t *testing.T) {
	verifier := &stubVerifier{principal: &authz.Principal{ID: 9, Role: authz.RoleMember}}
	provider := newTestProvider(t, verifier, nil)
	ctx := context.Background()

	const attempts = 8
	tokens := make(chan string, attempts)
	start := make(chan struct{})
	for range attempts {
		go func() {
			<-start
			_, token, err := provider.Login(ctx, "member@crewdesk.local", "member-password", LoginMeta{})
			require.NoError(t, err)
			tokens <- token
		}()
	}
	close(start)

	unique := make(map[string]struct{})
	for range attempts {
		unique[<-tokens] = struct{}{}
	}
	// Verification runs at most once per coalesced burst.
	assert.LessOrEqual(t, verifier.calls, len(unique))
}
