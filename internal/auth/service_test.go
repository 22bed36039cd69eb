package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewdesk/crewdesk/internal/authz"
	"github.com/crewdesk/crewdesk/internal/shared"
)

type mockRepo struct {
	members map[string]*Member
	findErr error
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*Member, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	member, ok := m.members[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *member
	return &copied, nil
}

func (m *mockRepo) CreateSession(ctx context.Context, id string, memberID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (m *mockRepo) DeleteSession(ctx context.Context, id string) error { return nil }

func (m *mockRepo) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func hashSecret(t *testing.T, secret string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestVerifyUnknownEmail(t *testing.T) {
	svc := NewService(&mockRepo{members: map[string]*Member{}})

	principal, err := svc.Verify(context.Background(), "nobody@crewdesk.local", "whatever-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	assert.Nil(t, principal)
}

func TestVerifyWrongPassword(t *testing.T) {
	repo := &mockRepo{members: map[string]*Member{
		"leader@crewdesk.local": {
			ID:           2,
			Email:        "leader@crewdesk.local",
			PasswordHash: hashSecret(t, "leader-password"),
			Role:         authz.RoleTeamLeader,
			IsActive:     true,
		},
	}}
	svc := NewService(repo)

	_, err := svc.Verify(context.Background(), "leader@crewdesk.local", "not-the-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifyInactiveAccount(t *testing.T) {
	repo := &mockRepo{members: map[string]*Member{
		"former@crewdesk.local": {
			ID:           3,
			Email:        "former@crewdesk.local",
			PasswordHash: hashSecret(t, "former-password"),
			Role:         authz.RoleMember,
			IsActive:     false,
		},
	}}
	svc := NewService(repo)

	// The secret matched, so this is the one case distinguishable from bad
	// credentials. Callers still report both the same way to the client.
	_, err := svc.Verify(context.Background(), "former@crewdesk.local", "former-password")
	require.ErrorIs(t, err, shared.ErrAccountInactive)

	// A wrong secret on an inactive account stays indistinguishable from any
	// other failed login.
	_, err = svc.Verify(context.Background(), "former@crewdesk.local", "wrong-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifySuccess(t *testing.T) {
	teamID := int64(7)
	repo := &mockRepo{members: map[string]*Member{
		"fin@crewdesk.local": {
			ID:           4,
			Name:         "Fiona Finance",
			Email:        "fin@crewdesk.local",
			PasswordHash: hashSecret(t, "finance-password"),
			Role:         authz.RoleFinanceDirector,
			TeamID:       &teamID,
			IsActive:     true,
		},
	}}
	svc := NewService(repo)

	principal, err := svc.Verify(context.Background(), "fin@crewdesk.local", "finance-password")
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, int64(4), principal.ID)
	assert.Equal(t, "Fiona Finance", principal.Name)
	assert.Equal(t, authz.RoleFinanceDirector, principal.Role)
	require.NotNil(t, principal.TeamID)
	assert.Equal(t, teamID, *principal.TeamID)
}

func TestVerifyRepositoryFailurePassesThrough(t *testing.T) {
	repo := &mockRepo{findErr: context.DeadlineExceeded}
	svc := NewService(repo)

	_, err := svc.Verify(context.Background(), "admin@crewdesk.local", "admin-password")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}
