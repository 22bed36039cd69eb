package auth

import (
	"time"

	"github.com/crewdesk/crewdesk/internal/authz"
)

// Member represents a registered member account in the organization's
// registry. The password hash never leaves this package.
type Member struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         authz.Role
	TeamID       *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal strips a member down to its session-relevant attributes.
func (m *Member) Principal() *authz.Principal {
	return &authz.Principal{
		ID:     m.ID,
		Name:   m.Name,
		Email:  m.Email,
		Role:   m.Role,
		TeamID: m.TeamID,
	}
}
