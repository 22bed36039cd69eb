package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/crewdesk/crewdesk/internal/authz"
	"github.com/crewdesk/crewdesk/internal/shared"
)

// Service wraps credential verification business rules. It satisfies
// session.Verifier: the session provider delegates every login here and
// never sees a password hash.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Verify validates email/password credentials against the member registry.
// An unknown email and a wrong password both return ErrInvalidCredentials;
// a deactivated account returns ErrAccountInactive, which the HTTP boundary
// reports identically.
func (s *Service) Verify(ctx context.Context, email, secret string) (*authz.Principal, error) {
	member, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(secret)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !member.IsActive {
		return nil, shared.ErrAccountInactive
	}
	return member.Principal(), nil
}
