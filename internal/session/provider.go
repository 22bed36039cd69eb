package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/crewdesk/crewdesk/internal/authz"
)

// Verifier checks submitted credentials against the member registry. It is
// the only place a secret is ever compared; the provider never retains one.
type Verifier interface {
	Verify(ctx context.Context, email, secret string) (*authz.Principal, error)
}

// Auditor records session lifecycle events for later inspection. Audit
// failures are logged and swallowed: they never block a login or logout.
type Auditor interface {
	CreateSession(ctx context.Context, token string, memberID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, token string) error
}

// LoginMeta carries request attributes recorded with the session audit row.
type LoginMeta struct {
	IP        string
	UserAgent string
}

// Provider owns the principal lifecycle: it is the single writer of session
// state, and everything else observes through Restore.
type Provider struct {
	verifier Verifier
	store    *Store
	auditor  Auditor
	logger   *slog.Logger
	inflight singleflight.Group
}

// NewProvider constructs a Provider. The auditor is optional.
func NewProvider(verifier Verifier, store *Store, auditor Auditor, logger *slog.Logger) *Provider {
	return &Provider{verifier: verifier, store: store, auditor: auditor, logger: logger}
}

type loginResult struct {
	principal *authz.Principal
	token     string
}

// Login verifies credentials, mints a token and persists the principal.
// Either the session fully transitions to authenticated or nothing changes:
// a verification failure leaves no state behind. Concurrent attempts with
// identical credentials coalesce into a single verification.
func (p *Provider) Login(ctx context.Context, email, secret string, meta LoginMeta) (*authz.Principal, string, error) {
	v, err, _ := p.inflight.Do(loginKey(email, secret), func() (any, error) {
		principal, err := p.verifier.Verify(ctx, email, secret)
		if err != nil {
			return nil, err
		}
		principal.IssuedAt = time.Now().UTC()
		token := NewToken()
		if err := p.store.Save(ctx, token, principal); err != nil {
			return nil, err
		}
		if p.auditor != nil {
			expiresAt := principal.IssuedAt.Add(p.store.TTL())
			if err := p.auditor.CreateSession(ctx, token, principal.ID, expiresAt, meta.IP, meta.UserAgent); err != nil && p.logger != nil {
				p.logger.Warn("register session", slog.Any("error", err))
			}
		}
		return loginResult{principal: principal, token: token}, nil
	})
	if err != nil {
		return nil, "", err
	}
	res := v.(loginResult)
	return res.principal, res.token, nil
}

// Restore resolves a token back to its principal. An empty, unknown or
// corrupted token yields a nil principal; only infrastructure failures
// return an error, and callers treat those as unauthenticated too.
func (p *Provider) Restore(ctx context.Context, token string) (*authz.Principal, error) {
	if token == "" {
		return nil, nil
	}
	return p.store.Load(ctx, token)
}

// Logout clears the persisted principal. It is idempotent: logging out an
// already-cleared token succeeds.
func (p *Provider) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := p.store.Clear(ctx, token); err != nil {
		return err
	}
	if p.auditor != nil {
		if err := p.auditor.DeleteSession(ctx, token); err != nil && p.logger != nil {
			p.logger.Warn("remove session", slog.Any("error", err))
		}
	}
	return nil
}

// TTL exposes the session lifetime.
func (p *Provider) TTL() time.Duration {
	return p.store.TTL()
}

func loginKey(email, secret string) string {
	sum := sha256.Sum256([]byte(email + "\x00" + secret))
	return hex.EncodeToString(sum[:])
}
