package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crewdesk/crewdesk/internal/authz"
)

// CookieName is the fallback transport for the session token when the
// frontend cannot set an Authorization header (full-page navigations).
const CookieName = "crewdesk_session"

type tokenContextKey struct{}

// ContextWithToken stores the raw session token in context so downstream
// calls can forward it as a bearer credential.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext extracts the session token, or "" when absent.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// Middleware restores the principal for the request before any guard runs.
// Requests with no token, an unknown token or an unreadable record proceed
// unauthenticated; a session-store outage is logged and also degrades to
// unauthenticated rather than failing the request.
func Middleware(provider *Provider, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			ctx := ContextWithToken(r.Context(), token)
			principal, err := provider.Restore(ctx, token)
			if err != nil {
				if logger != nil {
					logger.Warn("restore session", slog.Any("error", err))
				}
			} else if principal != nil {
				ctx = authz.ContextWithPrincipal(ctx, principal)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest resolves the session token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// WriteCookie mirrors the token into the fallback cookie after login.
func WriteCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie expires the fallback cookie on logout.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
