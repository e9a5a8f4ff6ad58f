package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dchoi22/todoapp/app/services"
)

// AccessTokenCookie is the cookie page flows carry the token in. API clients
// use the Authorization header instead; both feed the same resolution path.
const AccessTokenCookie = "access_token"

type ctxKey string

const (
	ctxUserID   ctxKey = "userID"
	ctxUsername ctxKey = "username"
	ctxRole     ctxKey = "role"
)

// resolveToken pulls the access token from the request: Authorization header
// first, access_token cookie second. Empty string means no token present.
func resolveToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// resolveClaims resolves and verifies the request's token. Absent and invalid
// tokens both yield nil; the adapters below decide how to fail.
func resolveClaims(r *http.Request) *services.AccessClaims {
	tokenStr := resolveToken(r)
	if tokenStr == "" {
		return nil
	}
	claims, err := services.ValidateAccessToken(tokenStr)
	if err != nil {
		return nil
	}
	return claims
}

func withClaims(ctx context.Context, claims *services.AccessClaims) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, claims.UserID)
	ctx = context.WithValue(ctx, ctxUsername, claims.Subject)
	ctx = context.WithValue(ctx, ctxRole, claims.Role)
	return ctx
}

// JWTAuth is the hard-failure adapter for API routes: no identity means 401.
func JWTAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := resolveClaims(r)
			if claims == nil {
				http.Error(w, "authentication failed", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// PageAuth is the soft-failure adapter for page routes: no identity means a
// redirect to the login page with the stale cookie cleared.
func PageAuth(loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := resolveClaims(r)
			if claims == nil {
				ClearAccessTokenCookie(w)
				http.Redirect(w, r, loginURL, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// SetAccessTokenCookie stores the access token for page flows.
func SetAccessTokenCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secureCookies(),
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearAccessTokenCookie removes the access token cookie.
func ClearAccessTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secureCookies(),
		MaxAge:   -1,
	})
}

func secureCookies() bool {
	return os.Getenv("ENVIRONMENT") == "production" || os.Getenv("COOKIE_SECURE") == "true"
}

// UserIDFromContext retrieves the user ID set by the auth adapters.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v, true
	}
	return 0, false
}

// UsernameFromContext retrieves the username set by the auth adapters.
func UsernameFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(ctxUsername).(string); ok {
		return v, true
	}
	return "", false
}

// RoleFromContext retrieves the role set by the auth adapters.
func RoleFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v, true
	}
	return "", false
}

// RequireRoles enforces that the caller's role is in the allowed list.
func RequireRoles(allowed ...string) func(http.Handler) http.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				http.Error(w, "role not found in context", http.StatusForbidden)
				return
			}
			if _, ok := allowedSet[role]; !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
