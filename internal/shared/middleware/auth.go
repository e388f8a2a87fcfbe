package middleware

import (
	"context"
	"net/http"
	"strings"

	"dynamite/internal/shared/auth"
)

type ContextKey string

const (
	UserIDKey    ContextKey = "user_id"
	SessionIDKey ContextKey = "session_id"
)

// DefaultSessionCookie is the cookie the identity provider sets in browsers.
const DefaultSessionCookie = "__session"

// Auth requires a verified identity token, taken from the Authorization
// header or the session cookie. The token subject becomes the account id.
func Auth(verifier *auth.Verifier, sessionCookie string) func(http.Handler) http.Handler {
	if sessionCookie == "" {
		sessionCookie = DefaultSessionCookie
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
					token = cookie.Value
				}
			}
			if token == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
			if claims.SessionID != "" {
				ctx = context.WithValue(ctx, SessionIDKey, claims.SessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated account id stored by Auth.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
