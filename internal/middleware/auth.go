package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/playtube/backend/internal/auth"
	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

type userCtxKey struct{}

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "accessToken"

// UserLoader resolves a verified token subject to a live user record.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// TokenVerifier validates an access token and returns the claimed user ID.
type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
}

// UserFromContext returns the authenticated user attached by RequireUser.
func UserFromContext(ctx context.Context) (models.PublicUser, bool) {
	user, ok := ctx.Value(userCtxKey{}).(models.PublicUser)
	return user, ok
}

// WithUser attaches a resolved user to the context. Exposed for handler tests.
func WithUser(ctx context.Context, user models.PublicUser) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// RequireUser verifies the request's access token and attaches the resolved
// user to the context. The token is read from the accessToken cookie first,
// then from an Authorization bearer header. The user is always re-loaded from
// the store; a token for a deleted account is rejected.
func RequireUser(codec TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := extractAccessToken(r)
			if token == "" {
				unauthorized(ctx, w, "authentication required")
				return
			}

			userID, err := codec.VerifyAccess(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					unauthorized(ctx, w, "access token expired")
					return
				}
				unauthorized(ctx, w, "invalid access token")
				return
			}

			user, err := users.FindByID(ctx, userID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					unauthorized(ctx, w, "invalid access token")
					return
				}
				logging.FromContext(ctx).Error("auth user lookup failed", "error", err, "userId", userID)
				writeError(ctx, w, http.StatusInternalServerError, "unable to authenticate request")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user.Public())))
		})
	}
}

func extractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}

func unauthorized(ctx context.Context, w http.ResponseWriter, message string) {
	logging.FromContext(ctx).Warn("request rejected", "reason", message)
	writeError(ctx, w, http.StatusUnauthorized, message)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload := map[string]any{
		"statusCode": status,
		"message":    message,
		"errors":     []string{},
		"success":    false,
		"data":       nil,
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode error response", "error", err)
	}
}
