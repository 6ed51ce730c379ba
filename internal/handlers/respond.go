package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playtube/backend/internal/apperr"
	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// RefreshTokenCookie is the cookie carrying the refresh token.
const RefreshTokenCookie = "refreshToken"

type envelope struct {
	StatusCode int      `json:"statusCode"`
	Data       any      `json:"data"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors,omitempty"`
}

// respondData writes the uniform success envelope.
func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(ctx, w, envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// respondError maps a tagged error onto the uniform error envelope.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(ctx).Error("request failed", "error", err, "status", status)
	}
	writeEnvelope(ctx, w, envelope{
		StatusCode: status,
		Data:       nil,
		Message:    apperr.Message(err),
		Success:    false,
		Errors:     []string{},
	})
}

func writeEnvelope(ctx context.Context, w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", env.StatusCode, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case env.StatusCode >= http.StatusInternalServerError:
		logger.Error("request failed", "status", env.StatusCode, "message", env.Message)
	case env.StatusCode >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", env.StatusCode, "message", env.Message)
	}
}

// setSessionCookies installs both credential carriers with HttpOnly and
// Secure set, scoped to the whole API.
func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookies instructs the client to drop both credential carriers.
func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// requireUser fetches the authenticated user attached by the auth guard.
func requireUser(ctx context.Context, w http.ResponseWriter) (models.PublicUser, bool) {
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return models.PublicUser{}, false
	}
	return user, true
}

// decodeJSON parses the request body into dst, tagging failures BadRequest.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "invalid request body", err)
	}
	return nil
}

// tagStoreError maps repository sentinel errors onto boundary tags; anything
// else becomes an internal failure.
func tagStoreError(err error, notFoundMessage, conflictMessage string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, notFoundMessage, err)
	case errors.Is(err, repositories.ErrConflict):
		return apperr.Wrap(apperr.KindConflict, conflictMessage, err)
	default:
		return apperr.Wrap(apperr.KindInternal, "storage failure", err)
	}
}
