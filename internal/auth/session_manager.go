package auth

import (
	"context"
	"errors"

	"github.com/playtube/backend/internal/apperr"
	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// CredentialStore is the slice of user persistence the session lifecycle needs.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID string, token *string) error
	RotateRefreshToken(ctx context.Context, userID, old, new string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Manager orchestrates login, logout, refresh, and password changes. It owns
// every read and write of the per-user current refresh token: a user has at
// most one live refresh token, and issuing a session replaces it.
type Manager struct {
	codec *Codec
	users CredentialStore
}

// NewManager constructs a Manager over the token codec and credential store.
func NewManager(codec *Codec, users CredentialStore) *Manager {
	if codec == nil || users == nil {
		panic("auth: codec and credential store must not be nil")
	}
	return &Manager{codec: codec, users: users}
}

// Issue creates a new token pair for the user and persists the refresh token
// on the user record, invalidating any previous session.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	if _, err := m.loadUser(ctx, userID); err != nil {
		return models.SessionTokens{}, err
	}

	tokens, err := m.mint(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.users.SetRefreshToken(ctx, userID, &tokens.RefreshToken); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.SessionTokens{}, apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		return models.SessionTokens{}, apperr.Wrap(apperr.KindInternal, "failed to persist session", err)
	}

	return tokens, nil
}

// Login authenticates by email or username and issues a session on success.
func (m *Manager) Login(ctx context.Context, identifier, password string) (models.User, models.SessionTokens, error) {
	ctx, span := logging.StartSpan(ctx, "auth.login")
	defer span.End()

	user, err := m.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, models.SessionTokens{}, apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		return models.User{}, models.SessionTokens{}, apperr.Wrap(apperr.KindInternal, "failed to look up user", err)
	}

	if !user.CheckPassword(password) {
		return models.User{}, models.SessionTokens{}, apperr.New(apperr.KindUnauthorized, "invalid password")
	}

	tokens, err := m.Issue(ctx, user.ID)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	logging.FromContext(ctx).Info("session issued", "userId", user.ID)
	return user, tokens, nil
}

// Logout clears the user's current refresh token. Logging out twice is not an
// error; the field is simply set to null again.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	if err := m.users.SetRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		return apperr.Wrap(apperr.KindInternal, "failed to clear session", err)
	}
	return nil
}

// Refresh exchanges a presented refresh token for a new session. The token
// must verify cryptographically and equal the user's stored current refresh
// token; the swap is conditional on that stored value so concurrent refreshes
// with the same token produce exactly one winner.
func (m *Manager) Refresh(ctx context.Context, presented string) (models.SessionTokens, error) {
	ctx, span := logging.StartSpan(ctx, "auth.refresh")
	defer span.End()

	if presented == "" {
		return models.SessionTokens{}, apperr.New(apperr.KindUnauthorized, "refresh token is required")
	}

	userID, err := m.codec.VerifyRefresh(presented)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return models.SessionTokens{}, apperr.Wrap(apperr.KindUnauthorized, "refresh token expired", err)
		}
		return models.SessionTokens{}, apperr.Wrap(apperr.KindUnauthorized, "invalid refresh token", err)
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.SessionTokens{}, apperr.Wrap(apperr.KindUnauthorized, "invalid refresh token", err)
		}
		return models.SessionTokens{}, apperr.Wrap(apperr.KindInternal, "failed to look up user", err)
	}

	if user.CurrentRefreshToken == nil || *user.CurrentRefreshToken != presented {
		return models.SessionTokens{}, apperr.New(apperr.KindUnauthorized, "refresh token is expired or already used")
	}

	tokens, err := m.mint(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.users.RotateRefreshToken(ctx, userID, presented, tokens.RefreshToken); err != nil {
		switch {
		case errors.Is(err, repositories.ErrStaleToken):
			return models.SessionTokens{}, apperr.Wrap(apperr.KindUnauthorized, "refresh token is expired or already used", err)
		case errors.Is(err, repositories.ErrNotFound):
			return models.SessionTokens{}, apperr.Wrap(apperr.KindUnauthorized, "invalid refresh token", err)
		default:
			return models.SessionTokens{}, apperr.Wrap(apperr.KindInternal, "failed to persist session", err)
		}
	}

	logging.FromContext(ctx).Info("session rotated", "userId", userID)
	return tokens, nil
}

// ChangePassword verifies the old password and stores a hash of the new one.
// The current refresh token is left in place, matching the platform's
// long-standing behaviour of keeping the active session alive.
func (m *Manager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := m.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(oldPassword) {
		return apperr.New(apperr.KindUnauthorized, "old password is incorrect")
	}

	hashed, err := models.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to secure password", err)
	}

	if err := m.users.UpdatePassword(ctx, userID, hashed); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		return apperr.Wrap(apperr.KindInternal, "failed to update password", err)
	}

	return nil
}

func (m *Manager) loadUser(ctx context.Context, userID string) (models.User, error) {
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		return models.User{}, apperr.Wrap(apperr.KindInternal, "failed to look up user", err)
	}
	return user, nil
}

func (m *Manager) mint(userID string) (models.SessionTokens, error) {
	access, accessExp, err := m.codec.SignAccess(userID)
	if err != nil {
		return models.SessionTokens{}, apperr.Wrap(apperr.KindInternal, "failed to generate tokens", err)
	}

	refresh, refreshExp, err := m.codec.SignRefresh(userID)
	if err != nil {
		return models.SessionTokens{}, apperr.Wrap(apperr.KindInternal, "failed to generate tokens", err)
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
