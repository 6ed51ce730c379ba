package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/apperr"
	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

const maxUploadBytes = 256 << 20

// UserHandler implements registration, session, and profile endpoints.
type UserHandler struct {
	Users    UserStore
	Sessions SessionService
	Graph    GraphStore
	Media    MediaStore
	NowFunc  func() time.Time
}

// Register handles POST /api/v1/users/register. Registration is multipart:
// profile fields plus a mandatory avatar image and an optional cover image,
// both pushed to the object store before the record is created.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid multipart payload", err))
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "fullName, email, username, and password are required"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid email address", err))
		return
	}
	if len(password) < 8 {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "password must be at least 8 characters"))
		return
	}

	avatarPath, err := saveTempUpload(r, "avatar")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if avatarPath == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "avatar image is required"))
		return
	}

	avatarURL, err := h.Media.UploadFile(ctx, avatarPath)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to upload avatar", err))
		return
	}

	coverImageURL := ""
	if coverPath, err := saveTempUpload(r, "coverImage"); err != nil {
		respondError(ctx, w, err)
		return
	} else if coverPath != "" {
		coverImageURL, err = h.Media.UploadFile(ctx, coverPath)
		if err != nil {
			respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to upload cover image", err))
			return
		}
	}

	hashed, err := models.HashPassword(password)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to secure password", err))
		return
	}

	now := h.now()
	user := models.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		Password:      hashed,
		FullName:      fullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		respondError(ctx, w, tagStoreError(err, "user not found", "email or username already exists"))
		return
	}

	logger.Info("user registered", "userId", user.ID, "username", username)
	respondData(ctx, w, http.StatusCreated, user.Public(), "user created successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	identifier := strings.TrimSpace(req.Email)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Username)
	}
	if identifier == "" || req.Password == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "email or username and password are required"))
		return
	}

	user, tokens, err := h.Sessions.Login(ctx, identifier, req.Password)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens)
	respondData(ctx, w, http.StatusOK, sessionResponse{
		User:         user.Public(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "user logged in successfully")
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	if err := h.Sessions.Logout(ctx, user.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearSessionCookies(w)
	respondData(ctx, w, http.StatusOK, nil, "user logged out successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/v1/users/refresh-token. The refresh token may be
// carried by its cookie or by the request body.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	presented := ""
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" && r.Body != nil {
		var req refreshRequest
		// A missing or empty body is fine here; the cookie may carry the token.
		if err := decodeJSON(r, &req); err == nil {
			presented = strings.TrimSpace(req.RefreshToken)
		}
	}

	tokens, err := h.Sessions.Refresh(ctx, presented)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens)
	respondData(ctx, w, http.StatusOK, tokens, "session refreshed successfully")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "old and new passwords are required"))
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "password must be at least 8 characters"))
		return
	}

	if err := h.Sessions.ChangePassword(ctx, user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "password changed successfully")
}

// CurrentUser handles GET /api/v1/users/current-user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	respondData(ctx, w, http.StatusOK, user, "current user fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateAccount handles PATCH /api/v1/users/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if fullName == "" || email == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "fullName and email are required"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid email address", err))
		return
	}

	if err := h.Users.UpdateProfile(ctx, user.ID, fullName, email); err != nil {
		respondError(ctx, w, tagStoreError(err, "user not found", "email already in use"))
		return
	}

	refreshed, err := h.Users.FindByID(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, tagStoreError(err, "user not found", ""))
		return
	}

	respondData(ctx, w, http.StatusOK, refreshed.Public(), "account updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.Users.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.Users.UpdateCoverImage)
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, update func(ctx context.Context, userID, url string) error) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid multipart payload", err))
		return
	}

	path, err := saveTempUpload(r, field)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if path == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, field+" image is required"))
		return
	}

	url, err := h.Media.UploadFile(ctx, path)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to upload image", err))
		return
	}

	if err := update(ctx, user.ID, url); err != nil {
		respondError(ctx, w, tagStoreError(err, "user not found", ""))
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]string{"url": url}, field+" updated successfully")
}

// ChannelProfile handles GET /api/v1/users/c/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "username is required"))
		return
	}

	profile, err := h.Graph.ChannelProfile(ctx, viewer.ID, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.Wrap(apperr.KindNotFound, "channel not found", err))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to load channel profile", err))
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "channel profile fetched successfully")
}

// WatchHistory handles GET /api/v1/users/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	history, err := h.Graph.WatchHistory(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to load watch history", err))
		return
	}
	if history == nil {
		history = []models.VideoWithOwner{}
	}

	respondData(ctx, w, http.StatusOK, history, "watch history fetched successfully")
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// saveTempUpload copies the named multipart file to a temp file and returns
// its path, or "" when the field is absent.
func saveTempUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", apperr.Wrap(apperr.KindBadRequest, "invalid "+field+" upload", err)
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "playtube-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to buffer upload", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", apperr.Wrap(apperr.KindInternal, "failed to buffer upload", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", apperr.Wrap(apperr.KindInternal, "failed to buffer upload", err)
	}

	return tmp.Name(), nil
}
