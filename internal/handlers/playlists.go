package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/apperr"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	NowFunc   func() time.Time
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "playlist name is required"))
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, tagStoreError(err, "user not found", "playlist already exists"))
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// ListForUser handles GET /api/v1/playlists/user/{userId}.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	userID := r.PathValue("userId")
	if userID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "user id is required"))
		return
	}

	playlists, err := h.Playlists.ListForUser(ctx, userID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to list playlists", err))
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	respondData(ctx, w, http.StatusOK, playlists, "playlists fetched successfully")
}

// Get handles GET /api/v1/playlists/{playlistId}, returning the playlist with
// its videos in insertion order.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	playlistID := r.PathValue("playlistId")
	if playlistID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "playlist id is required"))
		return
	}

	playlist, err := h.Playlists.FindByIDWithVideos(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, tagStoreError(err, "playlist not found", ""))
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist fetched successfully")
}

// Update handles PATCH /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.requireOwnedPlaylist(w, r, "playlistId")
	if !ok {
		return
	}

	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = playlist.Name
	}
	description := req.Description
	if description == "" {
		description = playlist.Description
	}

	if err := h.Playlists.Update(ctx, playlist.ID, name, description); err != nil {
		respondError(ctx, w, tagStoreError(err, "playlist not found", ""))
		return
	}

	playlist.Name = name
	playlist.Description = description
	respondData(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.requireOwnedPlaylist(w, r, "playlistId")
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondError(ctx, w, tagStoreError(err, "playlist not found", ""))
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "playlist deleted successfully")
}

// AddVideo handles PATCH /api/v1/playlists/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, videoID, ok := h.requirePlaylistAndVideo(w, r)
	if !ok {
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		respondError(ctx, w, tagStoreError(err, "video not found", "video is already in the playlist"))
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video added to playlist")
}

// RemoveVideo handles PATCH /api/v1/playlists/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, videoID, ok := h.requirePlaylistAndVideo(w, r)
	if !ok {
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		respondError(ctx, w, tagStoreError(err, "video is not in the playlist", ""))
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video removed from playlist")
}

func (h PlaylistHandler) requirePlaylistAndVideo(w http.ResponseWriter, r *http.Request) (models.Playlist, string, bool) {
	ctx := r.Context()

	playlist, ok := h.requireOwnedPlaylist(w, r, "playlistId")
	if !ok {
		return models.Playlist{}, "", false
	}

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "video id is required"))
		return models.Playlist{}, "", false
	}

	return playlist, videoID, true
}

func (h PlaylistHandler) requireOwnedPlaylist(w http.ResponseWriter, r *http.Request, param string) (models.Playlist, bool) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return models.Playlist{}, false
	}

	playlistID := r.PathValue(param)
	if playlistID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "playlist id is required"))
		return models.Playlist{}, false
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.Wrap(apperr.KindNotFound, "playlist not found", err))
			return models.Playlist{}, false
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to load playlist", err))
		return models.Playlist{}, false
	}

	if playlist.OwnerID != user.ID {
		respondError(ctx, w, apperr.New(apperr.KindForbidden, "you do not own this playlist"))
		return models.Playlist{}, false
	}

	return playlist, true
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
