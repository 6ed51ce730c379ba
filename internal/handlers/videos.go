package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/apperr"
	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// VideoHandler implements video publishing and retrieval endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Users   UserStore
	Media   MediaStore
	NowFunc func() time.Time
}

// Publish handles POST /api/v1/videos. The video file and thumbnail arrive as
// multipart uploads; both are pushed to the object store and their temp files
// are removed whether or not the uploads succeed.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid multipart payload", err))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "title is required"))
		return
	}

	videoPath, err := saveTempUpload(r, "videoFile")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	thumbnailPath, err := saveTempUpload(r, "thumbnail")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if videoPath == "" || thumbnailPath == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "video file and thumbnail are required"))
		return
	}

	videoURL, err := h.Media.UploadFile(ctx, videoPath)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to upload video", err))
		return
	}
	thumbnailURL, err := h.Media.UploadFile(ctx, thumbnailPath)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to upload thumbnail", err))
		return
	}

	duration, _ := strconv.ParseInt(r.FormValue("duration"), 10, 64)

	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      user.ID,
		Title:        title,
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Duration:     duration,
		Published:    true,
		CreatedAt:    h.now(),
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondError(ctx, w, tagStoreError(err, "owner not found", "video already exists"))
		return
	}

	logging.FromContext(ctx).Info("video published", "videoId", video.ID, "ownerId", user.ID)
	respondData(ctx, w, http.StatusCreated, video, "video published successfully")
}

// List handles GET /api/v1/videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	opts := repositories.VideoListOptions{
		OwnerID:       query.Get("userId"),
		TitleQuery:    query.Get("query"),
		SortBy:        query.Get("sortBy"),
		SortDesc:      query.Get("sortType") != "asc",
		Page:          page,
		Limit:         limit,
		OnlyPublished: true,
	}

	videos, err := h.Videos.List(ctx, opts)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to list videos", err))
		return
	}
	if videos == nil {
		videos = []models.VideoWithOwner{}
	}

	respondData(ctx, w, http.StatusOK, videos, "videos fetched successfully")
}

// Get handles GET /api/v1/videos/{videoId}. Fetching a video records it in
// the viewer's watch history and bumps the view counter.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "video id is required"))
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, tagStoreError(err, "video not found", ""))
		return
	}

	logger := logging.FromContext(ctx)
	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Warn("increment views failed", "videoId", videoID, "error", err)
	}
	if err := h.Users.RecordWatch(ctx, viewer.ID, videoID); err != nil {
		logger.Warn("record watch failed", "videoId", videoID, "userId", viewer.ID, "error", err)
	}

	respondData(ctx, w, http.StatusOK, video, "video fetched successfully")
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Update handles PATCH /api/v1/videos/{videoId}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.requireOwnedVideo(w, r)
	if !ok {
		return
	}

	var req updateVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = video.Title
	}
	description := req.Description
	if description == "" {
		description = video.Description
	}

	if err := h.Videos.Update(ctx, video.ID, title, description, ""); err != nil {
		respondError(ctx, w, tagStoreError(err, "video not found", ""))
		return
	}

	updated, err := h.Videos.FindByID(ctx, video.ID)
	if err != nil {
		respondError(ctx, w, tagStoreError(err, "video not found", ""))
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.requireOwnedVideo(w, r)
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondError(ctx, w, tagStoreError(err, "video not found", ""))
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.requireOwnedVideo(w, r)
	if !ok {
		return
	}

	published, err := h.Videos.TogglePublished(ctx, video.ID)
	if err != nil {
		respondError(ctx, w, tagStoreError(err, "video not found", ""))
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]bool{"published": published}, "publish state toggled successfully")
}

// requireOwnedVideo loads the path video and enforces that the authenticated
// user owns it.
func (h VideoHandler) requireOwnedVideo(w http.ResponseWriter, r *http.Request) (models.VideoWithOwner, bool) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return models.VideoWithOwner{}, false
	}

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "video id is required"))
		return models.VideoWithOwner{}, false
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.Wrap(apperr.KindNotFound, "video not found", err))
			return models.VideoWithOwner{}, false
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to load video", err))
		return models.VideoWithOwner{}, false
	}

	if video.OwnerID != user.ID {
		respondError(ctx, w, apperr.New(apperr.KindForbidden, "you do not own this video"))
		return models.VideoWithOwner{}, false
	}

	return video, true
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
