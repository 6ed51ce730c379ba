package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/apperr"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// CommentHandler implements per-video comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	NowFunc  func() time.Time
}

// List handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "video id is required"))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	comments, err := h.Comments.ListForVideo(ctx, videoID, page, limit)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to list comments", err))
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	respondData(ctx, w, http.StatusOK, comments, "comments fetched successfully")
}

type commentRequest struct {
	Content string `json:"content"`
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "video id is required"))
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "comment content cannot be empty"))
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   user.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, tagStoreError(err, "video not found", "comment already exists"))
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "comment added successfully")
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.requireOwnedComment(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "comment content cannot be empty"))
		return
	}

	if err := h.Comments.UpdateContent(ctx, comment.ID, req.Content); err != nil {
		respondError(ctx, w, tagStoreError(err, "comment not found", ""))
		return
	}

	comment.Content = req.Content
	respondData(ctx, w, http.StatusOK, comment, "comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.requireOwnedComment(w, r)
	if !ok {
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, tagStoreError(err, "comment not found", ""))
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "comment deleted successfully")
}

func (h CommentHandler) requireOwnedComment(w http.ResponseWriter, r *http.Request) (models.Comment, bool) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return models.Comment{}, false
	}

	commentID := r.PathValue("commentId")
	if commentID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "comment id is required"))
		return models.Comment{}, false
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.Wrap(apperr.KindNotFound, "comment not found", err))
			return models.Comment{}, false
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to load comment", err))
		return models.Comment{}, false
	}

	if comment.OwnerID != user.ID {
		respondError(ctx, w, apperr.New(apperr.KindForbidden, "you do not own this comment"))
		return models.Comment{}, false
	}

	return comment, true
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
