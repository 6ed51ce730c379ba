package handlers

import (
	"net/http"

	"github.com/playtube/backend/internal/apperr"
	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/models"
)

// LikeHandler implements the polymorphic like edge endpoints.
type LikeHandler struct {
	Edges EdgeStore
	Graph GraphStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeKindVideo, "videoId")
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeKindComment, "commentId")
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeKindTweet, "tweetId")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.LikeKind, param string) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	targetID := r.PathValue(param)
	if targetID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, string(kind)+" id is required"))
		return
	}

	liked, err := h.Edges.ToggleLike(ctx, user.ID, kind, targetID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to toggle like", err))
		return
	}

	logging.FromContext(ctx).Info("like toggled",
		"userId", user.ID, "kind", kind, "targetId", targetID, "liked", liked)

	message := string(kind) + " unliked successfully"
	if liked {
		message = string(kind) + " liked successfully"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"liked": liked}, message)
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	videos, err := h.Graph.LikedVideos(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to list liked videos", err))
		return
	}
	if videos == nil {
		videos = []models.VideoWithOwner{}
	}

	respondData(ctx, w, http.StatusOK, videos, "liked videos fetched successfully")
}
