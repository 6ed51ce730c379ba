package handlers

import (
	"net/http"

	"github.com/playtube/backend/internal/apperr"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// DashboardHandler serves the channel owner's own stats and uploads.
type DashboardHandler struct {
	Graph  GraphStore
	Videos VideoStore
}

// Stats handles GET /api/v1/dashboard/stats. Totals cover every video the
// owner has uploaded, published or not.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	stats, err := h.Graph.ChannelStats(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to load channel stats", err))
		return
	}

	respondData(ctx, w, http.StatusOK, stats, "channel stats fetched successfully")
}

// ListVideos handles GET /api/v1/dashboard/videos, listing the owner's uploads
// including unpublished ones.
func (h DashboardHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	videos, err := h.Videos.List(ctx, repositories.VideoListOptions{
		OwnerID:  user.ID,
		SortBy:   "createdAt",
		SortDesc: true,
	})
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to list channel videos", err))
		return
	}
	if videos == nil {
		videos = []models.VideoWithOwner{}
	}

	respondData(ctx, w, http.StatusOK, videos, "channel videos fetched successfully")
}
