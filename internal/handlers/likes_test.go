package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playtube/backend/internal/models"
)

func toggleVideoLike(t *testing.T, handler LikeHandler, user models.User, videoID string) map[string]bool {
	t.Helper()
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/v/"+videoID, nil), user)
	req.SetPathValue("videoId", videoID)
	rec := httptest.NewRecorder()

	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)

	var state map[string]bool
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func TestLikeToggleVideo(t *testing.T) {
	edges := newFakeEdgeStore()
	handler := LikeHandler{Edges: edges, Graph: &fakeGraphStore{}}
	user := models.User{ID: "user-1", Username: "ada"}

	if state := toggleVideoLike(t, handler, user, "video-1"); !state["liked"] {
		t.Fatal("expected first toggle to like")
	}
	if state := toggleVideoLike(t, handler, user, "video-1"); state["liked"] {
		t.Fatal("expected second toggle to unlike")
	}
	if len(edges.likes) != 0 {
		t.Fatalf("expected no like edges after double toggle, got %d", len(edges.likes))
	}
}

func TestLikeTogglesAreIndependentPerKind(t *testing.T) {
	edges := newFakeEdgeStore()
	handler := LikeHandler{Edges: edges, Graph: &fakeGraphStore{}}
	user := models.User{ID: "user-1", Username: "ada"}

	// The same target id under different kinds is two distinct edges.
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/c/id-1", nil), user)
	req.SetPathValue("commentId", "id-1")
	rec := httptest.NewRecorder()
	handler.ToggleComment(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	req = authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/t/id-1", nil), user)
	req.SetPathValue("tweetId", "id-1")
	rec = httptest.NewRecorder()
	handler.ToggleTweet(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	if len(edges.likes) != 2 {
		t.Fatalf("expected 2 distinct like edges, got %d", len(edges.likes))
	}
}

func TestLikeLikedVideos(t *testing.T) {
	graph := &fakeGraphStore{liked: []models.VideoWithOwner{
		{
			Video: models.Video{ID: "video-1", Title: "Analytical Engines 101"},
			Owner: models.OwnerSummary{Username: "ada"},
		},
	}}
	handler := LikeHandler{Edges: newFakeEdgeStore(), Graph: graph}
	user := models.User{ID: "user-2", Username: "grace"}

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil), user)
	rec := httptest.NewRecorder()

	handler.LikedVideos(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	env := decodeEnvelope(t, rec)

	var videos []models.VideoWithOwner
	if err := json.Unmarshal(env.Data, &videos); err != nil {
		t.Fatalf("decode videos: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != "video-1" {
		t.Fatalf("unexpected liked videos: %+v", videos)
	}
}
