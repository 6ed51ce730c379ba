package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

type fakeVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
	owners map[string]models.OwnerSummary
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{
		videos: make(map[string]models.Video),
		owners: make(map[string]models.OwnerSummary),
	}
}

func (s *fakeVideoStore) put(video models.Video, owner models.OwnerSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[video.ID] = video
	s.owners[video.ID] = owner
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.videos[video.ID]; exists {
		return repositories.ErrConflict
	}
	s.videos[video.ID] = video
	s.owners[video.ID] = models.OwnerSummary{}
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.VideoWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.VideoWithOwner{}, repositories.ErrNotFound
	}
	return models.VideoWithOwner{Video: video, Owner: s.owners[id]}, nil
}

func (s *fakeVideoStore) List(_ context.Context, opts repositories.VideoListOptions) ([]models.VideoWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.VideoWithOwner
	for id, video := range s.videos {
		if opts.OwnerID != "" && video.OwnerID != opts.OwnerID {
			continue
		}
		if opts.OnlyPublished && !video.Published {
			continue
		}
		out = append(out, models.VideoWithOwner{Video: video, Owner: s.owners[id]})
	}
	return out, nil
}

func (s *fakeVideoStore) Update(_ context.Context, videoID, title, description, thumbnailURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Title = title
	video.Description = description
	if thumbnailURL != "" {
		video.ThumbnailURL = thumbnailURL
	}
	s.videos[videoID] = video
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[videoID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, videoID)
	return nil
}

func (s *fakeVideoStore) TogglePublished(_ context.Context, videoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	video.Published = !video.Published
	s.videos[videoID] = video
	return video.Published, nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[videoID] = video
	return nil
}

func TestVideoHandlerPublish(t *testing.T) {
	store := newInMemoryUserStore()
	videos := newFakeVideoStore()
	media := &fakeMediaStore{}
	handler := VideoHandler{Videos: videos, Users: store, Media: media}
	user := seedStoredUser(t, store, "password123")

	body, contentType := multipartBody(t,
		map[string]string{"title": "Analytical Engines 101", "description": "An introduction.", "duration": "420"},
		map[string]string{"videoFile": "engines.mp4", "thumbnail": "engines.png"},
	)

	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/videos", body), user)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)

	var created models.Video
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode video: %v", err)
	}
	if created.OwnerID != user.ID || !created.Published || created.Duration != 420 {
		t.Fatalf("unexpected video: %+v", created)
	}
	if media.uploads != 2 {
		t.Fatalf("expected video and thumbnail uploads, got %d", media.uploads)
	}
}

func TestVideoHandlerPublishRequiresFiles(t *testing.T) {
	store := newInMemoryUserStore()
	handler := VideoHandler{Videos: newFakeVideoStore(), Users: store, Media: &fakeMediaStore{}}
	user := seedStoredUser(t, store, "password123")

	body, contentType := multipartBody(t, map[string]string{"title": "No files"}, nil)

	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/videos", body), user)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestVideoHandlerGetRecordsViewAndHistory(t *testing.T) {
	store := newInMemoryUserStore()
	videos := newFakeVideoStore()
	handler := VideoHandler{Videos: videos, Users: store, Media: &fakeMediaStore{}}
	user := seedStoredUser(t, store, "password123")

	videos.put(models.Video{ID: "video-1", OwnerID: "user-2", Title: "Debugging in Practice", Published: true},
		models.OwnerSummary{Username: "grace"})

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/videos/video-1", nil), user)
	req.SetPathValue("videoId", "video-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored, err := videos.FindByID(context.Background(), "video-1")
	if err != nil {
		t.Fatalf("find video: %v", err)
	}
	if stored.Views != 1 {
		t.Fatalf("expected view counter to be bumped, got %d", stored.Views)
	}
}

func TestVideoHandlerUpdateRequiresOwnership(t *testing.T) {
	store := newInMemoryUserStore()
	videos := newFakeVideoStore()
	handler := VideoHandler{Videos: videos, Users: store, Media: &fakeMediaStore{}}
	user := seedStoredUser(t, store, "password123")

	videos.put(models.Video{ID: "video-1", OwnerID: "someone-else", Title: "Not Yours"}, models.OwnerSummary{})

	req := authenticated(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/video-1", nil), user)
	req.SetPathValue("videoId", "video-1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
}

func TestVideoHandlerTogglePublish(t *testing.T) {
	store := newInMemoryUserStore()
	videos := newFakeVideoStore()
	handler := VideoHandler{Videos: videos, Users: store, Media: &fakeMediaStore{}}
	user := seedStoredUser(t, store, "password123")

	videos.put(models.Video{ID: "video-1", OwnerID: user.ID, Title: "Mine", Published: true}, models.OwnerSummary{})

	req := authenticated(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/toggle/publish/video-1", nil), user)
	req.SetPathValue("videoId", "video-1")
	rec := httptest.NewRecorder()

	handler.TogglePublish(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)

	var state map[string]bool
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state["published"] {
		t.Fatal("expected publish state to flip to false")
	}
}

func TestVideoHandlerDeleteMissing(t *testing.T) {
	store := newInMemoryUserStore()
	handler := VideoHandler{Videos: newFakeVideoStore(), Users: store, Media: &fakeMediaStore{}}
	user := seedStoredUser(t, store, "password123")

	req := authenticated(httptest.NewRequest(http.MethodDelete, "/api/v1/videos/nope", nil), user)
	req.SetPathValue("videoId", "nope")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}
