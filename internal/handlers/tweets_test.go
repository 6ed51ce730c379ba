package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

type fakeTweetStore struct {
	mu     sync.Mutex
	tweets map[string]models.Tweet
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) ListForUser(_ context.Context, ownerID string) ([]models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == ownerID {
			out = append(out, tweet)
		}
	}
	return out, nil
}

func (s *fakeTweetStore) UpdateContent(_ context.Context, tweetID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tweet, ok := s.tweets[tweetID]
	if !ok {
		return repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[tweetID] = tweet
	return nil
}

func (s *fakeTweetStore) Delete(_ context.Context, tweetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[tweetID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, tweetID)
	return nil
}

func TestTweetHandlerCreateAndList(t *testing.T) {
	tweets := newFakeTweetStore()
	handler := TweetHandler{Tweets: tweets}
	user := models.User{ID: "user-1", Username: "ada"}

	body, err := json.Marshal(tweetRequest{Content: "hello world"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/tweets", bytes.NewReader(body)), user)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	req = authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/tweets/user/user-1", nil), user)
	req.SetPathValue("userId", "user-1")
	rec = httptest.NewRecorder()

	handler.ListForUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	env := decodeEnvelope(t, rec)

	var listed []models.Tweet
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("decode tweets: %v", err)
	}
	if len(listed) != 1 || listed[0].Content != "hello world" {
		t.Fatalf("unexpected tweets: %+v", listed)
	}
}

func TestTweetHandlerCreateRejectsEmptyContent(t *testing.T) {
	handler := TweetHandler{Tweets: newFakeTweetStore()}
	user := models.User{ID: "user-1", Username: "ada"}

	body, err := json.Marshal(tweetRequest{Content: "   "})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/tweets", bytes.NewReader(body)), user)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestTweetHandlerUpdateRequiresOwnership(t *testing.T) {
	tweets := newFakeTweetStore()
	tweets.tweets["tweet-1"] = models.Tweet{ID: "tweet-1", OwnerID: "someone-else", Content: "not yours"}
	handler := TweetHandler{Tweets: tweets}
	user := models.User{ID: "user-1", Username: "ada"}

	body, err := json.Marshal(tweetRequest{Content: "edited"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := authenticated(httptest.NewRequest(http.MethodPatch, "/api/v1/tweets/tweet-1", bytes.NewReader(body)), user)
	req.SetPathValue("tweetId", "tweet-1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
}

func TestTweetHandlerDelete(t *testing.T) {
	tweets := newFakeTweetStore()
	tweets.tweets["tweet-1"] = models.Tweet{ID: "tweet-1", OwnerID: "user-1", Content: "mine"}
	handler := TweetHandler{Tweets: tweets}
	user := models.User{ID: "user-1", Username: "ada"}

	req := authenticated(httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/tweet-1", nil), user)
	req.SetPathValue("tweetId", "tweet-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if len(tweets.tweets) != 0 {
		t.Fatal("expected tweet to be removed")
	}
}
