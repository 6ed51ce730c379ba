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

// TweetHandler implements tweet endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	NowFunc func() time.Time
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	var req tweetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "tweet content cannot be empty"))
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   user.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, tagStoreError(err, "user not found", "tweet already exists"))
		return
	}

	respondData(ctx, w, http.StatusCreated, tweet, "tweet created successfully")
}

// ListForUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	userID := r.PathValue("userId")
	if userID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "user id is required"))
		return
	}

	tweets, err := h.Tweets.ListForUser(ctx, userID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to list tweets", err))
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	respondData(ctx, w, http.StatusOK, tweets, "tweets fetched successfully")
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, ok := h.requireOwnedTweet(w, r)
	if !ok {
		return
	}

	var req tweetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "tweet content cannot be empty"))
		return
	}

	if err := h.Tweets.UpdateContent(ctx, tweet.ID, req.Content); err != nil {
		respondError(ctx, w, tagStoreError(err, "tweet not found", ""))
		return
	}

	tweet.Content = req.Content
	respondData(ctx, w, http.StatusOK, tweet, "tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, ok := h.requireOwnedTweet(w, r)
	if !ok {
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondError(ctx, w, tagStoreError(err, "tweet not found", ""))
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "tweet deleted successfully")
}

func (h TweetHandler) requireOwnedTweet(w http.ResponseWriter, r *http.Request) (models.Tweet, bool) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return models.Tweet{}, false
	}

	tweetID := r.PathValue("tweetId")
	if tweetID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "tweet id is required"))
		return models.Tweet{}, false
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.Wrap(apperr.KindNotFound, "tweet not found", err))
			return models.Tweet{}, false
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to load tweet", err))
		return models.Tweet{}, false
	}

	if tweet.OwnerID != user.ID {
		respondError(ctx, w, apperr.New(apperr.KindForbidden, "you do not own this tweet"))
		return models.Tweet{}, false
	}

	return tweet, true
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
