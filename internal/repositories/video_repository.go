package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// VideoListOptions narrows and pages the video listing query.
type VideoListOptions struct {
	OwnerID       string
	TitleQuery    string
	SortBy        string
	SortDesc      bool
	Page          int
	Limit         int
	OnlyPublished bool
}

// VideoRepository defines the data access contract for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.VideoWithOwner, error)
	List(ctx context.Context, opts VideoListOptions) ([]models.VideoWithOwner, error)
	Update(ctx context.Context, videoID, title, description, thumbnailURL string) error
	Delete(ctx context.Context, videoID string) error
	TogglePublished(ctx context.Context, videoID string) (bool, error)
	IncrementViews(ctx context.Context, videoID string) error
}

// EdgeRepository toggles the subscription and like edges of the social graph.
type EdgeRepository interface {
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (subscribed bool, err error)
	ToggleLike(ctx context.Context, likedBy string, kind models.LikeKind, targetID string) (liked bool, err error)
}

// CommentRepository defines the data access contract for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, error)
	UpdateContent(ctx context.Context, commentID, content string) error
	Delete(ctx context.Context, commentID string) error
}

// TweetRepository defines the data access contract for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, ownerID string) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, tweetID, content string) error
	Delete(ctx context.Context, tweetID string) error
}

// PlaylistRepository defines the data access contract for playlists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	FindByIDWithVideos(ctx context.Context, id string) (models.PlaylistWithVideos, error)
	ListForUser(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, playlistID, name, description string) error
	Delete(ctx context.Context, playlistID string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}
