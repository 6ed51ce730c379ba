package handlers

import (
	"context"

	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (models.User, error)
	UpdateProfile(ctx context.Context, userID, fullName, email string) error
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
	UpdateCoverImage(ctx context.Context, userID, coverImageURL string) error
	RecordWatch(ctx context.Context, userID, videoID string) error
}

// SessionService drives the session lifecycle for the auth handlers.
type SessionService interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Login(ctx context.Context, identifier, password string) (models.User, models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, presented string) (models.SessionTokens, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// GraphStore answers the aggregated social-graph reads.
type GraphStore interface {
	ChannelProfile(ctx context.Context, viewerID, channelUsername string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, viewerID string) ([]models.VideoWithOwner, error)
	ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error)
	LikedVideos(ctx context.Context, viewerID string) ([]models.VideoWithOwner, error)
	ChannelSubscribers(ctx context.Context, channelID string) ([]repositories.SubscriptionEdge, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]repositories.SubscriptionEdge, error)
}

// VideoStore captures persistence for video workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.VideoWithOwner, error)
	List(ctx context.Context, opts repositories.VideoListOptions) ([]models.VideoWithOwner, error)
	Update(ctx context.Context, videoID, title, description, thumbnailURL string) error
	Delete(ctx context.Context, videoID string) error
	TogglePublished(ctx context.Context, videoID string) (bool, error)
	IncrementViews(ctx context.Context, videoID string) error
}

// EdgeStore toggles subscription and like edges.
type EdgeStore interface {
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
	ToggleLike(ctx context.Context, likedBy string, kind models.LikeKind, targetID string) (bool, error)
}

// CommentStore captures persistence for comment workflows.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, error)
	UpdateContent(ctx context.Context, commentID, content string) error
	Delete(ctx context.Context, commentID string) error
}

// TweetStore captures persistence for tweet workflows.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, ownerID string) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, tweetID, content string) error
	Delete(ctx context.Context, tweetID string) error
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	FindByIDWithVideos(ctx context.Context, id string) (models.PlaylistWithVideos, error)
	ListForUser(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, playlistID, name, description string) error
	Delete(ctx context.Context, playlistID string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// MediaStore uploads a local temp file to the object store and returns its
// public URL. The temp file is cleaned up on both success and failure.
type MediaStore interface {
	UploadFile(ctx context.Context, localPath string) (string, error)
}
