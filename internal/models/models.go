package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account within the PlayTube platform. Username is stored
// lower-cased and is unique alongside email. CurrentRefreshToken holds the
// single refresh token the user may present; nil means no active session.
type User struct {
	ID                  string
	Username            string
	Email               string
	Password            string
	FullName            string
	AvatarURL           string
	CoverImageURL       string
	CurrentRefreshToken *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// Public strips credential material for responses and request contexts.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}

// HashPassword derives a bcrypt hash for storage on a user record.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// PublicUser is the projection of a user safe to return to clients.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatarUrl"`
	CoverImageURL string    `json:"coverImageUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}

// OwnerSummary is the reduced owner projection inlined into video payloads.
type OwnerSummary struct {
	FullName  string `json:"fullName"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// Video is an uploaded media item owned by a single user.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     int64     `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VideoWithOwner pairs a video with its owner projection.
type VideoWithOwner struct {
	Video
	Owner OwnerSummary `json:"owner"`
}

// Subscription is a subscriber → channel edge. At most one edge exists per
// pair and a user never subscribes to themselves.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LikeKind tags the entity a like points at.
type LikeKind string

const (
	LikeKindVideo   LikeKind = "video"
	LikeKindComment LikeKind = "comment"
	LikeKindTweet   LikeKind = "tweet"
)

// Valid reports whether the kind is one of the known like targets.
func (k LikeKind) Valid() bool {
	switch k {
	case LikeKindVideo, LikeKindComment, LikeKindTweet:
		return true
	}
	return false
}

// Like is a polymorphic edge from a user to a video, comment, or tweet.
// Uniqueness holds over (LikedBy, Kind, TargetID).
type Like struct {
	ID        string    `json:"id"`
	LikedBy   string    `json:"likedBy"`
	Kind      LikeKind  `json:"kind"`
	TargetID  string    `json:"targetId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment belongs to a video and is owned by its author.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tweet is a short text post owned by a user.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Playlist is a named, owned collection of videos.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistWithVideos pairs a playlist with its resolved videos.
type PlaylistWithVideos struct {
	Playlist
	Videos []VideoWithOwner `json:"videos"`
}

// SessionTokens groups the paired credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// ChannelProfile is the aggregated view of a channel for a given viewer.
type ChannelProfile struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	FullName         string `json:"fullName"`
	AvatarURL        string `json:"avatarUrl"`
	CoverImageURL    string `json:"coverImageUrl"`
	SubscribersCount int64  `json:"subscribersCount"`
	SubscribedTo     int64  `json:"channelsSubscribedToCount"`
	IsSubscribed     bool   `json:"isSubscribed"`
}

// ChannelStats aggregates dashboard counters for a channel owner.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}
