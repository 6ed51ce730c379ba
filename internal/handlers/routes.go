package handlers

import (
	"net/http"
	"time"

	"github.com/playtube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users     UserStore
	Sessions  SessionService
	Graph     GraphStore
	Videos    VideoStore
	Edges     EdgeStore
	Comments  CommentStore
	Tweets    TweetStore
	Playlists PlaylistStore
	Media     MediaStore

	// Verifier and Loader back the auth guard on protected routes.
	Verifier middleware.TokenVerifier
	Loader   middleware.UserLoader

	NowFunc func() time.Time
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Every route
// except registration, login, token refresh, and the health probe sits behind
// the auth guard.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{Users: deps.Users, Sessions: deps.Sessions, Graph: deps.Graph, Media: deps.Media, NowFunc: deps.NowFunc}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, Media: deps.Media, NowFunc: deps.NowFunc}
	subscriptions := SubscriptionHandler{Edges: deps.Edges, Graph: deps.Graph}
	likes := LikeHandler{Edges: deps.Edges, Graph: deps.Graph}
	comments := CommentHandler{Comments: deps.Comments, NowFunc: deps.NowFunc}
	tweets := TweetHandler{Tweets: deps.Tweets, NowFunc: deps.NowFunc}
	playlists := PlaylistHandler{Playlists: deps.Playlists, NowFunc: deps.NowFunc}
	dashboard := DashboardHandler{Graph: deps.Graph, Videos: deps.Videos}

	guard := middleware.RequireUser(deps.Verifier, deps.Loader)
	protected := func(handler http.HandlerFunc) http.Handler {
		return guard(handler)
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.Refresh)
	mux.Handle("POST /api/v1/users/logout", protected(users.Logout))
	mux.Handle("POST /api/v1/users/change-password", protected(users.ChangePassword))
	mux.Handle("GET /api/v1/users/current-user", protected(users.CurrentUser))
	mux.Handle("PATCH /api/v1/users/update-account", protected(users.UpdateAccount))
	mux.Handle("PATCH /api/v1/users/avatar", protected(users.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover-image", protected(users.UpdateCoverImage))
	mux.Handle("GET /api/v1/users/c/{username}", protected(users.ChannelProfile))
	mux.Handle("GET /api/v1/users/history", protected(users.WatchHistory))

	mux.Handle("POST /api/v1/videos", protected(videos.Publish))
	mux.Handle("GET /api/v1/videos", protected(videos.List))
	mux.Handle("GET /api/v1/videos/{videoId}", protected(videos.Get))
	mux.Handle("PATCH /api/v1/videos/{videoId}", protected(videos.Update))
	mux.Handle("DELETE /api/v1/videos/{videoId}", protected(videos.Delete))
	mux.Handle("PATCH /api/v1/videos/toggle/publish/{videoId}", protected(videos.TogglePublish))

	mux.Handle("POST /api/v1/subscriptions/c/{channelId}", protected(subscriptions.Toggle))
	mux.Handle("GET /api/v1/subscriptions/u/{channelId}", protected(subscriptions.Subscribers))
	mux.Handle("GET /api/v1/subscriptions/c/{subscriberId}", protected(subscriptions.Subscriptions))

	mux.Handle("POST /api/v1/likes/toggle/v/{videoId}", protected(likes.ToggleVideo))
	mux.Handle("POST /api/v1/likes/toggle/c/{commentId}", protected(likes.ToggleComment))
	mux.Handle("POST /api/v1/likes/toggle/t/{tweetId}", protected(likes.ToggleTweet))
	mux.Handle("GET /api/v1/likes/videos", protected(likes.LikedVideos))

	mux.Handle("GET /api/v1/comments/{videoId}", protected(comments.List))
	mux.Handle("POST /api/v1/comments/{videoId}", protected(comments.Add))
	mux.Handle("PATCH /api/v1/comments/c/{commentId}", protected(comments.Update))
	mux.Handle("DELETE /api/v1/comments/c/{commentId}", protected(comments.Delete))

	mux.Handle("POST /api/v1/tweets", protected(tweets.Create))
	mux.Handle("GET /api/v1/tweets/user/{userId}", protected(tweets.ListForUser))
	mux.Handle("PATCH /api/v1/tweets/{tweetId}", protected(tweets.Update))
	mux.Handle("DELETE /api/v1/tweets/{tweetId}", protected(tweets.Delete))

	mux.Handle("POST /api/v1/playlists", protected(playlists.Create))
	mux.Handle("GET /api/v1/playlists/user/{userId}", protected(playlists.ListForUser))
	mux.Handle("GET /api/v1/playlists/{playlistId}", protected(playlists.Get))
	mux.Handle("PATCH /api/v1/playlists/{playlistId}", protected(playlists.Update))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}", protected(playlists.Delete))
	mux.Handle("PATCH /api/v1/playlists/add/{videoId}/{playlistId}", protected(playlists.AddVideo))
	mux.Handle("PATCH /api/v1/playlists/remove/{videoId}/{playlistId}", protected(playlists.RemoveVideo))

	mux.Handle("GET /api/v1/dashboard/stats", protected(dashboard.Stats))
	mux.Handle("GET /api/v1/dashboard/videos", protected(dashboard.ListVideos))
}
