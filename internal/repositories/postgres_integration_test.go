package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playtube/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "ada", "ada@example.com")

	fetched, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.Email != user.Email || fetched.Username != "ada" {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}
	if fetched.CurrentRefreshToken != nil {
		t.Fatal("expected a fresh user to carry no refresh token")
	}

	// Identifier lookup matches email and username, the latter
	// case-insensitively.
	if _, err := repo.FindByIdentifier(ctx, "ada@example.com"); err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if _, err := repo.FindByIdentifier(ctx, "ADA"); err != nil {
		t.Fatalf("find by upper-cased username: %v", err)
	}
	if _, err := repo.FindByIdentifier(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown identifier, got %v", err)
	}

	dup := models.User{
		ID:        uuid.NewString(),
		Username:  "ada",
		Email:     "other@example.com",
		Password:  "hash",
		FullName:  "Other",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate username, got %v", err)
	}
}

func TestPostgresUserRepository_RefreshTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "ada", "ada@example.com")

	first := "refresh-1"
	if err := repo.SetRefreshToken(ctx, user.ID, &first); err != nil {
		t.Fatalf("set refresh token: %v", err)
	}

	fetched, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if fetched.CurrentRefreshToken == nil || *fetched.CurrentRefreshToken != first {
		t.Fatal("expected refresh token to persist")
	}

	// The swap only succeeds against the stored value.
	if err := repo.RotateRefreshToken(ctx, user.ID, first, "refresh-2"); err != nil {
		t.Fatalf("rotate refresh token: %v", err)
	}
	if err := repo.RotateRefreshToken(ctx, user.ID, first, "refresh-3"); !errors.Is(err, ErrStaleToken) {
		t.Fatalf("expected ErrStaleToken replaying old token, got %v", err)
	}
	if err := repo.RotateRefreshToken(ctx, uuid.NewString(), "refresh-2", "refresh-3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	if err := repo.SetRefreshToken(ctx, user.ID, nil); err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}
	fetched, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user after clear: %v", err)
	}
	if fetched.CurrentRefreshToken != nil {
		t.Fatal("expected refresh token to be cleared")
	}
}

func TestPostgresVideoRepository_ListAndToggle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, userRepo, "ada", "ada@example.com")
	other := createTestUser(t, userRepo, "grace", "grace@example.com")

	published := createTestVideo(t, videoRepo, owner.ID, "Engines", true)
	draft := createTestVideo(t, videoRepo, owner.ID, "Draft Notes", false)
	createTestVideo(t, videoRepo, other.ID, "Moth Hunt", true)

	listed, err := videoRepo.List(ctx, VideoListOptions{OwnerID: owner.ID, OnlyPublished: true})
	if err != nil {
		t.Fatalf("list videos: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != published.ID {
		t.Fatalf("expected only the published video, got %+v", listed)
	}
	if listed[0].Owner.Username != "ada" {
		t.Fatalf("expected owner projection, got %+v", listed[0].Owner)
	}

	matched, err := videoRepo.List(ctx, VideoListOptions{TitleQuery: "moth"})
	if err != nil {
		t.Fatalf("list by title: %v", err)
	}
	if len(matched) != 1 || matched[0].Title != "Moth Hunt" {
		t.Fatalf("expected title match, got %+v", matched)
	}

	state, err := videoRepo.TogglePublished(ctx, draft.ID)
	if err != nil {
		t.Fatalf("toggle published: %v", err)
	}
	if !state {
		t.Fatal("expected draft to flip to published")
	}

	if err := videoRepo.IncrementViews(ctx, published.ID); err != nil {
		t.Fatalf("increment views: %v", err)
	}
	fetched, err := videoRepo.FindByID(ctx, published.ID)
	if err != nil {
		t.Fatalf("find video: %v", err)
	}
	if fetched.Views != 1 {
		t.Fatalf("expected 1 view, got %d", fetched.Views)
	}
}

func TestPostgresGraphRepository_WatchHistoryOrder(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	graphRepo := NewPostgresGraphRepository(testPool)

	viewer := createTestUser(t, userRepo, "ada", "ada@example.com")
	owner := createTestUser(t, userRepo, "grace", "grace@example.com")

	first := createTestVideo(t, videoRepo, owner.ID, "First Watched", true)
	second := createTestVideo(t, videoRepo, owner.ID, "Second Watched", true)

	if err := userRepo.RecordWatch(ctx, viewer.ID, first.ID); err != nil {
		t.Fatalf("record first watch: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := userRepo.RecordWatch(ctx, viewer.ID, second.ID); err != nil {
		t.Fatalf("record second watch: %v", err)
	}

	history, err := graphRepo.WatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 2 || history[0].ID != first.ID || history[1].ID != second.ID {
		t.Fatalf("unexpected history order: %+v", history)
	}

	// Re-watching moves the entry to the end.
	time.Sleep(10 * time.Millisecond)
	if err := userRepo.RecordWatch(ctx, viewer.ID, first.ID); err != nil {
		t.Fatalf("re-record watch: %v", err)
	}

	history, err = graphRepo.WatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history after re-watch: %v", err)
	}
	if len(history) != 2 || history[0].ID != second.ID || history[1].ID != first.ID {
		t.Fatalf("expected re-watched video at the end, got %+v", history)
	}
}

func TestPostgresEdgeRepository_TogglesAndAggregates(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	edgeRepo := NewPostgresEdgeRepository(testPool)
	graphRepo := NewPostgresGraphRepository(testPool)

	viewer := createTestUser(t, userRepo, "ada", "ada@example.com")
	channel := createTestUser(t, userRepo, "grace", "grace@example.com")
	video := createTestVideo(t, videoRepo, channel.ID, "Moth Hunt", true)

	subscribed, err := edgeRepo.ToggleSubscription(ctx, viewer.ID, channel.ID)
	if err != nil {
		t.Fatalf("toggle subscription: %v", err)
	}
	if !subscribed {
		t.Fatal("expected first toggle to subscribe")
	}

	liked, err := edgeRepo.ToggleLike(ctx, viewer.ID, models.LikeKindVideo, video.ID)
	if err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if !liked {
		t.Fatal("expected first toggle to like")
	}

	profile, err := graphRepo.ChannelProfile(ctx, viewer.ID, "GRACE")
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.SubscribersCount != 1 || !profile.IsSubscribed {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	stats, err := graphRepo.ChannelStats(ctx, channel.ID)
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if stats.TotalVideos != 1 || stats.TotalLikes != 1 || stats.TotalSubscribers != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	likedVideos, err := graphRepo.LikedVideos(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("liked videos: %v", err)
	}
	if len(likedVideos) != 1 || likedVideos[0].ID != video.ID {
		t.Fatalf("unexpected liked videos: %+v", likedVideos)
	}

	subscribers, err := graphRepo.ChannelSubscribers(ctx, channel.ID)
	if err != nil {
		t.Fatalf("channel subscribers: %v", err)
	}
	if len(subscribers) != 1 || subscribers[0].User.Username != "ada" {
		t.Fatalf("unexpected subscribers: %+v", subscribers)
	}

	// Toggling again removes both edges.
	if subscribed, err = edgeRepo.ToggleSubscription(ctx, viewer.ID, channel.ID); err != nil || subscribed {
		t.Fatalf("expected unsubscribe, got (%v, %v)", subscribed, err)
	}
	if liked, err = edgeRepo.ToggleLike(ctx, viewer.ID, models.LikeKindVideo, video.ID); err != nil || liked {
		t.Fatalf("expected unlike, got (%v, %v)", liked, err)
	}

	stats, err = graphRepo.ChannelStats(ctx, channel.ID)
	if err != nil {
		t.Fatalf("channel stats after untoggle: %v", err)
	}
	if stats.TotalLikes != 0 || stats.TotalSubscribers != 0 {
		t.Fatalf("expected zeroed counters, got %+v", stats)
	}
}

func TestPostgresPlaylistRepository_VideoMembership(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	playlistRepo := NewPostgresPlaylistRepository(testPool)

	owner := createTestUser(t, userRepo, "ada", "ada@example.com")
	first := createTestVideo(t, videoRepo, owner.ID, "First", true)
	second := createTestVideo(t, videoRepo, owner.ID, "Second", true)

	playlist := models.Playlist{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		Name:      "Favourites",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := playlistRepo.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	if err := playlistRepo.AddVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("add first video: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := playlistRepo.AddVideo(ctx, playlist.ID, second.ID); err != nil {
		t.Fatalf("add second video: %v", err)
	}
	if err := playlistRepo.AddVideo(ctx, playlist.ID, first.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict re-adding video, got %v", err)
	}

	loaded, err := playlistRepo.FindByIDWithVideos(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("load playlist: %v", err)
	}
	if len(loaded.Videos) != 2 || loaded.Videos[0].ID != first.ID || loaded.Videos[1].ID != second.ID {
		t.Fatalf("unexpected playlist videos: %+v", loaded.Videos)
	}

	if err := playlistRepo.RemoveVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	if err := playlistRepo.RemoveVideo(ctx, playlist.ID, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing absent video, got %v", err)
	}
}

func TestPostgresCommentRepository_Pagination(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	commentRepo := NewPostgresCommentRepository(testPool)

	owner := createTestUser(t, userRepo, "ada", "ada@example.com")
	video := createTestVideo(t, videoRepo, owner.ID, "Engines", true)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		comment := models.Comment{
			ID:        uuid.NewString(),
			VideoID:   video.ID,
			OwnerID:   owner.ID,
			Content:   fmt.Sprintf("comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := commentRepo.Create(ctx, comment); err != nil {
			t.Fatalf("create comment %d: %v", i, err)
		}
	}

	page, err := commentRepo.ListForVideo(ctx, video.ID, 1, 2)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(page) != 2 || page[0].Content != "comment 2" {
		t.Fatalf("unexpected first page: %+v", page)
	}

	page, err = commentRepo.ListForVideo(ctx, video.ID, 2, 2)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(page) != 1 || page[0].Content != "comment 0" {
		t.Fatalf("unexpected second page: %+v", page)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE playlist_videos, playlists, tweets, comments, likes, subscriptions, watch_history, videos, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username, email string) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  "password-hash",
		FullName:  "Test User",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, ownerID, title string, published bool) models.Video {
	t.Helper()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        title,
		VideoURL:     "https://cdn.test/" + uuid.NewString() + ".mp4",
		ThumbnailURL: "https://cdn.test/" + uuid.NewString() + ".png",
		Published:    published,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}
