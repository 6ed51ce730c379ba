package app

import (
	"context"
	"fmt"

	"github.com/playtube/backend/internal/auth"
	"github.com/playtube/backend/internal/config"
	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/handlers"
	"github.com/playtube/backend/internal/repositories"
	"github.com/playtube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	codec := auth.NewCodec(
		cfg.AccessToken.Secret, cfg.RefreshToken.Secret,
		cfg.AccessToken.TTL, cfg.RefreshToken.TTL,
	)

	users := repositories.NewPostgresUserRepository(pool)

	media, err := storage.NewS3MediaStorage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("configure media storage: %w", err)
	}

	return handlers.Dependencies{
		Users:     users,
		Sessions:  auth.NewManager(codec, users),
		Graph:     repositories.NewPostgresGraphRepository(pool),
		Videos:    repositories.NewPostgresVideoRepository(pool),
		Edges:     repositories.NewPostgresEdgeRepository(pool),
		Comments:  repositories.NewPostgresCommentRepository(pool),
		Tweets:    repositories.NewPostgresTweetRepository(pool),
		Playlists: repositories.NewPostgresPlaylistRepository(pool),
		Media:     media,
		Verifier:  codec,
		Loader:    users,
	}, nil
}
