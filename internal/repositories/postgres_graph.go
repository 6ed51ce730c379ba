package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/models"
)

// SubscriptionEdge pairs a subscription edge with the projected counterpart
// user (the subscriber when listing a channel's audience, the channel when
// listing a user's subscriptions).
type SubscriptionEdge struct {
	models.Subscription
	User models.OwnerSummary `json:"user"`
}

// GraphRepository answers the read-only aggregation queries over the social
// graph. Every method is a single round trip; empty result sets yield zeroes,
// never errors.
type GraphRepository interface {
	ChannelProfile(ctx context.Context, viewerID, channelUsername string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, viewerID string) ([]models.VideoWithOwner, error)
	ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error)
	LikedVideos(ctx context.Context, viewerID string) ([]models.VideoWithOwner, error)
	ChannelSubscribers(ctx context.Context, channelID string) ([]SubscriptionEdge, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]SubscriptionEdge, error)
}

// PostgresGraphRepository implements GraphRepository over pgx.
type PostgresGraphRepository struct {
	pool db.Pool
}

// NewPostgresGraphRepository constructs a graph repository backed by PostgreSQL.
func NewPostgresGraphRepository(pool db.Pool) *PostgresGraphRepository {
	return &PostgresGraphRepository{pool: pool}
}

// ChannelProfile computes subscriber counts and the viewer's subscription
// state for the channel matching the username, case-insensitively.
func (r *PostgresGraphRepository) ChannelProfile(ctx context.Context, viewerID, channelUsername string) (models.ChannelProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url, u.cover_image_url,
            (SELECT count(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers,
            (SELECT count(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to,
            EXISTS (
                SELECT 1 FROM subscriptions s
                WHERE s.channel_id = u.id AND s.subscriber_id = $2
            ) AS is_subscribed
        FROM users u
        WHERE u.username = lower($1)
    `, channelUsername, viewerID)

	var profile models.ChannelProfile
	err = row.Scan(
		&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL,
		&profile.CoverImageURL, &profile.SubscribersCount, &profile.SubscribedTo,
		&profile.IsSubscribed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, ErrNotFound
		}
		return models.ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	return profile, nil
}

// WatchHistory resolves the viewer's watch history in stored order, inlining
// the owner projection for each video.
func (r *PostgresGraphRepository) WatchHistory(ctx context.Context, viewerID string) ([]models.VideoWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoWithOwnerColumns+`
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE wh.user_id = $1
        ORDER BY wh.watched_at
    `, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	return collectVideosWithOwner(rows)
}

// ChannelStats aggregates the four dashboard counters for a channel owner.
func (r *PostgresGraphRepository) ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        WITH owned AS (
            SELECT id, views FROM videos WHERE owner_id = $1
        )
        SELECT
            (SELECT count(*) FROM owned),
            (SELECT coalesce(sum(views), 0) FROM owned),
            (SELECT count(*) FROM likes l WHERE l.kind = 'video' AND l.target_id IN (SELECT id FROM owned)),
            (SELECT count(*) FROM subscriptions s WHERE s.channel_id = $1)
    `, ownerID)

	var stats models.ChannelStats
	if err := row.Scan(&stats.TotalVideos, &stats.TotalViews, &stats.TotalLikes, &stats.TotalSubscribers); err != nil {
		return models.ChannelStats{}, fmt.Errorf("select channel stats: %w", err)
	}

	return stats, nil
}

// LikedVideos lists the videos the viewer has liked, most recent like first.
func (r *PostgresGraphRepository) LikedVideos(ctx context.Context, viewerID string) ([]models.VideoWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoWithOwnerColumns+`
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.kind = 'video'
        ORDER BY l.created_at DESC
    `, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	return collectVideosWithOwner(rows)
}

// ChannelSubscribers lists the subscription edges pointing at the channel.
func (r *PostgresGraphRepository) ChannelSubscribers(ctx context.Context, channelID string) ([]SubscriptionEdge, error) {
	return r.edges(ctx, `
        SELECT s.id, s.subscriber_id, s.channel_id, s.created_at,
               u.full_name, u.username, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
}

// SubscribedChannels lists the subscription edges originating at the user.
func (r *PostgresGraphRepository) SubscribedChannels(ctx context.Context, subscriberID string) ([]SubscriptionEdge, error) {
	return r.edges(ctx, `
        SELECT s.id, s.subscriber_id, s.channel_id, s.created_at,
               u.full_name, u.username, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
}

func (r *PostgresGraphRepository) edges(ctx context.Context, query, id string) ([]SubscriptionEdge, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query subscription edges: %w", err)
	}
	defer rows.Close()

	var edges []SubscriptionEdge
	for rows.Next() {
		var edge SubscriptionEdge
		if err := rows.Scan(
			&edge.ID, &edge.SubscriberID, &edge.ChannelID, &edge.CreatedAt,
			&edge.User.FullName, &edge.User.Username, &edge.User.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan subscription edge: %w", err)
		}
		edges = append(edges, edge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription edges: %w", err)
	}

	return edges, nil
}

var _ GraphRepository = (*PostgresGraphRepository)(nil)
