package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/models"
)

// PostgresEdgeRepository toggles subscription and like edges. Both edge kinds
// carry a uniqueness constraint, so a toggle is a delete-if-present followed
// by an insert-if-absent; a concurrent toggle race may land on either final
// state, which is acceptable for these edges.
type PostgresEdgeRepository struct {
	pool db.Pool
}

// NewPostgresEdgeRepository constructs an edge repository backed by PostgreSQL.
func NewPostgresEdgeRepository(pool db.Pool) *PostgresEdgeRepository {
	return &PostgresEdgeRepository{pool: pool}
}

// ToggleSubscription flips the subscriber → channel edge and reports whether
// the subscription exists afterwards.
func (r *PostgresEdgeRepository) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (subscriber_id, channel_id) DO NOTHING
    `, uuid.NewString(), subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("insert subscription: %w", err)
	}

	return true, nil
}

// ToggleLike flips the (likedBy, kind, targetID) edge and reports whether the
// like exists afterwards.
func (r *PostgresEdgeRepository) ToggleLike(ctx context.Context, likedBy string, kind models.LikeKind, targetID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE liked_by = $1 AND kind = $2 AND target_id = $3
    `, likedBy, kind, targetID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, kind, target_id, created_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (liked_by, kind, target_id) DO NOTHING
    `, uuid.NewString(), likedBy, kind, targetID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	return true, nil
}

var _ EdgeRepository = (*PostgresEdgeRepository)(nil)
