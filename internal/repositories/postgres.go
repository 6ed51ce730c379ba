package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/models"
)

const userColumns = `id, username, email, password_hash, full_name, avatar_url, cover_image_url, current_refresh_token, created_at, updated_at`

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record. Usernames are stored lower-cased.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, password_hash, full_name, avatar_url, cover_image_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, user.ID, strings.ToLower(user.Username), user.Email, user.Password, user.FullName,
		user.AvatarURL, user.CoverImageURL, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID fetches a user by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByIdentifier fetches a user whose email or username matches the
// identifier. Usernames match case-insensitively since they are stored
// lower-cased.
func (r *PostgresUserRepository) FindByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE email = $1 OR username = lower($1)
    `, identifier)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var user models.User
	err = conn.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.FullName,
		&user.AvatarURL, &user.CoverImageURL, &user.CurrentRefreshToken,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

// UpdateProfile modifies the mutable profile fields of a user.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, userID, fullName, email string) error {
	return r.exec(ctx, `
        UPDATE users
        SET full_name = $2, email = $3, updated_at = now()
        WHERE id = $1
    `, userID, fullName, email)
}

// UpdateAvatar replaces the user's avatar URL.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	return r.exec(ctx, `
        UPDATE users
        SET avatar_url = $2, updated_at = now()
        WHERE id = $1
    `, userID, avatarURL)
}

// UpdateCoverImage replaces the user's cover image URL.
func (r *PostgresUserRepository) UpdateCoverImage(ctx context.Context, userID, coverImageURL string) error {
	return r.exec(ctx, `
        UPDATE users
        SET cover_image_url = $2, updated_at = now()
        WHERE id = $1
    `, userID, coverImageURL)
}

// UpdatePassword stores a new password hash for the user.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.exec(ctx, `
        UPDATE users
        SET password_hash = $2, updated_at = now()
        WHERE id = $1
    `, userID, passwordHash)
}

// SetRefreshToken unconditionally overwrites the user's current refresh
// token. A nil token clears the field, which is how logout invalidates a
// session without touching the rest of the record.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, userID string, token *string) error {
	return r.exec(ctx, `
        UPDATE users
        SET current_refresh_token = $2, updated_at = now()
        WHERE id = $1
    `, userID, token)
}

// RotateRefreshToken swaps the stored refresh token from old to new only if
// the stored value still equals old. Concurrent rotations racing on the same
// stale token therefore produce at most one winner; losers see ErrStaleToken.
func (r *PostgresUserRepository) RotateRefreshToken(ctx context.Context, userID, old, new string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET current_refresh_token = $3, updated_at = now()
        WHERE id = $1 AND current_refresh_token = $2
    `, userID, old, new)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a lost race from a vanished user.
		var exists bool
		if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return fmt.Errorf("check user existence: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStaleToken
	}

	return nil
}

// RecordWatch appends the video to the user's watch history. Re-watching
// moves the entry to the end so the stored sequence stays insertion-ordered.
func (r *PostgresUserRepository) RecordWatch(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_id, video_id)
        DO UPDATE SET watched_at = now()
    `, userID, videoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("record watch: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) exec(ctx context.Context, query string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
