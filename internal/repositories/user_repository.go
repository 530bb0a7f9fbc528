package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"room-chat-service/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already taken")
)

// Number of refresh tokens retained per user for multi-device support.
const maxRefreshTokensPerUser = 5

// UserRepository abstracts account persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, username, email, passwordHash, profilePic string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	HasRefreshToken(ctx context.Context, userID int64, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, token string) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser inserts a new account. Returns ErrDuplicateUser when the
// username or email is already registered.
func (r *UserRepo) CreateUser(ctx context.Context, username, email, passwordHash, profilePic string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (username, email, password_hash, profile_pic)
         VALUES ($1, $2, $3, $4)
         RETURNING id, username, email, password_hash, profile_pic, is_verified, created_at`,
		username, email, passwordHash, profilePic).StructScan(&user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByEmail fetches an account by email.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, username, email, password_hash, profile_pic, is_verified, created_at FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserByID fetches an account by id.
func (r *UserRepo) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, username, email, password_hash, profile_pic, is_verified, created_at FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SaveRefreshToken stores a refresh token and prunes all but the newest
// maxRefreshTokensPerUser tokens for the user.
func (r *UserRepo) SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)
         ON CONFLICT (token) DO NOTHING`, token, userID, expiresAt); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id=$1 AND token NOT IN (
            SELECT token FROM refresh_tokens WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2
        )`, userID, maxRefreshTokensPerUser)
	return err
}

// HasRefreshToken reports whether the unexpired token belongs to the user.
func (r *UserRepo) HasRefreshToken(ctx context.Context, userID int64, token string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE user_id=$1 AND token=$2 AND expires_at > NOW())`,
		userID, token)
	return exists, err
}

// DeleteRefreshToken revokes a refresh token.
func (r *UserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token=$1`, token)
	return err
}
