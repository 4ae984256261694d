package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	user "writespace-backend/internal/domains/user"
	"writespace-backend/pkg/cache"
)

const userCacheTTL = 15 * time.Minute

// postgresRepository là concrete implementation của user.Repository interface
type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) user.Repository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

const userColumns = `
	id, email, password_hash, name, contact_info, is_active, image,
	is_google_user, google_id, reset_password_token, reset_password_expires,
	created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.ContactInfo,
		&u.IsActive,
		&u.Image,
		&u.IsGoogleUser,
		&u.GoogleID,
		&u.ResetPasswordToken,
		&u.ResetPasswordExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

// invalidate drops the cached copy; cache errors never fail a write.
func (r *postgresRepository) invalidate(ctx context.Context, id uuid.UUID) {
	_ = r.cache.Delete(ctx, cacheKey(id))
}

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			email, password_hash, name, contact_info, is_active, image,
			is_google_user, google_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.NormalizeEmail(u.Email),
		u.PasswordHash,
		u.Name,
		u.ContactInfo,
		u.IsActive,
		u.Image,
		u.IsGoogleUser,
		u.GoogleID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		// 23505 = unique_violation
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return user.ErrEmailAlreadyExists
			}
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID - Cache-Aside: Redis trước, miss thì query DB rồi set lại cache.
// A cache hit carries no password hash or reset token.
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	// STEP 1: CHECK CACHE FIRST
	var cached cachedUser
	if found, err := r.cache.Get(ctx, cacheKey(id), &cached); err == nil && found {
		return cached.toUser(), nil
	}

	// STEP 2: CACHE MISS - QUERY DATABASE
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}

	// STEP 3: SET CACHE
	_ = r.cache.Set(ctx, cacheKey(id), toCachedUser(u), userCacheTTL)
	return u, nil
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, user.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) FindByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, googleID))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by google id: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET name = $2, contact_info = $3, image = $4,
		    is_google_user = $5, google_id = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		u.ID, u.Name, u.ContactInfo, u.Image, u.IsGoogleUser, u.GoogleID,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrUserNotFound
		}
		return fmt.Errorf("update user: %w", err)
	}

	r.invalidate(ctx, u.ID)
	return nil
}

// ========================================
// PASSWORD RESET
// ========================================

func (r *postgresRepository) FindByResetToken(ctx context.Context, token string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_password_token = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by reset token: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_password_token = $2, reset_password_expires = $3, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	r.invalidate(ctx, userID)
	return nil
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2,
		    reset_password_token = NULL,
		    reset_password_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	r.invalidate(ctx, userID)
	return nil
}

func (r *postgresRepository) ClearResetToken(ctx context.Context, userID uuid.UUID, token string) error {
	query := `
		UPDATE users
		SET reset_password_token = NULL, reset_password_expires = NULL, updated_at = NOW()
		WHERE id = $1 AND reset_password_token = $2
	`
	if _, err := r.pool.Exec(ctx, query, userID, token); err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}

	r.invalidate(ctx, userID)
	return nil
}

func (r *postgresRepository) ClearExpiredResetTokens(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE users
		SET reset_password_token = NULL, reset_password_expires = NULL, updated_at = NOW()
		WHERE reset_password_expires IS NOT NULL AND reset_password_expires < $1
		RETURNING id
	`
	rows, err := r.pool.Query(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("clear expired reset tokens: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return 0, fmt.Errorf("clear expired reset tokens: %w", err)
	}

	for _, id := range ids {
		r.invalidate(ctx, id)
	}
	return int64(len(ids)), nil
}
