package repository

import (
	"context"
	"errors"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewUserRepository creates a new PostgresUserRepository
func NewUserRepository(db *database.Postgres, logger *zap.Logger) domain.UserRepository {
	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.User, error) {
	return r.findBy(ctx, "id = $1", id.String())
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findBy(ctx, "email = $1", email)
}

func (r *PostgresUserRepository) findBy(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, password, user_type, login_attempts, locked_until, is_active, created_at, updated_at
		FROM users WHERE `+where,
		arg).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.UserType,
		&user.LoginAttempts, &user.LockedUntil, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("failed to fetch user", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return user, nil
}

// RecordFailedLogin is a single conditional update: the increment and the
// threshold comparison happen in the database, so two parallel failures can
// never both read the same counter.
func (r *PostgresUserRepository) RecordFailedLogin(ctx context.Context, id ulid.ULID, threshold int, lockFor time.Duration) (int, error) {
	lockedUntil := time.Now().Add(lockFor)
	var attempts int
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET login_attempts = login_attempts + 1,
		    locked_until   = CASE WHEN login_attempts + 1 >= $2 THEN $3 ELSE locked_until END,
		    updated_at     = now()
		WHERE id = $1
		RETURNING login_attempts
	`, id.String(), threshold, lockedUntil).Scan(&attempts)
	if err != nil {
		r.logger.Error("failed to record login failure", zap.String("user_id", id.String()), zap.Error(err))
		return 0, domain.ErrInternal
	}
	return attempts, nil
}

func (r *PostgresUserRepository) ResetLoginAttempts(ctx context.Context, id ulid.ULID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET login_attempts = 0, locked_until = NULL, updated_at = now()
		WHERE id = $1
	`, id.String())
	if err != nil {
		r.logger.Error("failed to reset login attempts", zap.String("user_id", id.String()), zap.Error(err))
		return domain.ErrInternal
	}
	return nil
}
