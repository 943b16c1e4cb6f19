package repository

import (
	"context"
	"errors"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PostgresSessionRepository implements domain.SessionRepository using PostgreSQL
type PostgresSessionRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewSessionRepository creates a new PostgresSessionRepository
func NewSessionRepository(db *database.Postgres, logger *zap.Logger) domain.SessionRepository {
	return &PostgresSessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresSessionRepository) Create(ctx context.Context, session *domain.UserSession) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_sessions (id, token_hash, user_id, ip_address, user_agent, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, session.ID.String(), session.TokenHash, session.UserID.String(),
		session.IPAddress, session.UserAgent, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		r.logger.Error("failed to create session", zap.String("user_id", session.UserID.String()), zap.Error(err))
		return domain.ErrInternal
	}
	return nil
}

func (r *PostgresSessionRepository) FindByTokenHash(ctx context.Context, hash string) (*domain.UserSession, error) {
	session := &domain.UserSession{}
	err := r.db.QueryRow(ctx, `
		SELECT id, token_hash, user_id, ip_address, user_agent, created_at, expires_at
		FROM user_sessions WHERE token_hash = $1 AND expires_at > now()
	`, hash).Scan(&session.ID, &session.TokenHash, &session.UserID,
		&session.IPAddress, &session.UserAgent, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		r.logger.Error("failed to fetch session", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return session, nil
}

func (r *PostgresSessionRepository) DeleteByTokenHash(ctx context.Context, hash string) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM user_sessions WHERE token_hash = $1", hash); err != nil {
		return domain.ErrInternal
	}
	return nil
}

func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM user_sessions WHERE expires_at <= now()")
	if err != nil {
		return 0, domain.ErrInternal
	}
	return tag.RowsAffected(), nil
}
